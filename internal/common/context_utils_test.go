package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	got, err := NormalizeTime("09:30", "from_time")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", got)

	got, err = NormalizeTime(" 17:05:09 ", "to_time")
	require.NoError(t, err)
	assert.Equal(t, "17:05:09", got)

	_, err = NormalizeTime("25:00", "from_time")
	assert.EqualError(t, err, "from_time must be in HH:MM or HH:MM:SS format")
}

func TestValidateUUID(t *testing.T) {
	id := uuid.New()
	got, err := ValidateUUID(id.String(), "interview_id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ValidateUUID("", "interview_id")
	assert.EqualError(t, err, "interview_id is required")

	_, err = ValidateUUID("not-a-uuid", "interview_id")
	assert.Error(t, err)
}

func TestIdentityRoundTrip(t *testing.T) {
	userID, companyID := uuid.New(), uuid.New()
	ctx := WithIdentity(context.Background(), userID, companyID, "hr")

	gotUser, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, userID, gotUser)

	gotCompany, ok := GetCompanyIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, companyID, gotCompany)

	role, _ := GetRoleFromContext(ctx)
	assert.Equal(t, "hr", role)

	_, ok = GetCompanyIDFromContext(WithIdentity(context.Background(), userID, uuid.Nil, "agent"))
	assert.False(t, ok)
}

func TestPagination(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-3", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	limit, offset := Pagination(c)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)
}

func TestSanitizeSearchQuery(t *testing.T) {
	assert.Equal(t, "java dev", SanitizeSearchQuery(" java%_ dev "))
}

func TestSanitizeSearchQuery_TruncatesOnRuneBoundary(t *testing.T) {
	query := strings.Repeat("a", 99) + "é" + "bc"

	got := SanitizeSearchQuery(query)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 99)+"é", got)
	assert.Equal(t, 100, utf8.RuneCountInString(SanitizeSearchQuery(strings.Repeat("ß", 150))))
}
