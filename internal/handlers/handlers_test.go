package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"genzip/internal/common"
	"genzip/internal/middleware"
	"genzip/internal/models"
	"genzip/internal/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testActor = services.Actor{UserID: uuid.New(), CompanyID: uuid.New(), Role: models.RoleHR}

func newRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func authenticated(req *http.Request, actor services.Actor) *http.Request {
	return req.WithContext(common.WithIdentity(req.Context(), actor.UserID, actor.CompanyID, actor.Role))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateCheckoutSession_ReturnsID(t *testing.T) {
	e := echo.New()
	payments := &MockPaymentService{}
	h := NewPaymentHandlers(payments, nil)
	interviewID := uuid.New()

	payments.On("CreateCheckoutSession", mock.Anything, testActor, mock.MatchedBy(func(req *services.CheckoutSessionRequest) bool {
		return req.InterviewID == interviewID.String() && req.Amount == nil
	})).Return(&services.CheckoutSession{ID: "cs_test_1", Provider: "stripe"}, nil).Once()

	req := authenticated(newRequest(http.MethodPost, "/v1/payments/checkout-session",
		fmt.Sprintf(`{"interview_id":"%s","hr_email":"hr@acme.test"}`, interviewID)), testActor)
	rec := httptest.NewRecorder()

	require.NoError(t, h.CreateCheckoutSession(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cs_test_1", decode(t, rec)["id"])
	payments.AssertExpectations(t)
}

func TestCreateSubscriptionSession_InvalidPlan(t *testing.T) {
	e := echo.New()
	payments := &MockPaymentService{}
	h := NewPaymentHandlers(payments, nil)

	payments.On("CreateSubscriptionSession", mock.Anything, testActor, mock.Anything).Return(nil, services.ErrInvalidPlan).Once()

	req := authenticated(newRequest(http.MethodPost, "/v1/payments/subscription-session", `{"plan_type":"Gold"}`), testActor)
	rec := httptest.NewRecorder()

	require.NoError(t, h.CreateSubscriptionSession(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid subscription plan selected"}`, rec.Body.String())
}

func TestCreateCheckoutSession_AlreadyPaid(t *testing.T) {
	e := echo.New()
	payments := &MockPaymentService{}
	h := NewPaymentHandlers(payments, nil)

	payments.On("CreateCheckoutSession", mock.Anything, testActor, mock.Anything).Return(nil, services.ErrAlreadyPaid).Once()

	req := authenticated(newRequest(http.MethodPost, "/v1/payments/checkout-session", fmt.Sprintf(`{"interview_id":"%s"}`, uuid.New())), testActor)
	rec := httptest.NewRecorder()

	require.NoError(t, h.CreateCheckoutSession(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "already paid")
}

func TestCreateCheckoutSession_Unauthenticated(t *testing.T) {
	e := echo.New()
	h := NewPaymentHandlers(&MockPaymentService{}, nil)

	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateCheckoutSession(e.NewContext(newRequest(http.MethodPost, "/", `{}`), rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmPayment_BindsQueryParams(t *testing.T) {
	e := echo.New()
	payments := &MockPaymentService{}
	h := NewPaymentHandlers(payments, nil)

	payments.On("Confirm", mock.Anything, testActor, &services.ConfirmPaymentRequest{Plan: "Pro", SessionID: "cs_9"}).
		Return(&services.PaymentConfirmation{Kind: "subscription", CreditsGranted: 58}, nil).Once()

	req := authenticated(httptest.NewRequest(http.MethodPost, "/v1/payments/confirm?plan=Pro&session_id=cs_9", nil), testActor)
	rec := httptest.NewRecorder()

	require.NoError(t, h.ConfirmPayment(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 58, decode(t, rec)["credits_granted"])
	payments.AssertExpectations(t)
}

func TestScheduleInterview_PaymentRequiredAnswers202(t *testing.T) {
	e := echo.New()
	interviews := &MockInterviewService{}
	h := NewInterviewHandlers(interviews)

	interviews.On("Schedule", mock.Anything, testActor, mock.Anything).
		Return(&services.ScheduleResult{Interview: &models.Interview{ID: uuid.New()}, PaymentRequired: true}, nil).Once()

	req := authenticated(newRequest(http.MethodPost, "/v1/interviews", `{}`), testActor)
	rec := httptest.NewRecorder()

	require.NoError(t, h.ScheduleInterview(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, true, decode(t, rec)["payment_required"])
}

func TestScheduleInterview_ValidationErrors(t *testing.T) {
	e := echo.New()
	interviews := &MockInterviewService{}
	h := NewInterviewHandlers(interviews)

	interviews.On("Schedule", mock.Anything, testActor, mock.Anything).
		Return(nil, validation.Errors{"job_id": validation.ErrRequired}).Once()

	req := authenticated(newRequest(http.MethodPost, "/v1/interviews", `{}`), testActor)
	rec := httptest.NewRecorder()

	require.NoError(t, h.ScheduleInterview(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "cannot be blank", body["details"].(map[string]interface{})["job_id"])
}

func TestDeleteInterview_InvalidIDNeverReachesService(t *testing.T) {
	e := echo.New()
	interviews := &MockInterviewService{}
	h := NewInterviewHandlers(interviews)

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/v1/interviews/abc", nil), testActor)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.DeleteInterview(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	interviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteInterview_LockedIsConflict(t *testing.T) {
	e := echo.New()
	interviews := &MockInterviewService{}
	h := NewInterviewHandlers(interviews)
	id := uuid.New()

	interviews.On("Delete", mock.Anything, testActor, id).Return(services.ErrInterviewLocked).Once()

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/v1/interviews/"+id.String(), nil), testActor)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, h.DeleteInterview(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAgentAccept_LostRaceIsConflict(t *testing.T) {
	e := echo.New()
	interviews := &MockInterviewService{}
	h := NewAgentHandlers(nil, interviews)
	agent := &models.FieldAgent{ID: uuid.New(), City: "Bengaluru"}
	id := uuid.New()

	interviews.On("Accept", mock.Anything, agent, id).Return(nil, services.ErrInterviewConflict).Once()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/agent/interviews/"+id.String()+"/accept", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	c.Set("field_agent", agent)

	require.NoError(t, h.Accept(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	_, found := middleware.AgentFromContext(c)
	assert.True(t, found)
}

func TestSubmitLocation_RateLimited(t *testing.T) {
	e := echo.New()
	interviews := &MockInterviewService{}
	cache := &MockCacheService{}
	h := NewPublicHandlers(interviews, nil, cache, 10, time.Minute)

	cache.On("IsRateLimited", mock.Anything, "location:192.0.2.1", 10, time.Minute).Return(true, nil).Once()

	req := newRequest(http.MethodPost, "/v1/public/interviews/x/location", `{"latitude":12.9,"longitude":77.6}`)
	req.RemoteAddr = "192.0.2.1:5555"
	rec := httptest.NewRecorder()

	require.NoError(t, h.SubmitLocation(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	interviews.AssertNotCalled(t, "SetLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitLocation_Saves(t *testing.T) {
	e := echo.New()
	interviews := &MockInterviewService{}
	cache := &MockCacheService{}
	h := NewPublicHandlers(interviews, nil, cache, 10, time.Minute)
	id := uuid.New()

	cache.On("IsRateLimited", mock.Anything, mock.Anything, 10, time.Minute).Return(false, errors.New("redis down")).Once()
	interviews.On("SetLocation", mock.Anything, id, 12.9, 77.6).Return(nil).Once()

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodPost, "/", `{"latitude":12.9,"longitude":77.6}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, h.SubmitLocation(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	interviews.AssertExpectations(t)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	e := echo.New()
	payments := &MockPaymentService{}
	h := NewWebhookHandlers(payments)

	payments.On("HandleWebhook", mock.Anything, "razorpay", []byte(`{}`), "bad").Return(services.ErrPaymentNotVerified).Once()

	req := newRequest(http.MethodPost, "/v1/webhooks/razorpay", `{}`)
	req.Header.Set("X-Razorpay-Signature", "bad")
	err := h.RazorpayWebhook(e.NewContext(req, httptest.NewRecorder()))

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestWebhook_MissingSignature(t *testing.T) {
	e := echo.New()
	h := NewWebhookHandlers(&MockPaymentService{})

	err := h.StripeWebhook(e.NewContext(newRequest(http.MethodPost, "/v1/webhooks/stripe", `{}`), httptest.NewRecorder()))

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestHealthCheck_Degraded(t *testing.T) {
	e := echo.New()
	h := NewHealthHandlers("test", map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
		"storage":  func(ctx context.Context) error { return errors.New("bucket missing") },
	}, "database")

	rec := httptest.NewRecorder()
	require.NoError(t, h.HealthCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "healthy", body["services"].(map[string]interface{})["database"])

	rec = httptest.NewRecorder()
	require.NoError(t, h.ReadinessCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/ready", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRespondError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", services.ErrInsufficientCredits), http.StatusPaymentRequired},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrAccountDisabled, http.StatusForbidden},
		{services.ErrDuplicateInterview, http.StatusConflict},
		{services.ErrInvalidOTP, http.StatusBadRequest},
		{services.ErrTooManyAttempts, http.StatusTooManyRequests},
		{services.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		require.NoError(t, respondError(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), tc.err, "Interview"))
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	e := echo.New()
	auth := &MockAuthService{}
	h := NewAuthHandlers(nil, auth, nil)

	auth.On("RefreshToken", mock.Anything, "refresh-1").Return(&models.TokenResponse{AccessToken: "access-2"}, nil).Once()

	rec := httptest.NewRecorder()
	req := newRequest(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"refresh-1","grant_type":"refresh_token"}`)

	require.NoError(t, h.Refresh(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "access-2", decode(t, rec)["access_token"])
	auth.AssertExpectations(t)
}

func TestRefresh_RejectsOtherGrantType(t *testing.T) {
	e := echo.New()
	auth := &MockAuthService{}
	h := NewAuthHandlers(nil, auth, nil)

	rec := httptest.NewRecorder()
	req := newRequest(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"refresh-1","grant_type":"password"}`)

	require.NoError(t, h.Refresh(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	auth.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
}

func TestLogout_RevokesBearerAndRefreshToken(t *testing.T) {
	e := echo.New()
	auth := &MockAuthService{}
	h := NewAuthHandlers(nil, auth, nil)

	auth.On("RevokeToken", mock.Anything, "access-1", (*string)(nil)).Return(nil).Once()
	auth.On("RevokeToken", mock.Anything, "refresh-1", mock.MatchedBy(func(hint *string) bool {
		return hint != nil && *hint == "refresh_token"
	})).Return(nil).Once()

	req := newRequest(http.MethodPost, "/v1/auth/logout", `{"refresh_token":"refresh-1"}`)
	req.Header.Set(echo.HeaderAuthorization, "Bearer access-1")
	rec := httptest.NewRecorder()

	require.NoError(t, h.Logout(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	auth.AssertExpectations(t)
}
