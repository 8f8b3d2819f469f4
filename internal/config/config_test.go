package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/genzip")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GENZIP_CONFIG", "")
	t.Setenv("PAYMENT_PROVIDER", "")
	t.Setenv("RESERVATION_TTL_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Len(t, cfg.JWTSecret, 32)
	assert.Equal(t, "stripe", cfg.PaymentProvider)
	assert.Equal(t, 30*time.Minute, cfg.ReservationTTL)
	assert.Equal(t, ":8080", cfg.HTTPAddress())

	plan, ok := cfg.Catalog.Plan("pro")
	require.True(t, ok)
	assert.Equal(t, 99999.0, plan.Price)
	assert.Equal(t, 58, plan.TotalCredits())
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/genzip")
	t.Setenv("PAYMENT_PROVIDER", "paypal")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadCatalog_OverridesPlans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genzip.toml")
	content := `
pay_per_interview_price = 2500

[[plans]]
name = "Basic"
price = 999
credits = 2
bonus = 0
free_km = 3
price_id = "price_basic"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.NoError(t, catalog.Validate())
	assert.Equal(t, 2500.0, catalog.PayPerInterviewPrice)
	assert.Equal(t, 500.0, catalog.AgentPayout)
	require.Len(t, catalog.Plans, 1)
	assert.Equal(t, "price_basic", catalog.Plans[0].PriceID)

	_, ok := catalog.Plan("Pro")
	assert.False(t, ok)
}

func TestCatalogValidate(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.Plans = append(catalog.Plans, catalog.Plans[0])
	assert.Error(t, catalog.Validate())

	empty := DefaultCatalog()
	empty.Plans = nil
	assert.EqualError(t, empty.Validate(), "plan catalog is empty")
}
