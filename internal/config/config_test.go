package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var clearEnv = map[string]string{
	"DATABASE_URL":             "",
	"REDIS_URL":                "",
	"TAX_RATE":                 "",
	"CURRENCY_CODE":            "",
	"CART_TTL":                 "",
	"STOCK_EXPIRY_WINDOW_DAYS": "",
	"CHECKOUT_RATE_LIMIT":      "",
	"MIGRATE_ON_START":         "",
	"CORS_ALLOWED_ORIGINS":     "",
}

func withEnv(overrides map[string]string) map[string]string {
	env := make(map[string]string, len(clearEnv)+len(overrides))
	for k, v := range clearEnv {
		env[k] = v
	}
	for k, v := range overrides {
		env[k] = v
	}
	return env
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(withEnv(nil))
	require.NoError(t, err)
	require.Equal(t, "0.1", cfg.TaxRate.String())
	require.Equal(t, "USD", cfg.CurrencyCode)
	require.Equal(t, 12*time.Hour, cfg.CartTTL)
	require.Equal(t, 30, cfg.ExpiryWindowDays)
	require.Equal(t, "30-M", cfg.CheckoutRate)
	require.Empty(t, cfg.DatabaseURL)
	require.Empty(t, cfg.RedisURL)
	require.False(t, cfg.MigrateOnStart)
	require.Equal(t, ":8080", cfg.HTTPAddr())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(withEnv(map[string]string{
		"TAX_RATE":                 "0.0825",
		"CURRENCY_CODE":            "eur",
		"CART_TTL":                 "30m",
		"STOCK_EXPIRY_WINDOW_DAYS": "14",
		"MIGRATE_ON_START":         "yes",
		"CORS_ALLOWED_ORIGINS":     "http://a.test, ,http://b.test",
		"REDIS_URL":                "redis://localhost:6379/0",
	}))
	require.NoError(t, err)
	require.Equal(t, "0.0825", cfg.TaxRate.String())
	require.Equal(t, "EUR", cfg.CurrencyCode)
	require.Equal(t, 30*time.Minute, cfg.CartTTL)
	require.Equal(t, 14, cfg.ExpiryWindowDays)
	require.True(t, cfg.MigrateOnStart)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoadRejectsBadTaxRate(t *testing.T) {
	_, err := LoadForTests(withEnv(map[string]string{"TAX_RATE": "abc"}))
	require.Error(t, err)

	_, err = LoadForTests(withEnv(map[string]string{"TAX_RATE": "1.5"}))
	require.Error(t, err)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	cfg, err := LoadForTests(withEnv(map[string]string{"CART_TTL": "soon"}))
	require.NoError(t, err)
	require.Equal(t, 12*time.Hour, cfg.CartTTL)
}
