package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("CASHFREE_CLIENT_ID", "")
	t.Setenv("CASHFREE_CLIENT_SECRET", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrMissingGatewayCredentials)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CASHFREE_CLIENT_ID", "cf-id")
	t.Setenv("CASHFREE_CLIENT_SECRET", "cf-secret")
	t.Setenv("CASHFREE_ENV", "sandbox")
	t.Setenv("CASHFREE_BASE_URL", "")
	t.Setenv("CASHFREE_WEBHOOK_SECRET", "")
	t.Setenv("SWEEP_DELAY", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, sandboxBaseURL, cfg.Gateway.BaseURL)
	assert.Equal(t, "cf-secret", cfg.Gateway.WebhookSecret, "webhook secret falls back to client secret")
	assert.Equal(t, "2023-08-01", cfg.Gateway.OrdersAPIVersion)
	assert.Equal(t, "2025-01-01", cfg.Gateway.SubscriptionsAPIVersion)
	assert.Equal(t, 300*time.Millisecond, cfg.Sweep.Delay)
	assert.Equal(t, 2, cfg.Gateway.MaxRetries)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoad_RejectsWildcardCORSOrigin(t *testing.T) {
	t.Setenv("CASHFREE_CLIENT_ID", "cf-id")
	t.Setenv("CASHFREE_CLIENT_SECRET", "cf-secret")

	for _, origins := range []string{"*", "https://a.example,*", "portal.example.com"} {
		t.Setenv("CORS_ORIGINS", origins)
		cfg, err := Load()
		assert.Nil(t, cfg, origins)
		assert.Error(t, err, origins)
	}
}

func TestLoad_ProductionAndOverrides(t *testing.T) {
	t.Setenv("CASHFREE_CLIENT_ID", "cf-id")
	t.Setenv("CASHFREE_CLIENT_SECRET", "cf-secret")
	t.Setenv("CASHFREE_ENV", "production")
	t.Setenv("CASHFREE_BASE_URL", "")
	t.Setenv("CASHFREE_WEBHOOK_SECRET", "whsec")
	t.Setenv("SWEEP_DELAY", "1s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, productionBaseURL, cfg.Gateway.BaseURL)
	assert.Equal(t, "whsec", cfg.Gateway.WebhookSecret)
	assert.Equal(t, time.Second, cfg.Sweep.Delay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}
