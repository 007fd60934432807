package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_TOKEN", "secret-token")
	t.Setenv("RUN_LOCAL", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.APIToken)
	assert.Equal(t, "", cfg.MachineID)
	assert.Equal(t, "https://cloud.vendon.net/rest/head", cfg.VendonBaseURL)
	assert.Equal(t, StrategyCombined, cfg.Strategy)
	assert.Equal(t, ProductFeedStock, cfg.ProductFeed)
	assert.Equal(t, 1000, cfg.ProductLimit)
	assert.Equal(t, 10, cfg.FallbackAmountMax)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "*", cfg.CORSAllowOrigin)
	assert.Equal(t, "1.0", cfg.LambdaPayloadVersion)
	assert.False(t, cfg.MetricsEnabled())
	assert.False(t, cfg.TracingEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_TOKEN", "secret-token")
	t.Setenv("MACHINE_ID", " 4711 ")
	t.Setenv("VENDON_BASE_URL", "http://localhost:9999/rest/head/")
	t.Setenv("STRATEGY", "DUAL")
	t.Setenv("PRODUCT_FEED", "products")
	t.Setenv("PRODUCT_LIMIT", "250")
	t.Setenv("FALLBACK_AMOUNT_MAX", "20")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("METRICS_NAMESPACE", "VendingInventory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4711", cfg.MachineID)
	assert.Equal(t, "http://localhost:9999/rest/head", cfg.VendonBaseURL)
	assert.Equal(t, StrategyDual, cfg.Strategy)
	assert.Equal(t, ProductFeedProducts, cfg.ProductFeed)
	assert.Equal(t, 250, cfg.ProductLimit)
	assert.Equal(t, 20, cfg.FallbackAmountMax)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.True(t, cfg.MetricsEnabled())
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("API_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIToken")
}

func TestLoad_InvalidStrategy(t *testing.T) {
	t.Setenv("API_TOKEN", "secret-token")
	t.Setenv("STRATEGY", "triple")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Strategy")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("API_TOKEN", "secret-token")
	t.Setenv("UPSTREAM_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_TIMEOUT")
}

func TestValidate_RejectsNonPositiveFallback(t *testing.T) {
	t.Setenv("API_TOKEN", "secret-token")
	cfg, err := Load()
	require.NoError(t, err)

	cfg.FallbackAmountMax = 0
	assert.Error(t, cfg.Validate())
}
