package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-vendon-inventory/internal/aws"
	"github.com/imrishuroy/go-vendon-inventory/internal/config"
	"github.com/imrishuroy/go-vendon-inventory/internal/handlers"
)

type staticStrategy struct{}

func (staticStrategy) Name() string { return "combined" }

func (staticStrategy) Inventory(ctx context.Context, machineID string) (json.RawMessage, error) {
	return json.RawMessage(`[{"name":"Cola"}]`), nil
}

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter(handlers.HandlerConfig{Strategy: staticStrategy{}}, "https://kiosk.example.com")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/inventory?machine_id=4711", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `[{"name":"Cola"}]`, rr.Body.String())
	assert.Equal(t, "https://kiosk.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/get-inventory", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestNewStrategy(t *testing.T) {
	cfg := &config.Config{
		APIToken:          "token-123",
		VendonBaseURL:     "https://cloud.vendon.net/rest/head",
		Strategy:          config.StrategyDual,
		ProductFeed:       config.ProductFeedProducts,
		ProductLimit:      500,
		FallbackAmountMax: 10,
		UpstreamTimeout:   time.Second,
	}

	s, err := newStrategy(cfg)
	require.NoError(t, err)
	assert.Equal(t, "dual", s.Name())

	cfg.VendonBaseURL = "not-a-url"
	_, err = newStrategy(cfg)
	assert.Error(t, err)
}

func TestNewMetricsRecorder_DisabledIsNop(t *testing.T) {
	rec, err := newMetricsRecorder(context.Background(), &config.Config{AWSRegion: "us-east-1"})
	require.NoError(t, err)
	assert.IsType(t, aws.NopRecorder{}, rec)
}
