package config

import (
	"fmt"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Strategy names accepted in STRATEGY.
const (
	StrategyCombined = "combined"
	StrategyDual     = "dual"
)

// Product feed names accepted in PRODUCT_FEED.
const (
	ProductFeedStock    = "stock"
	ProductFeedProducts = "products"
)

// Config is the process-wide configuration, read once at cold start and
// passed explicitly to everything that needs it.
type Config struct {
	APIToken  string `validate:"required"`
	MachineID string `validate:"omitempty,max=64,excludesall=/?#%"`

	VendonBaseURL     string        `validate:"required,url"`
	Strategy          string        `validate:"oneof=combined dual"`
	ProductFeed       string        `validate:"oneof=stock products"`
	ProductLimit      int           `validate:"gt=0"`
	FallbackAmountMax int           `validate:"gt=0"`
	UpstreamTimeout   time.Duration `validate:"gt=0"`

	CORSAllowOrigin string `validate:"required"`
	LogLevel        string

	MetricsNamespace    string
	AWSRegion           string `validate:"required"`
	AWSEndpointOverride string `validate:"omitempty,url"`

	OtelEndpoint   string
	OtelAuthHeader string

	LambdaPayloadVersion string `validate:"oneof=1.0 2.0"`
	RunLocal             bool
	Port                 int `validate:"gt=0"`
}

// Load reads the configuration from the environment. With RUN_LOCAL=true a
// .env file in the working directory is loaded first, if present.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("RUN_LOCAL", false)
	if v.GetBool("RUN_LOCAL") {
		// missing .env is fine; the variables may come from the shell
		_ = godotenv.Load()
	}

	v.SetDefault("MACHINE_ID", "")
	v.SetDefault("VENDON_BASE_URL", "https://cloud.vendon.net/rest/head")
	v.SetDefault("STRATEGY", StrategyCombined)
	v.SetDefault("PRODUCT_FEED", ProductFeedStock)
	v.SetDefault("PRODUCT_LIMIT", 1000)
	v.SetDefault("FALLBACK_AMOUNT_MAX", 10)
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("METRICS_NAMESPACE", "")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT_OVERRIDE", "")
	v.SetDefault("OTEL_ENDPOINT", "")
	v.SetDefault("OTEL_AUTH_HEADER", "")
	v.SetDefault("LAMBDA_PAYLOAD_VERSION", "1.0")
	v.SetDefault("PORT", 8080)

	timeout, err := time.ParseDuration(v.GetString("UPSTREAM_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parse UPSTREAM_TIMEOUT: %w", err)
	}

	cfg := &Config{
		APIToken:             v.GetString("API_TOKEN"),
		MachineID:            strings.TrimSpace(v.GetString("MACHINE_ID")),
		VendonBaseURL:        strings.TrimRight(v.GetString("VENDON_BASE_URL"), "/"),
		Strategy:             strings.ToLower(v.GetString("STRATEGY")),
		ProductFeed:          strings.ToLower(v.GetString("PRODUCT_FEED")),
		ProductLimit:         v.GetInt("PRODUCT_LIMIT"),
		FallbackAmountMax:    v.GetInt("FALLBACK_AMOUNT_MAX"),
		UpstreamTimeout:      timeout,
		CORSAllowOrigin:      v.GetString("CORS_ALLOW_ORIGIN"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		MetricsNamespace:     v.GetString("METRICS_NAMESPACE"),
		AWSRegion:            v.GetString("AWS_REGION"),
		AWSEndpointOverride:  v.GetString("AWS_ENDPOINT_OVERRIDE"),
		OtelEndpoint:         v.GetString("OTEL_ENDPOINT"),
		OtelAuthHeader:       v.GetString("OTEL_AUTH_HEADER"),
		LambdaPayloadVersion: v.GetString("LAMBDA_PAYLOAD_VERSION"),
		RunLocal:             v.GetBool("RUN_LOCAL"),
		Port:                 v.GetInt("PORT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values against the struct rules.
func (c *Config) Validate() error {
	if err := validatorv10.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// MetricsEnabled reports whether CloudWatch metrics should be published.
func (c *Config) MetricsEnabled() bool { return c.MetricsNamespace != "" }

// TracingEnabled reports whether spans should be exported.
func (c *Config) TracingEnabled() bool { return c.OtelEndpoint != "" }
