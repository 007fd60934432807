package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-vendon-inventory/internal/aws"
	"github.com/imrishuroy/go-vendon-inventory/internal/config"
	"github.com/imrishuroy/go-vendon-inventory/internal/handlers"
	"github.com/imrishuroy/go-vendon-inventory/internal/inventory"
	"github.com/imrishuroy/go-vendon-inventory/internal/logger"
	"github.com/imrishuroy/go-vendon-inventory/internal/middleware"
	"github.com/imrishuroy/go-vendon-inventory/internal/observability"
	"github.com/imrishuroy/go-vendon-inventory/internal/vendon"
)

const shutdownTimeout = 2 * time.Second

func setupRouter(cfg handlers.HandlerConfig, corsOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(corsOrigin), middleware.RequestID())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterInventoryRoutes(r, cfg)

	return r
}

func newMetricsRecorder(ctx context.Context, cfg *config.Config) (aws.MetricsRecorder, error) {
	if !cfg.MetricsEnabled() {
		return aws.NopRecorder{}, nil
	}
	clients, err := aws.NewAWSClients(ctx, cfg.AWSRegion, cfg.AWSEndpointOverride)
	if err != nil {
		return nil, err
	}
	return aws.NewCloudWatchRecorder(clients.CloudWatch, cfg.MetricsNamespace), nil
}

func newStrategy(cfg *config.Config) (inventory.Strategy, error) {
	client, err := vendon.NewClient(
		cfg.VendonBaseURL,
		cfg.APIToken,
		&http.Client{Timeout: cfg.UpstreamTimeout},
		vendon.WithProductFeed(cfg.ProductFeed, cfg.ProductLimit),
	)
	if err != nil {
		return nil, err
	}
	return inventory.NewStrategy(cfg.Strategy, client, inventory.NewMerger(cfg.FallbackAmountMax))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:   cfg.OtelEndpoint,
		AuthHeader: cfg.OtelAuthHeader,
	})
	if err != nil {
		zl.Fatal("failed to init tracing", zap.Error(err))
	}
	flush := func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			zl.Warn("failed to shut down tracing", zap.Error(err))
		}
		_ = zl.Sync()
	}

	strategy, err := newStrategy(cfg)
	if err != nil {
		zl.Fatal("failed to init inventory strategy", zap.Error(err))
	}

	metrics, err := newMetricsRecorder(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to init aws clients", zap.Error(err))
	}

	r := setupRouter(handlers.HandlerConfig{
		Strategy:         strategy,
		DefaultMachineID: cfg.MachineID,
		Metrics:          metrics,
		Logger:           zl,
	}, cfg.CORSAllowOrigin)

	zl.Info("inventory api configured",
		zap.String("strategy", strategy.Name()),
		zap.String("product_feed", cfg.ProductFeed),
		zap.Bool("metrics", cfg.MetricsEnabled()),
		zap.Bool("tracing", cfg.TracingEnabled()),
	)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if cfg.RunLocal {
		defer flush()
		addr := fmt.Sprintf(":%d", cfg.Port)
		zl.Info("running local server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			zl.Error("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter; the payload version must match the API Gateway integration
	switch cfg.LambdaPayloadVersion {
	case "2.0":
		adapter := ginadapter.NewV2(r)
		lambda.StartWithOptions(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		}, lambda.WithEnableSIGTERM(flush))
	default:
		adapter := ginadapter.New(r)
		lambda.StartWithOptions(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		}, lambda.WithEnableSIGTERM(flush))
	}
}
