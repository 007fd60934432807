package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-vendon-inventory/internal/aws"
	"github.com/imrishuroy/go-vendon-inventory/internal/inventory"
	"github.com/imrishuroy/go-vendon-inventory/internal/middleware"
	"github.com/imrishuroy/go-vendon-inventory/internal/validation"
	"github.com/imrishuroy/go-vendon-inventory/internal/vendon"
)

const metricsTimeout = 2 * time.Second

// InventoryPaths are served by the inventory handler. /get-inventory keeps the
// path existing front-ends already call.
var InventoryPaths = []string{"/inventory", "/get-inventory"}

// HandlerConfig groups dependencies for the inventory handler.
type HandlerConfig struct {
	Strategy         inventory.Strategy
	DefaultMachineID string // used when the request has no machine_id
	Metrics          aws.MetricsRecorder
	Logger           *zap.Logger
}

// RegisterInventoryRoutes registers routes for the inventory API.
func RegisterInventoryRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = aws.NopRecorder{}
	}
	tracer := otel.Tracer("github.com/imrishuroy/go-vendon-inventory/internal/handlers")
	strategy := cfg.Strategy.Name()

	handle := func(c *gin.Context) {
		start := time.Now()
		ctx, span := tracer.Start(c.Request.Context(), "GET /inventory")
		defer span.End()

		log := logger.With(
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("strategy", strategy),
		)

		outcome := aws.OutcomeOK
		defer func() {
			mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsTimeout)
			defer cancel()
			if err := metrics.RecordRequest(mctx, strategy, outcome, time.Since(start)); err != nil {
				log.Warn("failed to record metrics", zap.Error(err))
			}
		}()

		// BindInventoryRequest already wrote a 400
		req, err := validation.BindInventoryRequest(c, v, cfg.DefaultMachineID)
		if err != nil {
			outcome = aws.OutcomeInvalidRequest
			log.Debug("rejected inventory request", zap.Error(err))
			return
		}
		log = log.With(zap.String("machine_id", req.MachineID))
		span.SetAttributes(attribute.String("vendon.machine_id", req.MachineID))

		body, err := cfg.Strategy.Inventory(ctx, req.MachineID)
		if err != nil {
			if se, ok := vendon.AsStatusError(err); ok {
				outcome = aws.OutcomeUpstreamError
				log.Warn("vendon request failed",
					zap.String("endpoint", se.Endpoint),
					zap.Int("status", se.StatusCode),
					zap.Error(err))
			} else {
				outcome = aws.OutcomeError
				log.Error("inventory request failed", zap.Error(err))
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}

	for _, p := range InventoryPaths {
		r.GET(p, handle)
	}
}
