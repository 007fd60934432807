package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
)

// Request outcomes reported as the Outcome dimension.
const (
	OutcomeOK             = "ok"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeError          = "error"
)

const (
	metricRequests = "InventoryRequests"
	metricLatency  = "InventoryLatency"
)

// MetricsRecorder records one inventory request.
type MetricsRecorder interface {
	RecordRequest(ctx context.Context, strategy, outcome string, latency time.Duration) error
}

// NopRecorder discards everything; used when metrics are disabled.
type NopRecorder struct{}

func (NopRecorder) RecordRequest(context.Context, string, string, time.Duration) error { return nil }

// CloudWatchRecorder publishes request count and latency to a namespace.
type CloudWatchRecorder struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

// NewCloudWatchRecorder returns a recorder bound to a namespace.
func NewCloudWatchRecorder(cw CloudWatchAPI, namespace string) *CloudWatchRecorder {
	return &CloudWatchRecorder{
		CloudWatch: cw,
		Namespace:  namespace,
		nowFunc:    time.Now,
	}
}

// RecordRequest sends both datums in a single PutMetricData call.
func (r *CloudWatchRecorder) RecordRequest(ctx context.Context, strategy, outcome string, latency time.Duration) error {
	now := r.nowFunc().UTC()
	dims := []cwtypes.Dimension{
		{Name: sdkaws.String("Strategy"), Value: sdkaws.String(strategy)},
		{Name: sdkaws.String("Outcome"), Value: sdkaws.String(outcome)},
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(r.Namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(metricRequests),
				Dimensions: dims,
				Timestamp:  sdkaws.Time(now),
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(1),
			},
			{
				MetricName: sdkaws.String(metricLatency),
				Dimensions: dims,
				Timestamp:  sdkaws.Time(now),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Value:      sdkaws.Float64(float64(latency) / float64(time.Millisecond)),
			},
		},
	}

	if _, err := r.CloudWatch.PutMetricData(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("put metric data (%s): %w", apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
