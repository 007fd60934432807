package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

// AWSClients bundles all service clients for convenience.
type AWSClients struct {
	CloudWatch CloudWatchAPI
}

// NewAWSClients loads AWS config and returns concrete service clients that implement our interfaces.
func NewAWSClients(ctx context.Context, region, endpointOverride string) (*AWSClients, error) {
	cfg, err := LoadAWSConfig(ctx, region, endpointOverride)
	if err != nil {
		return nil, err
	}

	return &AWSClients{
		CloudWatch: cloudwatch.NewFromConfig(cfg),
	}, nil
}
