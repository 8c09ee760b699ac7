// Package query submits queries to AWS Athena, waits for them to finish and
// reads their paginated results back as rows of strings.
package query

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"

	"athenaq/internal/config"
)

// Compile-time check: the SDK client satisfies API.
var _ API = (*athena.Client)(nil)

// API is the subset of the Athena client a Session calls.
type API interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// ResultPaginator walks the pages of one query's results.
// *athena.GetQueryResultsPaginator implements it.
type ResultPaginator interface {
	HasMorePages() bool
	NextPage(ctx context.Context, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// LoadAWSConfig resolves region and credentials through the SDK default
// chain. A region set in cfg overrides the environment.
func LoadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}

// NewClient creates an Athena client from a resolved AWS config.
func NewClient(awsCfg aws.Config) *athena.Client {
	return athena.NewFromConfig(awsCfg)
}
