// Package storage persists query results to cloud object storage.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"athenaq/internal/config"
)

// ContentType is attached to uploaded result objects.
const ContentType = "text/tab-separated-values; charset=utf-8"

// ObjectStore uploads result text and hands out time-limited read URLs.
// Implementations: S3Store, GCSStore, AzureStore.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key, body string) error
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// Open creates the ObjectStore for a URI scheme. awsCfg is only consulted
// for S3 and carries the region and credential chain already resolved for
// the query client.
func Open(ctx context.Context, scheme Scheme, awsCfg aws.Config, cfg *config.StorageConfig) (ObjectStore, error) {
	switch scheme {
	case SchemeS3:
		return NewS3Store(awsCfg, cfg), nil
	case SchemeGCS:
		return NewGCSStore(ctx, cfg)
	case SchemeAzure:
		return NewAzureStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", scheme)
	}
}
