package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"athenaq/internal/config"
)

var _ ObjectStore = (*GCSStore)(nil)

// GCSStore writes objects to Google Cloud Storage.
type GCSStore struct {
	client *gcs.Client
}

// NewGCSStore creates a GCS store. Without a key file the client falls back
// to application default credentials.
func NewGCSStore(ctx context.Context, cfg *config.StorageConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg != nil && cfg.GCSKeyFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.GCSKeyFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

// Put uploads body as the object bucket/key.
func (s *GCSStore) Put(ctx context.Context, bucket, key, body string) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = ContentType
	if _, err := io.WriteString(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write GCS object gs://%s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close GCS object gs://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// PresignGet generates a signed GET URL for bucket/key.
func (s *GCSStore) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	signedURL, err := s.client.Bucket(bucket).SignedURL(key, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(expiry),
	})
	if err != nil {
		return "", fmt.Errorf("sign GetObject for gs://%s/%s: %w", bucket, key, err)
	}
	return signedURL, nil
}
