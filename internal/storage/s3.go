package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"athenaq/internal/config"
)

var _ ObjectStore = (*S3Store)(nil)

// S3API is the subset of the S3 client used for uploads.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3PresignAPI is the subset of the S3 presign client used for read URLs.
type S3PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store writes objects to S3 or an S3-compatible endpoint.
type S3Store struct {
	client    S3API
	presigner S3PresignAPI
}

// NewS3Store creates a store from the shared AWS config. A custom endpoint,
// path-style addressing and static keys from cfg override the defaults.
func NewS3Store(awsCfg aws.Config, cfg *config.StorageConfig) *S3Store {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg == nil {
			return
		}
		if cfg.S3Endpoint != nil {
			endpoint := *cfg.S3Endpoint
			if !strings.Contains(endpoint, "://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
		if cfg.HasStaticS3Credentials() {
			o.Credentials = credentials.NewStaticCredentialsProvider(*cfg.S3KeyID, *cfg.S3Secret, "")
		}
	})
	return NewS3StoreWithClient(client, s3.NewPresignClient(client))
}

// NewS3StoreWithClient wraps existing clients.
func NewS3StoreWithClient(client S3API, presigner S3PresignAPI) *S3Store {
	return &S3Store{client: client, presigner: presigner}
}

// Put uploads body as the object bucket/key.
func (s *S3Store) Put(ctx context.Context, bucket, key, body string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          strings.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(ContentType),
	})
	if err != nil {
		return fmt.Errorf("put S3 object s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// PresignGet generates a presigned GET URL for bucket/key.
func (s *S3Store) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if s.presigner == nil {
		return "", fmt.Errorf("S3 presigning is not configured")
	}
	result, err := s.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", fmt.Errorf("presign GetObject for s3://%s/%s: %w", bucket, key, err)
	}
	return result.URL, nil
}
