package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athenaq/internal/config"
)

type mockS3 struct {
	putFn     func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	presignFn func(ctx context.Context, in *s3.GetObjectInput) (*v4.PresignedHTTPRequest, error)
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.putFn(ctx, in)
}

func (m *mockS3) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return m.presignFn(ctx, in)
}

func TestS3Store_Put(t *testing.T) {
	var gotBucket, gotKey, gotBody, gotType string
	m := &mockS3{putFn: func(_ context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotBucket = aws.ToString(in.Bucket)
		gotKey = aws.ToString(in.Key)
		gotType = aws.ToString(in.ContentType)
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		gotBody = string(b)
		return &s3.PutObjectOutput{}, nil
	}}

	store := NewS3StoreWithClient(m, m)
	err := store.Put(context.Background(), "exports", "daily/out.tsv", "1\t2\n3\t4\n")
	require.NoError(t, err)

	assert.Equal(t, "exports", gotBucket)
	assert.Equal(t, "daily/out.tsv", gotKey)
	assert.Equal(t, "1\t2\n3\t4\n", gotBody)
	assert.Equal(t, ContentType, gotType)
}

func TestS3Store_PutError(t *testing.T) {
	m := &mockS3{putFn: func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("AccessDenied")
	}}

	err := NewS3StoreWithClient(m, m).Put(context.Background(), "b", "k", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://b/k")
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestS3Store_PresignGet(t *testing.T) {
	m := &mockS3{presignFn: func(_ context.Context, in *s3.GetObjectInput) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://example.com/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)}, nil
	}}

	url, err := NewS3StoreWithClient(m, m).PresignGet(context.Background(), "b", "k.tsv", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b/k.tsv", url)
}

func TestS3Store_PresignGetWithoutPresigner(t *testing.T) {
	_, err := NewS3StoreWithClient(&mockS3{}, nil).PresignGet(context.Background(), "b", "k", time.Minute)
	require.Error(t, err)
}

func TestNewS3Store_PresignsAgainstCustomEndpoint(t *testing.T) {
	keyID, secret, endpoint := "AKID", "SECRET", "s3.example.com"
	cfg := &config.StorageConfig{
		S3KeyID:        &keyID,
		S3Secret:       &secret,
		S3Endpoint:     &endpoint,
		S3UsePathStyle: true,
	}

	store := NewS3Store(aws.Config{Region: "us-east-1"}, cfg)
	url, err := store.PresignGet(context.Background(), "results", "q.tsv", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "https://s3.example.com/results/q.tsv")
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := Open(context.Background(), Scheme("ftp"), aws.Config{}, &config.StorageConfig{})
	require.Error(t, err)
}

func TestOpen_AzureRequiresCredentials(t *testing.T) {
	_, err := Open(context.Background(), SchemeAzure, aws.Config{}, &config.StorageConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_ACCOUNT_NAME")
}
