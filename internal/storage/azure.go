package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"athenaq/internal/config"
)

var _ ObjectStore = (*AzureStore)(nil)

// AzureStore writes blobs to Azure Blob Storage. Buckets map to containers.
// Only account-key authentication is supported.
type AzureStore struct {
	client *azblob.Client
}

// NewAzureStore creates a store from shared-key credentials.
func NewAzureStore(cfg *config.StorageConfig) (*AzureStore, error) {
	if cfg == nil || !cfg.HasAzureConfig() {
		return nil, fmt.Errorf("AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY are required for az:// destinations")
	}

	sharedKeyCred, err := azblob.NewSharedKeyCredential(cfg.AzureAccountName, cfg.AzureAccountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AzureAccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, sharedKeyCred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzureStore{client: client}, nil
}

// Put uploads body as the blob container/key.
func (s *AzureStore) Put(ctx context.Context, container, key, body string) error {
	contentType := ContentType
	_, err := s.client.UploadBuffer(ctx, container, key, []byte(body), &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("upload Azure blob %s/%s: %w", container, key, err)
	}
	return nil
}

// PresignGet generates a read-only SAS URL for container/key.
func (s *AzureStore) PresignGet(_ context.Context, container, key string, expiry time.Duration) (string, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(container).NewBlobClient(key)
	sasURL, err := blobClient.GetSASURL(sas.BlobPermissions{Read: true}, time.Now().Add(expiry), nil)
	if err != nil {
		return "", fmt.Errorf("generate SAS URL for %s/%s: %w", container, key, err)
	}
	return sasURL, nil
}
