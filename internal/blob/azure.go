package blob

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	sdkblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/bull/foundry-sharepoint/internal/config"
)

// DefaultRetry is the Azure storage retry policy: five attempts, 30s base delay.
var DefaultRetry = policy.RetryOptions{
	MaxRetries:    maxRetries,
	RetryDelay:    initialInterval,
	MaxRetryDelay: 2 * time.Minute,
}

// AzureStore writes to a container in an Azure storage account.
type AzureStore struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// NewAzureStore creates a client from the storage account connection string.
func NewAzureStore(settings config.AzureBlobSettings, logger *slog.Logger) (*AzureStore, error) {
	return newAzureStore(settings, DefaultRetry, logger)
}

func newAzureStore(settings config.AzureBlobSettings, retry policy.RetryOptions, logger *slog.Logger) (*AzureStore, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("azure blob store: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := azblob.NewClientFromConnectionString(settings.ConnectionString, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{Retry: retry},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client for %s: %w", settings.AccountName, err)
	}

	return &AzureStore{
		client:    client,
		container: settings.Container,
		logger:    logger,
	}, nil
}

// Container returns the container this store writes to.
func (s *AzureStore) Container() string { return s.container }

// EnsureContainer creates the container if it does not exist.
func (s *AzureStore) EnsureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	switch {
	case err == nil:
		s.logger.Info("Created container", "container", s.container)
		return nil
	case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
		return nil
	default:
		return fmt.Errorf("%w: create container %s: %v", ErrStoreWriteFailed, s.container, err)
	}
}

// Put uploads data as a block blob under key, replacing any existing blob.
func (s *AzureStore) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	if err := s.EnsureContainer(ctx); err != nil {
		return err
	}

	meta := make(map[string]*string, len(metadata))
	for k, v := range metadata {
		meta[k] = to.Ptr(v)
	}

	_, err := s.client.UploadBuffer(ctx, s.container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &sdkblob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
		Metadata:    meta,
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrStoreWriteFailed, key, err)
	}

	s.logger.Info("Stored blob", "container", s.container, "key", key, "bytes", len(data), "content_type", contentType)
	return nil
}

// Delete removes the blob under key with its snapshots. It returns an error
// wrapping ErrBlobNotFound when the blob or container does not exist.
func (s *AzureStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, key, &azblob.DeleteBlobOptions{
		DeleteSnapshots: to.Ptr(azblob.DeleteSnapshotsOptionTypeInclude),
	})
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return fmt.Errorf("%w: delete %s: %v", ErrStoreWriteFailed, key, err)
	}

	s.logger.Info("Deleted blob", "container", s.container, "key", key)
	return nil
}

// Health checks that the storage account answers within five seconds. A
// missing container is healthy; Put creates it.
func (s *AzureStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := s.client.ServiceClient().NewContainerClient(s.container).GetProperties(ctx, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerNotFound) {
		return fmt.Errorf("azure blob health check failed: %w", err)
	}
	return nil
}
