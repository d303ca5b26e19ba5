// Package blob stores source documents in an object store container. With
// the azure backend the container lives in the storage account bound by the
// pull-pipeline data source; elsewhere an S3-compatible store is used.
package blob

import "context"

// ObjectStore is a store bound to a single container.
type ObjectStore interface {
	EnsureContainer(ctx context.Context) error
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
	Container() string
}

var (
	_ ObjectStore = (*Store)(nil)
	_ ObjectStore = (*AzureStore)(nil)
)
