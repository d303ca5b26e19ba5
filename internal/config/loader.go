package config

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/bull/foundry-sharepoint/internal/secrets"
)

// Secret names in the secret store.
const (
	SecretSearchURL                    = "search-api-url"
	SecretSearchAdminKey               = "search-admin-key"
	SecretStorageResourceID            = "storage-account-resource-id"
	SecretFoundryAccountKey            = "foundry-account-key"
	SecretEmbeddingModel               = "embedding-model"
	SecretOpenAIEndpoint               = "foundry-open-ai-endpoint"
	SecretDocumentIntelligenceEndpoint = "foundry-document-intelligence-endpoint"
	SecretTenantID                     = "tenant-id"
	SecretClientID                     = "auth-client-id"
	SecretClientSecret                 = "auth-client-secret"
	SecretStorageAccountName           = "storage-account-name"
	SecretStorageConnectionString      = "storage-account-connection-string"
	SecretStorageEndpoint              = "storage-endpoint"
	SecretStorageAccessKey             = "storage-access-key"
	SecretStorageSecretKey             = "storage-secret-key"
)

// Settings are the validated, read-only bundles shared for the process lifetime.
type Settings struct {
	Foundry   FoundrySettings
	Search    *SearchSettings    // azure backend only
	AzureBlob *AzureBlobSettings // azure backend only
	Blob      *BlobStorageSettings
	Graph     GraphSettings
}

// RequiredSecrets lists the secrets needed for the given bootstrap configuration.
func RequiredSecrets(boot *Bootstrap) []string {
	names := []string{
		SecretFoundryAccountKey,
		SecretEmbeddingModel,
		SecretOpenAIEndpoint,
		SecretDocumentIntelligenceEndpoint,
		SecretTenantID,
		SecretClientID,
		SecretClientSecret,
	}
	if boot.SearchBackend == "azure" {
		return append(names,
			SecretSearchURL, SecretSearchAdminKey, SecretStorageResourceID,
			SecretStorageAccountName, SecretStorageConnectionString)
	}
	return append(names, SecretStorageEndpoint, SecretStorageAccessKey, SecretStorageSecretKey)
}

// LoadSettings fetches all required secrets concurrently and builds the
// settings bundles. Every failed secret is reported in the returned error.
func LoadSettings(ctx context.Context, provider secrets.Provider, boot *Bootstrap) (*Settings, error) {
	values, err := fetchAll(ctx, provider, RequiredSecrets(boot))
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Foundry: FoundrySettings{
			AccountKey:                     values[SecretFoundryAccountKey],
			OpenAIEndpoint:                 values[SecretOpenAIEndpoint],
			EmbeddingModel:                 values[SecretEmbeddingModel],
			EmbeddingAPIVersion:            boot.EmbeddingAPIVersion,
			DocumentIntelligenceEndpoint:   values[SecretDocumentIntelligenceEndpoint],
			DocumentIntelligenceAPIVersion: boot.DocumentIntelligenceAPIVersion,
		},
		Graph: GraphSettings{
			TenantID:     values[SecretTenantID],
			ClientID:     values[SecretClientID],
			ClientSecret: values[SecretClientSecret],
		},
	}

	errs := multierr.Combine(s.Foundry.Validate(), s.Graph.Validate())

	if boot.SearchBackend == "azure" {
		s.Search = &SearchSettings{
			Endpoint:          values[SecretSearchURL],
			AdminKey:          values[SecretSearchAdminKey],
			StorageResourceID: values[SecretStorageResourceID],
			APIVersion:        boot.SearchAPIVersion,
		}
		s.AzureBlob = &AzureBlobSettings{
			AccountName:      values[SecretStorageAccountName],
			ConnectionString: values[SecretStorageConnectionString],
			Container:        boot.BlobContainer,
		}
		errs = multierr.Append(errs, multierr.Combine(s.Search.Validate(), s.AzureBlob.Validate()))
	} else {
		s.Blob = &BlobStorageSettings{
			Endpoint:        values[SecretStorageEndpoint],
			AccessKeyID:     values[SecretStorageAccessKey],
			SecretAccessKey: values[SecretStorageSecretKey],
			UseSSL:          boot.BlobUseSSL,
			Container:       boot.BlobContainer,
		}
		errs = multierr.Append(errs, s.Blob.Validate())
	}

	if errs != nil {
		return nil, errs
	}
	return s, nil
}

func fetchAll(ctx context.Context, provider secrets.Provider, names []string) (map[string]string, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		errs   error
		values = make(map[string]string, len(names))
	)

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			value, err := provider.GetSecret(ctx, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("could not get %s secret: %w", name, err))
				return
			}
			values[name] = value
		}(name)
	}
	wg.Wait()

	if errs != nil {
		return nil, errs
	}
	return values, nil
}
