package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

type secretGetter interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// KeyVaultProvider reads the latest version of each secret from Azure Key Vault.
type KeyVaultProvider struct {
	client secretGetter
	logger *slog.Logger
}

// NewKeyVaultProvider authenticates with the default Azure credential chain
// (environment, workload identity, managed identity, CLI).
func NewKeyVaultProvider(vaultURL string, logger *slog.Logger) (*KeyVaultProvider, error) {
	if strings.TrimSpace(vaultURL) == "" {
		return nil, errors.New("key vault url not set")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create key vault client: %w", err)
	}
	return newKeyVaultProvider(client, logger), nil
}

func newKeyVaultProvider(client secretGetter, logger *slog.Logger) *KeyVaultProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeyVaultProvider{client: client, logger: logger}
}

// GetSecret implements Provider.
func (k *KeyVaultProvider) GetSecret(ctx context.Context, name string) (string, error) {
	resp, err := k.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("read secret %s: %w", name, err)
	}
	if resp.Value == nil || strings.TrimSpace(*resp.Value) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptySecret, name)
	}

	k.logger.Debug("Resolved secret", "name", name)
	return *resp.Value, nil
}
