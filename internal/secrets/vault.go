package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// VaultProvider reads secrets from a HashiCorp Vault KV v2 engine.
// Each named secret lives at <mount>/data/<prefix>/<name> under the "value" key.
type VaultProvider struct {
	client *vault.Client
	kv     *vault.KVv2
	prefix string
	logger *slog.Logger
}

// VaultConfig configures a VaultProvider.
type VaultConfig struct {
	Address string // e.g. http://localhost:8200
	Token   string
	Mount   string // KV v2 mount, default "secret"
	Prefix  string // Path under the mount holding one secret per name
}

// NewVaultProvider creates a Vault-backed provider. It does not contact Vault;
// call Health to verify connectivity.
func NewVaultProvider(cfg VaultConfig, logger *slog.Logger) (*VaultProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mount := strings.Trim(cfg.Mount, "/")
	if mount == "" {
		mount = "secret"
	}

	vc := vault.DefaultConfig()
	if vc.Error != nil {
		return nil, fmt.Errorf("vault config: %w", vc.Error)
	}
	vc.Address = strings.TrimSuffix(strings.TrimRight(cfg.Address, "/"), "/v1")
	vc.Timeout = 10 * time.Second

	client, err := vault.NewClient(vc)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &VaultProvider{
		client: client,
		kv:     client.KVv2(mount),
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

// GetSecret reads one secret. A missing path or an empty value is an error.
func (v *VaultProvider) GetSecret(ctx context.Context, name string) (string, error) {
	secret, err := v.kv.Get(ctx, path.Join(v.prefix, name))
	if errors.Is(err, vault.ErrSecretNotFound) {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("read secret %s: %w", name, err)
	}

	value, _ := secret.Data["value"].(string)
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptySecret, name)
	}

	v.logger.Debug("Resolved secret", "name", name)
	return value, nil
}

// Health checks that Vault is reachable, initialized and unsealed.
func (v *VaultProvider) Health(ctx context.Context) error {
	health, err := v.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if !health.Initialized || health.Sealed {
		return fmt.Errorf("vault health check failed: initialized=%t sealed=%t", health.Initialized, health.Sealed)
	}
	return nil
}
