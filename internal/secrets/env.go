package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider resolves secrets from environment variables for local
// development. The secret "search-api-url" is read from SEARCH_API_URL.
type EnvProvider struct {
	lookup func(string) (string, bool)
}

// NewEnvProvider returns a provider backed by os.LookupEnv.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

// EnvKey converts a secret name to its environment variable name.
func EnvKey(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// GetSecret implements Provider.
func (e *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	value, ok := e.lookup(EnvKey(name))
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptySecret, name)
	}
	return value, nil
}

// Health always succeeds.
func (e *EnvProvider) Health(context.Context) error {
	return nil
}
