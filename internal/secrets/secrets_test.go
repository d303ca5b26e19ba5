package secrets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVaultServer(t *testing.T, secrets map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v1/sys/health" {
			_, _ = w.Write([]byte(`{"initialized":true,"sealed":false,"standby":false,"version":"1.15.0"}`))
			return
		}
		if r.Header.Get("X-Vault-Token") != "test-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		const prefix = "/v1/kv/data/fspk/"
		if len(r.URL.Path) <= len(prefix) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		value, ok := secrets[r.URL.Path[len(prefix):]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"data":{"value":"` + value + `"},` +
			`"metadata":{"created_time":"2025-01-01T00:00:00Z","deletion_time":"","destroyed":false,"version":1}}}`))
	}))
}

func TestVaultProviderGetSecret(t *testing.T) {
	server := newVaultServer(t, map[string]string{
		"search-api-url": "https://search.example.net",
		"empty":          "",
	})
	defer server.Close()

	p, err := NewVaultProvider(VaultConfig{Address: server.URL, Token: "test-token", Mount: "kv", Prefix: "fspk"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	value, err := p.GetSecret(ctx, "search-api-url")
	require.NoError(t, err)
	assert.Equal(t, "https://search.example.net", value)

	_, err = p.GetSecret(ctx, "missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = p.GetSecret(ctx, "empty")
	assert.ErrorIs(t, err, ErrEmptySecret)

	assert.NoError(t, p.Health(ctx))
}

func TestVaultProviderSealed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"initialized":true,"sealed":true,"standby":false}`))
	}))
	defer server.Close()

	p, err := NewVaultProvider(VaultConfig{Address: server.URL + "/v1", Token: "t"}, nil)
	require.NoError(t, err)

	err = p.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sealed=true")
}

func TestVaultProviderRejectsBadToken(t *testing.T) {
	server := newVaultServer(t, map[string]string{"a": "b"})
	defer server.Close()

	p, err := NewVaultProvider(VaultConfig{Address: server.URL + "/", Token: "wrong", Mount: "kv", Prefix: "fspk"}, nil)
	require.NoError(t, err)

	_, err = p.GetSecret(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

type fakeKeyVault map[string]*string

func (f fakeKeyVault) GetSecret(_ context.Context, name, version string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	if version != "" {
		return azsecrets.GetSecretResponse{}, errors.New("only the latest version is read")
	}
	if name == "throttled" {
		return azsecrets.GetSecretResponse{}, &azcore.ResponseError{StatusCode: http.StatusTooManyRequests, ErrorCode: "Throttled"}
	}
	value, ok := f[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, &azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "SecretNotFound"}
	}
	return azsecrets.GetSecretResponse{Secret: azsecrets.Secret{Value: value}}, nil
}

func TestKeyVaultProviderGetSecret(t *testing.T) {
	p := newKeyVaultProvider(fakeKeyVault{
		"search-admin-key": to.Ptr("admin"),
		"blank":            to.Ptr(" "),
		"unset":            nil,
	}, nil)
	ctx := context.Background()

	value, err := p.GetSecret(ctx, "search-admin-key")
	require.NoError(t, err)
	assert.Equal(t, "admin", value)

	_, err = p.GetSecret(ctx, "missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = p.GetSecret(ctx, "blank")
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = p.GetSecret(ctx, "unset")
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = p.GetSecret(ctx, "throttled")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSecretNotFound)
	var respErr *azcore.ResponseError
	assert.ErrorAs(t, err, &respErr)
}

func TestNewKeyVaultProviderRequiresURL(t *testing.T) {
	_, err := NewKeyVaultProvider(" ", nil)
	assert.Error(t, err)
}

func TestEnvProvider(t *testing.T) {
	env := map[string]string{"SEARCH_ADMIN_KEY": "k", "BLANK": "  "}
	p := &EnvProvider{lookup: func(k string) (string, bool) { v, ok := env[k]; return v, ok }}

	value, err := p.GetSecret(context.Background(), "search-admin-key")
	require.NoError(t, err)
	assert.Equal(t, "k", value)

	_, err = p.GetSecret(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = p.GetSecret(context.Background(), "blank")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "FOUNDRY_OPEN_AI_ENDPOINT", EnvKey("foundry-open-ai-endpoint"))
}
