// Package secrets resolves named secrets from a secret store.
package secrets

import (
	"context"
	"errors"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrEmptySecret    = errors.New("secret has no value")
)

// Provider returns the value of a named secret. Implementations are safe for
// concurrent use.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}
