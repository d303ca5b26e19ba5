package search

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrIndexOperationFailed = errors.New("index operation failed")
	ErrUnsupported          = errors.New("operation not supported by backend")
	ErrEmptyKeySet          = errors.New("delete requires at least one key")
)

// RemoteError carries a non-success response from the search service.
type RemoteError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Is matches ErrIndexOperationFailed, and ErrNotFound for 404 responses.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrIndexOperationFailed:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
