package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bull/foundry-sharepoint/internal/config"
)

// Retry policy for every object store call: five attempts, 30s base interval.
const (
	maxRetries      = 4
	initialInterval = 30 * time.Second
)

// Store wraps a minio client bound to a single container. It serves local and
// qdrant deployments, which have no pull pipeline.
type Store struct {
	client    *minio.Client
	container string
	logger    *slog.Logger
	newPolicy func() backoff.BackOff
}

// NewStore creates a client for the object store in settings. The endpoint
// may carry an http:// or https:// prefix; https forces TLS.
func NewStore(settings config.BlobStorageSettings, logger *slog.Logger) (*Store, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	endpoint, secure := splitEndpoint(settings.Endpoint)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKeyID, settings.SecretAccessKey, ""),
		Secure: secure || settings.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Store{
		client:    client,
		container: settings.Container,
		logger:    logger,
		newPolicy: defaultPolicy,
	}, nil
}

func splitEndpoint(endpoint string) (string, bool) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		return rest, true
	}
	return strings.TrimPrefix(endpoint, "http://"), false
}

func defaultPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, maxRetries)
}

// Container returns the bucket this store writes to.
func (s *Store) Container() string { return s.container }

// retry runs op under the retry policy. Errors that retrying cannot fix stop
// immediately.
func (s *Store) retry(ctx context.Context, name string, op func() error) error {
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		s.logger.Warn("Object store call failed, retrying", "op", name, "attempt", attempt, "error", err)
		return err
	}, backoff.WithContext(s.newPolicy(), ctx))
}

// retryable reports whether err may succeed on a later attempt.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "InvalidBucketName":
		return false
	}
	return true
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// EnsureContainer creates the container if it does not exist.
func (s *Store) EnsureContainer(ctx context.Context) error {
	var exists bool
	err := s.retry(ctx, "bucket exists", func() error {
		var err error
		exists, err = s.client.BucketExists(ctx, s.container)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: check container %s: %v", ErrStoreWriteFailed, s.container, err)
	}
	if exists {
		return nil
	}

	err = s.retry(ctx, "make bucket", func() error {
		return s.client.MakeBucket(ctx, s.container, minio.MakeBucketOptions{})
	})
	if err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
			return nil
		}
		return fmt.Errorf("%w: create container %s: %v", ErrStoreWriteFailed, s.container, err)
	}
	s.logger.Info("Created container", "container", s.container)
	return nil
}

// Put writes data under key, replacing any existing blob, and creates the
// container first if needed.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	if err := s.EnsureContainer(ctx); err != nil {
		return err
	}

	err := s.retry(ctx, "put object", func() error {
		_, err := s.client.PutObject(ctx, s.container, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: metadata,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrStoreWriteFailed, key, err)
	}

	s.logger.Info("Stored blob", "container", s.container, "key", key, "bytes", len(data), "content_type", contentType)
	return nil
}

// Delete removes the blob under key. It returns an error wrapping
// ErrBlobNotFound when the blob does not exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.retry(ctx, "stat object", func() error {
		_, err := s.client.StatObject(ctx, s.container, key, minio.StatObjectOptions{})
		return err
	})
	if err != nil {
		if isNotFound(err) || minio.ToErrorResponse(err).Code == "NoSuchBucket" {
			return fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return fmt.Errorf("stat %s: %w", key, err)
	}

	err = s.retry(ctx, "remove object", func() error {
		return s.client.RemoveObject(ctx, s.container, key, minio.RemoveObjectOptions{})
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStoreWriteFailed, key, err)
	}

	s.logger.Info("Deleted blob", "container", s.container, "key", key)
	return nil
}

// Health checks that the object store answers within five seconds.
func (s *Store) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := s.client.BucketExists(ctx, s.container); err != nil {
		return fmt.Errorf("object store health check failed: %w", err)
	}
	return nil
}
