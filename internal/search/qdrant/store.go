// Package qdrant implements the search backend on a Qdrant collection per
// index. It supports the pre-vectorized topology; pull-pipeline resources
// (data sources, skillsets, indexers) have no Qdrant equivalent.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/bull/foundry-sharepoint/internal/search"
)

var ErrQdrantUnreachable = errors.New("qdrant server unreachable")

// Store wraps the Qdrant client with connection management and health checks.
type Store struct {
	client *qc.Client
	host   string
	port   int
	logger *slog.Logger
}

var _ search.Backend = (*Store)(nil)

// NewStore creates a Qdrant client with health validation.
// It retries the health check on startup and fails fast if Qdrant is unreachable.
func NewStore(host string, port int, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := qc.NewClient(&qc.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &Store{client: client, host: host, port: port, logger: logger}

	if err := store.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return store, nil
}

// healthCheckWithRetry performs health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Store) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error { return s.Health(ctx) }, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (s *Store) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// Close closes the Qdrant client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// GetIndex reports whether the collection exists. Only the name is populated;
// Qdrant does not keep the source topology.
func (s *Store) GetIndex(ctx context.Context, name string) (*search.Index, error) {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection %s: %w", name, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: collection %s", search.ErrNotFound, name)
	}
	return &search.Index{Name: name}, nil
}

// CreateIndex creates a collection with one named vector per vector field
// and payload indexes for every filterable field.
func (s *Store) CreateIndex(ctx context.Context, index *search.Index) error {
	cfg, err := CollectionConfig(index)
	if err != nil {
		return err
	}

	err = s.client.CreateCollection(ctx, &qc.CreateCollection{
		CollectionName: index.Name,
		VectorsConfig:  qc.NewVectorsConfigMap(cfg.Vectors),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", index.Name, err)
	}

	for _, pi := range cfg.PayloadIndexes {
		_, err := s.client.CreateFieldIndex(ctx, &qc.CreateFieldIndexCollection{
			CollectionName: index.Name,
			FieldName:      pi.Field,
			FieldType:      pi.Type.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for field %s: %w", pi.Field, err)
		}
	}

	s.logger.Info("Created collection", "collection", index.Name,
		"vectors", len(cfg.Vectors), "payload_indexes", len(cfg.PayloadIndexes))
	return nil
}

// DeleteIndex drops the collection.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	if _, err := s.GetIndex(ctx, name); err != nil {
		return err
	}
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	return nil
}

func unsupported(kind string) error {
	return fmt.Errorf("%w: %s", search.ErrUnsupported, kind)
}

// CreateDataSource is not supported.
func (s *Store) CreateDataSource(context.Context, *search.DataSource) error {
	return unsupported("data sources")
}

// DeleteDataSource is not supported.
func (s *Store) DeleteDataSource(context.Context, string) error {
	return unsupported("data sources")
}

// CreateSkillset is not supported.
func (s *Store) CreateSkillset(context.Context, *search.Skillset) error {
	return unsupported("skillsets")
}

// DeleteSkillset is not supported.
func (s *Store) DeleteSkillset(context.Context, string) error {
	return unsupported("skillsets")
}

// CreateIndexer is not supported.
func (s *Store) CreateIndexer(context.Context, *search.Indexer) error {
	return unsupported("indexers")
}

// DeleteIndexer is not supported.
func (s *Store) DeleteIndexer(context.Context, string) error {
	return unsupported("indexers")
}
