// Package ingest keeps the object store and the search indexes consistent
// for a single repository document: upload, local ingestion and deletion.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bull/foundry-sharepoint/internal/blob"
	"github.com/bull/foundry-sharepoint/internal/document"
	"github.com/bull/foundry-sharepoint/internal/metrics"
	"github.com/bull/foundry-sharepoint/internal/search"
	"github.com/bull/foundry-sharepoint/internal/sharepoint"
)

// Operation names used in logs and metrics.
const (
	OpUpload = "upload"
	OpIngest = "ingest"
	OpDelete = "delete"
)

// Fetcher downloads document content.
type Fetcher interface {
	Fetch(ctx context.Context, ref document.Reference, privilege sharepoint.Privilege) ([]byte, error)
}

// Chunker produces the chunks of a document.
type Chunker interface {
	Chunk(ctx context.Context, ref document.Reference) ([]document.Chunk, error)
}

// BlobStore holds uploaded documents. Delete returns an error wrapping
// blob.ErrBlobNotFound when nothing is stored under key.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	Delete(ctx context.Context, key string) error
}

// Options name the indexes each operation targets.
type Options struct {
	// VectorizedIndex receives locally chunked documents.
	VectorizedIndex string
	// PullIndex is fed from the object store; deletes purge it.
	PullIndex string
	// DeleteKeyField is the key field of PullIndex.
	DeleteKeyField string
	// Privilege used to download documents for upload.
	Privilege sharepoint.Privilege
}

// Service runs document operations. The bool-returning methods never
// surface errors; failures are logged.
type Service struct {
	fetcher Fetcher
	chunker Chunker
	blobs   BlobStore
	index   search.Documents
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService wires the operation dependencies. m may be nil.
func NewService(fetcher Fetcher, chunker Chunker, blobs BlobStore, index search.Documents, opts Options, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.VectorizedIndex == "" {
		opts.VectorizedIndex = search.VectorizedIndexName
	}
	if opts.PullIndex == "" {
		opts.PullIndex = search.FoundryIndexName
	}
	if opts.DeleteKeyField == "" {
		opts.DeleteKeyField = search.FieldChunkID
	}
	return &Service{
		fetcher: fetcher,
		chunker: chunker,
		blobs:   blobs,
		index:   index,
		opts:    opts,
		logger:  logger,
		metrics: m,
	}
}

// Upload stores the document in the object store for the pull pipeline.
func (s *Service) Upload(ctx context.Context, ref document.Reference) bool {
	return s.run(OpUpload, ref, func() error { return s.UploadDocument(ctx, ref) })
}

// Ingest chunks and vectorizes the document locally and indexes its chunks.
func (s *Service) Ingest(ctx context.Context, ref document.Reference) bool {
	return s.run(OpIngest, ref, func() error { return s.IngestDocument(ctx, ref) })
}

// Delete removes the stored document and every pull-index entry for its URL.
func (s *Service) Delete(ctx context.Context, ref document.Reference) bool {
	return s.run(OpDelete, ref, func() error { return s.DeleteDocument(ctx, ref) })
}

func (s *Service) run(op string, ref document.Reference, fn func() error) bool {
	start := time.Now()
	err := fn()
	s.metrics.ObserveDocument(op, err == nil, time.Since(start))

	switch {
	case err == nil:
		return true
	case errors.Is(err, blob.ErrBlobNotFound):
		s.logger.Warn("Document not found in object store", "op", op, "name", ref.Name, "url", ref.URL)
	default:
		s.logger.Error("Document operation failed", "op", op, "name", ref.Name, "url", ref.URL, "error", err)
	}
	return false
}

// UploadDocument fetches the document and writes it under its name with
// its metadata and content type.
func (s *Service) UploadDocument(ctx context.Context, ref document.Reference) error {
	if err := ref.Validate(); err != nil {
		return err
	}

	content, err := s.fetcher.Fetch(ctx, ref, s.opts.Privilege)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if len(content) == 0 {
		return fmt.Errorf("fetch %s: %w", ref.Name, ErrEmptyContent)
	}

	metadata := map[string]string{
		document.FieldTitle:   ref.Title,
		document.FieldItemID:  ref.ItemID,
		document.FieldDriveID: ref.DriveID,
		document.FieldURL:     NormalizeURL(ref.URL),
	}
	if err := s.blobs.Put(ctx, ref.Name, content, ContentType(ref.Name), metadata); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	s.logger.Info("Uploaded document", "name", ref.Name, "bytes", len(content))
	return nil
}

// IngestDocument chunks the document and submits every chunk as one batch
// of upload actions. Any failed action fails the whole operation.
func (s *Service) IngestDocument(ctx context.Context, ref document.Reference) error {
	chunks, err := s.chunker.Chunk(ctx, ref)
	if err != nil {
		return fmt.Errorf("chunk: %w", err)
	}

	docs := make([]map[string]any, 0, len(chunks))
	for _, c := range chunks {
		if err := c.CheckDimensions(); err != nil {
			return fmt.Errorf("chunk page %d: %w", c.PageNumber, err)
		}
		c.URL = NormalizeURL(c.URL)
		docs = append(docs, c.Fields())
	}

	results, err := s.index.Upload(ctx, s.opts.VectorizedIndex, document.FieldID, docs)
	if err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	if failed := search.FailedActions(results); len(failed) > 0 {
		for _, f := range failed {
			s.logger.Error("Index action failed", "index", s.opts.VectorizedIndex, "detail", f)
		}
		return fmt.Errorf("%w: %d of %d: %s", ErrBatchFailed, len(failed), len(results), strings.Join(failed, "; "))
	}

	s.logger.Info("Ingested document", "name", ref.Name, "index", s.opts.VectorizedIndex, "chunks", len(chunks))
	return nil
}

// DeleteDocument removes the blob, then the index entries whose URL equals
// the normalized document URL. The index is left untouched if no blob
// existed.
func (s *Service) DeleteDocument(ctx context.Context, ref document.Reference) error {
	if strings.TrimSpace(ref.URL) == "" || strings.TrimSpace(ref.Name) == "" {
		return fmt.Errorf("%w: delete requires name and url", document.ErrInvalidReference)
	}

	if err := s.blobs.Delete(ctx, ref.Name); err != nil {
		return fmt.Errorf("blob delete: %w", err)
	}

	url := NormalizeURL(ref.URL)
	keys, err := s.index.FindKeys(ctx, s.opts.PullIndex, s.opts.DeleteKeyField, document.FieldURL, url)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: %s in %s", ErrOrphanedIndexEntries, url, s.opts.PullIndex)
	}

	results, err := s.index.DeleteByKey(ctx, s.opts.PullIndex, s.opts.DeleteKeyField, keys)
	if err != nil {
		return fmt.Errorf("index delete: %w", err)
	}
	if failed := search.FailedActions(results); len(failed) > 0 {
		return fmt.Errorf("index delete: %w: %s", ErrBatchFailed, strings.Join(failed, "; "))
	}

	s.logger.Info("Deleted document", "name", ref.Name, "index", s.opts.PullIndex, "entries", len(keys))
	return nil
}
