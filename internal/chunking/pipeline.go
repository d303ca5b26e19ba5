// Package chunking turns a repository document into page-level chunks with
// title and content vectors.
//
// This is the local ingestion path. Bulk ingestion normally runs through the
// pull-pipeline index, which chunks and vectorizes inside the search service.
package chunking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bull/foundry-sharepoint/internal/analysis"
	"github.com/bull/foundry-sharepoint/internal/document"
	"github.com/bull/foundry-sharepoint/internal/sharepoint"
)

// Fetcher downloads document content.
type Fetcher interface {
	Fetch(ctx context.Context, ref document.Reference, privilege sharepoint.Privilege) ([]byte, error)
}

// Analyzer extracts page text from document content.
type Analyzer interface {
	Analyze(ctx context.Context, content []byte, modelID string) ([]analysis.Page, error)
}

// Vectorizer embeds text.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) ([]float32, error)
}

// Pipeline orchestrates fetch, analysis and vectorization for one document.
type Pipeline struct {
	fetcher    Fetcher
	analyzer   Analyzer
	vectorizer Vectorizer
	modelID    string
	logger     *slog.Logger
	newID      func() string
}

// NewPipeline creates a chunking pipeline using the prebuilt layout model.
func NewPipeline(fetcher Fetcher, analyzer Analyzer, vectorizer Vectorizer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher:    fetcher,
		analyzer:   analyzer,
		vectorizer: vectorizer,
		modelID:    analysis.DefaultModelID,
		logger:     logger,
		newID:      func() string { return uuid.New().String() },
	}
}

// Chunk produces one chunk per analyzed page. Any failure aborts the whole
// document; no partial chunk set is returned.
func (p *Pipeline) Chunk(ctx context.Context, ref document.Reference) ([]document.Chunk, error) {
	start := time.Now()

	chunks, err := p.chunk(ctx, ref)
	if err != nil {
		p.logger.Error("Failed to chunk document", "name", ref.Name, "url", ref.URL, "error", err)
		return nil, err
	}

	p.logger.Info("Chunked document",
		"name", ref.Name,
		"chunks", len(chunks),
		"duration", time.Since(start),
	)
	return chunks, nil
}

func (p *Pipeline) chunk(ctx context.Context, ref document.Reference) ([]document.Chunk, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	titleVector, err := p.vectorizer.Vectorize(ctx, ref.Title)
	if err != nil {
		return nil, fmt.Errorf("title vector: %w", err)
	}

	content, err := p.fetcher.Fetch(ctx, ref, sharepoint.MostPrivileged)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	pages, err := p.analyzer.Analyze(ctx, content, p.modelID)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	p.logger.Debug("Analyzed document", "name", ref.Name, "pages", len(pages))

	chunks := make([]document.Chunk, 0, len(pages))
	for _, page := range pages {
		text := page.Text()
		contentVector, err := p.vectorizer.Vectorize(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("content vector page %d: %w", page.PageNumber, err)
		}

		chunks = append(chunks, document.Chunk{
			ID:            p.newID(),
			URL:           ref.URL,
			Name:          ref.Name,
			ItemID:        ref.ItemID,
			Title:         ref.Title,
			DriveID:       ref.DriveID,
			PageNumber:    page.PageNumber,
			SecurityData:  ref.SecurityData,
			Content:       text,
			TitleVector:   titleVector,
			ContentVector: contentVector,
		})
	}

	return chunks, nil
}
