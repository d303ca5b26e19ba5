package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"

	"github.com/bull/foundry-sharepoint/internal/document"
)

// ErrVectorizeFailed wraps every embedding failure.
var ErrVectorizeFailed = errors.New("vectorize failed")

// Vectorizer turns text into a fixed-length embedding vector.
type Vectorizer struct {
	client *Client
	logger *slog.Logger
}

// NewVectorizer creates a Vectorizer. A nil logger uses slog.Default().
func NewVectorizer(client *Client, logger *slog.Logger) *Vectorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vectorizer{client: client, logger: logger}
}

// Vectorize embeds a single text and returns data[0].embedding.
func (v *Vectorizer) Vectorize(ctx context.Context, text string) ([]float32, error) {
	resp, err := v.client.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: openai.EmbeddingModel(v.client.deployment),
	})
	if err != nil {
		v.logger.Error("Embedding request failed", "deployment", v.client.deployment, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrVectorizeFailed, err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: response contained no embeddings", ErrVectorizeFailed)
	}

	vector := toFloat32(resp.Data[0].Embedding)
	if len(vector) != document.VectorDimension {
		return nil, fmt.Errorf("%w: %w: got %d dimensions, expected %d",
			ErrVectorizeFailed, document.ErrDimensionMismatch, len(vector), document.VectorDimension)
	}

	v.logger.Debug("Vectorized text", "chars", len(text), "tokens", resp.Usage.TotalTokens)
	return vector, nil
}

// toFloat32 converts []float64 to []float32.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
