//go:build integration

package qdrant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/foundry-sharepoint/internal/document"
	"github.com/bull/foundry-sharepoint/internal/search"
)

// setupTestStore creates a collection with the pre-vectorized topology.
// Skips test if Qdrant is not running.
func setupTestStore(t *testing.T) (*Store, string) {
	store, err := NewStore("localhost", 6334, nil)
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}

	name := "test-" + uuid.New().String()
	ix := search.NewIndex(name)
	search.BuildPreVectorized(ix)
	require.NoError(t, store.CreateIndex(context.Background(), ix), "Failed to create collection")

	t.Cleanup(func() {
		_ = store.DeleteIndex(context.Background(), name)
		store.Close()
	})
	return store, name
}

func testChunk(url string, page int) document.Chunk {
	vector := make([]float32, document.VectorDimension)
	for i := range vector {
		vector[i] = 0.1
	}
	return document.Chunk{
		ID:            uuid.New().String(),
		URL:           url,
		Name:          "a.pdf",
		PageNumber:    page,
		Content:       "page text",
		TitleVector:   vector,
		ContentVector: vector,
	}
}

func TestUploadFindDeleteRoundTrip(t *testing.T) {
	store, name := setupTestStore(t)
	ctx := context.Background()

	url := "https://contoso.sharepoint.com/sites/hr/a.pdf"
	docs := []map[string]any{
		testChunk(url, 1).Fields(),
		testChunk(url, 2).Fields(),
		testChunk("https://contoso.sharepoint.com/sites/hr/other.pdf", 1).Fields(),
	}

	results, err := store.Upload(ctx, name, document.FieldID, docs)
	require.NoError(t, err)
	assert.Empty(t, search.FailedActions(results))

	keys, err := store.FindKeys(ctx, name, document.FieldID, document.FieldURL, url)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{docs[0][document.FieldID].(string), docs[1][document.FieldID].(string)}, keys)

	_, err = store.DeleteByKey(ctx, name, document.FieldID, keys)
	require.NoError(t, err)

	keys, err = store.FindKeys(ctx, name, document.FieldID, document.FieldURL, url)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestGetAndDeleteIndex(t *testing.T) {
	store, name := setupTestStore(t)
	ctx := context.Background()

	ix, err := store.GetIndex(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, name, ix.Name)

	require.NoError(t, store.DeleteIndex(ctx, name))
	_, err = store.GetIndex(ctx, name)
	assert.ErrorIs(t, err, search.ErrNotFound)
	assert.ErrorIs(t, store.DeleteIndex(ctx, name), search.ErrNotFound)
}

func TestPullPipelineResourcesUnsupported(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.CreateIndexer(ctx, search.NewIndexer("x")), search.ErrUnsupported)
	assert.ErrorIs(t, store.DeleteSkillset(ctx, search.SkillsetName), search.ErrUnsupported)
}
