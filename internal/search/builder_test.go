package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/foundry-sharepoint/internal/document"
)

func testDeployment() EmbeddingDeployment {
	return EmbeddingDeployment{
		ResourceURI:  "https://foundry.openai.azure.com",
		DeploymentID: "text-embedding-ada-002",
		ModelName:    "text-embedding-ada-002",
		APIKey:       "key",
	}
}

func fieldByName(t *testing.T, ix *Index, name string) Field {
	t.Helper()
	for _, f := range ix.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %s not found", name)
	return Field{}
}

func TestBuildPreVectorized(t *testing.T) {
	ix := NewIndex("docs-v1")
	BuildPreVectorized(ix)

	vs := ix.VectorSearch
	require.Len(t, vs.Algorithms, 3)
	require.Len(t, vs.Compressions, 2)
	require.Len(t, vs.Profiles, 1)
	assert.Empty(t, vs.Vectorizers)

	cosine, ok := vs.Algorithm(CosineAlgorithmName)
	require.True(t, ok)
	assert.Equal(t, &HNSWParameters{M: 4, EfSearch: 500, EfConstruction: 400, Metric: MetricCosine}, cosine.HNSW)

	hamming, ok := vs.Algorithm(HammingAlgorithmName)
	require.True(t, ok)
	assert.Equal(t, &HNSWParameters{M: 4, EfSearch: 800, EfConstruction: 800, Metric: MetricHamming}, hamming.HNSW)

	knn, ok := vs.Algorithm(ExhaustiveKNNAlgorithmName)
	require.True(t, ok)
	assert.Equal(t, KindExhaustiveKNN, knn.Kind)
	assert.Equal(t, MetricEuclidean, knn.Metric())

	scalar, ok := vs.Compression(ScalarCompressionName)
	require.True(t, ok)
	assert.Equal(t, PreserveOriginals, scalar.Rescoring.RescoreStorageMethod)
	assert.Equal(t, float64(10), scalar.Rescoring.DefaultOversampling)
	assert.Equal(t, "int8", scalar.ScalarParameters.QuantizedDataType)

	binary, ok := vs.Compression(BinaryCompressionName)
	require.True(t, ok)
	assert.Equal(t, DiscardOriginals, binary.Rescoring.RescoreStorageMethod)
	assert.Equal(t, float64(10), binary.Rescoring.DefaultOversampling)

	profile, ok := vs.Profile(ScalarProfileName)
	require.True(t, ok)
	assert.Equal(t, CosineAlgorithmName, profile.Algorithm)
	assert.Equal(t, ScalarCompressionName, profile.Compression)

	// Nine standard fields followed by two vector fields.
	require.Len(t, ix.Fields, 11)
	standard := 0
	for _, f := range ix.Fields {
		if !f.IsVector() {
			standard++
		}
	}
	assert.Equal(t, 9, standard)
	assert.Equal(t, document.FieldID, ix.KeyField())

	itemID := fieldByName(t, ix, document.FieldItemID)
	assert.True(t, *itemID.Filterable && *itemID.Sortable && *itemID.Facetable)

	security := fieldByName(t, ix, document.FieldSecurityData)
	assert.False(t, *security.Searchable)
	assert.True(t, *security.Stored)

	content := fieldByName(t, ix, document.FieldContent)
	assert.True(t, *content.Searchable)
	assert.Equal(t, AnalyzerEnglish, content.Analyzer)

	page := fieldByName(t, ix, document.FieldPageNumber)
	assert.Equal(t, TypeInt32, page.Type)

	titleVector := fieldByName(t, ix, document.FieldTitleVector)
	assert.True(t, *titleVector.Stored)
	assert.Equal(t, document.VectorDimension, titleVector.Dimensions)
	assert.Equal(t, ScalarProfileName, titleVector.VectorSearchProfile)

	contentVector := fieldByName(t, ix, document.FieldContentVector)
	assert.False(t, *contentVector.Stored)
	assert.Equal(t, ScalarProfileName, contentVector.VectorSearchProfile)
}

func TestBuildPullPipeline(t *testing.T) {
	ix := NewIndex(FoundryIndexName)
	BuildPullPipeline(ix, testDeployment())

	require.NotNil(t, ix.Similarity)
	assert.Equal(t, "#Microsoft.Azure.Search.BM25Similarity", ix.Similarity.ODataType)

	require.NotNil(t, ix.Semantic)
	cfg := ix.Semantic.Configurations[0]
	assert.Equal(t, SemanticConfigName, cfg.Name)
	assert.Equal(t, document.FieldTitle, cfg.PrioritizedFields.TitleField.FieldName)
	assert.Equal(t, []FieldRef{{FieldName: FieldChunk}}, cfg.PrioritizedFields.ContentFields)

	vs := ix.VectorSearch
	require.Len(t, vs.Algorithms, 1)
	assert.Empty(t, vs.Compressions)
	require.Len(t, vs.Vectorizers, 1)
	assert.Equal(t, "text-embedding-ada-002", vs.Vectorizers[0].AzureOpenAI.DeploymentID)

	profile, ok := vs.Profile(VectorizableProfileName)
	require.True(t, ok)
	assert.Equal(t, VectorizerName, profile.Vectorizer)
	assert.Empty(t, profile.Compression)

	assert.Equal(t, FieldChunkID, ix.KeyField())
	chunkID := fieldByName(t, ix, FieldChunkID)
	assert.Equal(t, AnalyzerKeyword, chunkID.Analyzer)
	assert.True(t, *chunkID.Searchable)

	url := fieldByName(t, ix, document.FieldURL)
	assert.Equal(t, AnalyzerKeyword, url.Analyzer)
	assert.True(t, *url.Filterable)

	assert.Equal(t, document.VectorDimension, fieldByName(t, ix, FieldTextVector).Dimensions)
	assert.Equal(t, TypeDateTimeOffset, fieldByName(t, ix, FieldTimestamp).Type)
	assert.Len(t, ix.Fields, 7)
}

func TestNewSkillset(t *testing.T) {
	s := NewSkillset(FoundryIndexName, testDeployment())

	require.Len(t, s.Skills, 2)
	split := s.Skills[0]
	assert.Equal(t, 2000, *split.MaximumPageLength)
	assert.Equal(t, 500, *split.PageOverlapLength)
	assert.Equal(t, 0, *split.MaximumPagesToTake)
	assert.Equal(t, "/document", split.Context)

	embed := s.Skills[1]
	assert.Equal(t, "/document/pages/*", embed.Context)
	assert.Equal(t, document.VectorDimension, *embed.Dimensions)

	selector := s.IndexProjections.Selectors[0]
	assert.Equal(t, FoundryIndexName, selector.TargetIndexName)
	assert.Equal(t, FieldParentID, selector.ParentKeyFieldName)
	assert.Len(t, selector.Mappings, 5)
	assert.Equal(t, "skipIndexingParentDocuments", s.IndexProjections.Parameters.ProjectionMode)
}

func TestNewDataSourceAndIndexer(t *testing.T) {
	ds := NewDataSource("/subscriptions/s/resourceGroups/rg/providers/Microsoft.Storage/storageAccounts/acct", DefaultBlobContainer)
	assert.Equal(t, "ResourceId=/subscriptions/s/resourceGroups/rg/providers/Microsoft.Storage/storageAccounts/acct;", ds.Credentials.ConnectionString)
	assert.Equal(t, "metadata_storage_last_modified", ds.DataChangeDetectionPolicy.HighWaterMarkColumnName)
	assert.Equal(t, DefaultBlobContainer, ds.Container.Name)

	raw := NewDataSource("DefaultEndpointsProtocol=https;AccountName=a;AccountKey=k", "c")
	assert.Equal(t, "DefaultEndpointsProtocol=https;AccountName=a;AccountKey=k", raw.Credentials.ConnectionString)

	indexer := NewIndexer(FoundryIndexName)
	assert.Equal(t, IndexerName, indexer.Name)
	assert.Equal(t, "PT5M", indexer.Schedule.Interval)
	assert.Equal(t, []FieldMapping{
		{SourceFieldName: "metadata_storage_path", TargetFieldName: document.FieldTitle},
		{SourceFieldName: "metadata_storage_last_modified", TargetFieldName: FieldTimestamp},
	}, indexer.FieldMappings)
}

func TestIndexJSONShape(t *testing.T) {
	ix := NewIndex("docs-v1")
	BuildPreVectorized(ix)

	raw, err := json.Marshal(ix)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	vs := decoded["vectorSearch"].(map[string]any)
	algorithms := vs["algorithms"].([]any)
	first := algorithms[0].(map[string]any)
	assert.Equal(t, "hnsw", first["kind"])
	assert.Contains(t, first, "hnswParameters")
	assert.NotContains(t, first, "exhaustiveKnnParameters")

	fields := decoded["fields"].([]any)
	id := fields[0].(map[string]any)
	assert.Equal(t, true, id["key"])
	assert.Equal(t, false, id["facetable"])
	assert.NotContains(t, decoded, "semantic")
}

func TestEqualsFilter(t *testing.T) {
	assert.Equal(t, "URL eq 'https://contoso/sites/hr/leave%20policy.docx'",
		EqualsFilter("URL", "https://contoso/sites/hr/leave policy.docx"))
	assert.Equal(t, "Name eq 'o''brien.pdf'", EqualsFilter("Name", "o'brien.pdf"))
}

func TestFailedActions(t *testing.T) {
	results := []ActionResult{
		{Key: "a", Succeeded: true, StatusCode: 201},
		{Key: "b", Succeeded: false, ErrorMessage: "too large", StatusCode: 400},
	}
	assert.Equal(t, []string{"b: too large"}, FailedActions(results))
}
