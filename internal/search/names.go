package search

// Well-known resource names.
const (
	FoundryIndexName    = "sharepoint-foundry"
	VectorizedIndexName = "sharepoint-foundry-vectorized"

	ScalarProfileName       = "vector-profile-cosine-scalar"
	VectorizableProfileName = "vector-profile-cosine-vectorizable"
	VectorizerName          = "sharepoint-foundry-vectorizer"

	ScalarCompressionName = "scalar-quantization"
	BinaryCompressionName = "binary-quantization"

	CosineAlgorithmName        = "cosine"
	HammingAlgorithmName       = "hamming"
	ExhaustiveKNNAlgorithmName = "exhaustive-knn"

	SemanticConfigName = "semantic-search"

	DataSourceName = "sharepoint-foundry-datasource"
	SkillsetName   = "sharepoint-foundry-skillset"
	IndexerName    = "sharepoint-foundry-indexer"

	// DefaultBlobContainer holds uploaded documents for the pull pipeline.
	DefaultBlobContainer = "sharepoint-ingestion"
)

// Pull-pipeline index fields. Title and URL share the names used by the
// pre-vectorized index.
const (
	FieldChunk      = "Chunk"
	FieldParentID   = "ParentId"
	FieldChunkID    = "ChunkId"
	FieldTextVector = "TextVector"
	FieldTimestamp  = "Timestamp"
)
