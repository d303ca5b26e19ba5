package search

import (
	"strings"

	"github.com/bull/foundry-sharepoint/internal/document"
)

// FieldFlag marks a standard field's capabilities.
type FieldFlag uint8

const (
	Key FieldFlag = 1 << iota
	Filterable
	Sortable
	Facetable
	Searchable
)

// Oversampling applied by both compression schemes.
const defaultOversampling = 10

// EmbeddingDeployment locates the embedding model used by the vectorizer and
// the embedding skill.
type EmbeddingDeployment struct {
	ResourceURI  string
	DeploymentID string
	ModelName    string
	APIKey       string
	Dimensions   int
}

func flag(set bool) *bool { return &set }

// AddStandardField appends a stored, retrievable non-vector field.
func (ix *Index) AddStandardField(name, dataType string, flags FieldFlag, analyzer string) {
	ix.Fields = append(ix.Fields, Field{
		Name:        name,
		Type:        dataType,
		Key:         flags&Key != 0,
		Filterable:  flag(flags&Filterable != 0),
		Sortable:    flag(flags&Sortable != 0),
		Facetable:   flag(flags&Facetable != 0),
		Searchable:  flag(flags&Searchable != 0),
		Retrievable: flag(true),
		Stored:      flag(true),
		Analyzer:    analyzer,
	})
}

// AddVectorField appends a searchable vector field bound to a profile.
// Unstored vectors cannot be retrieved but still participate in search.
func (ix *Index) AddVectorField(name, profile string, dimensions int, stored bool) {
	ix.Fields = append(ix.Fields, Field{
		Name:                name,
		Type:                TypeSingleVector,
		Searchable:          flag(true),
		Retrievable:         flag(stored),
		Stored:              flag(stored),
		Dimensions:          dimensions,
		VectorSearchProfile: profile,
	})
}

// AddHNSWAlgorithm appends an HNSW configuration.
func (ix *Index) AddHNSWAlgorithm(name, metric string, m, efSearch, efConstruction int) {
	ix.VectorSearch.Algorithms = append(ix.VectorSearch.Algorithms, Algorithm{
		Name: name,
		Kind: KindHNSW,
		HNSW: &HNSWParameters{
			M:              m,
			EfConstruction: efConstruction,
			EfSearch:       efSearch,
			Metric:         metric,
		},
	})
}

// AddExhaustiveKNNAlgorithm appends a brute-force configuration.
func (ix *Index) AddExhaustiveKNNAlgorithm(name, metric string) {
	ix.VectorSearch.Algorithms = append(ix.VectorSearch.Algorithms, Algorithm{
		Name:          name,
		Kind:          KindExhaustiveKNN,
		ExhaustiveKNN: &ExhaustiveKNNParameters{Metric: metric},
	})
}

// AddScalarCompression appends int8 scalar quantization with rescoring.
func (ix *Index) AddScalarCompression(name string, oversampling float64, storage string) {
	ix.VectorSearch.Compressions = append(ix.VectorSearch.Compressions, Compression{
		Name:             name,
		Kind:             KindScalarQuantization,
		ScalarParameters: &ScalarQuantizationParameters{QuantizedDataType: "int8"},
		Rescoring:        rescoring(oversampling, storage),
	})
}

// AddBinaryCompression appends binary quantization with rescoring.
func (ix *Index) AddBinaryCompression(name string, oversampling float64, storage string) {
	ix.VectorSearch.Compressions = append(ix.VectorSearch.Compressions, Compression{
		Name:      name,
		Kind:      KindBinaryQuantization,
		Rescoring: rescoring(oversampling, storage),
	})
}

func rescoring(oversampling float64, storage string) *RescoringOptions {
	return &RescoringOptions{
		EnableRescoring:      true,
		DefaultOversampling:  oversampling,
		RescoreStorageMethod: storage,
	}
}

// AddProfile appends a vector profile. Empty compression or vectorizer names
// are omitted.
func (ix *Index) AddProfile(name, algorithm, compression, vectorizer string) {
	ix.VectorSearch.Profiles = append(ix.VectorSearch.Profiles, Profile{
		Name:        name,
		Algorithm:   algorithm,
		Compression: compression,
		Vectorizer:  vectorizer,
	})
}

// AddAzureOpenAIVectorizer appends a vectorizer bound to the embedding deployment.
func (ix *Index) AddAzureOpenAIVectorizer(name string, dep EmbeddingDeployment) {
	ix.VectorSearch.Vectorizers = append(ix.VectorSearch.Vectorizers, Vectorizer{
		Name: name,
		Kind: KindAzureOpenAI,
		AzureOpenAI: &AzureOpenAIVectorizerParameters{
			ResourceURI:  dep.ResourceURI,
			DeploymentID: dep.DeploymentID,
			APIKey:       dep.APIKey,
			ModelName:    dep.ModelName,
		},
	})
}

// BuildPreVectorized configures ix for chunks vectorized by the caller.
func BuildPreVectorized(ix *Index) {
	ix.AddBinaryCompression(BinaryCompressionName, defaultOversampling, DiscardOriginals)
	ix.AddScalarCompression(ScalarCompressionName, defaultOversampling, PreserveOriginals)

	ix.AddHNSWAlgorithm(CosineAlgorithmName, MetricCosine, 4, 500, 400)
	ix.AddHNSWAlgorithm(HammingAlgorithmName, MetricHamming, 4, 800, 800)
	ix.AddExhaustiveKNNAlgorithm(ExhaustiveKNNAlgorithmName, MetricEuclidean)

	ix.AddProfile(ScalarProfileName, CosineAlgorithmName, ScalarCompressionName, "")

	ix.AddStandardField(document.FieldID, TypeString, Key|Filterable|Sortable, "")
	ix.AddStandardField(document.FieldURL, TypeString, Sortable|Searchable, "")
	ix.AddStandardField(document.FieldName, TypeString, Sortable|Searchable, "")
	ix.AddStandardField(document.FieldItemID, TypeString, Filterable|Sortable|Facetable|Searchable, "")
	ix.AddStandardField(document.FieldTitle, TypeString, Sortable|Searchable, "")
	ix.AddStandardField(document.FieldDriveID, TypeString, Filterable|Sortable|Facetable|Searchable, "")
	ix.AddStandardField(document.FieldPageNumber, TypeInt32, Filterable|Sortable|Facetable, "")
	ix.AddStandardField(document.FieldSecurityData, TypeString, 0, "")
	ix.AddStandardField(document.FieldContent, TypeString, Searchable, AnalyzerEnglish)

	ix.AddVectorField(document.FieldTitleVector, ScalarProfileName, document.VectorDimension, true)
	ix.AddVectorField(document.FieldContentVector, ScalarProfileName, document.VectorDimension, false)
}

// BuildPullPipeline configures ix as the target of the managed chunking and
// vectorization pipeline.
func BuildPullPipeline(ix *Index, dep EmbeddingDeployment) {
	ix.Similarity = BM25()
	ix.Semantic = &SemanticSearch{
		DefaultConfiguration: SemanticConfigName,
		Configurations: []SemanticConfiguration{{
			Name: SemanticConfigName,
			PrioritizedFields: PrioritizedFields{
				TitleField:    &FieldRef{FieldName: document.FieldTitle},
				ContentFields: []FieldRef{{FieldName: FieldChunk}},
				KeywordFields: []FieldRef{},
			},
		}},
	}

	ix.AddHNSWAlgorithm(CosineAlgorithmName, MetricCosine, 4, 500, 400)
	ix.AddAzureOpenAIVectorizer(VectorizerName, dep)
	ix.AddProfile(VectorizableProfileName, CosineAlgorithmName, "", VectorizerName)

	ix.AddStandardField(document.FieldTitle, TypeString, Searchable, "")
	ix.AddStandardField(FieldChunk, TypeString, Searchable, "")
	ix.AddStandardField(FieldParentID, TypeString, Filterable, "")
	ix.AddStandardField(document.FieldURL, TypeString, Filterable|Searchable, AnalyzerKeyword)
	ix.AddStandardField(FieldChunkID, TypeString, Key|Sortable|Searchable, AnalyzerKeyword)
	ix.AddVectorField(FieldTextVector, VectorizableProfileName, dimensionsOrDefault(dep.Dimensions), true)
	ix.AddStandardField(FieldTimestamp, TypeDateTimeOffset, 0, "")
}

func dimensionsOrDefault(d int) int {
	if d <= 0 {
		return document.VectorDimension
	}
	return d
}

// NewDataSource returns the blob data source with high-water-mark change
// detection on the blob's last-modified time. resourceID may be a bare
// storage account resource id or a full connection string.
func NewDataSource(resourceID, container string) *DataSource {
	conn := resourceID
	if !strings.Contains(conn, "=") {
		conn = "ResourceId=" + resourceID + ";"
	}
	return &DataSource{
		Name:        DataSourceName,
		Type:        "azureblob",
		Credentials: DataSourceCredentials{ConnectionString: conn},
		Container:   DataContainer{Name: container},
		DataChangeDetectionPolicy: &DataChangeDetectionPolicy{
			ODataType:               "#Microsoft.Azure.Search.HighWaterMarkChangeDetectionPolicy",
			HighWaterMarkColumnName: "metadata_storage_last_modified",
		},
	}
}

// NewSkillset returns the split + embed skillset projecting one document per
// page into indexName. Parent documents are not indexed.
func NewSkillset(indexName string, dep EmbeddingDeployment) *Skillset {
	pageLength, overlap, unlimited := 2000, 500, 0
	dims := dimensionsOrDefault(dep.Dimensions)

	return &Skillset{
		Name:        SkillsetName,
		Description: "Split blob content into pages and embed each page",
		Skills: []Skill{
			{
				ODataType:           "#Microsoft.Skills.Text.SplitSkill",
				Name:                "split-skill",
				Context:             "/document",
				TextSplitMode:       "pages",
				DefaultLanguageCode: "en",
				MaximumPageLength:   &pageLength,
				PageOverlapLength:   &overlap,
				MaximumPagesToTake:  &unlimited,
				Inputs:              []InputFieldMapping{{Name: "text", Source: "/document/content"}},
				Outputs:             []OutputFieldMapping{{Name: "textItems", TargetName: "pages"}},
			},
			{
				ODataType:    "#Microsoft.Skills.Text.AzureOpenAIEmbeddingSkill",
				Name:         "ai-skill",
				Context:      "/document/pages/*",
				ResourceURI:  dep.ResourceURI,
				APIKey:       dep.APIKey,
				DeploymentID: dep.DeploymentID,
				ModelName:    dep.ModelName,
				Dimensions:   &dims,
				Inputs:       []InputFieldMapping{{Name: "text", Source: "/document/pages/*"}},
				Outputs:      []OutputFieldMapping{{Name: "embedding", TargetName: FieldTextVector}},
			},
		},
		IndexProjections: &IndexProjections{
			Selectors: []IndexProjectionSelector{{
				TargetIndexName:    indexName,
				ParentKeyFieldName: FieldParentID,
				SourceContext:      "/document/pages/*",
				Mappings: []InputFieldMapping{
					{Name: FieldChunk, Source: "/document/pages/*"},
					{Name: FieldTextVector, Source: "/document/pages/*/" + FieldTextVector},
					{Name: document.FieldURL, Source: "/document/" + document.FieldURL},
					{Name: document.FieldTitle, Source: "/document/" + document.FieldTitle},
					{Name: FieldTimestamp, Source: "/document/" + FieldTimestamp},
				},
			}},
			Parameters: &IndexProjectionParameters{ProjectionMode: "skipIndexingParentDocuments"},
		},
	}
}

// NewIndexer returns the indexer that runs the pipeline into indexName every
// five minutes.
func NewIndexer(indexName string) *Indexer {
	return &Indexer{
		Name:            IndexerName,
		DataSourceName:  DataSourceName,
		TargetIndexName: indexName,
		SkillsetName:    SkillsetName,
		Schedule:        &IndexingSchedule{Interval: "PT5M"},
		FieldMappings: []FieldMapping{
			{SourceFieldName: "metadata_storage_path", TargetFieldName: document.FieldTitle},
			{SourceFieldName: "metadata_storage_last_modified", TargetFieldName: FieldTimestamp},
		},
		Parameters: &IndexerParameters{
			Configuration: map[string]any{"parsingMode": "default"},
		},
	}
}
