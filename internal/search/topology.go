// Package search describes search index topologies and the operations the
// provisioning and ingestion layers need from a search backend.
//
// Topology types serialize to the Azure AI Search REST shapes; other backends
// translate from them.
package search

// Field data types.
const (
	TypeString         = "Edm.String"
	TypeInt32          = "Edm.Int32"
	TypeDateTimeOffset = "Edm.DateTimeOffset"
	TypeSingleVector   = "Collection(Edm.Single)"
)

// Analyzers.
const (
	AnalyzerEnglish = "en.microsoft"
	AnalyzerKeyword = "keyword"
)

// Vector metrics.
const (
	MetricCosine    = "cosine"
	MetricHamming   = "hamming"
	MetricEuclidean = "euclidean"
)

// Algorithm and compression kinds.
const (
	KindHNSW               = "hnsw"
	KindExhaustiveKNN      = "exhaustiveKnn"
	KindScalarQuantization = "scalarQuantization"
	KindBinaryQuantization = "binaryQuantization"
	KindAzureOpenAI        = "azureOpenAI"
)

// Rescore storage policies.
const (
	PreserveOriginals = "preserveOriginals"
	DiscardOriginals  = "discardOriginals"
)

// Index is a complete index definition. It is built fresh for every
// provisioning call and never persisted locally.
type Index struct {
	Name         string          `json:"name"`
	Fields       []Field         `json:"fields"`
	Similarity   *Similarity     `json:"similarity,omitempty"`
	Semantic     *SemanticSearch `json:"semantic,omitempty"`
	VectorSearch *VectorSearch   `json:"vectorSearch,omitempty"`
}

// NewIndex returns an index with an empty vector search container.
func NewIndex(name string) *Index {
	return &Index{Name: name, VectorSearch: &VectorSearch{}}
}

// Field is one index field. Nil flags are left to the service default.
type Field struct {
	Name                string `json:"name"`
	Type                string `json:"type"`
	Key                 bool   `json:"key,omitempty"`
	Filterable          *bool  `json:"filterable,omitempty"`
	Sortable            *bool  `json:"sortable,omitempty"`
	Facetable           *bool  `json:"facetable,omitempty"`
	Searchable          *bool  `json:"searchable,omitempty"`
	Retrievable         *bool  `json:"retrievable,omitempty"`
	Stored              *bool  `json:"stored,omitempty"`
	Analyzer            string `json:"analyzer,omitempty"`
	Dimensions          int    `json:"dimensions,omitempty"`
	VectorSearchProfile string `json:"vectorSearchProfile,omitempty"`
}

// IsVector reports whether the field holds embeddings.
func (f Field) IsVector() bool {
	return f.Type == TypeSingleVector
}

// Similarity selects the ranking function for full-text search.
type Similarity struct {
	ODataType string `json:"@odata.type"`
}

// BM25 is the BM25 similarity algorithm.
func BM25() *Similarity {
	return &Similarity{ODataType: "#Microsoft.Azure.Search.BM25Similarity"}
}

// SemanticSearch holds semantic ranking configurations.
type SemanticSearch struct {
	DefaultConfiguration string                  `json:"defaultConfiguration,omitempty"`
	Configurations       []SemanticConfiguration `json:"configurations"`
}

// SemanticConfiguration prioritizes a title field and content fields.
type SemanticConfiguration struct {
	Name              string            `json:"name"`
	PrioritizedFields PrioritizedFields `json:"prioritizedFields"`
}

// PrioritizedFields names the fields used by semantic ranking.
type PrioritizedFields struct {
	TitleField    *FieldRef  `json:"titleField,omitempty"`
	ContentFields []FieldRef `json:"prioritizedContentFields"`
	KeywordFields []FieldRef `json:"prioritizedKeywordsFields"`
}

// FieldRef points at a field by name.
type FieldRef struct {
	FieldName string `json:"fieldName"`
}

// VectorSearch groups algorithms, compressions, profiles and vectorizers.
type VectorSearch struct {
	Algorithms   []Algorithm   `json:"algorithms"`
	Compressions []Compression `json:"compressions"`
	Profiles     []Profile     `json:"profiles"`
	Vectorizers  []Vectorizer  `json:"vectorizers"`
}

// Algorithm is a named HNSW or exhaustive-kNN configuration.
type Algorithm struct {
	Name          string                   `json:"name"`
	Kind          string                   `json:"kind"`
	HNSW          *HNSWParameters          `json:"hnswParameters,omitempty"`
	ExhaustiveKNN *ExhaustiveKNNParameters `json:"exhaustiveKnnParameters,omitempty"`
}

// Metric returns the algorithm's distance metric.
func (a Algorithm) Metric() string {
	if a.HNSW != nil {
		return a.HNSW.Metric
	}
	if a.ExhaustiveKNN != nil {
		return a.ExhaustiveKNN.Metric
	}
	return ""
}

// HNSWParameters tune an HNSW graph.
type HNSWParameters struct {
	M              int    `json:"m"`
	EfConstruction int    `json:"efConstruction"`
	EfSearch       int    `json:"efSearch"`
	Metric         string `json:"metric"`
}

// ExhaustiveKNNParameters configure brute-force search.
type ExhaustiveKNNParameters struct {
	Metric string `json:"metric"`
}

// Compression is a named scalar or binary quantization scheme.
type Compression struct {
	Name             string                        `json:"name"`
	Kind             string                        `json:"kind"`
	ScalarParameters *ScalarQuantizationParameters `json:"scalarQuantizationParameters,omitempty"`
	Rescoring        *RescoringOptions             `json:"rescoringOptions,omitempty"`
}

// ScalarQuantizationParameters select the quantized data type.
type ScalarQuantizationParameters struct {
	QuantizedDataType string `json:"quantizedDataType"`
}

// RescoringOptions control oversampling and whether raw vectors are kept.
type RescoringOptions struct {
	EnableRescoring      bool    `json:"enableRescoring"`
	DefaultOversampling  float64 `json:"defaultOversampling"`
	RescoreStorageMethod string  `json:"rescoreStorageMethod"`
}

// Profile binds an algorithm with an optional compression and vectorizer.
type Profile struct {
	Name        string `json:"name"`
	Algorithm   string `json:"algorithm"`
	Compression string `json:"compression,omitempty"`
	Vectorizer  string `json:"vectorizer,omitempty"`
}

// Vectorizer binds a remote embedding deployment for query and index time.
type Vectorizer struct {
	Name        string                           `json:"name"`
	Kind        string                           `json:"kind"`
	AzureOpenAI *AzureOpenAIVectorizerParameters `json:"azureOpenAIParameters,omitempty"`
}

// AzureOpenAIVectorizerParameters locate the embedding deployment.
type AzureOpenAIVectorizerParameters struct {
	ResourceURI  string `json:"resourceUri"`
	DeploymentID string `json:"deploymentId"`
	APIKey       string `json:"apiKey,omitempty"`
	ModelName    string `json:"modelName,omitempty"`
}

// Algorithm looks up an algorithm by name.
func (v *VectorSearch) Algorithm(name string) (Algorithm, bool) {
	for _, a := range v.Algorithms {
		if a.Name == name {
			return a, true
		}
	}
	return Algorithm{}, false
}

// Compression looks up a compression by name.
func (v *VectorSearch) Compression(name string) (Compression, bool) {
	for _, c := range v.Compressions {
		if c.Name == name {
			return c, true
		}
	}
	return Compression{}, false
}

// Profile looks up a profile by name.
func (v *VectorSearch) Profile(name string) (Profile, bool) {
	for _, p := range v.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// KeyField returns the name of the key field, or "" if none.
func (ix *Index) KeyField() string {
	for _, f := range ix.Fields {
		if f.Key {
			return f.Name
		}
	}
	return ""
}
