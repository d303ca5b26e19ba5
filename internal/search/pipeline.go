package search

// DataSource binds a blob container to an indexer.
type DataSource struct {
	Name                      string                     `json:"name"`
	Type                      string                     `json:"type"`
	Credentials               DataSourceCredentials      `json:"credentials"`
	Container                 DataContainer              `json:"container"`
	DataChangeDetectionPolicy *DataChangeDetectionPolicy `json:"dataChangeDetectionPolicy,omitempty"`
}

// DataSourceCredentials carry the storage connection string, which for a
// managed identity is "ResourceId=<storage account resource id>;".
type DataSourceCredentials struct {
	ConnectionString string `json:"connectionString"`
}

// DataContainer names the blob container.
type DataContainer struct {
	Name string `json:"name"`
}

// DataChangeDetectionPolicy tracks which blobs changed since the last run.
type DataChangeDetectionPolicy struct {
	ODataType               string `json:"@odata.type"`
	HighWaterMarkColumnName string `json:"highWaterMarkColumnName"`
}

// Skillset is an ordered list of enrichment skills plus index projections.
type Skillset struct {
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	Skills           []Skill           `json:"skills"`
	IndexProjections *IndexProjections `json:"indexProjections,omitempty"`
}

// Skill is a split or embedding skill. Fields that do not apply to the
// skill's type are omitted.
type Skill struct {
	ODataType string               `json:"@odata.type"`
	Name      string               `json:"name"`
	Context   string               `json:"context"`
	Inputs    []InputFieldMapping  `json:"inputs"`
	Outputs   []OutputFieldMapping `json:"outputs"`

	// Split skill
	TextSplitMode       string `json:"textSplitMode,omitempty"`
	DefaultLanguageCode string `json:"defaultLanguageCode,omitempty"`
	MaximumPageLength   *int   `json:"maximumPageLength,omitempty"`
	PageOverlapLength   *int   `json:"pageOverlapLength,omitempty"`
	MaximumPagesToTake  *int   `json:"maximumPagesToTake,omitempty"`

	// Embedding skill
	ResourceURI  string `json:"resourceUri,omitempty"`
	APIKey       string `json:"apiKey,omitempty"`
	DeploymentID string `json:"deploymentId,omitempty"`
	ModelName    string `json:"modelName,omitempty"`
	Dimensions   *int   `json:"dimensions,omitempty"`
}

// InputFieldMapping feeds a skill input from an enrichment path.
type InputFieldMapping struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// OutputFieldMapping names a skill output in the enrichment tree.
type OutputFieldMapping struct {
	Name       string `json:"name"`
	TargetName string `json:"targetName"`
}

// IndexProjections project enriched chunks into a target index.
type IndexProjections struct {
	Selectors  []IndexProjectionSelector  `json:"selectors"`
	Parameters *IndexProjectionParameters `json:"parameters,omitempty"`
}

// IndexProjectionSelector maps one enrichment context into the target index.
type IndexProjectionSelector struct {
	TargetIndexName    string              `json:"targetIndexName"`
	ParentKeyFieldName string              `json:"parentKeyFieldName"`
	SourceContext      string              `json:"sourceContext"`
	Mappings           []InputFieldMapping `json:"mappings"`
}

// IndexProjectionParameters control whether parent documents are indexed.
type IndexProjectionParameters struct {
	ProjectionMode string `json:"projectionMode"`
}

// Indexer binds a data source to an index through a skillset.
type Indexer struct {
	Name            string             `json:"name"`
	DataSourceName  string             `json:"dataSourceName"`
	TargetIndexName string             `json:"targetIndexName"`
	SkillsetName    string             `json:"skillsetName,omitempty"`
	Schedule        *IndexingSchedule  `json:"schedule,omitempty"`
	FieldMappings   []FieldMapping     `json:"fieldMappings,omitempty"`
	Parameters      *IndexerParameters `json:"parameters,omitempty"`
}

// IndexingSchedule is an ISO 8601 interval such as PT5M.
type IndexingSchedule struct {
	Interval string `json:"interval"`
}

// FieldMapping maps a source document field to an index field.
type FieldMapping struct {
	SourceFieldName string `json:"sourceFieldName"`
	TargetFieldName string `json:"targetFieldName"`
}

// IndexerParameters hold indexer configuration such as the parsing mode.
type IndexerParameters struct {
	Configuration map[string]any `json:"configuration,omitempty"`
}
