package search

import "context"

// Admin manages index topology. Every method returns an error wrapping
// ErrNotFound when the named resource does not exist.
type Admin interface {
	GetIndex(ctx context.Context, name string) (*Index, error)
	CreateIndex(ctx context.Context, index *Index) error
	DeleteIndex(ctx context.Context, name string) error

	CreateDataSource(ctx context.Context, ds *DataSource) error
	DeleteDataSource(ctx context.Context, name string) error
	CreateSkillset(ctx context.Context, skillset *Skillset) error
	DeleteSkillset(ctx context.Context, name string) error
	CreateIndexer(ctx context.Context, indexer *Indexer) error
	DeleteIndexer(ctx context.Context, name string) error
}

// Documents reads and writes documents in an index.
type Documents interface {
	// Upload submits docs as one batch of upload actions.
	Upload(ctx context.Context, index, keyField string, docs []map[string]any) ([]ActionResult, error)

	// FindKeys returns the keys of every document whose field equals value.
	FindKeys(ctx context.Context, index, keyField, field, value string) ([]string, error)

	// DeleteByKey submits one batch of delete actions. keys must not be empty.
	DeleteByKey(ctx context.Context, index, keyField string, keys []string) ([]ActionResult, error)
}

// Backend is a search service supporting both sets of operations.
type Backend interface {
	Admin
	Documents
	Health(ctx context.Context) error
}

// ActionResult is the outcome of one action in a batch.
type ActionResult struct {
	Key          string `json:"key"`
	Succeeded    bool   `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	StatusCode   int    `json:"statusCode"`
}

// FailedActions formats every failed result as "<key>: <errorMessage>".
func FailedActions(results []ActionResult) []string {
	var failed []string
	for _, r := range results {
		if !r.Succeeded {
			failed = append(failed, r.Key+": "+r.ErrorMessage)
		}
	}
	return failed
}
