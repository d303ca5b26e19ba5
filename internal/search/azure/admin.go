package azure

import (
	"context"
	"net/http"

	"github.com/bull/foundry-sharepoint/internal/search"
)

// GetIndex returns the index definition or an error matching search.ErrNotFound.
func (c *Client) GetIndex(ctx context.Context, name string) (*search.Index, error) {
	var ix search.Index
	if _, err := c.do(ctx, "get index "+name, http.MethodGet, resource("indexes", name), nil, &ix, http.StatusOK); err != nil {
		return nil, err
	}
	return &ix, nil
}

// CreateIndex creates a new index. It fails if the index exists.
func (c *Client) CreateIndex(ctx context.Context, index *search.Index) error {
	_, err := c.do(ctx, "create index "+index.Name, http.MethodPost, "/indexes", index, nil, http.StatusCreated)
	if err == nil {
		c.logger.Info("Created index", "index", index.Name, "fields", len(index.Fields))
	}
	return err
}

// DeleteIndex deletes an index and all of its documents.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	return c.delete(ctx, "index", "indexes", name)
}

// CreateDataSource creates a data source connection.
func (c *Client) CreateDataSource(ctx context.Context, ds *search.DataSource) error {
	_, err := c.do(ctx, "create data source "+ds.Name, http.MethodPost, "/datasources", ds, nil, http.StatusCreated)
	return err
}

// DeleteDataSource deletes a data source connection.
func (c *Client) DeleteDataSource(ctx context.Context, name string) error {
	return c.delete(ctx, "data source", "datasources", name)
}

// CreateSkillset creates a skillset.
func (c *Client) CreateSkillset(ctx context.Context, skillset *search.Skillset) error {
	_, err := c.do(ctx, "create skillset "+skillset.Name, http.MethodPost, "/skillsets", skillset, nil, http.StatusCreated)
	return err
}

// DeleteSkillset deletes a skillset.
func (c *Client) DeleteSkillset(ctx context.Context, name string) error {
	return c.delete(ctx, "skillset", "skillsets", name)
}

// CreateIndexer creates an indexer. The service runs it once on creation and
// then on its schedule.
func (c *Client) CreateIndexer(ctx context.Context, indexer *search.Indexer) error {
	_, err := c.do(ctx, "create indexer "+indexer.Name, http.MethodPost, "/indexers", indexer, nil, http.StatusCreated)
	return err
}

// DeleteIndexer deletes an indexer.
func (c *Client) DeleteIndexer(ctx context.Context, name string) error {
	return c.delete(ctx, "indexer", "indexers", name)
}

func (c *Client) delete(ctx context.Context, kind, collection, name string) error {
	_, err := c.do(ctx, "delete "+kind+" "+name, http.MethodDelete, resource(collection, name), nil, nil, http.StatusNoContent, http.StatusOK)
	if err == nil {
		c.logger.Info("Deleted "+kind, "name", name)
	}
	return err
}
