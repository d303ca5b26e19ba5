package azure

import (
	"context"
	"fmt"
	"maps"
	"net/http"

	"github.com/bull/foundry-sharepoint/internal/search"
)

// pageSize is the largest page the search API returns.
const pageSize = 1000

// maxSkip is the largest $skip the search API accepts.
const maxSkip = 100000

type batchRequest struct {
	Value []map[string]any `json:"value"`
}

type batchResponse struct {
	Value []search.ActionResult `json:"value"`
}

type searchRequest struct {
	Search string `json:"search"`
	Filter string `json:"filter"`
	Select string `json:"select"`
	Top    int    `json:"top"`
	Skip   int    `json:"skip,omitempty"`
}

type searchResponse struct {
	Value []map[string]any `json:"value"`
}

// Upload indexes docs as a single batch of upload actions. A 207 response is
// returned without error; callers inspect the per-item results.
func (c *Client) Upload(ctx context.Context, index, keyField string, docs []map[string]any) ([]search.ActionResult, error) {
	actions := make([]map[string]any, len(docs))
	for i, doc := range docs {
		action := maps.Clone(doc)
		action["@search.action"] = "upload"
		actions[i] = action
	}
	return c.batch(ctx, "upload documents to "+index, index, actions)
}

// DeleteByKey deletes documents by key in a single batch.
func (c *Client) DeleteByKey(ctx context.Context, index, keyField string, keys []string) ([]search.ActionResult, error) {
	if len(keys) == 0 {
		return nil, search.ErrEmptyKeySet
	}
	actions := make([]map[string]any, len(keys))
	for i, key := range keys {
		actions[i] = map[string]any{"@search.action": "delete", keyField: key}
	}
	return c.batch(ctx, "delete documents from "+index, index, actions)
}

func (c *Client) batch(ctx context.Context, op, index string, actions []map[string]any) ([]search.ActionResult, error) {
	var resp batchResponse
	_, err := c.do(ctx, op, http.MethodPost, resource("indexes", index)+"/docs/index",
		batchRequest{Value: actions}, &resp, http.StatusOK, http.StatusMultiStatus)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// FindKeys pages through every document matching "<field> eq '<value>'",
// selecting only the key field.
func (c *Client) FindKeys(ctx context.Context, index, keyField, field, value string) ([]string, error) {
	filter := search.EqualsFilter(field, value)
	var keys []string

	for skip := 0; skip <= maxSkip; skip += pageSize {
		var resp searchResponse
		_, err := c.do(ctx, "search "+index, http.MethodPost, resource("indexes", index)+"/docs/search",
			searchRequest{Search: "*", Filter: filter, Select: keyField, Top: pageSize, Skip: skip},
			&resp, http.StatusOK)
		if err != nil {
			return nil, err
		}

		for _, doc := range resp.Value {
			key, ok := doc[keyField].(string)
			if !ok {
				return nil, fmt.Errorf("search %s: document without string key %q", index, keyField)
			}
			keys = append(keys, key)
		}

		if len(resp.Value) < pageSize {
			break
		}
	}

	c.logger.Debug("Found documents", "index", index, "filter", filter, "count", len(keys))
	return keys, nil
}
