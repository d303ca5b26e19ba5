// Package azure implements the search backend against the Azure AI Search
// REST API.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bull/foundry-sharepoint/internal/config"
	"github.com/bull/foundry-sharepoint/internal/search"
)

// Client is an admin-key authenticated Azure AI Search client. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	apiVersion string
	logger     *slog.Logger
}

var _ search.Backend = (*Client)(nil)

// NewClient creates a client for the search service in settings.
func NewClient(settings config.SearchSettings, logger *slog.Logger) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("search client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 100 * time.Second},
		endpoint:   strings.TrimRight(settings.Endpoint, "/"),
		apiKey:     settings.AdminKey,
		apiVersion: settings.APIVersion,
		logger:     logger,
	}, nil
}

// resource builds "<collection>('<name>')".
func resource(collection, name string) string {
	return fmt.Sprintf("/%s('%s')", collection, url.PathEscape(name))
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Any status outside expected returns a *search.RemoteError carrying
// the response body.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any, expected ...int) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	u := c.endpoint + path + "?api-version=" + url.QueryEscape(c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%s: read response: %w", op, err)
	}

	ok := false
	for _, code := range expected {
		if resp.StatusCode == code {
			ok = true
			break
		}
	}
	if !ok {
		return resp.StatusCode, &search.RemoteError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       errorMessage(raw),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return resp.StatusCode, nil
}

// errorMessage extracts error.message from an OData error body, falling back
// to the raw body.
func errorMessage(raw []byte) string {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		if envelope.Error.Code != "" {
			return envelope.Error.Code + ": " + envelope.Error.Message
		}
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// Health checks that the service answers with the configured key.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, "service stats", http.MethodGet, "/servicestats", nil, nil, http.StatusOK)
	return err
}
