// Package analysis submits documents to the Document Intelligence layout model
// and reads back page text.
package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bull/foundry-sharepoint/internal/config"
)

// DefaultModelID is the prebuilt layout model.
const DefaultModelID = "prebuilt-layout"

// ErrAnalysisFailed is returned when the operation fails or reports no result.
var ErrAnalysisFailed = errors.New("analysis failed")

var errStillRunning = errors.New("analysis still running")

// Page is the text of one analyzed page.
type Page struct {
	PageNumber int
	Lines      []string
}

// Text joins the page's lines with newlines.
func (p Page) Text() string {
	return strings.Join(p.Lines, "\n")
}

// Client talks to the Document Intelligence REST API.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	apiVersion   string
	key          string
	timeout      time.Duration // Bounds the whole long-running operation
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewClient creates an analysis client from the foundry settings.
func NewClient(settings config.FoundrySettings, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		endpoint:     strings.TrimRight(settings.DocumentIntelligenceEndpoint, "/"),
		apiVersion:   settings.DocumentIntelligenceAPIVersion,
		key:          settings.AccountKey,
		timeout:      timeout,
		pollInterval: time.Second,
		logger:       logger,
	}
}

type analyzeRequest struct {
	Base64Source string `json:"base64Source"`
}

type operationResult struct {
	Status        string `json:"status"`
	AnalyzeResult *struct {
		Pages []struct {
			PageNumber int `json:"pageNumber"`
			Lines      []struct {
				Content string `json:"content"`
			} `json:"lines"`
		} `json:"pages"`
	} `json:"analyzeResult"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze submits content to the given model and blocks until the operation
// completes or the client's timeout elapses.
func (c *Client) Analyze(ctx context.Context, content []byte, modelID string) ([]Page, error) {
	operationURL, err := c.submit(ctx, content, modelID)
	if err != nil {
		return nil, fmt.Errorf("%w: submit: %v", ErrAnalysisFailed, err)
	}
	c.logger.Debug("Submitted document for analysis", "model", modelID, "bytes", len(content))

	result, err := c.await(ctx, operationURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	if result.AnalyzeResult == nil {
		return nil, fmt.Errorf("%w: operation reported no result", ErrAnalysisFailed)
	}

	pages := make([]Page, 0, len(result.AnalyzeResult.Pages))
	for _, p := range result.AnalyzeResult.Pages {
		page := Page{PageNumber: p.PageNumber, Lines: make([]string, 0, len(p.Lines))}
		for _, line := range p.Lines {
			page.Lines = append(page.Lines, line.Content)
		}
		pages = append(pages, page)
	}

	c.logger.Info("Analyzed document", "model", modelID, "pages", len(pages))
	return pages, nil
}

func (c *Client) submit(ctx context.Context, content []byte, modelID string) (string, error) {
	body, err := json.Marshal(analyzeRequest{Base64Source: base64.StdEncoding.EncodeToString(content)})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		c.endpoint, url.PathEscape(modelID), url.QueryEscape(c.apiVersion))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", errors.New("response has no Operation-Location header")
	}
	return operationURL, nil
}

// await polls the operation with exponential backoff until it leaves the
// running states. HTTP failures stop polling immediately.
func (c *Client) await(ctx context.Context, operationURL string) (*operationResult, error) {
	var result *operationResult

	operation := func() error {
		r, err := c.poll(ctx, operationURL)
		if err != nil {
			return backoff.Permanent(err)
		}
		switch r.Status {
		case "succeeded":
			result = r
			return nil
		case "failed", "canceled":
			if r.Error != nil {
				return backoff.Permanent(fmt.Errorf("operation %s: %s: %s", r.Status, r.Error.Code, r.Error.Message))
			}
			return backoff.Permanent(fmt.Errorf("operation %s", r.Status))
		default:
			return errStillRunning
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.pollInterval
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = c.timeout

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		if errors.Is(err, errStillRunning) {
			return nil, fmt.Errorf("operation did not complete within %s", c.timeout)
		}
		return nil, err
	}
	return result, nil
}

func (c *Client) poll(ctx context.Context, operationURL string) (*operationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("poll: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var r operationResult
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode operation: %w", err)
	}
	return &r, nil
}
