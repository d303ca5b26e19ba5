package embedding

import (
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/bull/foundry-sharepoint/internal/config"
)

// Client wraps the OpenAI client configured for a deployment-scoped Azure
// OpenAI endpoint.
type Client struct {
	client     *openai.Client
	deployment string
}

// NewClient creates an embedding client from the foundry settings.
// Requests go to {endpoint}/openai/deployments/{model}/embeddings?api-version=...
func NewClient(settings config.FoundrySettings, opts ...option.RequestOption) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}

	base := []option.RequestOption{
		azure.WithEndpoint(strings.TrimRight(settings.OpenAIEndpoint, "/"), settings.EmbeddingAPIVersion),
		azure.WithAPIKey(settings.AccountKey),
		// Failures surface to the caller; there is no retry layer on embeddings.
		option.WithMaxRetries(0),
	}
	client := openai.NewClient(append(base, opts...)...)

	return &Client{client: &client, deployment: settings.EmbeddingModel}, nil
}

// Deployment returns the embedding deployment name.
func (c *Client) Deployment() string {
	return c.deployment
}
