// Package sharepoint fetches document content from SharePoint through the
// Microsoft Graph API.
package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/bull/foundry-sharepoint/internal/config"
)

const (
	// DefaultGraphURL is the Graph v1.0 root.
	DefaultGraphURL = "https://graph.microsoft.com/v1.0"

	// GraphScope requests every application permission granted to the app registration.
	GraphScope = "https://graph.microsoft.com/.default"

	tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
)

// Client is an authenticated, rate-limited Graph client.
type Client struct {
	graph   *msgraphsdk.GraphServiceClient
	baseURL string
	limiter *rate.Limiter
}

// NewClient creates a Graph client authenticated with the app registration's
// client credentials.
func NewClient(ctx context.Context, settings config.GraphSettings, requestsPerSecond float64) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("graph client: %w", err)
	}

	creds := &clientcredentials.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		TokenURL:     fmt.Sprintf(tokenURLFormat, settings.TenantID),
		Scopes:       []string{GraphScope},
	}

	return NewClientWithTokenSource(creds.TokenSource(ctx), DefaultGraphURL,
		rate.NewLimiter(rate.Limit(requestsPerSecond), 1))
}

// NewClientWithTokenSource creates a client against baseURL using tokens from
// source. A nil limiter disables throttling.
func NewClientWithTokenSource(source oauth2.TokenSource, baseURL string, limiter *rate.Limiter) (*Client, error) {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	adapter, err := msgraphsdk.NewGraphRequestAdapter(&tokenAuth{source: oauth2.ReuseTokenSource(nil, source)})
	if err != nil {
		return nil, fmt.Errorf("graph request adapter: %w", err)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	adapter.SetBaseUrl(baseURL)

	return &Client{
		graph:   msgraphsdk.NewGraphServiceClient(adapter),
		baseURL: baseURL,
		limiter: limiter,
	}, nil
}

// tokenAuth sets a bearer token from an oauth2 token source on every request.
type tokenAuth struct {
	source oauth2.TokenSource
}

func (a *tokenAuth) AuthenticateRequest(_ context.Context, request *abstractions.RequestInformation, _ map[string]interface{}) error {
	token, err := a.source.Token()
	if err != nil {
		return fmt.Errorf("graph token: %w", err)
	}
	request.Headers.Add("Authorization", "Bearer "+token.AccessToken)
	return nil
}

// DriveItemContent downloads a drive item with tenant-wide access.
func (c *Client) DriveItemContent(ctx context.Context, driveID, itemID string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	content, err := c.graph.Drives().ByDriveId(driveID).Items().ByDriveItemId(itemID).Content().Get(ctx, nil)
	if err != nil {
		return nil, graphError("download drive item", err)
	}
	return content, nil
}

// SiteID resolves a site collection from its host and server-relative path.
// Site ids have the form "host,siteGuid,webGuid".
func (c *Client) SiteID(ctx context.Context, host, sitePath string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	// The host:/path addressing form cannot go through the escaped id template.
	rawURL := fmt.Sprintf("%s/sites/%s:/%s", c.baseURL, url.PathEscape(host), sitePath)
	site, err := c.graph.Sites().BySiteId(host).WithUrl(rawURL).Get(ctx, nil)
	if err != nil {
		return "", graphError("resolve site", err)
	}
	if site.GetId() == nil || *site.GetId() == "" {
		return "", fmt.Errorf("resolve site: no id for %s/%s", host, sitePath)
	}
	return *site.GetId(), nil
}

// SiteDriveItemContent downloads a drive item through its owning site, so
// site-scoped permissions are enough.
func (c *Client) SiteDriveItemContent(ctx context.Context, siteID, driveID, itemID string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	rawURL := fmt.Sprintf("%s/sites/%s/drives/%s/items/%s/content",
		c.baseURL, siteID, url.PathEscape(driveID), url.PathEscape(itemID))
	content, err := c.graph.Drives().ByDriveId(driveID).Items().ByDriveItemId(itemID).Content().WithUrl(rawURL).Get(ctx, nil)
	if err != nil {
		return nil, graphError("download site drive item", err)
	}
	return content, nil
}

// graphError flattens an OData error into "op: status code: message".
func graphError(op string, err error) error {
	var odataErr *odataerrors.ODataError
	if !errors.As(err, &odataErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := odataErr.Error()
	if main := odataErr.GetErrorEscaped(); main != nil {
		var code, text string
		if main.GetCode() != nil {
			code = *main.GetCode()
		}
		if main.GetMessage() != nil {
			text = *main.GetMessage()
		}
		msg = strings.TrimSpace(code + " " + text)
	}
	return fmt.Errorf("%s: %d: %s", op, odataErr.ResponseStatusCode, msg)
}
