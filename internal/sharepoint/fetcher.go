package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/bull/foundry-sharepoint/internal/document"
)

// ErrFetchFailed wraps every transport or authorization failure while
// downloading a document.
var ErrFetchFailed = errors.New("fetch failed")

// Privilege selects how the fetcher reaches a document.
type Privilege int

const (
	// MostPrivileged reads any drive item directly with tenant-wide access.
	MostPrivileged Privilege = iota
	// LeastPrivileged resolves the owning site first, so the app only needs
	// access to that site.
	LeastPrivileged
)

func (p Privilege) String() string {
	if p == LeastPrivileged {
		return "least"
	}
	return "most"
}

// Fetcher downloads raw document bytes.
type Fetcher struct {
	client *Client
	logger *slog.Logger
}

// NewFetcher creates a document fetcher. A nil logger uses slog.Default().
func NewFetcher(client *Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch returns the content of the referenced document.
func (f *Fetcher) Fetch(ctx context.Context, ref document.Reference, privilege Privilege) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var (
		content []byte
		err     error
	)
	switch privilege {
	case LeastPrivileged:
		content, err = f.fetchViaSite(ctx, ref)
	default:
		content, err = f.client.DriveItemContent(ctx, ref.DriveID, ref.ItemID)
	}
	if err != nil {
		f.logger.Error("Failed to fetch document", "name", ref.Name, "privilege", privilege, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, ref.Name, err)
	}

	f.logger.Info("Fetched document", "name", ref.Name, "privilege", privilege, "bytes", len(content))
	return content, nil
}

func (f *Fetcher) fetchViaSite(ctx context.Context, ref document.Reference) ([]byte, error) {
	host, sitePath, err := SitePath(ref.URL)
	if err != nil {
		return nil, err
	}

	siteID, err := f.client.SiteID(ctx, host, sitePath)
	if err != nil {
		return nil, err
	}
	return f.client.SiteDriveItemContent(ctx, siteID, ref.DriveID, ref.ItemID)
}

// SitePath derives the site collection from a document URL: the host and the
// first two path segments, e.g. contoso.sharepoint.com and sites/Finance.
// The returned path is already escaped.
func SitePath(rawURL string) (host, sitePath string, err error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("parse document url: %w", err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("document url %q has no host", rawURL)
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, url.PathEscape(s))
		}
	}
	if len(segments) < 2 {
		return "", "", fmt.Errorf("document url %q has no site path", rawURL)
	}

	return u.Host, segments[0] + "/" + segments[1], nil
}
