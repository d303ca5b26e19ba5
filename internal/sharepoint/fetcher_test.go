package sharepoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/bull/foundry-sharepoint/internal/document"
)

func testRef() document.Reference {
	return document.Reference{
		DriveID: "drive-1",
		ItemID:  "item-1",
		Name:    "Budget 2024.xlsx",
		Title:   "Budget 2024",
		URL:     "https://contoso.sharepoint.com/sites/Finance/Shared Documents/Budget 2024.xlsx",
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClientWithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}), baseURL, nil)
	require.NoError(t, err)
	return c
}

func newGraphServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	authorized := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			paths = append(paths, r.URL.Path)
			next(w, r)
		}
	}
	content := func(body string) http.HandlerFunc {
		return authorized(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte(body))
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/drives/drive-1/items/item-1/content", content("direct-bytes"))
	mux.HandleFunc("/sites/contoso.sharepoint.com:/sites/Finance", authorized(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"contoso.sharepoint.com,site-guid,web-guid"}`))
	}))
	mux.HandleFunc("/sites/contoso.sharepoint.com,site-guid,web-guid/drives/drive-1/items/item-1/content", content("site-bytes"))
	return httptest.NewServer(mux), &paths
}

func TestFetchMostPrivileged(t *testing.T) {
	server, paths := newGraphServer(t)
	defer server.Close()

	f := NewFetcher(newTestClient(t, server.URL), nil)
	content, err := f.Fetch(context.Background(), testRef(), MostPrivileged)
	require.NoError(t, err)

	assert.Equal(t, "direct-bytes", string(content))
	assert.Equal(t, []string{"/drives/drive-1/items/item-1/content"}, *paths)
}

func TestFetchLeastPrivileged(t *testing.T) {
	server, paths := newGraphServer(t)
	defer server.Close()

	f := NewFetcher(newTestClient(t, server.URL), nil)
	content, err := f.Fetch(context.Background(), testRef(), LeastPrivileged)
	require.NoError(t, err)

	assert.Equal(t, "site-bytes", string(content))
	require.Len(t, *paths, 2)
	assert.Equal(t, "/sites/contoso.sharepoint.com:/sites/Finance", (*paths)[0])
	assert.Equal(t, "/sites/contoso.sharepoint.com,site-guid,web-guid/drives/drive-1/items/item-1/content", (*paths)[1])
}

func TestFetchInvalidReference(t *testing.T) {
	f := NewFetcher(newTestClient(t, "http://unused"), nil)
	ref := testRef()
	ref.ItemID = ""

	_, err := f.Fetch(context.Background(), ref, MostPrivileged)
	assert.ErrorIs(t, err, document.ErrInvalidReference)
}

func TestFetchFailureWrapsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"accessDenied","message":"Either scp or roles claim need to be present"}}`))
	}))
	defer server.Close()

	f := NewFetcher(newTestClient(t, server.URL), nil)
	_, err := f.Fetch(context.Background(), testRef(), MostPrivileged)
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "accessDenied")
}

func TestClientRateLimiterHonorsContext(t *testing.T) {
	c, err := NewClientWithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}), "http://unused",
		rate.NewLimiter(rate.Every(time.Hour), 1))
	require.NoError(t, err)
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.DriveItemContent(ctx, "drive-1", "item-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestSitePath(t *testing.T) {
	tests := []struct {
		url      string
		host     string
		sitePath string
		wantErr  bool
	}{
		{"https://contoso.sharepoint.com/sites/Finance/Shared Documents/a.pdf", "contoso.sharepoint.com", "sites/Finance", false},
		{"https://contoso.sharepoint.com/teams/Ops%20Team/doc.docx", "contoso.sharepoint.com", "teams/Ops%20Team", false},
		{"https://contoso.sharepoint.com/a.pdf", "", "", true},
		{"not a url", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			host, sitePath, err := SitePath(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.sitePath, sitePath)
		})
	}
}
