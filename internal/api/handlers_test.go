package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/foundry-sharepoint/internal/document"
	"github.com/bull/foundry-sharepoint/internal/provision"
)

type fakeProvisioner struct {
	result  string
	calls   []string
	variant provision.Variant
}

func (f *fakeProvisioner) Provision(_ context.Context, name string, variant provision.Variant) string {
	f.calls = append(f.calls, name)
	f.variant = variant
	return f.result
}

type fakeDocuments struct {
	ok  bool
	ops []string
	ref document.Reference
}

func (f *fakeDocuments) do(op string, ref document.Reference) bool {
	f.ops = append(f.ops, op)
	f.ref = ref
	return f.ok
}

func (f *fakeDocuments) Upload(_ context.Context, ref document.Reference) bool {
	return f.do("upload", ref)
}

func (f *fakeDocuments) Ingest(_ context.Context, ref document.Reference) bool {
	return f.do("ingest", ref)
}

func (f *fakeDocuments) Delete(_ context.Context, ref document.Reference) bool {
	return f.do("delete", ref)
}

type fakeChecker struct{ err error }

func (f fakeChecker) Health(context.Context) error { return f.err }

func newTestServer(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	Register(mux, cfg)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestDeployRoutes(t *testing.T) {
	p := &fakeProvisioner{}
	srv := newTestServer(t, &Config{Provisioner: p, Documents: &fakeDocuments{}, Targets: provision.DefaultTargets()})

	resp, err := http.Get(srv.URL + "/deploy/deploy-vectorized")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Search index sharepoint-foundry-vectorized deployed successfully.", readBody(t, resp))
	assert.Equal(t, provision.PreVectorized, p.variant)

	resp, err = http.Get(srv.URL + "/deploy/deploy-foundry?index=staging")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	readBody(t, resp)
	assert.Equal(t, provision.PullPipeline, p.variant)
	assert.Equal(t, []string{"sharepoint-foundry-vectorized", "staging"}, p.calls)
}

func TestDeployFailureIs500(t *testing.T) {
	p := &fakeProvisioner{result: "create indexer: status 400: invalid schedule"}
	srv := newTestServer(t, &Config{Provisioner: p, Documents: &fakeDocuments{}, Targets: provision.DefaultTargets()})

	resp, err := http.Get(srv.URL + "/deploy/deploy-foundry")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to deploy search index sharepoint-foundry: create indexer: status 400: invalid schedule", readBody(t, resp))
}

func TestDeployDisabled(t *testing.T) {
	srv := newTestServer(t, &Config{Documents: &fakeDocuments{}, Targets: provision.DefaultTargets()})

	resp, err := http.Get(srv.URL + "/deploy/deploy-vectorized")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	readBody(t, resp)
}

func TestDocumentRoutes(t *testing.T) {
	body := `{"driveId":"d","itemId":"i","name":"a.pdf","title":"A","url":"https://x/a.pdf"}`
	tests := []struct {
		path    string
		ok      bool
		code    int
		message string
	}{
		{"/search/ingest", true, http.StatusOK, "a.pdf has been ingested successfully."},
		{"/search/upload", true, http.StatusOK, "a.pdf has been uploaded successfully."},
		{"/search/delete", true, http.StatusOK, "a.pdf has been deleted successfully."},
		{"/search/delete", false, http.StatusInternalServerError, "Failed to delete a.pdf."},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			docs := &fakeDocuments{ok: tt.ok}
			srv := newTestServer(t, &Config{Documents: docs})

			resp, err := http.Post(srv.URL+tt.path, "application/json", strings.NewReader(body))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
			assert.Equal(t, tt.message, readBody(t, resp))
			assert.Equal(t, "d", docs.ref.DriveID)
			assert.Equal(t, "https://x/a.pdf", docs.ref.URL)
		})
	}
}

func TestDocumentRouteRejectsBadJSON(t *testing.T) {
	docs := &fakeDocuments{ok: true}
	srv := newTestServer(t, &Config{Documents: docs})

	resp, err := http.Post(srv.URL+"/search/ingest", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	readBody(t, resp)
	assert.Empty(t, docs.ops)
}

func TestDocumentRouteMethod(t *testing.T) {
	srv := newTestServer(t, &Config{Documents: &fakeDocuments{}})

	resp, err := http.Get(srv.URL + "/search/ingest")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	readBody(t, resp)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &Config{
		Documents: &fakeDocuments{},
		Health: []NamedCheck{
			{Name: "search", Checker: fakeChecker{}},
			{Name: "blob", Checker: fakeChecker{err: errors.New("dial tcp: refused")}},
		},
	})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var hr HealthResponse
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &hr))
	assert.Equal(t, "unhealthy", hr.Status)
	assert.Equal(t, map[string]string{"search": "connected", "blob": "disconnected"}, hr.Checks)
}

func TestHealthAllConnected(t *testing.T) {
	srv := newTestServer(t, &Config{
		Documents: &fakeDocuments{},
		Health:    []NamedCheck{{Name: "search", Checker: fakeChecker{}}},
	})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	readBody(t, resp)
}

func TestLanding(t *testing.T) {
	srv := newTestServer(t, &Config{Documents: &fakeDocuments{}})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "/deploy/deploy-foundry")

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	readBody(t, resp)
}
