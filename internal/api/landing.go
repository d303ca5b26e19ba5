package api

import "net/http"

const landingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Foundry SharePoint Knowledge</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: #0f172a; color: #e2e8f0; display: flex; justify-content: center; padding-top: 4rem; }
  .card { max-width: 640px; width: 90%; background: #1e293b; border-radius: 12px; padding: 2rem; }
  h1 { font-size: 1.5rem; margin-bottom: 1rem; }
  code { font-family: Menlo, monospace; color: #a5b4fc; }
  li { margin: 0.35rem 0; }
</style>
</head>
<body>
<div class="card">
  <h1>Foundry SharePoint Knowledge</h1>
  <ul>
    <li><code>GET /deploy/deploy-vectorized</code> recreate the pre-vectorized index</li>
    <li><code>GET /deploy/deploy-foundry</code> recreate the pull-pipeline index and indexer</li>
    <li><code>POST /search/upload</code> store a document for the indexer</li>
    <li><code>POST /search/ingest</code> chunk and index a document locally</li>
    <li><code>POST /search/delete</code> remove a document and its index entries</li>
    <li><code>/mcp</code> MCP Streamable HTTP</li>
    <li><code>GET /health</code> and <code>GET /metrics</code></li>
  </ul>
</div>
</body>
</html>`

// NewLandingHandler returns an HTTP handler that serves the landing page at /.
func NewLandingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(landingHTML))
	}
}
