// Package api serves the deploy and document routes over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bull/foundry-sharepoint/internal/document"
	"github.com/bull/foundry-sharepoint/internal/ingest"
	"github.com/bull/foundry-sharepoint/internal/provision"
)

const maxBodyBytes = 1 << 20

// Provisioner builds index topologies.
type Provisioner interface {
	Provision(ctx context.Context, name string, variant provision.Variant) string
}

// DocumentService runs document operations.
type DocumentService interface {
	Upload(ctx context.Context, ref document.Reference) bool
	Ingest(ctx context.Context, ref document.Reference) bool
	Delete(ctx context.Context, ref document.Reference) bool
}

// Config holds handler dependencies. A nil Provisioner disables the deploy
// routes (403).
type Config struct {
	Provisioner Provisioner
	Documents   DocumentService
	Targets     provision.Targets
	Health      []NamedCheck
	Metrics     http.Handler
	Logger      *slog.Logger
}

// Register mounts every route on mux.
func Register(mux *http.ServeMux, cfg *Config) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux.HandleFunc("GET /deploy/deploy-vectorized", deployHandler(cfg.Provisioner, cfg.Targets, provision.PreVectorized, logger))
	mux.HandleFunc("GET /deploy/deploy-foundry", deployHandler(cfg.Provisioner, cfg.Targets, provision.PullPipeline, logger))

	mux.HandleFunc("POST /search/upload", documentHandler(cfg.Documents.Upload, ingest.OpUpload, logger))
	mux.HandleFunc("POST /search/ingest", documentHandler(cfg.Documents.Ingest, ingest.OpIngest, logger))
	mux.HandleFunc("POST /search/delete", documentHandler(cfg.Documents.Delete, ingest.OpDelete, logger))

	mux.HandleFunc("GET /health", NewHealthHandler(cfg.Health))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}
	mux.HandleFunc("GET /{$}", NewLandingHandler())
}

// deployHandler provisions the variant's index; ?index= overrides the name.
func deployHandler(p Provisioner, targets provision.Targets, variant provision.Variant, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p == nil {
			writeText(w, http.StatusForbidden, "Search deployment is disabled.")
			return
		}

		index := r.URL.Query().Get("index")
		if index == "" {
			index = targets.IndexFor(variant)
		}
		logger.Info("Handling deploy request", "index", index, "variant", variant.String(), "remote", r.RemoteAddr)

		result := p.Provision(r.Context(), index, variant)
		code := http.StatusOK
		if result != "" {
			code = http.StatusInternalServerError
		}
		writeText(w, code, provision.Describe(index, result))
	}
}

// documentHandler decodes a document reference and runs op on it.
func documentHandler(op func(context.Context, document.Reference) bool, name string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ref document.Reference
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&ref); err != nil {
			writeText(w, http.StatusBadRequest, "Invalid document reference: "+err.Error())
			return
		}
		logger.Info("Handling document request", "op", name, "name", ref.Name, "remote", r.RemoteAddr)

		label := ref.Name
		if label == "" {
			label = "N/A"
		}
		if op(r.Context(), ref) {
			writeText(w, http.StatusOK, ingest.Describe(name, label, true))
			return
		}
		writeText(w, http.StatusInternalServerError, ingest.Describe(name, label, false))
	}
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(msg))
}
