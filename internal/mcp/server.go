package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/foundry-sharepoint/internal/document"
	"github.com/bull/foundry-sharepoint/internal/provision"
)

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

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
	logger *slog.Logger
}

// Config holds server dependencies. Provisioner may be nil when deployment
// is disabled; deploy_index is then not registered.
type Config struct {
	Provisioner Provisioner
	Documents   DocumentService
	Targets     provision.Targets
	Version     string
	Logger      *slog.Logger
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "v0.1.0"
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "foundry-sharepoint",
		Version: version,
	}, nil)

	if cfg.Provisioner != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "deploy_index",
			Description: "Delete and recreate a search index. pre-vectorized creates the index for locally vectorized chunks; pull-pipeline also recreates the data source, skillset and indexer that feed it from blob storage. Takes at least 30 seconds when resources already exist.",
		}, makeDeployHandler(cfg.Provisioner, cfg.Targets, logger))
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Download a SharePoint document and store it in blob storage, where the pull-pipeline indexer picks it up.",
	}, makeDocumentHandler(cfg.Documents.Upload, "upload", logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Chunk, vectorize and index a SharePoint document into the pre-vectorized index.",
	}, makeDocumentHandler(cfg.Documents.Ingest, "ingest", logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Remove a SharePoint document from blob storage and delete its entries from the pull-pipeline index.",
	}, makeDocumentHandler(cfg.Documents.Delete, "delete", logger))

	return &Server{server: server, logger: logger}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
