package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/foundry-sharepoint/internal/document"
	"github.com/bull/foundry-sharepoint/internal/ingest"
	"github.com/bull/foundry-sharepoint/internal/provision"
)

// makeDeployHandler creates the deploy_index tool handler.
// An unknown variant is a tool error; a failed run is a normal result with
// Success false so the agent can read the remote message.
func makeDeployHandler(p Provisioner, targets provision.Targets, logger *slog.Logger) func(
	context.Context, *mcp.CallToolRequest, DeployIndexInput,
) (*mcp.CallToolResult, DeployIndexOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeployIndexInput) (
		*mcp.CallToolResult, DeployIndexOutput, error,
	) {
		variant, err := provision.ParseVariant(input.Variant)
		if err != nil {
			return nil, DeployIndexOutput{}, err
		}
		index := input.Index
		if index == "" {
			index = targets.IndexFor(variant)
		}

		logger.Info("Handling deploy_index", "index", index, "variant", variant.String())
		result := p.Provision(ctx, index, variant)

		return nil, DeployIndexOutput{
			Index:   index,
			Variant: variant.String(),
			Success: result == "",
			Message: provision.Describe(index, result),
		}, nil
	}
}

// makeDocumentHandler adapts one document operation to a tool handler.
func makeDocumentHandler(op func(context.Context, document.Reference) bool, name string, logger *slog.Logger) func(
	context.Context, *mcp.CallToolRequest, DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DocumentInput) (
		*mcp.CallToolResult, DocumentOutput, error,
	) {
		ref := input.reference()
		if ref.URL == "" {
			return nil, DocumentOutput{}, fmt.Errorf("%w: url is required", document.ErrInvalidReference)
		}

		logger.Info("Handling "+name+"_document", "name", ref.Name, "url", ref.URL)
		ok := op(ctx, ref)
		return nil, DocumentOutput{
			Name:    ref.Name,
			Success: ok,
			Message: ingest.Describe(name, ref.Name, ok),
		}, nil
	}
}

func (in DocumentInput) reference() document.Reference {
	return document.Reference{
		DriveID:      in.DriveID,
		ItemID:       in.ItemID,
		Name:         in.Name,
		Title:        in.Title,
		URL:          in.URL,
		SecurityData: in.SecurityData,
	}
}
