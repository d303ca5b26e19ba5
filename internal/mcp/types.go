// Package mcp exposes index provisioning and document operations as MCP tools.
package mcp

// DeployIndexInput defines the input parameters for the deploy_index tool.
type DeployIndexInput struct {
	// Variant selects the topology.
	Variant string `json:"variant" jsonschema:"the index topology: pre-vectorized or pull-pipeline"`
	// Index overrides the configured index name for the variant.
	Index string `json:"index,omitempty" jsonschema:"optional index name; defaults to the configured index for the variant"`
}

// DeployIndexOutput reports a provisioning run.
type DeployIndexOutput struct {
	Index   string `json:"index"`
	Variant string `json:"variant"`
	Success bool   `json:"success"`
	// Message is the human-readable outcome, including the remote error on failure.
	Message string `json:"message"`
}

// DocumentInput identifies a repository document.
type DocumentInput struct {
	DriveID      string `json:"drive_id" jsonschema:"the drive id of the document"`
	ItemID       string `json:"item_id" jsonschema:"the drive item id of the document"`
	Name         string `json:"name" jsonschema:"the file name including extension"`
	Title        string `json:"title,omitempty" jsonschema:"the document title"`
	URL          string `json:"url" jsonschema:"the web URL of the document"`
	SecurityData string `json:"security_data,omitempty" jsonschema:"opaque security metadata stored with each chunk"`
}

// DocumentOutput reports a document operation.
type DocumentOutput struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}
