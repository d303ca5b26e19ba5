package provision

import (
	"fmt"
	"strings"

	"github.com/bull/foundry-sharepoint/internal/search"
)

// Variant selects the index topology to provision.
type Variant int

const (
	// PreVectorized holds chunks embedded locally before upload.
	PreVectorized Variant = iota
	// PullPipeline is fed by a managed data source, skillset and indexer.
	PullPipeline
)

func (v Variant) String() string {
	switch v {
	case PreVectorized:
		return "pre-vectorized"
	case PullPipeline:
		return "pull-pipeline"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant accepts the canonical names and the route aliases
// "vectorized" and "foundry".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pre-vectorized", "prevectorized", "vectorized":
		return PreVectorized, nil
	case "pull-pipeline", "pullpipeline", "foundry":
		return PullPipeline, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Targets names the index provisioned for each variant.
type Targets struct {
	PreVectorized string
	PullPipeline  string
}

// DefaultTargets returns the well-known index names.
func DefaultTargets() Targets {
	return Targets{PreVectorized: search.VectorizedIndexName, PullPipeline: search.FoundryIndexName}
}

// IndexFor returns the index name configured for v.
func (t Targets) IndexFor(v Variant) string {
	if v == PullPipeline {
		return t.PullPipeline
	}
	return t.PreVectorized
}

// Describe renders a provisioning result for callers.
func Describe(index, result string) string {
	if result == "" {
		return fmt.Sprintf("Search index %s deployed successfully.", index)
	}
	return fmt.Sprintf("Failed to deploy search index %s: %s", index, result)
}
