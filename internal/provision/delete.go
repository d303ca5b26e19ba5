package provision

import (
	"context"
	"errors"

	"github.com/bull/foundry-sharepoint/internal/search"
)

// DeleteOutcome is the result of a best-effort resource deletion.
type DeleteOutcome int

const (
	Deleted DeleteOutcome = iota
	NotFound
	Failed
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not found"
	default:
		return "failed"
	}
}

// tryDelete removes a resource. A missing resource is not an error.
func (p *Provisioner) tryDelete(ctx context.Context, kind, name string, del func(context.Context, string) error) (DeleteOutcome, error) {
	err := del(ctx, name)
	switch {
	case err == nil:
		p.logger.Info("Deleted resource", "kind", kind, "name", name)
		return Deleted, nil
	case errors.Is(err, search.ErrNotFound):
		p.logger.Debug("Resource not present", "kind", kind, "name", name)
		return NotFound, nil
	default:
		p.logger.Error("Failed to delete resource", "kind", kind, "name", name, "error", err)
		return Failed, err
	}
}
