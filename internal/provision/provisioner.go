// Package provision rebuilds search indexes, and for the pull pipeline the
// data source, skillset and indexer feeding them, from scratch.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bull/foundry-sharepoint/internal/metrics"
	"github.com/bull/foundry-sharepoint/internal/search"
)

// DefaultSettleDelay is the pause after each deletion before the name is reused.
const DefaultSettleDelay = 30 * time.Second

// Options configure the resources created by a Provisioner.
type Options struct {
	Deployment        search.EmbeddingDeployment
	StorageResourceID string
	Container         string
	SettleDelay       time.Duration
}

// Provisioner creates index topologies on a search backend.
type Provisioner struct {
	admin   search.Admin
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
	sleep   func(d time.Duration)
}

// New creates a provisioner. m may be nil.
func New(admin search.Admin, opts Options, logger *slog.Logger, m *metrics.Metrics) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Container == "" {
		opts.Container = search.DefaultBlobContainer
	}
	return &Provisioner{
		admin:   admin,
		opts:    opts,
		logger:  logger,
		metrics: m,
		sleep:   time.Sleep,
	}
}

// Provision builds the variant's topology under name, replacing any existing
// index. It returns "" on success, otherwise a message naming the failed step
// and carrying the remote error body.
func (p *Provisioner) Provision(ctx context.Context, name string, variant Variant) string {
	err := p.ProvisionIndex(ctx, name, variant)
	if err != nil {
		return err.Error()
	}
	return ""
}

// ProvisionIndex is Provision with the error preserved. Failures are *Error.
//
// A run is not cancellable: once the existing index is deleted, stopping
// early would leave the name without an index. Values on ctx are kept.
func (p *Provisioner) ProvisionIndex(ctx context.Context, name string, variant Variant) error {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	p.logger.Info("Provisioning index", "index", name, "variant", variant.String())

	var err error
	switch variant {
	case PreVectorized:
		err = p.provisionPreVectorized(ctx, name)
	case PullPipeline:
		err = p.provisionPullPipeline(ctx, name)
	default:
		err = stepError("select variant", fmt.Errorf("%w: %s", ErrUnknownVariant, variant))
	}

	p.metrics.ObserveProvision(variant.String(), err == nil, time.Since(start))
	if err != nil {
		p.logger.Error("Provisioning failed", "index", name, "variant", variant.String(), "error", err)
		return err
	}
	p.logger.Info("Provisioned index", "index", name, "variant", variant.String(), "duration", time.Since(start))
	return nil
}

func (p *Provisioner) provisionPreVectorized(ctx context.Context, name string) error {
	ix, err := p.ensureIndex(ctx, name)
	if err != nil {
		return err
	}
	search.BuildPreVectorized(ix)
	if err := p.admin.CreateIndex(ctx, ix); err != nil {
		return stepError("create index", err)
	}
	return nil
}

func (p *Provisioner) provisionPullPipeline(ctx context.Context, name string) error {
	ix, err := p.ensureIndex(ctx, name)
	if err != nil {
		return err
	}
	search.BuildPullPipeline(ix, p.opts.Deployment)
	if err := p.admin.CreateIndex(ctx, ix); err != nil {
		return stepError("create index", err)
	}

	// The indexer references the data source and skillset, so it goes first.
	stale := []struct {
		kind string
		name string
		del  func(context.Context, string) error
	}{
		{"indexer", search.IndexerName, p.admin.DeleteIndexer},
		{"data source", search.DataSourceName, p.admin.DeleteDataSource},
		{"skillset", search.SkillsetName, p.admin.DeleteSkillset},
	}
	for _, r := range stale {
		outcome, err := p.tryDelete(ctx, r.kind, r.name, r.del)
		if outcome == Failed {
			return stepError("delete "+r.kind, err)
		}
		if outcome == Deleted {
			p.settle()
		}
	}

	if err := p.admin.CreateDataSource(ctx, search.NewDataSource(p.opts.StorageResourceID, p.opts.Container)); err != nil {
		return stepError("create data source", err)
	}
	if err := p.admin.CreateSkillset(ctx, search.NewSkillset(name, p.opts.Deployment)); err != nil {
		return stepError("create skillset", err)
	}
	if err := p.admin.CreateIndexer(ctx, search.NewIndexer(name)); err != nil {
		return stepError("create indexer", err)
	}
	return nil
}

// ensureIndex deletes any index called name, waits for the deletion to
// settle, and returns an empty topology to build on.
func (p *Provisioner) ensureIndex(ctx context.Context, name string) (*search.Index, error) {
	_, err := p.admin.GetIndex(ctx, name)
	switch {
	case err == nil:
		p.logger.Info("Deleting existing index", "index", name)
		if err := p.admin.DeleteIndex(ctx, name); err != nil {
			return nil, stepError("delete index", err)
		}
		p.settle()
	case errors.Is(err, search.ErrNotFound):
	default:
		return nil, stepError("get index", err)
	}
	return search.NewIndex(name), nil
}

func (p *Provisioner) settle() {
	p.logger.Debug("Waiting for deletion to settle", "delay", p.opts.SettleDelay)
	p.sleep(p.opts.SettleDelay)
}
