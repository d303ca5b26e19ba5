// Package app builds the long-lived clients and services from configuration.
// Every entry point constructs one App and shares it for the process
// lifetime.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/bull/foundry-sharepoint/internal/analysis"
	"github.com/bull/foundry-sharepoint/internal/api"
	"github.com/bull/foundry-sharepoint/internal/blob"
	"github.com/bull/foundry-sharepoint/internal/chunking"
	"github.com/bull/foundry-sharepoint/internal/config"
	"github.com/bull/foundry-sharepoint/internal/document"
	"github.com/bull/foundry-sharepoint/internal/embedding"
	"github.com/bull/foundry-sharepoint/internal/ingest"
	"github.com/bull/foundry-sharepoint/internal/metrics"
	"github.com/bull/foundry-sharepoint/internal/provision"
	"github.com/bull/foundry-sharepoint/internal/search"
	"github.com/bull/foundry-sharepoint/internal/search/azure"
	"github.com/bull/foundry-sharepoint/internal/search/qdrant"
	"github.com/bull/foundry-sharepoint/internal/secrets"
	"github.com/bull/foundry-sharepoint/internal/sharepoint"
)

// App holds the wired services.
type App struct {
	Boot        *config.Bootstrap
	Settings    *config.Settings
	Logger      *slog.Logger
	Secrets     secrets.Provider
	Backend     search.Backend
	Blobs       blob.ObjectStore
	Provisioner *provision.Provisioner
	Documents   *ingest.Service
	Targets     provision.Targets
	Registry    *prometheus.Registry

	closers []func() error
}

// New resolves secrets and constructs every client. It fails if any secret
// is missing or the selected search backend is unreachable.
func New(ctx context.Context, boot *config.Bootstrap, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	provider, err := NewSecretProvider(boot, logger)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(ctx, provider, boot)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return Build(ctx, boot, settings, provider, logger)
}

// Build wires the services from resolved settings.
func Build(ctx context.Context, boot *config.Bootstrap, settings *config.Settings, provider secrets.Provider, logger *slog.Logger) (*App, error) {
	a := &App{
		Boot:     boot,
		Settings: settings,
		Logger:   logger,
		Secrets:  provider,
		Targets: provision.Targets{
			PreVectorized: boot.PreVectorizedIndex,
			PullPipeline:  boot.PullPipelineIndex,
		},
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.Registry)

	backend, err := a.newBackend(settings, logger)
	if err != nil {
		return nil, err
	}
	a.Backend = backend

	a.Blobs, err = newObjectStore(settings, logger.With("component", "blob"))
	if err != nil {
		a.Close()
		return nil, err
	}

	embeddingClient, err := embedding.NewClient(settings.Foundry)
	if err != nil {
		a.Close()
		return nil, err
	}
	vectorizer := embedding.NewVectorizer(embeddingClient, logger.With("component", "embedding"))

	graph, err := sharepoint.NewClient(ctx, settings.Graph, boot.GraphRequestsPerSecond)
	if err != nil {
		a.Close()
		return nil, err
	}
	fetcher := sharepoint.NewFetcher(graph, logger.With("component", "sharepoint"))

	analyzer := analysis.NewClient(settings.Foundry, boot.AnalysisTimeout, logger.With("component", "analysis"))
	chunker := chunking.NewPipeline(fetcher, analyzer, vectorizer, logger.With("component", "chunking"))

	docOpts := ingest.Options{
		VectorizedIndex: boot.PreVectorizedIndex,
		PullIndex:       boot.PullPipelineIndex,
		DeleteKeyField:  search.FieldChunkID,
		Privilege:       sharepoint.MostPrivileged,
	}
	if boot.SearchBackend == "qdrant" {
		// No pull pipeline on Qdrant: deletes purge the pre-vectorized collection.
		docOpts.PullIndex = boot.PreVectorizedIndex
		docOpts.DeleteKeyField = document.FieldID
	}
	a.Documents = ingest.NewService(fetcher, chunker, a.Blobs, a.Backend, docOpts, logger.With("component", "ingest"), m)

	opts := provision.Options{
		Deployment: search.EmbeddingDeployment{
			ResourceURI:  settings.Foundry.OpenAIEndpoint,
			DeploymentID: settings.Foundry.EmbeddingModel,
			ModelName:    settings.Foundry.EmbeddingModel,
			APIKey:       settings.Foundry.AccountKey,
			Dimensions:   document.VectorDimension,
		},
		Container:   boot.BlobContainer,
		SettleDelay: boot.SettleDelay,
	}
	if settings.Search != nil {
		opts.StorageResourceID = settings.Search.StorageResourceID
	}
	a.Provisioner = provision.New(a.Backend, opts, logger.With("component", "provision"), m)

	return a, nil
}

func (a *App) newBackend(settings *config.Settings, logger *slog.Logger) (search.Backend, error) {
	switch a.Boot.SearchBackend {
	case "qdrant":
		store, err := qdrant.NewStore(a.Boot.QdrantHost, a.Boot.QdrantPort, logger.With("component", "qdrant"))
		if err != nil {
			return nil, fmt.Errorf("search backend: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		if settings.Search == nil {
			return nil, fmt.Errorf("search backend: %w: azure search settings", config.ErrMissingSetting)
		}
		return azure.NewClient(*settings.Search, logger.With("component", "search"))
	}
}

// newObjectStore picks the store the pull pipeline can read: the Azure
// storage account for the azure backend, otherwise the S3-compatible store.
func newObjectStore(settings *config.Settings, logger *slog.Logger) (blob.ObjectStore, error) {
	switch {
	case settings.AzureBlob != nil:
		store, err := blob.NewAzureStore(*settings.AzureBlob, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case settings.Blob != nil:
		store, err := blob.NewStore(*settings.Blob, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("object store: %w: blob storage settings", config.ErrMissingSetting)
	}
}

// NewSecretProvider selects the secret store named by SECRET_SOURCE.
func NewSecretProvider(boot *config.Bootstrap, logger *slog.Logger) (secrets.Provider, error) {
	switch boot.SecretSource {
	case "env":
		return secrets.NewEnvProvider(), nil
	case "keyvault":
		return secrets.NewKeyVaultProvider(boot.KeyVaultURL, logger.With("component", "keyvault"))
	case "vault":
		return secrets.NewVaultProvider(secrets.VaultConfig{
			Address: boot.VaultAddress,
			Token:   boot.VaultToken,
			Mount:   boot.VaultMount,
			Prefix:  boot.VaultPrefix,
		}, logger.With("component", "vault"))
	default:
		return nil, fmt.Errorf("unknown secret source %q", boot.SecretSource)
	}
}

// HealthChecks lists the dependencies reported by /health.
func (a *App) HealthChecks() []api.NamedCheck {
	checks := []api.NamedCheck{
		{Name: "search", Checker: a.Backend},
		{Name: "blob", Checker: a.Blobs},
	}
	if hc, ok := a.Secrets.(api.HealthChecker); ok {
		checks = append(checks, api.NamedCheck{Name: "secrets", Checker: hc})
	}
	return checks
}

// MetricsHandler serves the app's registry.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})
}

// DeployProvisioner returns the provisioner, or nil when deployment is
// disabled by configuration.
func (a *App) DeployProvisioner() api.Provisioner {
	if !a.Boot.DeployEnabled {
		return nil
	}
	return a.Provisioner
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs error
	for _, c := range a.closers {
		errs = multierr.Append(errs, c())
	}
	a.closers = nil
	return errs
}
