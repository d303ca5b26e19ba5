// Package main provides the fspk CLI for index provisioning and one-off
// document operations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bull/foundry-sharepoint/internal/app"
	"github.com/bull/foundry-sharepoint/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "fspk",
	Short: "SharePoint to search index provisioning and ingestion",
	Long: `CLI for provisioning search indexes and moving SharePoint documents into them.

Configuration is read from the environment (and .env if present):
  SECRET_SOURCE   keyvault, vault or env (default: vault)
  KEY_VAULT_URL   Azure Key Vault URL (required for keyvault)
  VAULT_ADDRESS   Vault server address (default: http://localhost:8200)
  VAULT_TOKEN     Vault token (required for vault)
  SEARCH_BACKEND  azure or qdrant (default: azure)
  LOG_LEVEL       debug, info, warn or error (default: info)
  LOG_FORMAT      text or json (default: text)`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newDeployCmd(), newDocumentCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and wires the services.
func setup(ctx context.Context) (*app.App, error) {
	boot, err := config.LoadBootstrap()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(boot, os.Stderr)

	a, err := app.New(ctx, boot, logger)
	if err != nil {
		return nil, fmt.Errorf("startup failed: %w", err)
	}
	return a, nil
}
