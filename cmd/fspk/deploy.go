package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bull/foundry-sharepoint/internal/provision"
)

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Delete and recreate a search index",
		Long: `Deletes the index if it exists, waits for the deletion to settle, and
creates it again from scratch. Every document in the index is lost.`,
	}
	cmd.AddCommand(
		newDeployVariantCmd("prevectorized", "Index for chunks vectorized by this tool", provision.PreVectorized),
		newDeployVariantCmd("pull-pipeline", "Index, data source, skillset and indexer fed from blob storage", provision.PullPipeline),
	)
	return cmd
}

func newDeployVariantCmd(use, short string, variant provision.Variant) *cobra.Command {
	var index string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if index == "" {
				index = a.Targets.IndexFor(variant)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deploying %s index %s...\n", variant, index)

			result := a.Provisioner.Provision(cmd.Context(), index, variant)
			fmt.Fprintln(cmd.OutOrStdout(), provision.Describe(index, result))
			if result != "" {
				return errors.New(result)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&index, "index", "", "index name (default: the configured index for this variant)")
	return cmd
}
