package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bull/foundry-sharepoint/internal/document"
	"github.com/bull/foundry-sharepoint/internal/ingest"
)

// refFlags holds the document reference flags shared by every document command.
type refFlags struct {
	file string
	ref  document.Reference
}

func (f *refFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "ref", "", "JSON file holding the document reference")
	cmd.Flags().StringVar(&f.ref.DriveID, "drive-id", "", "drive id")
	cmd.Flags().StringVar(&f.ref.ItemID, "item-id", "", "drive item id")
	cmd.Flags().StringVar(&f.ref.Name, "name", "", "file name including extension")
	cmd.Flags().StringVar(&f.ref.Title, "title", "", "document title")
	cmd.Flags().StringVar(&f.ref.URL, "url", "", "document web URL")
}

// load returns the reference from --ref, with any explicit flags applied on top.
func (f *refFlags) load() (document.Reference, error) {
	var ref document.Reference
	if f.file != "" {
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return ref, fmt.Errorf("read reference: %w", err)
		}
		if err := json.Unmarshal(raw, &ref); err != nil {
			return ref, fmt.Errorf("parse reference %s: %w", f.file, err)
		}
	}
	overlay(&ref.DriveID, f.ref.DriveID)
	overlay(&ref.ItemID, f.ref.ItemID)
	overlay(&ref.Name, f.ref.Name)
	overlay(&ref.Title, f.ref.Title)
	overlay(&ref.URL, f.ref.URL)
	return ref, nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func newDocumentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Upload, ingest or delete a single SharePoint document",
	}
	cmd.AddCommand(
		newDocumentOpCmd(ingest.OpUpload, "Store the document in blob storage for the indexer",
			func(s *ingest.Service) func(context.Context, document.Reference) bool { return s.Upload }),
		newDocumentOpCmd(ingest.OpIngest, "Chunk, vectorize and index the document locally",
			func(s *ingest.Service) func(context.Context, document.Reference) bool { return s.Ingest }),
		newDocumentOpCmd(ingest.OpDelete, "Remove the document from blob storage and the index",
			func(s *ingest.Service) func(context.Context, document.Reference) bool { return s.Delete }),
	)
	return cmd
}

func newDocumentOpCmd(op, short string, pick func(*ingest.Service) func(context.Context, document.Reference) bool) *cobra.Command {
	var flags refFlags
	cmd := &cobra.Command{
		Use:   op,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := flags.load()
			if err != nil {
				return err
			}

			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ok := pick(a.Documents)(cmd.Context(), ref)
			msg := ingest.Describe(op, ref.Name, ok)
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			if !ok {
				return fmt.Errorf("%s", msg)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
