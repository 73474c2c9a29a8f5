package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagetalk/pagetalk/internal/ui"
)

func newIngestCmd() *cobra.Command {
	var docID string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a plain-text document",
		Long: `Ingest a plain-text document into its semantic index.

The document id defaults to the file name without extension. Re-running
ingest for the same id fully replaces the prior index.

Examples:
  pagetalk ingest mobydick.txt
  pagetalk ingest notes.md --id meeting-notes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], docID)
		},
	}

	cmd.Flags().StringVar(&docID, "id", "", "Document id (default: file name without extension)")

	return cmd
}

func runIngest(cmd *cobra.Command, path, docID string) error {
	out := ui.NewWriter(cmd.OutOrStdout())

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if docID == "" {
		base := filepath.Base(path)
		docID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	res, err := a.pipeline.Ingest(ctx, docID, string(text))
	if err != nil {
		out.Error("ingestion failed: %v", err)
		return err
	}

	out.Success("ingested %q: %d passages in %s", res.DocumentID, res.PassageCount, res.Duration.Round(time.Millisecond))
	return nil
}
