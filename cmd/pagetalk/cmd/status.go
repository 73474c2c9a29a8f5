package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagetalk/pagetalk/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <document>",
		Short: "Show a document's index status",
		Long: `Show whether a document has been ingested, how many passages its
index holds, and whether the embedding service is reachable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args[0])
		},
	}

	return cmd
}

func runStatus(cmd *cobra.Command, docID string) error {
	out := ui.NewWriter(cmd.OutOrStdout())

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	info, err := a.store.Info(ctx, docID)
	if err != nil {
		return err
	}
	if info == nil {
		out.Warning("no index for %q; run 'pagetalk ingest' first", docID)
		return nil
	}

	out.Success("document %q", info.DocumentID)
	out.Info("  passages:  %d", info.PassageCount)
	out.Info("  ingested:  %s", info.Timestamp.Format(time.RFC3339))
	out.Info("  embedder:  %s", a.embedder.ModelName())

	probeCtx, probeCancel := context.WithTimeout(ctx, 5*time.Second)
	defer probeCancel()
	if a.embedder.Available(probeCtx) {
		out.Info("  service:   reachable")
	} else {
		out.Warning("embedding service unreachable; queries will fail closed")
	}
	return nil
}
