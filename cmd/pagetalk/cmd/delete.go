package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pagetalk/pagetalk/internal/ui"
)

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <document>",
		Short: "Delete a document's index",
		Long: `Delete a document's persisted index. Deleting a document that was
never ingested succeeds silently.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0])
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, docID string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := a.store.Delete(ctx, docID); err != nil {
		return err
	}

	ui.NewWriter(cmd.OutOrStdout()).Success("deleted index for %q", docID)
	return nil
}
