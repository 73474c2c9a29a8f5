package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pagetalk/pagetalk/internal/ui"
	"github.com/pagetalk/pagetalk/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a drop directory and ingest text files as they appear",
		Long: `Watch a directory for plain-text files and ingest them automatically.
Dropping a .txt or .md file ingests it under the file's base name;
deleting the file removes the document's index.

The directory defaults to the configured watch.dir.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, dir)
		},
	}

	return cmd
}

func runWatch(cmd *cobra.Command, dir string) error {
	out := ui.NewWriter(cmd.OutOrStdout())

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if dir == "" {
		dir = a.cfg.Watch.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := watcher.New(dir, a.cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	ctx, cancel := signalContext()
	defer cancel()

	out.Success("watching %s (ctrl-c to stop)", dir)
	watcher.NewRunner(w, a.pipeline, a.store, nil).Run(ctx)
	out.Info("stopped")
	return nil
}
