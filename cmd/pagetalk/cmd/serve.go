package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pagetalk/pagetalk/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run pagetalk as an MCP server so AI clients can ask grounded
questions against ingested documents. Exposes the ask, search, and
document_status tools.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport: stdio")

	return cmd
}

func runServe(transport string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	answerer, err := a.newAnswerer()
	if err != nil {
		return err
	}

	srv, err := mcp.NewServer(answerer, a.retriever, a.store, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	err = srv.Serve(ctx, transport)

	if snap := a.metrics.Snapshot(); snap.TotalQueries > 0 {
		slog.Info("query metrics at shutdown",
			slog.Int("total", snap.TotalQueries),
			slog.Int("zero_results", snap.ZeroResults),
			slog.Int("widened", snap.Widened),
			slog.Duration("avg_latency", snap.AvgLatency))
	}
	return err
}
