// Package cmd provides the CLI commands for pagetalk.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pagetalk/pagetalk/internal/config"
	"github.com/pagetalk/pagetalk/internal/logging"
	"github.com/pagetalk/pagetalk/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the pagetalk CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagetalk",
		Short: "Chat with your documents, grounded in their content",
		Long: `pagetalk ingests plain-text documents into per-document semantic
indexes and answers questions from that content alone. Questions the
document cannot answer are refused, not improvised.

Ingest a document, then ask it questions:

  pagetalk ingest mobydick.txt
  pagetalk ask mobydick "who is Queequeg?"`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("pagetalk version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// A local .env may carry OPENAI_API_KEY; absence is fine.
		_ = godotenv.Load()
		return setupLogging()
	}
	cmd.PersistentPostRun = func(c *cobra.Command, args []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(
		newIngestCmd(),
		newAskCmd(),
		newSearchCmd(),
		newStatusCmd(),
		newDeleteCmd(),
		newWatchCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	return cmd
}

func setupLogging() error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg.Level = "debug"
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		// Logging must never block the CLI; fall back to stderr.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return nil
	}
	slog.SetDefault(logger)
	loggingCleanup = cleanup
	return nil
}

// loadConfig builds the effective config for the working directory.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return config.Load(wd)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
