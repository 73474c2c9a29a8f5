package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagetalk/pagetalk/internal/retrieve"
	"github.com/pagetalk/pagetalk/internal/ui"
)

func newSearchCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search <document> <query...>",
		Short: "Retrieve the passages most relevant to a query",
		Long: `Retrieve a document's passages most relevant to a query, best
match first. Page, chapter, and translation queries automatically widen
the search.

Examples:
  pagetalk search mobydick "the white whale"
  pagetalk search mobydick "what is on page 42" --format json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], strings.Join(args[1:], " "), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, docID, query, format string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	res, err := a.retriever.Search(ctx, docID, query)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printSearchResult(cmd, docID, res)
	return nil
}

func printSearchResult(cmd *cobra.Command, docID string, res retrieve.Result) {
	out := ui.NewWriter(cmd.OutOrStdout())

	if len(res.Passages) == 0 {
		out.Warning("no passages found in %q", docID)
		return
	}

	note := fmt.Sprintf("%d passages", len(res.Passages))
	if res.Widened {
		note += " (widened)"
	}
	if res.Stage != "" && res.Stage != "vector" {
		note += fmt.Sprintf(" via %s fallback", res.Stage)
	}
	out.Info("%s", note)

	for _, p := range res.Passages {
		out.Info("")
		out.Info("[%d] %s", p.SequenceID, p.Text)
	}
}
