package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagetalk/pagetalk/internal/chat"
	"github.com/pagetalk/pagetalk/internal/ui"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <document> [question...]",
		Short: "Ask a document a question",
		Long: `Ask a question and get an answer grounded in the document's content.

With a question, answers once and exits. Without one, opens an
interactive chat when attached to a terminal.

Examples:
  pagetalk ask mobydick "who is Queequeg?"
  pagetalk ask mobydick`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docID := args[0]
			question := strings.Join(args[1:], " ")
			return runAsk(cmd, docID, question)
		},
	}

	return cmd
}

func runAsk(cmd *cobra.Command, docID, question string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	answerer, err := a.newAnswerer()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if question != "" {
		return askOnce(ctx, cmd, answerer, docID, question)
	}

	if !ui.IsTTY(cmd.OutOrStdout()) {
		return cmd.Help()
	}

	prog := ui.NewChatProgram(ctx, docID, func(ctx context.Context, q string) (*chat.Answer, error) {
		return answerer.Ask(ctx, docID, q)
	})
	_, err = prog.Run()
	return err
}

func askOnce(ctx context.Context, cmd *cobra.Command, answerer *chat.Answerer, docID, question string) error {
	out := ui.NewWriter(cmd.OutOrStdout())

	ans, err := answerer.Ask(ctx, docID, question)
	if err != nil {
		out.Error("ask failed: %v", err)
		return err
	}

	if ans.Restricted {
		out.Warning("%s", ans.Text)
		return nil
	}
	out.Block(ans.Text)
	return nil
}
