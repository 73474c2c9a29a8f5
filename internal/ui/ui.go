// Package ui renders pagetalk's terminal output: a plain writer for
// pipes and scripts, and an interactive chat view for TTYs.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer prints plain, icon-prefixed status lines. Write errors on
// console output are ignored.
type Writer struct {
	out io.Writer
}

// NewWriter creates a plain writer.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Success prints a success line.
func (w *Writer) Success(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "✅ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func (w *Writer) Warning(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "⚠️  %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error line.
func (w *Writer) Error(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "❌ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an unadorned line.
func (w *Writer) Info(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "%s\n", fmt.Sprintf(format, args...))
}

// Block prints indented multi-line content with surrounding blank lines.
func (w *Writer) Block(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}
