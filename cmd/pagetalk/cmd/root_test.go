package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootListsCommands(t *testing.T) {
	out, err := execute(t, "--help")

	require.NoError(t, err)
	for _, name := range []string{"ingest", "ask", "search", "status", "delete", "watch", "serve", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "pagetalk")
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := execute(t, "version", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
	assert.Contains(t, out, `"go_version"`)
}

func TestIngestRequiresFile(t *testing.T) {
	_, err := execute(t, "ingest")
	assert.Error(t, err)
}

func TestIngestMissingFileFails(t *testing.T) {
	_, err := execute(t, "ingest", "/nonexistent/book.txt")
	assert.Error(t, err)
}

func TestSearchRequiresQuery(t *testing.T) {
	_, err := execute(t, "search", "doc-only")
	assert.Error(t, err)
}

func TestServeRejectsArgs(t *testing.T) {
	_, err := execute(t, "serve", "extra")
	assert.Error(t, err)
}
