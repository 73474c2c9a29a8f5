package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/embed"
	"github.com/pagetalk/pagetalk/internal/errors"
)

func samplePassages() []chunk.Passage {
	return []chunk.Passage{
		{SequenceID: 0, Text: "The ship sailed at dawn."},
		{SequenceID: 1, Text: "By noon the harbor was out of sight."},
		{SequenceID: 2, Text: "The crew settled into the long watch."},
	}
}

// backends for the shared contract tests.
func openBackends(t *testing.T) map[string]IndexStore {
	t.Helper()
	em := embed.NewStaticEmbedder()

	fs, err := NewFileStore(t.TempDir(), em)
	require.NoError(t, err)

	ss, err := NewSQLiteStore(filepath.Join(t.TempDir(), "pagetalk.db"), em)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = fs.Close()
		_ = ss.Close()
	})
	return map[string]IndexStore{"file": fs, "sqlite": ss}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// When: saving and loading a document
			require.NoError(t, st.Save(ctx, "voyage", samplePassages()))
			ix, err := st.Load(ctx, "voyage")

			// Then: the index holds the saved passages in order
			require.NoError(t, err)
			require.NotNil(t, ix)
			assert.Equal(t, 3, ix.Len())
			assert.Equal(t, samplePassages(), ix.Passages())
			assert.Equal(t, embed.StaticDimensions, ix.Dimensions())
		})
	}
}

func TestLoadMissingDocumentReturnsNil(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ix, err := st.Load(context.Background(), "never-saved")

			require.NoError(t, err)
			assert.Nil(t, ix)
		})
	}
}

func TestSaveReplacesPriorRecord(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.Save(ctx, "doc", samplePassages()))

			replacement := []chunk.Passage{{SequenceID: 0, Text: "Rewritten from scratch."}}
			require.NoError(t, st.Save(ctx, "doc", replacement))

			ix, err := st.Load(ctx, "doc")
			require.NoError(t, err)
			require.NotNil(t, ix)
			assert.Equal(t, 1, ix.Len())
			assert.Equal(t, "Rewritten from scratch.", ix.Passages()[0].Text)
		})
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.Save(ctx, "doc", samplePassages()))

			require.NoError(t, st.Delete(ctx, "doc"))
			require.NoError(t, st.Delete(ctx, "doc"))

			exists, err := st.Exists(ctx, "doc")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestExists(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			exists, err := st.Exists(ctx, "doc")
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, st.Save(ctx, "doc", samplePassages()))

			exists, err = st.Exists(ctx, "doc")
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestInfoReportsMetadata(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			info, err := st.Info(ctx, "doc")
			require.NoError(t, err)
			assert.Nil(t, info)

			before := time.Now().Add(-time.Minute)
			require.NoError(t, st.Save(ctx, "doc", samplePassages()))

			info, err = st.Info(ctx, "doc")
			require.NoError(t, err)
			require.NotNil(t, info)
			assert.Equal(t, 3, info.PassageCount)
			assert.Equal(t, SchemaPassages, info.Schema)
			assert.True(t, info.Timestamp.After(before))
		})
	}
}

func TestDocumentIDsNormalizeToSameRecord(t *testing.T) {
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.Save(ctx, "My Book (2024)", samplePassages()))

			// "MyBook2024" is the normalized form of both ids.
			ix, err := st.Load(ctx, "MyBook2024")
			require.NoError(t, err)
			require.NotNil(t, ix)
			assert.Equal(t, 3, ix.Len())
		})
	}
}

func TestNormalizeDocumentID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"My Book (2024)", "MyBook2024"},
		{"notes_v2-final", "notes_v2-final"},
		{"../../etc/passwd", "etcpasswd"},
		{"héllo wörld", "hllowrld"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeDocumentID(tc.in), "input %q", tc.in)
	}
}

func TestLoadLegacyTextsRecord(t *testing.T) {
	// Given: a record in the oldest on-disk shape, a bare texts array
	dir := t.TempDir()
	legacy := `{"documentId":"old","texts":["first passage","second passage"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.json"), []byte(legacy), 0o644))

	st, err := NewFileStore(dir, embed.NewStaticEmbedder())
	require.NoError(t, err)

	// When: loading it
	ix, err := st.Load(context.Background(), "old")

	// Then: sequence ids are synthesized from array position
	require.NoError(t, err)
	require.NotNil(t, ix)
	require.Equal(t, 2, ix.Len())
	assert.Equal(t, 0, ix.Passages()[0].SequenceID)
	assert.Equal(t, "second passage", ix.Passages()[1].Text)

	info, err := st.Info(context.Background(), "old")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, SchemaLegacyTexts, info.Schema)
}

func TestLoadCorruptRecordFails(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(dir, embed.NewStaticEmbedder())
	require.NoError(t, err)

	cases := map[string]string{
		"not-json":    `{{{`,
		"wrong-shape": `{"documentId":"x","other":true}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644))

			_, err := st.Load(context.Background(), name)

			require.Error(t, err)
			assert.True(t, errors.IsCorruptRecord(err))
		})
	}
}

func TestEncodeDecodeRecord(t *testing.T) {
	data, err := EncodeRecord("doc", samplePassages())
	require.NoError(t, err)

	rec, err := DecodeRecord(data)
	require.NoError(t, err)

	assert.Equal(t, "doc", rec.DocumentID)
	assert.Equal(t, samplePassages(), rec.Passages)
	assert.Equal(t, SchemaPassages, rec.Schema)
	assert.Equal(t, []string{
		"The ship sailed at dawn.",
		"By noon the harbor was out of sight.",
		"The crew settled into the long watch.",
	}, rec.Texts())
}

func TestSQLiteInMemoryStore(t *testing.T) {
	st, err := NewSQLiteStore("", embed.NewStaticEmbedder())
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	require.NoError(t, st.Save(ctx, "doc", samplePassages()))

	ix, err := st.Load(ctx, "doc")
	require.NoError(t, err)
	require.NotNil(t, ix)
	assert.Equal(t, 3, ix.Len())
}
