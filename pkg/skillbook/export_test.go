package skillbook

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport(t *testing.T) {
	source := filepath.Join(t.TempDir(), "source.json")
	store := NewStore()

	_, err := store.Add(source, "success", "Vendor protobuf definitions with buf generate", false, 0)
	require.NoError(t, err)
	_, err = store.Add(source, "failure", "Do not parse HTML with regex, use an html.Parser", false, 0)
	require.NoError(t, err)

	t.Run("export wraps the collection with provenance", func(t *testing.T) {
		envelope := store.Export(source, "agent-1")
		assert.Equal(t, FormatVersion, envelope.Version)
		assert.Equal(t, "agent-1", envelope.AgentID)
		assert.NotEmpty(t, envelope.ExportID)
		assert.Len(t, envelope.Skills, 2)

		second := store.Export(source, "agent-1")
		assert.NotEqual(t, envelope.ExportID, second.ExportID)
	})

	t.Run("export round-trips through the wire format", func(t *testing.T) {
		envelope := store.Export(source, "agent-1")

		var buf bytes.Buffer
		require.NoError(t, WriteExport(&buf, envelope))

		parsed, err := ReadExport(&buf)
		require.NoError(t, err)
		assert.Equal(t, envelope.Skills, parsed.Skills)
		assert.Equal(t, envelope.AgentID, parsed.AgentID)
	})

	t.Run("merge import skips existing ids", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "target.json")
		_, err := store.Add(target, "success", "Existing skill occupying success-00001", false, 0)
		require.NoError(t, err)

		result, err := store.Import(target, store.Export(source, "agent-1"), ImportMerge)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported, "failure-00001 is new")
		assert.Equal(t, 1, result.Duplicates, "success-00001 already present")
		assert.Len(t, store.Load(target), 2)
	})

	t.Run("replace import overwrites the collection", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "target.json")
		_, err := store.Add(target, "success", "Old content that should disappear entirely", false, 0)
		require.NoError(t, err)

		result, err := store.Import(target, store.Export(source, "agent-1"), ImportReplace)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Len(t, store.Load(target), 2)
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		_, err := store.Import(source, ExportEnvelope{}, ImportMode("append"))
		require.Error(t, err)
	})

	t.Run("malformed export fails to parse", func(t *testing.T) {
		_, err := ReadExport(bytes.NewBufferString("{broken"))
		require.Error(t, err)
	})
}
