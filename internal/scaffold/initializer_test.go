package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/lore/pkg/skillbook"
)

func TestInitialize(t *testing.T) {
	t.Run("creates hierarchy and config", func(t *testing.T) {
		base := t.TempDir()
		configPath := filepath.Join(base, "config", "lore.yml")
		skillDir := filepath.Join(base, "skillbooks")

		err := Initialize(skillDir, configPath, false)
		require.NoError(t, err)

		assert.DirExists(t, filepath.Join(skillDir, "languages"))
		assert.DirExists(t, filepath.Join(skillDir, "frameworks"))
		assert.DirExists(t, filepath.Join(skillDir, "backups"))
		assert.FileExists(t, configPath)

		universal := skillbook.DefaultHierarchy(skillDir).Universal()
		assert.FileExists(t, universal)
		assert.Empty(t, skillbook.NewStore().Load(universal))
	})

	t.Run("refuses to overwrite existing config", func(t *testing.T) {
		base := t.TempDir()
		configPath := filepath.Join(base, "lore.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("version: \"1.0\"\n"), 0644))

		err := Initialize(filepath.Join(base, "skillbooks"), configPath, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already initialized")
	})

	t.Run("force overwrites config but keeps skills", func(t *testing.T) {
		base := t.TempDir()
		configPath := filepath.Join(base, "lore.yml")
		skillDir := filepath.Join(base, "skillbooks")

		require.NoError(t, Initialize(skillDir, configPath, false))

		universal := skillbook.DefaultHierarchy(skillDir).Universal()
		store := skillbook.NewStore()
		_, err := store.Add(universal, "success", "Always run go test ./... before committing changes", false, 0)
		require.NoError(t, err)

		require.NoError(t, Initialize(skillDir, configPath, true))
		assert.Len(t, store.Load(universal), 1)
	})
}

func TestCheckExisting(t *testing.T) {
	t.Run("passes when config absent", func(t *testing.T) {
		require.NoError(t, CheckExisting(filepath.Join(t.TempDir(), "lore.yml")))
	})
}
