package skillbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchyPaths(t *testing.T) {
	h := DefaultHierarchy("/data/skillbooks")

	t.Run("universal", func(t *testing.T) {
		assert.Equal(t, filepath.Join("/data/skillbooks", "global", "universal.json"), h.Universal())
	})

	t.Run("language names are lowercased", func(t *testing.T) {
		assert.Equal(t,
			filepath.Join("/data/skillbooks", "languages", "python.json"),
			h.Language("Python"))
	})

	t.Run("framework names are lowercased", func(t *testing.T) {
		assert.Equal(t,
			filepath.Join("/data/skillbooks", "frameworks", "next.js.json"),
			h.Framework("Next.js"))
	})

	t.Run("project scope disabled by default", func(t *testing.T) {
		_, ok := h.Project("/work/myapp")
		assert.False(t, ok)
	})

	t.Run("project scope resolves inside the workdir", func(t *testing.T) {
		enabled := h
		enabled.ProjectsEnabled = true
		path, ok := enabled.Project("/work/myapp")
		require.True(t, ok)
		assert.Equal(t, filepath.Join("/work/myapp", ".lore", "skills.json"), path)
	})
}

func TestHierarchyResolve(t *testing.T) {
	h := DefaultHierarchy("/data/skillbooks")

	t.Run("resolves each level", func(t *testing.T) {
		assert.Equal(t, h.Universal(), h.Resolve(LevelUniversal, "go", "gin", ""))
		assert.Equal(t, h.Language("go"), h.Resolve(LevelLanguage, "go", "gin", ""))
		assert.Equal(t, h.Framework("gin"), h.Resolve(LevelFramework, "go", "gin", ""))
	})

	t.Run("unresolvable scopes fall back to universal", func(t *testing.T) {
		assert.Equal(t, h.Universal(), h.Resolve(LevelLanguage, "", "", ""))
		assert.Equal(t, h.Universal(), h.Resolve(LevelFramework, "", "", ""))
		assert.Equal(t, h.Universal(), h.Resolve(LevelProject, "go", "gin", "/work/myapp"),
			"project scope disabled")
	})
}

func TestHierarchyValidate(t *testing.T) {
	t.Run("default is valid", func(t *testing.T) {
		require.NoError(t, DefaultHierarchy("/data").Validate())
	})

	t.Run("rejects empty base dir", func(t *testing.T) {
		h := DefaultHierarchy("")
		require.Error(t, h.Validate())
	})

	t.Run("rejects colliding scope directories", func(t *testing.T) {
		h := DefaultHierarchy("/data")
		h.FrameworksDir = h.LanguagesDir
		require.Error(t, h.Validate())
	})
}
