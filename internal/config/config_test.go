package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lore.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
		require.NoError(t, err)

		assert.True(t, cfg.Enabled)
		assert.True(t, cfg.AutoInject)
		assert.Equal(t, "http://localhost:4096", cfg.OpenCode.BaseURL)
		assert.Equal(t, 0.85, cfg.Dedup.SimilarityThreshold)
		assert.Equal(t, "language", cfg.Routing.DefaultScope)
		assert.Equal(t, 10, cfg.Promotion.MinHelpfulScore)
		assert.True(t, cfg.Promotion.Enabled, "promotion is on out of the box, matching the scaffolded config")
		assert.Equal(t, 5, cfg.Migration.BackupKeep)
	})

	t.Run("partial config fills defaults", func(t *testing.T) {
		path := writeConfig(t, `
version: "1.0"
enabled: true
opencode:
  base_url: http://example.com:9000/
dedup:
  similarity_threshold: 0.9
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "http://example.com:9000", cfg.OpenCode.BaseURL, "trailing slash stripped")
		assert.Equal(t, 0.9, cfg.Dedup.SimilarityThreshold)
		assert.Equal(t, 120, cfg.OpenCode.TimeoutSeconds)
		require.NotNil(t, cfg.Scopes.Language)
		assert.True(t, *cfg.Scopes.Language)
		require.NotNil(t, cfg.Scopes.Project)
		assert.False(t, *cfg.Scopes.Project, "project scope defaults off")
	})

	t.Run("rejects unsupported version", func(t *testing.T) {
		path := writeConfig(t, "version: \"2.0\"\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported version")
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		path := writeConfig(t, "version: [unclosed\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML")
	})

	t.Run("rejects out-of-range similarity threshold", func(t *testing.T) {
		path := writeConfig(t, `
version: "1.0"
dedup:
  similarity_threshold: 1.5
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "similarity_threshold")
	})

	t.Run("rejects unknown default scope", func(t *testing.T) {
		path := writeConfig(t, `
version: "1.0"
routing:
  default_scope: framework
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_scope")
	})
}

func TestSkillbookHierarchy(t *testing.T) {
	cfg := Default()
	cfg.Hierarchy.BaseDir = "/tmp/lore-test"

	hierarchy := cfg.SkillbookHierarchy()
	require.NoError(t, hierarchy.Validate())
	assert.Equal(t, filepath.Join("/tmp/lore-test", "global", "universal.json"), hierarchy.Universal())
	assert.False(t, hierarchy.ProjectsEnabled)
}

func TestValidator(t *testing.T) {
	cfg := Default()
	validator := cfg.Validator()
	assert.Equal(t, 20, validator.MinLength)
	assert.Equal(t, 2000, validator.MaxLength)
	assert.True(t, validator.RequireEvidence)
}
