package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/lore/pkg/skillbook"
)

func newTestMigrator(t *testing.T) (*Migrator, skillbook.Hierarchy, *skillbook.Store) {
	t.Helper()
	hierarchy := skillbook.DefaultHierarchy(t.TempDir())
	store := skillbook.NewStore()
	return New(hierarchy, store, zerolog.Nop()), hierarchy, store
}

func legacySkill(id, content string) skillbook.Skill {
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return skillbook.Skill{
		ID:        id,
		Section:   "success",
		Content:   content,
		Helpful:   2,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestMigrateRun(t *testing.T) {
	migrator, hierarchy, store := newTestMigrator(t)

	source := filepath.Join(hierarchy.BaseDir, "legacy.json")
	require.True(t, store.Save(source, []skillbook.Skill{
		legacySkill("success-00001", "Use pytest fixtures instead of module-level setup"),
		legacySkill("success-00002", "Run manage.py makemigrations after every model change"),
		legacySkill("success-00003", "Keep commit messages short and in the imperative mood"),
	}))

	result, err := migrator.Run(Options{
		Sources:    []string{source},
		BackupDir:  filepath.Join(hierarchy.BaseDir, "backups"),
		BackupKeep: 5,
	})
	require.NoError(t, err)

	require.Len(t, result.Moved, 3)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.FileExists(t, result.BackupPath)

	python := store.Load(hierarchy.Language("python"))
	require.Len(t, python, 1)
	assert.Contains(t, python[0].Content, "pytest fixtures")
	assert.Equal(t, "python", python[0].Language, "destination scope stamps the language tag")

	django := store.Load(hierarchy.Framework("django"))
	require.Len(t, django, 1)
	assert.Equal(t, "django", django[0].Framework)

	universal := store.Load(hierarchy.Universal())
	require.Len(t, universal, 1)
	assert.Contains(t, universal[0].Content, "commit messages")

	assert.Empty(t, store.Load(source), "legacy collection must drain completely")
}

func TestMigrateDuplicateAtDestination(t *testing.T) {
	migrator, hierarchy, store := newTestMigrator(t)

	require.True(t, store.Save(hierarchy.Universal(), []skillbook.Skill{
		legacySkill("success-00001", "Always run tests before committing changes"),
	}))
	source := filepath.Join(hierarchy.BaseDir, "legacy.json")
	require.True(t, store.Save(source, []skillbook.Skill{
		legacySkill("success-00001", "Always run tests before committing code"),
	}))

	result, err := migrator.Run(Options{Sources: []string{source}, BackupKeep: 5})
	require.NoError(t, err)

	assert.Empty(t, result.Moved)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, store.Load(hierarchy.Universal()), 1, "duplicate must not be appended")
	assert.Empty(t, store.Load(source), "duplicate source copy is still removed")
}

func TestMigrateSkipsSkillsAlreadyHome(t *testing.T) {
	migrator, hierarchy, store := newTestMigrator(t)

	// A universal-classified skill already in the universal collection has
	// nowhere to go.
	require.True(t, store.Save(hierarchy.Universal(), []skillbook.Skill{
		legacySkill("success-00001", "Keep commit messages short and in the imperative mood"),
	}))

	result, err := migrator.Run(Options{Sources: []string{hierarchy.Universal()}, BackupKeep: 5})
	require.NoError(t, err)

	assert.Empty(t, result.Moved)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, store.Load(hierarchy.Universal()), 1)
}

func TestMigrateDryRun(t *testing.T) {
	migrator, hierarchy, store := newTestMigrator(t)

	source := filepath.Join(hierarchy.BaseDir, "legacy.json")
	require.True(t, store.Save(source, []skillbook.Skill{
		legacySkill("success-00001", "Use pytest fixtures instead of module-level setup"),
	}))

	result, err := migrator.Run(Options{Sources: []string{source}, DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	require.Len(t, result.Moved, 1)
	assert.Equal(t, hierarchy.Language("python"), result.Moved[0].Destination)
	assert.Equal(t, skillbook.LevelLanguage, result.Moved[0].Level)

	assert.Empty(t, result.BackupPath, "dry runs take no backup")
	assert.Len(t, store.Load(source), 1, "dry runs mutate nothing")
	assert.NoFileExists(t, hierarchy.Language("python"))
}

func TestMigrateBatch(t *testing.T) {
	migrator, hierarchy, store := newTestMigrator(t)

	source := filepath.Join(hierarchy.BaseDir, "legacy.json")
	require.True(t, store.Save(source, []skillbook.Skill{
		legacySkill("success-00001", "Use pytest fixtures instead of module-level setup"),
		legacySkill("success-00002", "Prefer pytest parametrize over copy-pasted test bodies"),
		// Near-duplicate of the first entry, deduplicated within the batch.
		legacySkill("success-00003", "Use pytest fixtures instead of module-level setups"),
	}))

	result, err := migrator.Run(Options{
		Sources:    []string{source},
		Batch:      true,
		BackupKeep: 5,
	})
	require.NoError(t, err)

	assert.Len(t, result.Moved, 2)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, store.Load(hierarchy.Language("python")), 2)
	assert.Empty(t, store.Load(source))
}

func TestMigrateContinuesPastEmptySources(t *testing.T) {
	migrator, hierarchy, store := newTestMigrator(t)

	empty := filepath.Join(hierarchy.BaseDir, "empty.json")
	source := filepath.Join(hierarchy.BaseDir, "legacy.json")
	require.True(t, store.Save(source, []skillbook.Skill{
		legacySkill("success-00001", "Use pytest fixtures instead of module-level setup"),
	}))

	result, err := migrator.Run(Options{Sources: []string{empty, source}, BackupKeep: 5})
	require.NoError(t, err)

	assert.Len(t, result.Moved, 1)
	assert.Empty(t, result.Errors)
}

func TestBackup(t *testing.T) {
	baseDir := t.TempDir()
	backupDir := filepath.Join(baseDir, "backups")
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "languages"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "languages", "python.json"), []byte(`{"skills":[]}`), 0o644))

	now := time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)
	path, err := Backup(baseDir, backupDir, 5, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(backupDir, "skillbook-backup-20260401-103000.tar.gz"), path)
	assert.FileExists(t, path)

	// Archives never swallow earlier archives.
	second, err := Backup(baseDir, backupDir, 5, now.Add(time.Minute))
	require.NoError(t, err)
	assert.NotEqual(t, path, second)
	assert.FileExists(t, path)
}

func TestBackupRotation(t *testing.T) {
	baseDir := t.TempDir()
	backupDir := filepath.Join(baseDir, "backups")
	require.NoError(t, os.MkdirAll(backupDir, 0o755))
	for _, stamp := range []string{"20260101-000000", "20260102-000000", "20260103-000000"} {
		name := backupPrefix + stamp + ".tar.gz"
		require.NoError(t, os.WriteFile(filepath.Join(backupDir, name), []byte("old"), 0o644))
	}

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	newest, err := Backup(baseDir, backupDir, 2, now)
	require.NoError(t, err)

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.FileExists(t, newest)
	assert.NoFileExists(t, filepath.Join(backupDir, backupPrefix+"20260101-000000.tar.gz"))
	assert.NoFileExists(t, filepath.Join(backupDir, backupPrefix+"20260102-000000.tar.gz"))
}
