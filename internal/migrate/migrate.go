// Package migrate is the one-shot tool that rewrites legacy flat skill
// collections into the hierarchy. Every skill is reclassified by content
// keywords alone, deduplicated against its destination, and moved
// incrementally so a crash loses at most one skill's progress.
package migrate

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyluth/lore/internal/guard"
	"github.com/dyluth/lore/internal/router"
	"github.com/dyluth/lore/pkg/skillbook"
)

// jaccardThreshold is the token-set similarity at which a candidate is
// treated as a duplicate of an existing destination skill.
const jaccardThreshold = 0.85

// Options configures one migration run.
type Options struct {
	Sources    []string // Legacy flat collection files
	DryRun     bool     // Log intended moves without mutating anything
	BackupDir  string   // Where archives land; defaults under the base dir
	BackupKeep int      // Archives retained after rotation
	Batch      bool     // Persist per collection instead of per skill
}

// Move records one planned or executed relocation.
type Move struct {
	SkillID     string
	Source      string
	Destination string
	Level       skillbook.Level
	Reason      string
}

// Result summarizes a migration run.
type Result struct {
	Moved      []Move
	Skipped    int // Duplicates at the destination
	Errors     []string
	BackupPath string
	DryRun     bool
}

// Migrator moves skills from flat legacy collections into the hierarchy.
type Migrator struct {
	hierarchy skillbook.Hierarchy
	store     *skillbook.Store
	clock     func() time.Time
	log       zerolog.Logger
}

// New creates a migrator over the given hierarchy and store.
func New(hierarchy skillbook.Hierarchy, store *skillbook.Store, log zerolog.Logger) *Migrator {
	return &Migrator{
		hierarchy: hierarchy,
		store:     store,
		clock:     time.Now,
		log:       log,
	}
}

// Run executes the migration. It holds the maintenance guard for the
// whole run so promotion reviews cannot interleave, and backs up the
// entire tree before the first mutation. Single-skill failures land in
// the error list and migration continues.
func (m *Migrator) Run(opts Options) (Result, error) {
	if err := guard.Acquire(); err != nil {
		return Result{}, err
	}
	defer guard.Release()

	result := Result{DryRun: opts.DryRun}

	if !opts.DryRun {
		backupDir := opts.BackupDir
		if backupDir == "" {
			backupDir = filepath.Join(m.hierarchy.BaseDir, "backups")
		}
		path, err := Backup(m.hierarchy.BaseDir, backupDir, opts.BackupKeep, m.clock())
		if err != nil {
			return Result{}, fmt.Errorf("refusing to migrate without a backup: %w", err)
		}
		result.BackupPath = path
		m.log.Info().Str("archive", path).Msg("skill tree backed up")
	}

	for _, source := range opts.Sources {
		if opts.Batch && !opts.DryRun {
			m.migrateBatch(source, &result)
		} else {
			m.migrateCollection(source, opts.DryRun, &result)
		}
	}
	return result, nil
}

// migrateCollection moves every skill out of one legacy collection.
func (m *Migrator) migrateCollection(source string, dryRun bool, result *Result) {
	skills := m.store.Load(source)
	if len(skills) == 0 {
		m.log.Debug().Str("source", source).Msg("legacy collection empty, nothing to migrate")
		return
	}

	for _, skill := range skills {
		move, skipped, err := m.migrateOne(source, skill, dryRun)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", skill.ID, source, err))
			continue
		}
		if skipped {
			result.Skipped++
			continue
		}
		result.Moved = append(result.Moved, move)
	}
}

// migrateOne classifies, dedups and relocates a single skill. The
// destination write persists before the source removal, so a crash
// between the two duplicates one skill rather than losing it.
func (m *Migrator) migrateOne(source string, skill skillbook.Skill, dryRun bool) (Move, bool, error) {
	decision := router.ClassifyStatic(skill.Content)
	destination := m.hierarchy.Resolve(decision.Level, decision.Name, decision.Name, "")

	if filepath.Clean(destination) == filepath.Clean(source) {
		return Move{}, true, nil
	}

	for _, existing := range m.store.Load(destination) {
		if skillbook.Duplicate(existing.Content, skill.Content, jaccardThreshold) {
			m.log.Info().
				Str("skill_id", skill.ID).
				Str("duplicate_of", existing.ID).
				Str("destination", destination).
				Msg("skipping duplicate")
			if !dryRun {
				if _, err := m.store.Remove(source, skill.ID); err != nil {
					return Move{}, true, err
				}
			}
			return Move{}, true, nil
		}
	}

	move := Move{
		SkillID:     skill.ID,
		Source:      source,
		Destination: destination,
		Level:       decision.Level,
		Reason:      decision.Justification,
	}

	if dryRun {
		m.log.Info().
			Str("skill_id", skill.ID).
			Str("destination", destination).
			Str("reason", decision.Justification).
			Msg("would migrate")
		return move, false, nil
	}

	migrated := skill
	switch decision.Level {
	case skillbook.LevelLanguage:
		migrated.Language = decision.Name
	case skillbook.LevelFramework:
		migrated.Framework = decision.Name
	}

	if _, err := m.store.AddExisting(destination, migrated); err != nil {
		return Move{}, false, err
	}
	if _, err := m.store.Remove(source, skill.ID); err != nil {
		return Move{}, false, fmt.Errorf("copied to destination but source removal failed: %w", err)
	}

	m.log.Info().
		Str("skill_id", skill.ID).
		Str("destination", destination).
		Str("scope", string(decision.Level)).
		Msg("skill migrated")
	return move, false, nil
}

// migrateBatch groups a collection's moves by destination and persists
// each destination once, then rewrites the source once. Faster for large
// legacy collections, but a crash mid-run can lose the whole batch,
// which is why incremental is the default.
func (m *Migrator) migrateBatch(source string, result *Result) {
	skills := m.store.Load(source)
	if len(skills) == 0 {
		return
	}

	grouped := make(map[string][]skillbook.Skill)
	var remaining []skillbook.Skill

	for _, skill := range skills {
		decision := router.ClassifyStatic(skill.Content)
		destination := m.hierarchy.Resolve(decision.Level, decision.Name, decision.Name, "")
		if filepath.Clean(destination) == filepath.Clean(source) {
			remaining = append(remaining, skill)
			result.Skipped++
			continue
		}

		duplicate := false
		for _, existing := range append(m.store.Load(destination), grouped[destination]...) {
			if skillbook.Duplicate(existing.Content, skill.Content, jaccardThreshold) {
				duplicate = true
				break
			}
		}
		if duplicate {
			result.Skipped++
			continue
		}

		migrated := skill
		switch decision.Level {
		case skillbook.LevelLanguage:
			migrated.Language = decision.Name
		case skillbook.LevelFramework:
			migrated.Framework = decision.Name
		}
		grouped[destination] = append(grouped[destination], migrated)
		result.Moved = append(result.Moved, Move{
			SkillID:     skill.ID,
			Source:      source,
			Destination: destination,
			Level:       decision.Level,
			Reason:      decision.Justification,
		})
	}

	for destination, batch := range grouped {
		for _, skill := range batch {
			if _, err := m.store.AddExisting(destination, skill); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", skill.ID, source, err))
			}
		}
	}
	if !m.store.Save(source, remaining) {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to rewrite source %s", source))
	}
}
