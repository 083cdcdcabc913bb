// Package scaffold creates the skillbook tree and default configuration
// for a fresh lore installation.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/lore/pkg/skillbook"
)

//go:embed templates/*
var templatesFS embed.FS

// Initialize creates the skillbook hierarchy under baseDir and writes the
// default lore.yml to configPath. If force is true, an existing config is
// overwritten; skillbook collections are never touched.
func Initialize(baseDir, configPath string, force bool) error {
	if !force {
		if err := CheckExisting(configPath); err != nil {
			return err
		}
	}

	hierarchy := skillbook.DefaultHierarchy(baseDir)

	dirs := []string{
		filepath.Dir(hierarchy.Universal()),
		filepath.Join(baseDir, hierarchy.LanguagesDir),
		filepath.Join(baseDir, hierarchy.FrameworksDir),
		filepath.Join(baseDir, "backups"),
		filepath.Dir(configPath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Seed the universal collection so list/stats work immediately.
	universal := hierarchy.Universal()
	if _, err := os.Stat(universal); os.IsNotExist(err) {
		store := skillbook.NewStore()
		if !store.Save(universal, nil) {
			return fmt.Errorf("failed to create universal skillbook at %s", universal)
		}
	}

	content, err := templatesFS.ReadFile("templates/lore.yml.tmpl")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	return validateCreated(configPath)
}
