package scaffold

import (
	"fmt"
	"os"

	"github.com/dyluth/lore/internal/config"
)

// CheckExisting returns an error when a configuration already exists so a
// plain init never clobbers user settings.
func CheckExisting(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("already initialized: %s exists\n\nUse 'lore init --force' to overwrite the configuration", configPath)
	}
	return nil
}

// validateCreated parses the freshly written config back through the
// strict loader so init fails loudly if the template ever drifts.
func validateCreated(configPath string) error {
	if _, err := config.Load(configPath); err != nil {
		return fmt.Errorf("generated configuration is invalid: %w", err)
	}
	return nil
}
