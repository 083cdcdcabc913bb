package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/internal/scaffold"
)

var (
	forceInit   bool
	initBaseDir string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the skillbook tree and configuration",
	Long: `Initialize lore's skillbook hierarchy and default configuration.

Creates:
  • lore.yml - Configuration file (~/.config/lore/lore.yml by default)
  • skillbooks/global/universal.json - The universal skill collection
  • skillbooks/languages/, skillbooks/frameworks/ - Scoped collections
  • skillbooks/backups/ - Migration backup archives

Use --force to overwrite an existing configuration. Skill collections are
never overwritten.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().StringVar(&initBaseDir, "base-dir", "", "Skillbook tree location (default: alongside lore.yml)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	baseDir := initBaseDir
	if baseDir == "" {
		baseDir = filepath.Join(filepath.Dir(path), "skillbooks")
	}

	if err := scaffold.Initialize(baseDir, path, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	printer.Success("lore initialized\n")
	printer.Field("Config", "%s", path)
	printer.Field("Skillbooks", "%s", baseDir)
	printer.Info("\nStart learning with: lore serve\n")
	return nil
}
