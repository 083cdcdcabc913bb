package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/pkg/skillbook"
)

var (
	exportScope string
	exportName  string
	exportAgent string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export a skill collection to a portable JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportScope, "scope", "universal", "Collection scope: universal, language or framework")
	exportCmd.Flags().StringVar(&exportName, "name", "", "Language or framework name (required for those scopes)")
	exportCmd.Flags().StringVar(&exportAgent, "agent", "default", "Agent identifier recorded in the export")
	rootCmd.AddCommand(exportCmd)
}

// resolveCollection maps scope/name flags to a collection path.
func resolveCollection(cfg *config.Config, scope, name string) (string, error) {
	hierarchy := cfg.SkillbookHierarchy()
	switch skillbook.Level(scope) {
	case skillbook.LevelUniversal:
		return hierarchy.Universal(), nil
	case skillbook.LevelLanguage:
		if name == "" {
			return "", fmt.Errorf("--name is required for the language scope")
		}
		return hierarchy.Language(name), nil
	case skillbook.LevelFramework:
		if name == "" {
			return "", fmt.Errorf("--name is required for the framework scope")
		}
		return hierarchy.Framework(name), nil
	default:
		return "", fmt.Errorf("unknown scope %q (must be universal, language or framework)", scope)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := resolveCollection(cfg, exportScope, exportName)
	if err != nil {
		return err
	}

	store := skillbook.NewStore()
	envelope := store.Export(path, exportAgent)

	file, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := skillbook.WriteExport(file, envelope); err != nil {
		return err
	}
	printer.Success("exported %d skills to %s\n", len(envelope.Skills), args[0])
	return nil
}
