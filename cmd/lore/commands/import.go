package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/pkg/skillbook"
)

var (
	importScope string
	importName  string
	importMode  string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import skills from an export file into a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importScope, "scope", "universal", "Collection scope: universal, language or framework")
	importCmd.Flags().StringVar(&importName, "name", "", "Language or framework name (required for those scopes)")
	importCmd.Flags().StringVar(&importMode, "mode", "merge", "Import mode: merge (skip existing IDs) or replace")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := resolveCollection(cfg, importScope, importName)
	if err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	envelope, err := skillbook.ReadExport(file)
	if err != nil {
		return err
	}

	store := skillbook.NewStore()
	result, err := store.Import(path, envelope, skillbook.ImportMode(importMode))
	if err != nil {
		return err
	}

	printer.Success("imported %d skills (%d duplicates skipped)\n", result.Imported, result.Duplicates)
	return nil
}
