package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/migrate"
	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/pkg/skillbook"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate <legacy-collection>...",
	Short: "Migrate flat legacy collections into the hierarchy",
	Long: `Reclassify every skill in the given legacy flat collection files
into the hierarchy. Each skill's destination is chosen from its content
keywords alone, duplicates already present at the destination are
skipped, and the whole skill tree is archived before the first change.

Use --dry-run to see the planned moves without touching anything.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Log intended moves without mutating any collection")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, source := range args {
		if _, err := os.Stat(source); err != nil {
			return printer.Error(
				"Legacy collection not found",
				"Cannot read "+source,
				[]string{"Check the path and try again"},
			)
		}
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	hierarchy := cfg.SkillbookHierarchy()
	migrator := migrate.New(hierarchy, skillbook.NewStore(), log)

	batch := cfg.Migration.Incremental != nil && !*cfg.Migration.Incremental
	result, err := migrator.Run(migrate.Options{
		Sources:    args,
		DryRun:     migrateDryRun,
		BackupDir:  filepath.Join(hierarchy.BaseDir, "backups"),
		BackupKeep: cfg.Migration.BackupKeep,
		Batch:      batch,
	})
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		printer.Warning("%s\n", msg)
	}
	if result.DryRun {
		printer.Info("Dry run: %d skills would move, %d duplicates would be skipped.\n",
			len(result.Moved), result.Skipped)
		return nil
	}
	printer.Success("migrated %d skills (%d duplicates skipped, %d errors)\n",
		len(result.Moved), result.Skipped, len(result.Errors))
	printer.Field("backup", "%s", result.BackupPath)
	return nil
}
