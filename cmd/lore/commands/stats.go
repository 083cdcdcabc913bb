package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/pkg/skillbook"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-collection skill statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := skillbook.NewStore()
	grand := skillbook.Stats{}

	for _, col := range enumerate(cfg.SkillbookHierarchy()) {
		stats := store.CollectionStats(col.Path)
		if stats.TotalSkills == 0 {
			continue
		}

		printer.Header("%s", col.Label)
		printer.Field("skills", "%d", stats.TotalSkills)
		printer.Field("helpful", "%d", stats.HelpfulSkills)
		printer.Field("harmful", "%d", stats.HarmfulSkills)
		printer.Field("neutral", "%d", stats.NeutralSkills)
		if len(stats.Sections) > 0 {
			printer.Field("sections", "%s", strings.Join(stats.Sections, ", "))
		}
		printer.Println()

		grand.TotalSkills += stats.TotalSkills
		grand.HelpfulSkills += stats.HelpfulSkills
		grand.HarmfulSkills += stats.HarmfulSkills
		grand.NeutralSkills += stats.NeutralSkills
	}

	if grand.TotalSkills == 0 {
		printer.Info("No skills learned yet.\n")
		return nil
	}
	printer.Info("Total: %d skills (%d helpful, %d harmful, %d neutral)\n",
		grand.TotalSkills, grand.HelpfulSkills, grand.HarmfulSkills, grand.NeutralSkills)
	return nil
}
