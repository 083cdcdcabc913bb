package commands

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/internal/promote"
	"github.com/dyluth/lore/pkg/skillbook"
)

var applyPromotions bool

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Review language skills for promotion to universal",
	Long: `Scan every language collection for skills that have proven
themselves: enough helpful reinforcements, a high enough success rate,
and old enough to trust. Without --apply this only lists the candidates;
with --apply they are moved into the universal collection.`,
	RunE: runPromote,
}

func init() {
	promoteCmd.Flags().BoolVar(&applyPromotions, "apply", false, "Move eligible skills instead of just listing them")
	rootCmd.AddCommand(promoteCmd)
}

func runPromote(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Promotion.Enabled {
		printer.Info("Promotion is disabled in configuration (promotion.enabled: false).\n")
		return nil
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()

	reviewer := promote.NewReviewer(
		cfg.SkillbookHierarchy(),
		skillbook.NewStore(),
		promote.Thresholds{
			MinHelpfulScore:  cfg.Promotion.MinHelpfulScore,
			MinSuccessRate:   cfg.Promotion.MinSuccessRate,
			AgeThresholdDays: cfg.Promotion.AgeThresholdDays,
		},
		cfg.Dedup.SimilarityThreshold,
		log,
	)

	proposals, err := reviewer.CheckForPromotions()
	if err != nil {
		return err
	}
	if len(proposals) == 0 {
		printer.Info("No skills eligible for promotion.\n")
		return nil
	}

	for _, p := range proposals {
		printer.Header("[%s] %s", p.Skill.ID, p.Skill.Content)
		printer.Field("language", "%s", p.Language)
		printer.Field("helpful", "%d", p.Helpful)
		printer.Field("success rate", "%.2f", p.SuccessRate)
		printer.Field("age", "%d days", p.AgeDays)
	}

	if !applyPromotions {
		printer.Info("\n%d candidates. Run 'lore promote --apply' to move them to universal.\n", len(proposals))
		return nil
	}

	result, err := reviewer.ApplyPromotions(proposals)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		printer.Warning("%s\n", msg)
	}
	printer.Success("promoted %d skills to universal (%d duplicates dropped)\n",
		result.Promoted, result.Duplicates)
	return nil
}
