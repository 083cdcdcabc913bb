package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/engine"
	"github.com/dyluth/lore/internal/promote"
)

var serveVerbose bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the learning daemon",
	Long: `Run the lore daemon: subscribe to the OpenCode server's session
lifecycle events, inject learned skills into new sessions, extract skills
from completed assistant turns, and periodically review language skills
for promotion to the universal collection.

The daemon runs until interrupted. It requires a reachable OpenCode
server (see opencode.base_url in lore.yml).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Enabled {
		return cmd.Help()
	}

	level := zerolog.InfoLevel
	if serveVerbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.New(cfg, log)

	if cfg.Promotion.Enabled {
		reviewer := promote.NewReviewer(
			cfg.SkillbookHierarchy(),
			eng.Store(),
			promote.Thresholds{
				MinHelpfulScore:  cfg.Promotion.MinHelpfulScore,
				MinSuccessRate:   cfg.Promotion.MinSuccessRate,
				AgeThresholdDays: cfg.Promotion.AgeThresholdDays,
			},
			cfg.Dedup.SimilarityThreshold,
			log,
		)
		scheduler, err := promote.NewScheduler(reviewer, cfg.Promotion.ReviewIntervalDays, log)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	return eng.Run(ctx)
}
