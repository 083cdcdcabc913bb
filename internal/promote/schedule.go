package promote

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/dyluth/lore/internal/guard"
)

// Scheduler runs the promotion review on a fixed cadence inside the serve
// loop. The review only logs proposals; promotions are applied explicitly
// via the CLI.
type Scheduler struct {
	cron     *cron.Cron
	reviewer *Reviewer
	log      zerolog.Logger
}

// NewScheduler creates a scheduler that reviews every intervalDays days.
func NewScheduler(reviewer *Reviewer, intervalDays int, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		reviewer: reviewer,
		log:      log,
	}

	spec := fmt.Sprintf("@every %dh", intervalDays*24)
	if _, err := s.cron.AddFunc(spec, s.review); err != nil {
		return nil, fmt.Errorf("failed to schedule promotion review: %w", err)
	}
	return s, nil
}

// Start begins the review schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running review to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) review() {
	// Migration rewrites the same collections wholesale, so a scheduled
	// review must not read them mid-move. Skip this cycle instead of
	// waiting; the next one will pick up any candidates.
	if err := guard.Acquire(); err != nil {
		s.log.Info().Msg("promotion review skipped, another maintenance operation is in progress")
		return
	}
	defer guard.Release()

	proposals, err := s.reviewer.CheckForPromotions()
	if err != nil {
		s.log.Warn().Err(err).Msg("promotion review failed")
		return
	}
	if len(proposals) == 0 {
		s.log.Debug().Msg("promotion review found no candidates")
		return
	}
	for _, p := range proposals {
		s.log.Info().
			Str("skill_id", p.Skill.ID).
			Str("language", p.Language).
			Int("helpful", p.Helpful).
			Float64("success_rate", p.SuccessRate).
			Int("age_days", p.AgeDays).
			Msg("skill eligible for promotion, run 'lore promote --apply'")
	}
}
