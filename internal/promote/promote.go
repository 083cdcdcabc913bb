// Package promote reviews language-scope skills and lifts proven ones to
// the universal collection. Promotion is proposal-based: CheckForPromotions
// computes candidates, ApplyPromotions moves them, and the serve loop runs
// the review on a cron schedule.
package promote

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyluth/lore/internal/guard"
	"github.com/dyluth/lore/pkg/skillbook"
)

// Thresholds are the criteria a skill must meet to be proposed.
type Thresholds struct {
	MinHelpfulScore  int
	MinSuccessRate   float64
	AgeThresholdDays int
}

// Proposal is one candidate promotion.
type Proposal struct {
	Skill       skillbook.Skill
	SourcePath  string
	Language    string
	Helpful     int
	SuccessRate float64
	AgeDays     int
}

// Reviewer scans language collections for promotion candidates.
// Framework-scope skills are deliberately out of scope: a framework skill
// that generalizes is really a language or universal skill misfiled, and
// lifting it two levels in one hop hides that.
type Reviewer struct {
	hierarchy  skillbook.Hierarchy
	store      *skillbook.Store
	thresholds Thresholds
	dedupLimit float64
	clock      func() time.Time
	log        zerolog.Logger
}

// NewReviewer creates a reviewer over the given hierarchy and store.
func NewReviewer(hierarchy skillbook.Hierarchy, store *skillbook.Store, thresholds Thresholds, dedupLimit float64, log zerolog.Logger) *Reviewer {
	return &Reviewer{
		hierarchy:  hierarchy,
		store:      store,
		thresholds: thresholds,
		dedupLimit: dedupLimit,
		clock:      time.Now,
		log:        log,
	}
}

// WithClock overrides the clock, used by tests to age skills.
func (r *Reviewer) WithClock(clock func() time.Time) *Reviewer {
	r.clock = clock
	return r
}

// CheckForPromotions scans every language collection and returns skills
// meeting all three thresholds. It never modifies any collection.
func (r *Reviewer) CheckForPromotions() ([]Proposal, error) {
	languagesDir := filepath.Join(r.hierarchy.BaseDir, r.hierarchy.LanguagesDir)
	entries, err := os.ReadDir(languagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan language collections: %w", err)
	}

	now := r.clock()
	var proposals []Proposal
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		language := strings.TrimSuffix(entry.Name(), ".json")
		path := filepath.Join(languagesDir, entry.Name())

		for _, skill := range r.store.Load(path) {
			if !r.qualifies(skill, now) {
				continue
			}
			proposals = append(proposals, Proposal{
				Skill:       skill,
				SourcePath:  path,
				Language:    language,
				Helpful:     skill.Helpful,
				SuccessRate: skill.SuccessRate(),
				AgeDays:     int(skill.Age(now).Hours() / 24),
			})
		}
	}
	return proposals, nil
}

// qualifies applies the three promotion criteria.
func (r *Reviewer) qualifies(skill skillbook.Skill, now time.Time) bool {
	if skill.Helpful < r.thresholds.MinHelpfulScore {
		return false
	}
	if skill.SuccessRate() < r.thresholds.MinSuccessRate {
		return false
	}
	ageDays := skill.Age(now).Hours() / 24
	return ageDays >= float64(r.thresholds.AgeThresholdDays)
}

// ApplyResult summarizes one promotion run.
type ApplyResult struct {
	Promoted   int
	Duplicates int
	Errors     []string
}

// ApplyPromotions moves the proposed skills into the universal collection.
// Counters travel with the skill; the language tag is cleared because the
// destination scope is language-agnostic. Duplicates at the destination
// are dropped and the source copy removed anyway, since the knowledge is
// already universal. Holds the maintenance guard for the whole run.
func (r *Reviewer) ApplyPromotions(proposals []Proposal) (ApplyResult, error) {
	if err := guard.Acquire(); err != nil {
		return ApplyResult{}, err
	}
	defer guard.Release()

	universal := r.hierarchy.Universal()
	var result ApplyResult
	for _, p := range proposals {
		added, err := r.promoteOne(universal, p)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", p.Skill.ID, err))
			continue
		}
		if added {
			result.Promoted++
		} else {
			result.Duplicates++
		}
	}
	return result, nil
}

func (r *Reviewer) promoteOne(universal string, p Proposal) (bool, error) {
	skills := r.store.Load(universal)

	duplicate := false
	for _, existing := range skills {
		if skillbook.Duplicate(existing.Content, p.Skill.Content, r.dedupLimit) {
			duplicate = true
			break
		}
	}

	if !duplicate {
		promoted := p.Skill
		promoted.Language = ""
		if _, err := r.store.AddExisting(universal, promoted); err != nil {
			return false, err
		}
	}

	if _, err := r.store.Remove(p.SourcePath, p.Skill.ID); err != nil {
		return !duplicate, fmt.Errorf("promoted copy stored but source removal failed: %w", err)
	}

	r.log.Info().
		Str("skill_id", p.Skill.ID).
		Str("language", p.Language).
		Bool("duplicate", duplicate).
		Msg("skill promoted to universal")
	return !duplicate, nil
}
