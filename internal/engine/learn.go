package engine

import (
	"context"
	"strings"

	"github.com/dyluth/lore/internal/detect"
	"github.com/dyluth/lore/pkg/skillbook"
)

// Section labels for learned skills.
const (
	sectionSuccess = "success"
	sectionFailure = "failure"
)

// learn runs the full pipeline for one completed turn: reflect, validate
// each extracted pattern, route it to a collection, and persist it with
// deduplication. Failures inside the pipeline are logged, never fatal.
func (e *Engine) learn(ctx context.Context, sessionID, task, result string, success bool, pctx detect.ProjectContext) {
	section := sectionSuccess
	if !success {
		section = sectionFailure
	}

	reflection, err := e.reflector.Reflect(ctx, task, result, success)
	if err != nil {
		e.log.Warn().Err(err).Str("session_id", sessionID).Msg("reflection unavailable, storing simple skill")
		e.storeSkill(ctx, sessionID, section, fallbackContent(task, result, success), pctx)
		return
	}

	candidates := reflection.Patterns
	if !success && reflection.SuggestedAction != "" {
		candidates = append(candidates, reflection.SuggestedAction)
	}

	stored := 0
	for _, pattern := range candidates {
		if e.storeSkill(ctx, sessionID, section, pattern, pctx) {
			stored++
		}
	}

	e.log.Info().
		Str("session_id", sessionID).
		Int("patterns", len(candidates)).
		Int("stored", stored).
		Bool("success", success).
		Msg("learning complete")
}

// storeSkill validates, routes and persists one candidate skill. Returns
// whether it was stored as a new entry.
func (e *Engine) storeSkill(ctx context.Context, sessionID, section, content string, pctx detect.ProjectContext) bool {
	content = strings.TrimSpace(content)
	if err := e.validator.Check(content); err != nil {
		e.log.Debug().Err(err).Str("session_id", sessionID).Msg("candidate skill rejected")
		return false
	}

	decision := e.router.RouteSkill(ctx, content, pctx, "")

	result, err := e.store.Add(
		decision.Path,
		section,
		content,
		true,
		e.cfg.Dedup.SimilarityThreshold,
		skillbook.WithContext(pctx.Language, pctx.Framework, pctx.ProjectType),
	)
	if err != nil {
		e.log.Warn().Err(err).Str("path", decision.Path).Msg("failed to persist skill")
		return false
	}

	e.log.Debug().
		Str("session_id", sessionID).
		Str("skill_id", result.Skill.ID).
		Str("scope", string(decision.Level)).
		Str("reason", decision.Justification).
		Bool("new", result.IsNew).
		Msg("skill routed")
	return result.IsNew
}

// fallbackContent builds the simple skill stored when reflection is
// unavailable.
func fallbackContent(task, result string, success bool) string {
	if success {
		return "Successfully executed: " + clip(task, 300)
	}
	return "Failed task pattern: " + clip(task, 200) + ". Issue: " + clip(result, 100)
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// failureMarkers are scanned in assistant output to flag a turn as a
// failed execution for reflection purposes.
var failureMarkers = []string{
	"error:",
	"failed",
	"exception",
	"traceback",
	"panic:",
	"fatal:",
	"cannot ",
	"unable to",
}

func looksLikeFailure(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range failureMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
