// Package router implements the master memory router: it decides which
// skill collections apply to a detected project context, loads them as one
// ordered stack, and assigns newly learned skills to the scope they belong
// to (heuristically, or via an optional external classifier).
package router

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dyluth/lore/internal/detect"
	"github.com/dyluth/lore/pkg/skillbook"
)

// ErrClassifierUnavailable is returned by a Classifier when it cannot
// produce a decision (unreachable, timeout, malformed output). The router
// treats it as a permanent per-process condition and stops probing.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// Classifier is the optional external scope classifier. Implementations
// must bound their own timeouts; any failure mode is reported as (or
// wrapped around) ErrClassifierUnavailable.
type Classifier interface {
	Classify(ctx context.Context, content string, pctx detect.ProjectContext) (skillbook.Level, string, error)
}

// Decision is the outcome of one routing call. It is computed per call and
// never persisted.
type Decision struct {
	Path          string          // Target collection file
	Level         skillbook.Level // Chosen hierarchy scope
	Justification string          // Human-readable reason
}

// Scopes holds the per-scope enable flags the router honours when loading.
type Scopes struct {
	Language  bool
	Framework bool
	Project   bool
}

// Router loads the applicable skill stack for a context and routes new
// skills to collections. All state (hierarchy, store, sticky classifier
// flag) is constructor-injected and owned by this single long-lived value.
type Router struct {
	hierarchy    skillbook.Hierarchy
	store        *skillbook.Store
	scopes       Scopes
	defaultScope skillbook.Level
	classifier   Classifier
	log          zerolog.Logger

	mu             sync.Mutex
	classifierDown bool // Sticky: once a classify call fails, never re-probed this process
}

// Option configures a Router.
type Option func(*Router)

// WithClassifier attaches the optional external classifier.
func WithClassifier(c Classifier) Option {
	return func(r *Router) { r.classifier = c }
}

// WithDefaultScope overrides the fallback scope ("language" or
// "universal") used when no heuristic rule matches.
func WithDefaultScope(level skillbook.Level) Option {
	return func(r *Router) { r.defaultScope = level }
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Router) { r.log = log }
}

// New creates a Router over the given hierarchy and store.
func New(hierarchy skillbook.Hierarchy, store *skillbook.Store, scopes Scopes, opts ...Option) *Router {
	r := &Router{
		hierarchy:    hierarchy,
		store:        store,
		scopes:       scopes,
		defaultScope: skillbook.LevelLanguage,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MasterContext is the merged skill stack for one project context.
type MasterContext struct {
	Skills  []skillbook.Skill // Concatenated in scope order (universal first)
	Sources []string          // Provenance label per contributing level
}

// LoadMasterContext concatenates every applicable non-empty collection in
// fixed order: universal, then language, then framework, then project.
// Order is significant - it defines the precedence in which skills are
// deduplicated and displayed downstream.
func (r *Router) LoadMasterContext(pctx detect.ProjectContext) MasterContext {
	master := MasterContext{Sources: []string{}}

	appendLevel := func(path, label string) {
		skills := r.store.Load(path)
		if len(skills) == 0 {
			return
		}
		master.Skills = append(master.Skills, skills...)
		master.Sources = append(master.Sources, fmt.Sprintf("%s (%d skills)", label, len(skills)))
	}

	appendLevel(r.hierarchy.Universal(), "Universal")

	if r.scopes.Language && pctx.Language != "" {
		appendLevel(r.hierarchy.Language(pctx.Language), "Language/"+pctx.Language)
	}
	if r.scopes.Framework && pctx.Framework != "" {
		appendLevel(r.hierarchy.Framework(pctx.Framework), "Framework/"+pctx.Framework)
	}
	if r.scopes.Project {
		if path, ok := r.hierarchy.Project(pctx.WorkDir); ok {
			if _, err := os.Stat(path); err == nil {
				appendLevel(path, "Project")
			}
		}
	}

	return master
}

// RouteSkill decides the target collection for skill content. When
// existingPath is non-empty the skill is an update to an already stored
// skill, and updates never move scope automatically.
func (r *Router) RouteSkill(ctx context.Context, content string, pctx detect.ProjectContext, existingPath string) Decision {
	if existingPath != "" {
		return Decision{
			Path:          existingPath,
			Level:         r.levelOfPath(existingPath, pctx),
			Justification: "existing skill: updates keep their current scope",
		}
	}

	if decision, ok := r.classify(ctx, content, pctx); ok {
		return decision
	}

	return r.routeHeuristic(content, pctx)
}

// classify consults the external classifier unless it is absent or has
// already failed this process. Any failure trips the sticky unavailable
// flag and falls through to heuristics - the classifier is never retried
// mid-process.
func (r *Router) classify(ctx context.Context, content string, pctx detect.ProjectContext) (Decision, bool) {
	if r.classifier == nil {
		return Decision{}, false
	}

	r.mu.Lock()
	down := r.classifierDown
	r.mu.Unlock()
	if down {
		return Decision{}, false
	}

	level, justification, err := r.classifier.Classify(ctx, content, pctx)
	if err != nil {
		r.mu.Lock()
		r.classifierDown = true
		r.mu.Unlock()
		r.log.Warn().Err(err).Msg("external classifier failed; falling back to heuristic routing for the rest of this process")
		return Decision{}, false
	}
	if err := level.Validate(); err != nil || justification == "" {
		r.mu.Lock()
		r.classifierDown = true
		r.mu.Unlock()
		r.log.Warn().Str("level", string(level)).Msg("external classifier returned malformed decision; disabling it for this process")
		return Decision{}, false
	}

	return Decision{
		Path:          r.resolve(level, pctx),
		Level:         level,
		Justification: justification,
	}, true
}

// routeHeuristic applies the declarative rule ladder in strict priority
// order. First match wins.
func (r *Router) routeHeuristic(content string, pctx detect.ProjectContext) Decision {
	// 1. Project: first-person/ownership markers plus a detected project
	// type. The level is project even when the project scope is disabled;
	// path resolution then falls back to universal.
	if pctx.ProjectType != "" && matchesAny(ownershipMarkers, content) {
		return Decision{
			Path:          r.resolve(skillbook.LevelProject, pctx),
			Level:         skillbook.LevelProject,
			Justification: "ownership language with a detected project type",
		}
	}

	// 2. Framework: vocabulary of the currently detected framework only.
	if pctx.Framework != "" && r.scopes.Framework {
		if matchesAny(frameworkVocabulary[pctx.Framework], content) {
			return Decision{
				Path:          r.hierarchy.Framework(pctx.Framework),
				Level:         skillbook.LevelFramework,
				Justification: fmt.Sprintf("matches %s vocabulary in a %s session", pctx.Framework, pctx.Framework),
			}
		}
	}

	// 3. Language: syntax of the currently detected language only.
	if pctx.Language != "" && r.scopes.Language {
		if matchesAny(languageVocabulary[pctx.Language], content) {
			return Decision{
				Path:          r.hierarchy.Language(pctx.Language),
				Level:         skillbook.LevelLanguage,
				Justification: fmt.Sprintf("matches %s syntax in a %s session", pctx.Language, pctx.Language),
			}
		}
	}

	// 4. Universal: generic best-practice markers.
	if matchesAny(universalMarkers, content) {
		return Decision{
			Path:          r.hierarchy.Universal(),
			Level:         skillbook.LevelUniversal,
			Justification: "generic best-practice language",
		}
	}

	// 5. Default: language scope if one is detected, else universal.
	if r.defaultScope == skillbook.LevelLanguage && pctx.Language != "" && r.scopes.Language {
		return Decision{
			Path:          r.hierarchy.Language(pctx.Language),
			Level:         skillbook.LevelLanguage,
			Justification: fmt.Sprintf("no rule matched; defaulting to detected language %s", pctx.Language),
		}
	}
	return Decision{
		Path:          r.hierarchy.Universal(),
		Level:         skillbook.LevelUniversal,
		Justification: "no rule matched and no language detected; defaulting to universal",
	}
}

// resolve maps a level to its concrete path, falling back to universal for
// unresolvable scopes.
func (r *Router) resolve(level skillbook.Level, pctx detect.ProjectContext) string {
	return r.hierarchy.Resolve(level, pctx.Language, pctx.Framework, pctx.WorkDir)
}

// levelOfPath recovers the scope of a known collection path. Positional:
// the path fully determines the scope.
func (r *Router) levelOfPath(path string, pctx detect.ProjectContext) skillbook.Level {
	switch path {
	case r.hierarchy.Universal():
		return skillbook.LevelUniversal
	case r.hierarchy.Language(pctx.Language):
		return skillbook.LevelLanguage
	case r.hierarchy.Framework(pctx.Framework):
		return skillbook.LevelFramework
	}
	if project, ok := r.hierarchy.Project(pctx.WorkDir); ok && path == project {
		return skillbook.LevelProject
	}
	return skillbook.LevelUniversal
}

// ClassifierDown reports whether the sticky unavailable flag has tripped.
func (r *Router) ClassifierDown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.classifierDown
}
