// Package engine is the long-running daemon core: it subscribes to the
// host's session lifecycle events, injects learned skills into new
// sessions, and runs the learning pipeline when assistant turns complete.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/detect"
	"github.com/dyluth/lore/internal/opencode"
	"github.com/dyluth/lore/internal/router"
	"github.com/dyluth/lore/internal/session"
	"github.com/dyluth/lore/pkg/skillbook"
)

// Engine wires the detector, router, store and platform client into one
// event loop. A single Engine runs per process.
type Engine struct {
	cfg       *config.Config
	client    *opencode.Client
	detector  *detect.Detector
	tracker   *session.Tracker
	store     *skillbook.Store
	router    *router.Router
	reflector *opencode.Reflector
	validator skillbook.Validator
	log       zerolog.Logger

	learning sync.WaitGroup
}

// New assembles an engine from configuration.
func New(cfg *config.Config, log zerolog.Logger) *Engine {
	client := opencode.NewClient(opencode.Config{
		BaseURL:    cfg.OpenCode.BaseURL,
		ProviderID: cfg.OpenCode.ProviderID,
		ModelID:    cfg.OpenCode.ModelID,
		Timeout:    cfg.OpenCode.Timeout(),
		Logger:     log,
	})

	store := skillbook.NewStore()
	hierarchy := cfg.SkillbookHierarchy()

	scopes := router.Scopes{
		Language:  cfg.Scopes.Language == nil || *cfg.Scopes.Language,
		Framework: cfg.Scopes.Framework == nil || *cfg.Scopes.Framework,
		Project:   cfg.Scopes.Project != nil && *cfg.Scopes.Project,
	}

	opts := []router.Option{
		router.WithLogger(log),
		router.WithDefaultScope(skillbook.Level(cfg.Routing.DefaultScope)),
	}
	if cfg.Routing.UseClassifier {
		opts = append(opts, router.WithClassifier(opencode.NewScopeClassifier(client)))
	}

	return &Engine{
		cfg:       cfg,
		client:    client,
		detector:  detect.New(cfg.DetectionRules()),
		tracker:   session.NewTracker(),
		store:     store,
		router:    router.New(hierarchy, store, scopes, opts...),
		reflector: opencode.NewReflector(client),
		validator: cfg.Validator(),
		log:       log,
	}
}

// Tracker exposes the session tracker, used by the serve command's
// shutdown logging.
func (e *Engine) Tracker() *session.Tracker {
	return e.tracker
}

// Store exposes the skill store so maintenance jobs share the lock table.
func (e *Engine) Store() *skillbook.Store {
	return e.store
}

// Run blocks processing lifecycle events until the context is cancelled
// or the event stream is lost beyond the retry limit. Individual event
// failures are logged and never terminate the loop.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.client.Ping(ctx); err != nil {
		return fmt.Errorf("cannot reach opencode server: %w", err)
	}

	sub := e.client.Subscribe(ctx, e.cfg.OpenCode.EventRetryLimit)
	defer sub.Close()

	e.log.Info().Str("server", e.cfg.OpenCode.BaseURL).Msg("subscribed to session events")

	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("shutting down, waiting for in-flight learning")
			e.learning.Wait()
			return nil

		case err, ok := <-sub.Errors():
			if !ok {
				continue
			}
			e.learning.Wait()
			return err

		case event, ok := <-sub.Events():
			if !ok {
				e.learning.Wait()
				return nil
			}
			e.handleEvent(ctx, event)
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, event opencode.Event) {
	switch event.Type {
	case opencode.EventSessionCreated, opencode.EventSessionStarted:
		e.handleSessionStart(ctx, event)
	case opencode.EventMessageCreated:
		e.handleMessageCreated(ctx, event)
	case opencode.EventMessageCompleted:
		e.handleMessageCompleted(ctx, event)
	case opencode.EventSessionEnded, opencode.EventSessionDeleted:
		e.handleSessionEnd(event)
	}
}

// handleSessionStart detects the project context and injects the learned
// skill stack before the session's first turn.
func (e *Engine) handleSessionStart(ctx context.Context, event opencode.Event) {
	if event.SessionID == "" {
		return
	}

	var meta *detect.SessionMetadata
	if event.Metadata != nil {
		meta = &detect.SessionMetadata{
			Language:    event.Metadata.Language,
			Framework:   event.Metadata.Framework,
			ProjectType: event.Metadata.ProjectType,
		}
	}

	pctx := e.detector.Detect(event.Directory, meta)
	e.tracker.Start(event.SessionID, event.AgentID, event.Directory, pctx)

	e.log.Info().
		Str("session_id", event.SessionID).
		Str("language", pctx.Language).
		Str("framework", pctx.Framework).
		Str("project_type", pctx.ProjectType).
		Str("method", string(pctx.Method)).
		Msg("session started")

	if e.cfg.AutoInject {
		e.inject(ctx, event.SessionID, pctx)
	}
}

// inject delivers the formatted skill stack to the session once.
func (e *Engine) inject(ctx context.Context, sessionID string, pctx detect.ProjectContext) {
	master := e.router.LoadMasterContext(pctx)
	text := router.FormatInjection(master)
	if text == "" {
		e.log.Debug().Str("session_id", sessionID).Msg("no skills to inject")
		e.tracker.MarkInjected(sessionID)
		return
	}

	if err := e.client.Inject(ctx, sessionID, text); err != nil {
		e.log.Warn().Err(err).Str("session_id", sessionID).Msg("skill injection failed")
		return
	}
	e.tracker.MarkInjected(sessionID)
	e.log.Info().
		Str("session_id", sessionID).
		Int("skills", len(master.Skills)).
		Strs("sources", master.Sources).
		Msg("injected learned skills")
}

// handleMessageCreated records user prompts and performs lazy injection
// for sessions that slipped past the start event.
func (e *Engine) handleMessageCreated(ctx context.Context, event opencode.Event) {
	if event.Role != "user" || event.SessionID == "" {
		return
	}

	state, ok := e.tracker.Get(event.SessionID)
	if !ok {
		// Session predates the daemon; adopt it with a fresh detection.
		pctx := e.detector.Detect(event.Directory, nil)
		state = *e.tracker.Start(event.SessionID, event.AgentID, event.Directory, pctx)
	}

	e.tracker.SetLastPrompt(event.SessionID, event.Text)

	if e.cfg.AutoInject && !state.Injected {
		e.inject(ctx, event.SessionID, state.Context)
	}
}

// handleMessageCompleted runs the learning decision for assistant turns.
// Bookkeeping happens synchronously so the decision for the next turn
// sees it; the reflection itself may run in the background.
func (e *Engine) handleMessageCompleted(ctx context.Context, event opencode.Event) {
	if event.Role != "assistant" || event.SessionID == "" {
		return
	}

	state, ok := e.tracker.Get(event.SessionID)
	if !ok {
		return
	}

	e.tracker.RecordMessage(event.SessionID)

	if !e.cfg.AutoLearn || state.LastPrompt == "" {
		return
	}

	failed := looksLikeFailure(event.Text)
	e.tracker.SetLastError(event.SessionID, failed)
	e.tracker.RecordLearning(event.SessionID)

	task := state.LastPrompt
	result := event.Text
	pctx := state.Context

	if e.cfg.AsyncLearning {
		e.learning.Add(1)
		go func() {
			defer e.learning.Done()
			e.learn(context.WithoutCancel(ctx), event.SessionID, task, result, !failed, pctx)
		}()
		return
	}
	e.learn(ctx, event.SessionID, task, result, !failed, pctx)
}

func (e *Engine) handleSessionEnd(event opencode.Event) {
	state, ok := e.tracker.End(event.SessionID)
	if !ok {
		return
	}
	e.log.Info().
		Str("session_id", event.SessionID).
		Int("messages", state.Messages).
		Int("learnings", state.Learnings).
		Msg("session ended")
}
