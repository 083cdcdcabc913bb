// Package session tracks live agent sessions in memory: which project
// context each one runs in, whether skills have been injected yet, and
// counters the learning pipeline uses to decide when to reflect.
package session

import (
	"sync"
	"time"

	"github.com/dyluth/lore/internal/detect"
)

// State is the per-session record.
type State struct {
	ID           string
	AgentID      string
	WorkDir      string
	Context      detect.ProjectContext
	Injected     bool
	LastPrompt   string
	Messages     int
	Learnings    int
	LastLearning time.Time
	LastError    bool
	StartedAt    time.Time
}

// Tracker holds session state for the lifetime of the process. Sessions
// are created on session.created and evicted on end/delete; the host is
// the source of truth, this is just a working set.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*State
	clock    func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return NewTrackerWithClock(time.Now)
}

// NewTrackerWithClock creates a tracker with an injected clock for tests.
func NewTrackerWithClock(clock func() time.Time) *Tracker {
	return &Tracker{
		sessions: make(map[string]*State),
		clock:    clock,
	}
}

// Start registers a new session. Re-registering an existing ID resets it,
// which covers a host restart reusing IDs.
func (t *Tracker) Start(id, agentID, workDir string, pctx detect.ProjectContext) *State {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := &State{
		ID:        id,
		AgentID:   agentID,
		WorkDir:   workDir,
		Context:   pctx,
		StartedAt: t.clock(),
	}
	t.sessions[id] = state
	return state
}

// Get returns a copy of the session state, or false when unknown.
func (t *Tracker) Get(id string) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.sessions[id]
	if !ok {
		return State{}, false
	}
	return *state, true
}

// MarkInjected records that the skill context has been delivered to the
// session, so it is never injected twice.
func (t *Tracker) MarkInjected(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.sessions[id]; ok {
		state.Injected = true
	}
}

// SetLastPrompt remembers the most recent user prompt, which becomes the
// task description when the next assistant turn is reflected on.
func (t *Tracker) SetLastPrompt(id, prompt string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.sessions[id]; ok && prompt != "" {
		state.LastPrompt = prompt
	}
}

// RecordMessage bumps the message counter and returns the new count.
func (t *Tracker) RecordMessage(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.sessions[id]
	if !ok {
		return 0
	}
	state.Messages++
	return state.Messages
}

// RecordLearning bumps the learning counter and timestamps it.
func (t *Tracker) RecordLearning(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.sessions[id]; ok {
		state.Learnings++
		state.LastLearning = t.clock()
	}
}

// SetLastError flags whether the most recent assistant turn reported a
// failure. The learning pipeline treats error turns as failed executions.
func (t *Tracker) SetLastError(id string, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.sessions[id]; ok {
		state.LastError = failed
	}
}

// UpdateContext replaces the detected project context, used when session
// metadata arrives after the filesystem pass.
func (t *Tracker) UpdateContext(id string, pctx detect.ProjectContext) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.sessions[id]; ok {
		state.Context = pctx
	}
}

// End evicts a session and returns its final state for logging.
func (t *Tracker) End(id string) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.sessions[id]
	if !ok {
		return State{}, false
	}
	delete(t.sessions, id)
	return *state, true
}

// Len reports how many sessions are live.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
