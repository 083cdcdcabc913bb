package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/lore/internal/detect"
)

func TestTrackerLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := NewTrackerWithClock(func() time.Time { return now })

	pctx := detect.ProjectContext{Language: "go", Framework: "gin"}
	tracker.Start("ses-1", "agent-a", "/work/api", pctx)
	assert.Equal(t, 1, tracker.Len())

	state, ok := tracker.Get("ses-1")
	require.True(t, ok)
	assert.Equal(t, "agent-a", state.AgentID)
	assert.Equal(t, "/work/api", state.WorkDir)
	assert.Equal(t, "go", state.Context.Language)
	assert.Equal(t, now, state.StartedAt)
	assert.False(t, state.Injected)

	tracker.MarkInjected("ses-1")
	tracker.SetLastPrompt("ses-1", "add a healthcheck endpoint")
	tracker.SetLastError("ses-1", true)
	assert.Equal(t, 1, tracker.RecordMessage("ses-1"))
	assert.Equal(t, 2, tracker.RecordMessage("ses-1"))
	tracker.RecordLearning("ses-1")

	state, ok = tracker.Get("ses-1")
	require.True(t, ok)
	assert.True(t, state.Injected)
	assert.Equal(t, "add a healthcheck endpoint", state.LastPrompt)
	assert.True(t, state.LastError)
	assert.Equal(t, 2, state.Messages)
	assert.Equal(t, 1, state.Learnings)
	assert.Equal(t, now, state.LastLearning)

	final, ok := tracker.End("ses-1")
	require.True(t, ok)
	assert.Equal(t, 2, final.Messages)
	assert.Equal(t, 0, tracker.Len())

	_, ok = tracker.Get("ses-1")
	assert.False(t, ok)
}

func TestTrackerRestartResetsState(t *testing.T) {
	tracker := NewTracker()

	tracker.Start("ses-1", "agent-a", "/work/api", detect.ProjectContext{Language: "go"})
	tracker.MarkInjected("ses-1")
	tracker.RecordMessage("ses-1")

	// A host restart can reuse the session ID; the old state must not leak.
	tracker.Start("ses-1", "agent-b", "/work/web", detect.ProjectContext{Language: "typescript"})

	state, ok := tracker.Get("ses-1")
	require.True(t, ok)
	assert.Equal(t, "agent-b", state.AgentID)
	assert.Equal(t, "typescript", state.Context.Language)
	assert.False(t, state.Injected)
	assert.Zero(t, state.Messages)
}

func TestTrackerUnknownSession(t *testing.T) {
	tracker := NewTracker()

	_, ok := tracker.Get("missing")
	assert.False(t, ok)
	assert.Zero(t, tracker.RecordMessage("missing"))
	_, ok = tracker.End("missing")
	assert.False(t, ok)

	// Mutators on unknown IDs are no-ops, not panics.
	tracker.MarkInjected("missing")
	tracker.SetLastPrompt("missing", "prompt")
	tracker.SetLastError("missing", true)
	tracker.RecordLearning("missing")
	tracker.UpdateContext("missing", detect.ProjectContext{})
	assert.Zero(t, tracker.Len())
}

func TestTrackerEmptyPromptIgnored(t *testing.T) {
	tracker := NewTracker()
	tracker.Start("ses-1", "agent-a", "/work", detect.ProjectContext{})

	tracker.SetLastPrompt("ses-1", "first prompt")
	tracker.SetLastPrompt("ses-1", "")

	state, _ := tracker.Get("ses-1")
	assert.Equal(t, "first prompt", state.LastPrompt)
}

func TestTrackerUpdateContext(t *testing.T) {
	tracker := NewTracker()
	tracker.Start("ses-1", "agent-a", "/work", detect.ProjectContext{Language: "go"})

	tracker.UpdateContext("ses-1", detect.ProjectContext{Language: "go", Framework: "gin"})

	state, _ := tracker.Get("ses-1")
	assert.Equal(t, "gin", state.Context.Framework)
}

func TestTrackerGetReturnsCopy(t *testing.T) {
	tracker := NewTracker()
	tracker.Start("ses-1", "agent-a", "/work", detect.ProjectContext{})

	state, _ := tracker.Get("ses-1")
	state.Messages = 99

	fresh, _ := tracker.Get("ses-1")
	assert.Zero(t, fresh.Messages)
}
