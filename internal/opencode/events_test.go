package opencode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	t.Run("session created with metadata", func(t *testing.T) {
		data := `{"type": "session.created", "properties": {"id": "ses-1", "directory": "/work/api",
			"metadata": {"language": "go", "framework": "gin"}}}`

		event, ok := parseEvent(data)
		require.True(t, ok)
		assert.Equal(t, EventSessionCreated, event.Type)
		assert.Equal(t, "ses-1", event.SessionID)
		assert.Equal(t, "/work/api", event.Directory)
		require.NotNil(t, event.Metadata)
		assert.Equal(t, "go", event.Metadata.Language)
		assert.False(t, event.ReceivedAt.IsZero())
	})

	t.Run("message completed with info and parts", func(t *testing.T) {
		data := `{"type": "message.completed", "properties": {
			"info": {"sessionID": "ses-2", "role": "assistant"},
			"parts": [{"type": "step", "text": ""}, {"type": "text", "text": "done, tests pass"}]}}`

		event, ok := parseEvent(data)
		require.True(t, ok)
		assert.Equal(t, "ses-2", event.SessionID)
		assert.Equal(t, "assistant", event.Role)
		assert.Equal(t, "done, tests pass", event.Text)
	})

	t.Run("flat text wins over parts", func(t *testing.T) {
		data := `{"type": "message.created", "properties": {"sessionID": "ses-3", "role": "user",
			"text": "flat", "parts": [{"type": "text", "text": "from parts"}]}}`

		event, ok := parseEvent(data)
		require.True(t, ok)
		assert.Equal(t, "flat", event.Text)
	})

	t.Run("session id from nested info id", func(t *testing.T) {
		data := `{"type": "session.deleted", "properties": {"info": {"id": "ses-4"}}}`

		event, ok := parseEvent(data)
		require.True(t, ok)
		assert.Equal(t, "ses-4", event.SessionID)
	})

	t.Run("unknown type skipped", func(t *testing.T) {
		_, ok := parseEvent(`{"type": "storage.write", "properties": {}}`)
		assert.False(t, ok)
	})

	t.Run("malformed payload skipped", func(t *testing.T) {
		_, ok := parseEvent(`{"type": `)
		assert.False(t, ok)
	})

	t.Run("missing properties still delivers", func(t *testing.T) {
		event, ok := parseEvent(`{"type": "session.ended"}`)
		require.True(t, ok)
		assert.Equal(t, EventSessionEnded, event.Type)
		assert.Empty(t, event.SessionID)
	})
}

func TestSubscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/event", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"type\": \"session.created\", \"properties\": {\"id\": \"ses-1\"}}\n\n")
		fmt.Fprint(w, ": heartbeat comment\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"type\": \"message.completed\", \"properties\": {\"sessionID\": \"ses-1\", \"role\": \"assistant\", \"text\": \"hi\"}}\n\n")
		flusher.Flush()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := newTestClient(server).Subscribe(ctx, 0)
	defer sub.Close()

	first := <-sub.Events()
	assert.Equal(t, EventSessionCreated, first.Type)
	assert.Equal(t, "ses-1", first.SessionID)

	second := <-sub.Events()
	assert.Equal(t, EventMessageCompleted, second.Type)
	assert.Equal(t, "hi", second.Text)

	// The server closed the stream and retries are exhausted immediately.
	select {
	case err := <-sub.Errors():
		require.Error(t, err)
		assert.Contains(t, err.Error(), "event stream lost")
	case <-ctx.Done():
		t.Fatal("expected a terminal stream error")
	}
}

func TestSubscribeCancelledContext(t *testing.T) {
	stop := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-stop
	}))
	defer server.Close()
	defer close(stop)

	ctx, cancel := context.WithCancel(context.Background())
	sub := newTestClient(server).Subscribe(ctx, 3)
	cancel()

	// Cancellation closes the channels without a terminal error.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case err, ok := <-sub.Errors():
			if ok {
				t.Fatalf("unexpected terminal error: %v", err)
			}
		case <-deadline:
			t.Fatal("subscription did not shut down")
		}
	}
}
