package opencode

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// EventType identifies a lifecycle event on the stream.
type EventType string

const (
	EventSessionCreated   EventType = "session.created"
	EventSessionStarted   EventType = "session.started"
	EventSessionEnded     EventType = "session.ended"
	EventSessionDeleted   EventType = "session.deleted"
	EventMessageCreated   EventType = "message.created"
	EventMessageCompleted EventType = "message.completed"
)

// SessionMeta is the optional per-session metadata the host forwards when
// it knows something about the workspace.
type SessionMeta struct {
	Language    string `json:"language"`
	Framework   string `json:"framework"`
	ProjectType string `json:"projectType"`
}

// Event is one lifecycle event from the server's SSE stream.
type Event struct {
	Type       EventType    `json:"type"`
	SessionID  string       `json:"sessionID"`
	AgentID    string       `json:"agentID"`
	Directory  string       `json:"directory"`
	Role       string       `json:"role"`
	Text       string       `json:"text"`
	Metadata   *SessionMeta `json:"metadata,omitempty"`
	ReceivedAt time.Time    `json:"-"`
}

// rawEvent matches the wire shape: a type plus a properties bag.
type rawEvent struct {
	Type       EventType       `json:"type"`
	Properties json.RawMessage `json:"properties"`
}

type rawProperties struct {
	ID        string       `json:"id"`
	SessionID string       `json:"sessionID"`
	AgentID   string       `json:"agentID"`
	Directory string       `json:"directory"`
	Role      string       `json:"role"`
	Text      string       `json:"text"`
	Metadata  *SessionMeta `json:"metadata"`
	Parts     []promptPart `json:"parts"`
	Info      *struct {
		ID        string `json:"id"`
		SessionID string `json:"sessionID"`
		Role      string `json:"role"`
		Directory string `json:"directory"`
	} `json:"info"`
}

// Subscription is a live event stream. Consumers read Events() and
// Errors() until the context is cancelled or Close is called.
type Subscription struct {
	events chan Event
	errors chan error
	cancel context.CancelFunc
}

// Events returns the channel of lifecycle events.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Errors returns the channel of terminal stream errors. An error here
// means the subscription has given up reconnecting.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close terminates the subscription and releases its goroutine.
func (s *Subscription) Close() {
	s.cancel()
}

// Subscribe opens the server's SSE event stream and delivers parsed
// lifecycle events. Dropped connections are retried with exponential
// backoff up to retryLimit consecutive failures; a successful connect
// resets the counter.
func (c *Client) Subscribe(ctx context.Context, retryLimit int) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		events: make(chan Event, 64),
		errors: make(chan error, 1),
		cancel: cancel,
	}
	go c.streamLoop(ctx, sub, retryLimit)
	return sub
}

func (c *Client) streamLoop(ctx context.Context, sub *Subscription, retryLimit int) {
	defer close(sub.events)
	defer close(sub.errors)

	failures := 0
	for {
		if ctx.Err() != nil {
			return
		}

		err := c.streamOnce(ctx, sub)
		if ctx.Err() != nil {
			return
		}

		failures++
		if failures > retryLimit {
			sub.errors <- fmt.Errorf("event stream lost after %d attempts: %w", failures, err)
			return
		}

		backoff := time.Duration(1<<uint(failures-1)) * time.Second
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
		c.log.Warn().Err(err).Int("attempt", failures).Dur("backoff", backoff).Msg("event stream dropped, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// streamOnce holds one SSE connection open and pumps its events. A nil
// return never happens except on context cancellation: a cleanly closed
// stream is still a disconnect to recover from.
func (c *Client) streamOnce(ctx context.Context, sub *Subscription) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/event", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream outlives any sane request timeout, so bypass the
	// prompt client's deadline here.
	streamClient := &http.Client{Timeout: 0}
	resp, err := streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		event, ok := parseEvent(data)
		if !ok {
			continue
		}

		select {
		case sub.events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("event stream closed by server")
}

// parseEvent decodes one SSE data payload. Unknown event types and
// malformed payloads are skipped, not fatal.
func parseEvent(data string) (Event, bool) {
	var raw rawEvent
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return Event{}, false
	}

	switch raw.Type {
	case EventSessionCreated, EventSessionStarted, EventSessionEnded,
		EventSessionDeleted, EventMessageCreated, EventMessageCompleted:
	default:
		return Event{}, false
	}

	event := Event{Type: raw.Type, ReceivedAt: time.Now()}
	if len(raw.Properties) == 0 {
		return event, true
	}

	var props rawProperties
	if err := json.Unmarshal(raw.Properties, &props); err != nil {
		return event, true
	}

	event.SessionID = props.SessionID
	event.AgentID = props.AgentID
	event.Directory = props.Directory
	event.Role = props.Role
	event.Text = props.Text
	event.Metadata = props.Metadata
	if event.Text == "" {
		for _, part := range props.Parts {
			if part.Type == "text" && part.Text != "" {
				event.Text = part.Text
				break
			}
		}
	}

	if props.Info != nil {
		if event.SessionID == "" {
			event.SessionID = props.Info.SessionID
		}
		if event.Role == "" {
			event.Role = props.Info.Role
		}
		if event.Directory == "" {
			event.Directory = props.Info.Directory
		}
	}
	// Session events carry their own id in the id field.
	if event.SessionID == "" && strings.HasPrefix(string(raw.Type), "session.") {
		event.SessionID = props.ID
		if event.SessionID == "" && props.Info != nil {
			event.SessionID = props.Info.ID
		}
	}
	return event, true
}
