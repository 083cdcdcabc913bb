// Package opencode is the HTTP client for the host OpenCode server: the
// platform that runs agent sessions, proxies LLM calls to the user's
// configured providers, and emits the lifecycle event stream lore
// subscribes to. No API keys live in lore - every model call goes through
// the server.
package opencode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to one OpenCode server.
type Client struct {
	baseURL    string
	providerID string
	modelID    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Config holds client settings.
type Config struct {
	BaseURL    string
	ProviderID string
	ModelID    string
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// NewClient creates a client for the OpenCode server at cfg.BaseURL.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		providerID: cfg.ProviderID,
		modelID:    cfg.ModelID,
		httpClient: &http.Client{Timeout: timeout},
		log:        cfg.Logger,
	}
}

// Ping checks if the server is reachable and healthy.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("opencode server unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("opencode server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// CreateSession creates a throwaway session for an internal LLM call
// (classification, reflection) and returns its ID.
func (c *Client) CreateSession(ctx context.Context, title string) (string, error) {
	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create opencode session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("failed to create opencode session: status %d", resp.StatusCode)
	}

	var result struct {
		ID   string `json:"id"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse session response: %w", err)
	}
	if result.ID != "" {
		return result.ID, nil
	}
	if result.Data.ID != "" {
		return result.Data.ID, nil
	}
	return "", fmt.Errorf("session response carried no id")
}

// DeleteSession removes a throwaway session. Best-effort: failures are
// logged, not returned, because a leaked session is harmless.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/session/"+sessionID, nil)
	if err != nil {
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("session_id", sessionID).Msg("failed to delete opencode session")
		return
	}
	resp.Body.Close()
}

// promptRequest is the session prompt payload.
type promptRequest struct {
	Model   *modelRef    `json:"model,omitempty"`
	NoReply bool         `json:"noReply,omitempty"`
	Parts   []promptPart `json:"parts"`
}

type modelRef struct {
	ProviderID string `json:"providerID"`
	ModelID    string `json:"modelID"`
}

type promptPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Prompt sends text to a session using the configured provider/model and
// returns the assistant's text reply.
func (c *Client) Prompt(ctx context.Context, sessionID, system, prompt string) (string, error) {
	parts := []promptPart{}
	if system != "" {
		parts = append(parts, promptPart{Type: "text", Text: "[System]: " + system + "\n\n"})
	}
	parts = append(parts, promptPart{Type: "text", Text: prompt})

	payload := promptRequest{
		Model: &modelRef{ProviderID: c.providerID, ModelID: c.modelID},
		Parts: parts,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session/"+sessionID+"/prompt", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("opencode prompt failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("opencode prompt error %d: %s", resp.StatusCode, string(respBody))
	}

	return parsePromptReply(resp.Body)
}

// parsePromptReply extracts the assistant text from either response shape
// the server emits: a parts array or an OpenAI-style choices array.
func parsePromptReply(r io.Reader) (string, error) {
	var result struct {
		Parts []promptPart `json:"parts"`
		Data  struct {
			Parts []promptPart `json:"parts"`
		} `json:"data"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse prompt response: %w", err)
	}

	for _, part := range result.Parts {
		if part.Type == "text" && part.Text != "" {
			return part.Text, nil
		}
	}
	for _, part := range result.Data.Parts {
		if part.Type == "text" && part.Text != "" {
			return part.Text, nil
		}
	}
	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("prompt response carried no text")
}

// Inject inserts text into an active user session as a non-reply prompt:
// the text becomes context for the session's model without triggering an
// assistant turn.
func (c *Client) Inject(ctx context.Context, sessionID, text string) error {
	payload := promptRequest{
		NoReply: true,
		Parts:   []promptPart{{Type: "text", Text: text}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session/"+sessionID+"/prompt", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("context injection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("context injection rejected: status %d", resp.StatusCode)
	}
	return nil
}

// Complete runs a one-shot prompt in a throwaway session: create, prompt,
// delete. Used by the classifier and the reflector.
func (c *Client) Complete(ctx context.Context, title, system, prompt string) (string, error) {
	sessionID, err := c.CreateSession(ctx, title)
	if err != nil {
		return "", err
	}
	defer c.DeleteSession(context.WithoutCancel(ctx), sessionID)

	return c.Prompt(ctx, sessionID, system, prompt)
}
