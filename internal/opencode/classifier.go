package opencode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dyluth/lore/internal/detect"
	"github.com/dyluth/lore/internal/router"
	"github.com/dyluth/lore/pkg/skillbook"
)

// ScopeClassifier routes skill content through the OpenCode server's LLM.
// Any failure surfaces as ErrClassifierUnavailable so the router falls
// back to heuristics and stops calling us.
type ScopeClassifier struct {
	client *Client
}

// NewScopeClassifier wraps a client as a router.Classifier.
func NewScopeClassifier(client *Client) *ScopeClassifier {
	return &ScopeClassifier{client: client}
}

var _ router.Classifier = (*ScopeClassifier)(nil)

const classifierSystem = `You classify coding skills into a storage scope. Respond with JSON only, no prose, no markdown fences.`

const classifierPromptTemplate = `Classify this coding skill into exactly one scope.

Skill: %q

Current session context:
- language: %s
- framework: %s
- projectType: %s

Scopes:
- "universal": applies to any language or framework
- "language": specific to the session's programming language
- "framework": specific to the session's framework
- "project": specific to this one codebase

Respond with JSON: {"scope": "<one of the four>", "reasoning": "<one sentence>"}`

// Classify asks the server's model for a scope decision.
func (s *ScopeClassifier) Classify(ctx context.Context, content string, pctx detect.ProjectContext) (skillbook.Level, string, error) {
	prompt := fmt.Sprintf(classifierPromptTemplate, content,
		orNone(pctx.Language), orNone(pctx.Framework), orNone(pctx.ProjectType))

	reply, err := s.client.Complete(ctx, "lore scope classification", classifierSystem, prompt)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", router.ErrClassifierUnavailable, err)
	}

	level, reasoning, err := parseClassification(reply)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", router.ErrClassifierUnavailable, err)
	}
	return level, reasoning, nil
}

// parseClassification extracts the scope decision from a model reply,
// tolerating markdown fences and surrounding prose.
func parseClassification(reply string) (skillbook.Level, string, error) {
	payload := extractJSON(reply)
	if payload == "" {
		return "", "", fmt.Errorf("reply carried no JSON object")
	}

	var result struct {
		Scope     string `json:"scope"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return "", "", fmt.Errorf("malformed classification: %w", err)
	}

	level := skillbook.Level(strings.ToLower(strings.TrimSpace(result.Scope)))
	if err := level.Validate(); err != nil {
		return "", "", err
	}
	if strings.TrimSpace(result.Reasoning) == "" {
		return "", "", fmt.Errorf("classification carried no reasoning")
	}
	return level, result.Reasoning, nil
}

// extractJSON pulls the first JSON object out of a reply, stripping
// markdown fences when present.
func extractJSON(reply string) string {
	reply = strings.TrimSpace(reply)

	if idx := strings.Index(reply, "```"); idx >= 0 {
		rest := reply[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			reply = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return ""
	}
	return reply[start : end+1]
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
