package opencode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Reflection holds the model's analysis of one task execution.
type Reflection struct {
	Reasoning       string   `json:"reasoning"`
	KeyInsights     []string `json:"keyInsights"`
	Patterns        []string `json:"patterns"`
	ErrorIdentified string   `json:"errorIdentified,omitempty"`
	RootCause       string   `json:"rootCause,omitempty"`
	SuggestedAction string   `json:"suggestedAction,omitempty"`
}

// Reflector extracts reusable skills from completed task turns by asking
// the server's model to analyze what happened.
type Reflector struct {
	client *Client
}

// NewReflector creates a reflector on top of a client.
func NewReflector(client *Client) *Reflector {
	return &Reflector{client: client}
}

const reflectorPromptTemplate = `You are a senior analytical reviewer for an agent platform.
Your job is to analyze task execution and extract reusable patterns.

## Performance data
Question: %s
Result: %s
Success: %s

## Diagnostic protocol

### 1. Outcome assessment
- Determine if execution succeeded or failed
- Identify what approach was used
- Note any errors or obstacles encountered

### 2. Pattern extraction
- Extract 3-5 reusable patterns from the execution
- Each pattern must be:
  * Specific and actionable
  * Reference actual code, commands, file names, or techniques used
  * Include concrete examples (not vague advice)
  * Clearly indicate when to apply each pattern

### 3. Learning analysis (if failed)
- Error identification: what specifically went wrong
- Root cause analysis: why it happened
- Suggested action: how to fix it

## Output format

Provide a JSON response with this exact structure:
{
  "reasoning": "Brief systematic explanation of what happened and why",
  "keyInsights": ["insight 1", "insight 2"],
  "patterns": [
    "Actionable pattern 1 - specific technique used",
    "Actionable pattern 2 - specific command or approach"
  ],
  "errorIdentified": "What went wrong (only if failed)",
  "rootCause": "Why it failed (only if failed)",
  "suggestedAction": "How to fix it (only if failed)"
}

Return ONLY valid JSON, no markdown formatting, no extra text.`

// Reflect analyzes one task turn and returns the extracted patterns.
func (r *Reflector) Reflect(ctx context.Context, task, result string, success bool) (*Reflection, error) {
	successStr := "No"
	if success {
		successStr = "Yes"
	}
	prompt := fmt.Sprintf(reflectorPromptTemplate, task, result, successStr)

	reply, err := r.client.Complete(ctx, "lore reflection", "", prompt)
	if err != nil {
		return nil, fmt.Errorf("reflection failed: %w", err)
	}
	return parseReflection(reply)
}

// parseReflection decodes the model's JSON, tolerating fences and prose.
func parseReflection(reply string) (*Reflection, error) {
	payload := extractJSON(reply)
	if payload == "" {
		return nil, fmt.Errorf("reflection reply carried no JSON object")
	}

	var reflection Reflection
	if err := json.Unmarshal([]byte(payload), &reflection); err != nil {
		return nil, fmt.Errorf("malformed reflection: %w", err)
	}
	if len(reflection.Patterns) == 0 && len(reflection.KeyInsights) == 0 {
		return nil, fmt.Errorf("reflection carried no patterns or insights")
	}

	// Some models return patterns with numbering baked in.
	for i, p := range reflection.Patterns {
		reflection.Patterns[i] = strings.TrimSpace(strings.TrimLeft(p, "0123456789.) "))
	}
	return &reflection, nil
}
