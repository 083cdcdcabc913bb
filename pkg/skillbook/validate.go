package skillbook

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator checks candidate skill text before it is allowed into a store.
// A rejected skill is discarded with a specific human-readable reason - it
// is never silently dropped and never retried.
type Validator struct {
	MinLength       int  // Minimum content length in characters
	MaxLength       int  // Maximum content length in characters
	MaxSentences    int  // A skill must express one reusable idea
	RequireEvidence bool // Require at least one concrete evidence indicator
}

// DefaultValidator returns a Validator with the standard thresholds.
func DefaultValidator() Validator {
	return Validator{
		MinLength:       20,
		MaxLength:       2000,
		MaxSentences:    5,
		RequireEvidence: true,
	}
}

// genericTemplates is the blocklist of low-information skill texts.
// Matched case-insensitively against the whole (trimmed) content.
var genericTemplates = []string{
	"use npm install",
	"fix the error",
	"try again",
	"run the tests",
	"check the logs",
	"restart the server",
	"read the documentation",
	"update the dependencies",
	"it works now",
	"debug the issue",
}

// evidencePatterns recognise concrete, reusable technical content: file
// extensions, package-manager or infra commands, URLs, CLI flags, code
// constructs, imports, method-call-like tokens, or quantities with units.
var evidencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b[\w./-]+\.(go|py|ts|tsx|js|jsx|rs|java|kt|rb|php|c|cc|cpp|h|hpp|cs|swift|sql|sh|ya?ml|json|toml|md|proto|tf|css|html)\b`),
	regexp.MustCompile(`(?i)\b(npm|yarn|pnpm|pip3?|pipx|poetry|uv|cargo|gem|composer|brew|apt(-get)?|apk|mvn|gradle)\s+\w+`),
	regexp.MustCompile(`(?i)\b(docker|kubectl|terraform|helm|aws|gcloud|az|git|make|systemctl|curl|ssh|psql|redis-cli)\s+\w+`),
	regexp.MustCompile(`(?i)\bhttps?://\S+`),
	regexp.MustCompile(`(^|\s)--?[a-zA-Z][\w-]+`),
	regexp.MustCompile(`(?i)\b(func|function|class|interface|struct|enum|trait|def|lambda|async|await|goroutine|channel|mutex|decorator|middleware|endpoint|migration|schema|index|transaction|regex)\b`),
	regexp.MustCompile(`(?i)\b(import|include|require|from\s+\S+\s+import)\s+[\w./@-]+`),
	regexp.MustCompile(`\buse\s+\w+(::\w+)+`),
	regexp.MustCompile(`\b\w+\.\w+\(`),
	regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s?(ms|s|sec|seconds?|m|min|minutes?|h|hours?|days?|kb|mb|gb|%|x|retries|attempts|workers|connections)\b`),
}

var sentenceEnd = regexp.MustCompile(`[.!?]+(\s|$)`)

// Check validates candidate skill content. A nil error means the content
// may be persisted.
func (v Validator) Check(content string) error {
	trimmed := strings.TrimSpace(content)

	// Generic templates are rejected for being generic, not for being
	// short, so the blocklist runs before the length checks.
	lowered := strings.ToLower(trimmed)
	for _, template := range genericTemplates {
		if lowered == template {
			return fmt.Errorf("skill rejected as generic advice: %q carries no reusable information", trimmed)
		}
	}

	if len(trimmed) < v.MinLength {
		return fmt.Errorf("skill too short: %d characters (minimum %d)", len(trimmed), v.MinLength)
	}
	if len(trimmed) > v.MaxLength {
		return fmt.Errorf("skill too long: %d characters (maximum %d)", len(trimmed), v.MaxLength)
	}

	if n := countSentences(trimmed); n > v.MaxSentences {
		return fmt.Errorf("skill not atomic: %d sentences (maximum %d) - split into one idea per skill", n, v.MaxSentences)
	}

	if v.RequireEvidence && !hasEvidence(trimmed) {
		return fmt.Errorf("skill lacks concrete evidence: no file, command, URL, flag, code construct, or measured quantity found")
	}

	return nil
}

func countSentences(text string) int {
	n := len(sentenceEnd.FindAllString(text, -1))
	if n == 0 {
		return 1
	}
	// Text continuing past the last terminator is a final, unterminated
	// sentence.
	if !strings.HasSuffix(strings.TrimSpace(text), ".") &&
		!strings.HasSuffix(strings.TrimSpace(text), "!") &&
		!strings.HasSuffix(strings.TrimSpace(text), "?") {
		n++
	}
	return n
}

func hasEvidence(text string) bool {
	for _, pattern := range evidencePatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
