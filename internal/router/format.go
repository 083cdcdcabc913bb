package router

import (
	"fmt"
	"sort"
	"strings"
)

// maxInjectedSkills bounds the bullet list in an injected context block.
const maxInjectedSkills = 15

// FormatInjection renders the master context as the text block injected
// into a session: a header, a provenance line, an instruction, up to 15
// positive-net-score skills ordered by net score descending, and a closing
// instruction. Returns "" when no skill qualifies, which callers treat as
// "nothing to inject".
func FormatInjection(master MasterContext) string {
	eligible := make([]int, 0, len(master.Skills))
	for i := range master.Skills {
		if master.Skills[i].NetScore() > 0 {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return ""
	}

	// Stable sort keeps the load order (scope precedence) among equal
	// net scores.
	sort.SliceStable(eligible, func(a, b int) bool {
		return master.Skills[eligible[a]].NetScore() > master.Skills[eligible[b]].NetScore()
	})
	if len(eligible) > maxInjectedSkills {
		eligible = eligible[:maxInjectedSkills]
	}

	var b strings.Builder
	b.WriteString("## Learned skills from previous sessions\n")
	if len(master.Sources) > 0 {
		b.WriteString(fmt.Sprintf("Sources: %s\n", strings.Join(master.Sources, " + ")))
	}
	b.WriteString("Apply these proven lessons where they are relevant to the current task:\n")
	for _, idx := range eligible {
		skill := master.Skills[idx]
		b.WriteString(fmt.Sprintf("- [%s] %s\n", skill.ID, skill.Content))
	}
	b.WriteString("Prefer these lessons over rediscovering them from scratch.\n")
	return b.String()
}
