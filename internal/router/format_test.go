package router

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dyluth/lore/pkg/skillbook"
)

func TestFormatInjection(t *testing.T) {
	master := MasterContext{
		Skills: []skillbook.Skill{
			{ID: "success-00001", Content: "Pin dependency versions in lockfiles", Helpful: 2},
			{ID: "success-00002", Content: "Unproven lesson with no feedback yet"},
			{ID: "success-00003", Content: "Harmful lesson that misled a session", Helpful: 1, Harmful: 3},
			{ID: "success-00004", Content: "Squash migrations before a release branch", Helpful: 5},
		},
		Sources: []string{"Universal (2 skills)", "Language/python (2 skills)"},
	}

	out := FormatInjection(master)

	assert.Contains(t, out, "## Learned skills from previous sessions")
	assert.Contains(t, out, "Sources: Universal (2 skills) + Language/python (2 skills)")
	assert.Contains(t, out, "[success-00001] Pin dependency versions")
	assert.Contains(t, out, "[success-00004] Squash migrations")
	assert.NotContains(t, out, "Unproven lesson")
	assert.NotContains(t, out, "Harmful lesson")

	// Highest net score first.
	assert.Less(t, strings.Index(out, "success-00004"), strings.Index(out, "success-00001"))
}

func TestFormatInjectionEmpty(t *testing.T) {
	assert.Empty(t, FormatInjection(MasterContext{}))

	// Skills exist but none has a positive net score.
	master := MasterContext{
		Skills: []skillbook.Skill{
			{ID: "success-00001", Content: "No feedback yet"},
			{ID: "failure-00001", Content: "Net negative", Harmful: 2},
		},
		Sources: []string{"Universal (2 skills)"},
	}
	assert.Empty(t, FormatInjection(master))
}

func TestFormatInjectionCapsSkillCount(t *testing.T) {
	master := MasterContext{Sources: []string{"Universal (20 skills)"}}
	for i := 1; i <= 20; i++ {
		master.Skills = append(master.Skills, skillbook.Skill{
			ID:      fmt.Sprintf("success-%05d", i),
			Content: fmt.Sprintf("Lesson number %d with real substance", i),
			Helpful: i,
		})
	}

	out := FormatInjection(master)

	assert.Equal(t, maxInjectedSkills, strings.Count(out, "\n- ["))
	// The lowest scorers fall off the end.
	assert.NotContains(t, out, "success-00001]")
	assert.Contains(t, out, "success-00020]")
	assert.Contains(t, out, "success-00006]")
}

func TestFormatInjectionStableOrderOnTies(t *testing.T) {
	// Equal net scores keep load order, which encodes scope precedence.
	master := MasterContext{
		Skills: []skillbook.Skill{
			{ID: "success-00001", Content: "Universal lesson", Helpful: 1},
			{ID: "success-00002", Content: "Language lesson", Helpful: 1},
		},
	}

	out := FormatInjection(master)

	assert.Less(t, strings.Index(out, "success-00001"), strings.Index(out, "success-00002"))
}
