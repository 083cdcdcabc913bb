package skillbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillScores(t *testing.T) {
	t.Run("net score is helpful minus harmful", func(t *testing.T) {
		skill := Skill{Helpful: 5, Harmful: 2, Neutral: 7}
		assert.Equal(t, 3, skill.NetScore())
	})

	t.Run("success rate over all feedback", func(t *testing.T) {
		skill := Skill{Helpful: 9, Harmful: 1}
		assert.InDelta(t, 0.9, skill.SuccessRate(), 0.001)
	})

	t.Run("success rate with no feedback is zero", func(t *testing.T) {
		skill := Skill{}
		assert.Zero(t, skill.SuccessRate())
	})

	t.Run("age is measured from creation", func(t *testing.T) {
		created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		skill := Skill{CreatedAt: created}
		assert.Equal(t, 48*time.Hour, skill.Age(created.Add(48*time.Hour)))
	})
}

func TestSkillValidate(t *testing.T) {
	valid := Skill{ID: "success-00001", Section: "success", Content: "some lesson"}

	t.Run("accepts complete skill", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		for name, mutate := range map[string]func(*Skill){
			"empty id":      func(s *Skill) { s.ID = "" },
			"empty section": func(s *Skill) { s.Section = "" },
			"empty content": func(s *Skill) { s.Content = "" },
		} {
			t.Run(name, func(t *testing.T) {
				skill := valid
				mutate(&skill)
				require.Error(t, skill.Validate())
			})
		}
	})

	t.Run("rejects negative counters", func(t *testing.T) {
		skill := valid
		skill.Harmful = -1
		require.Error(t, skill.Validate())
	})
}

func TestLevelValidate(t *testing.T) {
	for _, level := range []Level{LevelUniversal, LevelLanguage, LevelFramework, LevelProject} {
		require.NoError(t, level.Validate())
	}
	require.Error(t, Level("global").Validate())
}
