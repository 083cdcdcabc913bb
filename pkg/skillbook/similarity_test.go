package skillbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaccard(t *testing.T) {
	t.Run("identical texts score 1", func(t *testing.T) {
		assert.Equal(t, 1.0, Jaccard("run the linter", "run the linter"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, 1.0, Jaccard("Run The Linter", "run the linter"))
	})

	t.Run("disjoint texts score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, Jaccard("alpha beta", "gamma delta"))
	})

	t.Run("partial overlap is intersection over union", func(t *testing.T) {
		// 5 shared tokens, 7 in the union
		got := Jaccard(
			"Always run tests before committing changes",
			"Always run tests before committing code",
		)
		assert.InDelta(t, 5.0/7.0, got, 0.001)
	})

	t.Run("both empty score 1", func(t *testing.T) {
		assert.Equal(t, 1.0, Jaccard("", ""))
	})

	t.Run("one empty scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, Jaccard("something", ""))
	})
}

func TestRatio(t *testing.T) {
	t.Run("identical texts score 1", func(t *testing.T) {
		assert.Equal(t, 1.0, Ratio("use context timeouts", "use context timeouts"))
	})

	t.Run("single word edit stays high", func(t *testing.T) {
		got := Ratio(
			"Always run tests before committing changes",
			"Always run tests before committing code",
		)
		assert.Greater(t, got, 0.85)
	})

	t.Run("unrelated texts stay low", func(t *testing.T) {
		got := Ratio(
			"Pin dependencies in requirements.txt",
			"Use goroutines with a bounded worker pool",
		)
		assert.Less(t, got, 0.5)
	})
}

func TestDuplicate(t *testing.T) {
	t.Run("near-identical wording is a duplicate at 0.85", func(t *testing.T) {
		assert.True(t, Duplicate(
			"Always run tests before committing changes",
			"Always run tests before committing code",
			0.85,
		))
	})

	t.Run("different lessons are not duplicates", func(t *testing.T) {
		assert.False(t, Duplicate(
			"Always run tests before committing changes",
			"Use database transactions for multi-row updates",
			0.85,
		))
	})
}
