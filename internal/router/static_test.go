package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dyluth/lore/pkg/skillbook"
)

func TestClassifyStatic(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantLevel skillbook.Level
		wantName  string
	}{
		{
			name:      "django vocabulary",
			content:   "Run manage.py makemigrations after every model change",
			wantLevel: skillbook.LevelFramework,
			wantName:  "django",
		},
		{
			name:      "react hooks",
			content:   "Memoise the handler with useCallback before passing it down",
			wantLevel: skillbook.LevelFramework,
			wantName:  "react",
		},
		{
			name:      "python syntax",
			content:   "Use pytest fixtures instead of module-level setup",
			wantLevel: skillbook.LevelLanguage,
			wantName:  "python",
		},
		{
			name:      "go syntax",
			content:   "Leaked goroutines show up under the race detector",
			wantLevel: skillbook.LevelLanguage,
			wantName:  "go",
		},
		{
			name:      "framework beats language when both match",
			content:   "Django querysets are lazy, so call list() before leaving the view",
			wantLevel: skillbook.LevelFramework,
			wantName:  "django",
		},
		{
			name:      "unmatched content is universal",
			content:   "Keep commit messages short and in the imperative mood",
			wantLevel: skillbook.LevelUniversal,
			wantName:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := ClassifyStatic(tt.content)
			assert.Equal(t, tt.wantLevel, decision.Level)
			assert.Equal(t, tt.wantName, decision.Name)
			assert.NotEmpty(t, decision.Justification)
		})
	}
}
