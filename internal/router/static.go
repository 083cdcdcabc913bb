package router

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/dyluth/lore/pkg/skillbook"
)

// StaticDecision is the outcome of a context-free classification.
type StaticDecision struct {
	Level         skillbook.Level
	Name          string // Framework or language name, when applicable
	Justification string
}

// ClassifyStatic routes skill content with no live project context. It is
// the migration ladder: historical skills carry no session, so every
// framework and language vocabulary competes, checked in stable name
// order. Unmatched content is universal, not language, because there is
// no detected language to default to.
func ClassifyStatic(content string) StaticDecision {
	for _, name := range sortedKeys(frameworkVocabulary) {
		if matchesAny(frameworkVocabulary[name], content) {
			return StaticDecision{
				Level:         skillbook.LevelFramework,
				Name:          name,
				Justification: fmt.Sprintf("content matches %s vocabulary", name),
			}
		}
	}
	for _, name := range sortedKeys(languageVocabulary) {
		if matchesAny(languageVocabulary[name], content) {
			return StaticDecision{
				Level:         skillbook.LevelLanguage,
				Name:          name,
				Justification: fmt.Sprintf("content matches %s syntax", name),
			}
		}
	}
	return StaticDecision{
		Level:         skillbook.LevelUniversal,
		Justification: "no framework or language vocabulary matched",
	}
}

func sortedKeys(m map[string][]*regexp.Regexp) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
