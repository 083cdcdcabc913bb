// Package resolver locates a skill by ID or ID prefix across the whole
// skillbook hierarchy, so CLI commands accept "success-3" style shorthand
// without the user naming the collection.
package resolver

import (
	"fmt"
	"strings"

	"github.com/dyluth/lore/pkg/skillbook"
)

// MinPrefixLength is the minimum accepted prefix. Shorter inputs match
// too widely to be useful.
const MinPrefixLength = 3

// Match is one located skill with its owning collection.
type Match struct {
	Path  string
	Skill skillbook.Skill
}

// ResolveSkillID finds the skill whose ID equals or starts with shortID,
// scanning the given collection paths in order. Returns the unique match,
// or an error when zero or multiple skills qualify. An exact ID match in
// any collection wins over prefix matches elsewhere.
func ResolveSkillID(store *skillbook.Store, paths []string, shortID string) (Match, error) {
	if len(shortID) < MinPrefixLength {
		return Match{}, fmt.Errorf("skill ID prefix must be at least %d characters (got %d)", MinPrefixLength, len(shortID))
	}

	var matches []Match
	for _, path := range paths {
		for _, skill := range store.Load(path) {
			if skill.ID == shortID {
				return Match{Path: path, Skill: skill}, nil
			}
			if strings.HasPrefix(skill.ID, shortID) {
				matches = append(matches, Match{Path: path, Skill: skill})
			}
		}
	}

	switch len(matches) {
	case 0:
		return Match{}, &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return Match{}, &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no skills matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no skills found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple skills matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous skill ID '%s' matches %d skills", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError creates a user-friendly message listing the
// matching skill IDs (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	msg := fmt.Sprintf("Error: ambiguous skill ID '%s' matches %d skills:\n", err.ShortID, len(err.Matches))

	displayCount := len(err.Matches)
	if displayCount > 10 {
		displayCount = 10
	}
	for i := 0; i < displayCount; i++ {
		msg += fmt.Sprintf("  %s (%s)\n", err.Matches[i].Skill.ID, err.Matches[i].Path)
	}
	if len(err.Matches) > 10 {
		msg += fmt.Sprintf("  ...and %d more\n", len(err.Matches)-10)
	}

	msg += "\nUse a longer prefix to uniquely identify the skill."
	return msg
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
