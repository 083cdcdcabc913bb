// Package skillbook provides the type-safe data model and file-backed
// persistence for lore's hierarchical skill memory. A skillbook is a named,
// ordered collection of skills stored as a JSON envelope at one hierarchy
// scope (universal, language, framework, or project). All lore components
// (engine, router, promotion, migration, CLI) interact with skill state
// through this package.
package skillbook

import (
	"fmt"
	"time"
)

// FormatVersion is the envelope format version written by Save.
const FormatVersion = "1.0.0"

// Skill represents a single stored, atomic, reusable lesson derived from a
// past task execution. Skills are the fundamental unit of memory in lore -
// every learned pattern is a skill with feedback counters and provenance.
type Skill struct {
	ID        string    `json:"id"`        // Section-scoped identifier, e.g. "success-00001"
	Section   string    `json:"section"`   // Free-text grouping label ("success", "failure", ...)
	Content   string    `json:"content"`   // Natural-language lesson text (validated before persistence)
	Helpful   int       `json:"helpful"`   // Times this skill was reinforced as helpful
	Harmful   int       `json:"harmful"`   // Times this skill was reinforced as harmful
	Neutral   int       `json:"neutral"`   // Times this skill was seen without clear signal
	CreatedAt time.Time `json:"createdAt"` // When the skill was first extracted
	UpdatedAt time.Time `json:"updatedAt"` // Last mutation (content edit, counter bump, dedup touch)

	// Context tags for hierarchical memory. All nullable: a skill stored in
	// the universal skillbook typically carries none of them.
	Language    string `json:"language,omitempty"`
	Framework   string `json:"framework,omitempty"`
	ProjectType string `json:"projectType,omitempty"`
}

// NetScore returns helpful minus harmful. Context injection surfaces only
// skills with a positive net score.
func (s *Skill) NetScore() int {
	return s.Helpful - s.Harmful
}

// SuccessRate returns helpful / (helpful + harmful + neutral), or 0 when the
// skill has received no feedback yet.
func (s *Skill) SuccessRate() float64 {
	total := s.Helpful + s.Harmful + s.Neutral
	if total == 0 {
		return 0
	}
	return float64(s.Helpful) / float64(total)
}

// Age returns how long ago the skill was created, relative to now.
func (s *Skill) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// Validate checks structural invariants on a skill record. Content-quality
// validation (length, genericness, evidence) is a separate concern handled
// by Validator; this only rejects records that cannot be persisted at all.
func (s *Skill) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("skill ID cannot be empty")
	}
	if s.Section == "" {
		return fmt.Errorf("skill section cannot be empty")
	}
	if s.Content == "" {
		return fmt.Errorf("skill content cannot be empty")
	}
	if s.Helpful < 0 || s.Harmful < 0 || s.Neutral < 0 {
		return fmt.Errorf("feedback counters must be non-negative (helpful=%d harmful=%d neutral=%d)",
			s.Helpful, s.Harmful, s.Neutral)
	}
	return nil
}

// Envelope is the persisted skillbook file format. It must round-trip
// exactly on load → save with no field loss.
type Envelope struct {
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	Skills    []Skill   `json:"skills"`
}

// ExportEnvelope is the wire format produced by export and consumed by
// import. AgentID identifies the agent or scope the export was taken from.
type ExportEnvelope struct {
	Version    string    `json:"version"`
	ExportID   string    `json:"exportId"`
	ExportedAt time.Time `json:"exportedAt"`
	AgentID    string    `json:"agentId"`
	Skills     []Skill   `json:"skills"`
}

// Level identifies the hierarchy scope a skill collection belongs to.
// A skill's owning scope is fully determined by which path it lives in,
// not by an embedded field.
type Level string

const (
	// LevelUniversal is the widest scope: skills that apply everywhere.
	LevelUniversal Level = "universal"

	// LevelLanguage scopes skills to one programming language.
	LevelLanguage Level = "language"

	// LevelFramework scopes skills to one framework.
	LevelFramework Level = "framework"

	// LevelProject scopes skills to a single project checkout.
	LevelProject Level = "project"
)

// Validate checks if the Level is a valid enum value.
func (l Level) Validate() error {
	switch l {
	case LevelUniversal, LevelLanguage, LevelFramework, LevelProject:
		return nil
	default:
		return fmt.Errorf("unknown hierarchy level: %q", l)
	}
}

// Stats summarises one skill collection.
type Stats struct {
	TotalSkills   int      `json:"totalSkills"`
	HelpfulSkills int      `json:"helpfulSkills"` // helpful > harmful
	HarmfulSkills int      `json:"harmfulSkills"` // harmful > helpful
	NeutralSkills int      `json:"neutralSkills"` // helpful == harmful
	Sections      []string `json:"sections"`
}
