package skillbook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Store provides load/save access to skillbook files. All mutating
// operations on a path are serialised through a per-path mutex, and every
// write goes through a temp-file + atomic rename, so two writers in the
// same process can never interleave a read-modify-write on one collection
// and a crashed write can never leave a torn file behind.
//
// A Store is created once at process start and shared; it holds no skill
// state itself, only the lock table.
type Store struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex // canonical path → collection lock
	clock func() time.Time
}

// NewStore creates a Store with the real clock.
func NewStore() *Store {
	return &Store{
		locks: make(map[string]*sync.Mutex),
		clock: time.Now,
	}
}

// NewStoreWithClock creates a Store with an injected clock for tests.
func NewStoreWithClock(clock func() time.Time) *Store {
	s := NewStore()
	s.clock = clock
	return s
}

// pathLock returns the mutex guarding one collection file.
func (s *Store) pathLock(path string) *sync.Mutex {
	canonical := filepath.Clean(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[canonical]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[canonical] = lock
	}
	return lock
}

// Load reads the skill collection at path. A missing or corrupt file is
// recovered locally as an empty collection - Load never fails the caller.
func (s *Store) Load(path string) []Skill {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()
	return s.loadLocked(path)
}

func (s *Store) loadLocked(path string) []Skill {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Skill{}
	}

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return []Skill{}
	}
	if envelope.Skills == nil {
		return []Skill{}
	}
	return envelope.Skills
}

// Save writes the skill collection to path inside a versioned envelope.
// Parent directories are created as needed. Returns false on any I/O
// failure; the previous file contents are preserved in that case because
// the write lands in a temp file first and only an atomic rename replaces
// the collection.
func (s *Store) Save(path string, skills []Skill) bool {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()
	return s.saveLocked(path, skills)
}

func (s *Store) saveLocked(path string, skills []Skill) bool {
	if skills == nil {
		skills = []Skill{}
	}
	envelope := Envelope{
		Version:   FormatVersion,
		UpdatedAt: s.clock().UTC(),
		Skills:    skills,
	}

	data, err := json.MarshalIndent(&envelope, "", "  ")
	if err != nil {
		return false
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false
	}

	tmp, err := os.CreateTemp(dir, ".skillbook-*.tmp")
	if err != nil {
		return false
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return false
	}
	return true
}

// AddResult reports the outcome of an Add call.
type AddResult struct {
	Skill Skill // The stored skill (new, or the existing one on dedup)
	IsNew bool  // False when an existing similar skill absorbed the add
}

// Add appends a new skill with content to the collection at path, assigning
// the next sequential section-scoped ID (e.g. "success-00003"). When
// deduplicate is true and an existing skill's content is at least
// similarityThreshold similar, the existing skill is touched (UpdatedAt)
// instead of appending a near-duplicate.
func (s *Store) Add(path, section, content string, deduplicate bool, similarityThreshold float64, tags ...Tag) (AddResult, error) {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	skills := s.loadLocked(path)
	now := s.clock().UTC()

	if deduplicate {
		if existing := findSimilar(skills, content, similarityThreshold); existing >= 0 {
			skills[existing].UpdatedAt = now
			if !s.saveLocked(path, skills) {
				return AddResult{}, fmt.Errorf("failed to save skillbook at %s", path)
			}
			return AddResult{Skill: skills[existing], IsNew: false}, nil
		}
	}

	skill := Skill{
		ID:        fmt.Sprintf("%s-%05d", section, nextSectionID(skills, section)),
		Section:   section,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, tag := range tags {
		tag(&skill)
	}

	if err := skill.Validate(); err != nil {
		return AddResult{}, fmt.Errorf("invalid skill: %w", err)
	}

	skills = append(skills, skill)
	if !s.saveLocked(path, skills) {
		return AddResult{}, fmt.Errorf("failed to save skillbook at %s", path)
	}
	return AddResult{Skill: skill, IsNew: true}, nil
}

// AddExisting inserts an already-formed skill into the collection at path,
// preserving its counters and timestamps but reassigning the ID into the
// destination's section sequence. Used when moving skills between
// collections (promotion, migration).
func (s *Store) AddExisting(path string, skill Skill) (Skill, error) {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	skills := s.loadLocked(path)
	if skill.Section == "" {
		skill.Section = "general"
	}
	skill.ID = fmt.Sprintf("%s-%05d", skill.Section, nextSectionID(skills, skill.Section))
	skill.UpdatedAt = s.clock().UTC()

	if err := skill.Validate(); err != nil {
		return Skill{}, fmt.Errorf("invalid skill: %w", err)
	}

	skills = append(skills, skill)
	if !s.saveLocked(path, skills) {
		return Skill{}, fmt.Errorf("failed to save skillbook at %s", path)
	}
	return skill, nil
}

// Tag applies optional context fields to a skill at creation time.
type Tag func(*Skill)

// WithContext tags a new skill with the detected language, framework and
// project type. Empty fields are left unset.
func WithContext(language, framework, projectType string) Tag {
	return func(skill *Skill) {
		skill.Language = language
		skill.Framework = framework
		skill.ProjectType = projectType
	}
}

// nextSectionID returns the next sequential numeric suffix for a section.
func nextSectionID(skills []Skill, section string) int {
	next := 1
	for _, skill := range skills {
		if skill.Section != section {
			continue
		}
		idx := strings.LastIndex(skill.ID, "-")
		if idx < 0 {
			continue
		}
		n, err := strconv.Atoi(skill.ID[idx+1:])
		if err != nil {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return next
}

// findSimilar returns the index of the first skill whose content is at
// least threshold similar to content, or -1.
func findSimilar(skills []Skill, content string, threshold float64) int {
	for i := range skills {
		if Ratio(skills[i].Content, content) >= threshold {
			return i
		}
	}
	return -1
}

// Feedback identifies a reinforcement counter on a skill.
type Feedback string

const (
	FeedbackHelpful Feedback = "helpful"
	FeedbackHarmful Feedback = "harmful"
	FeedbackNeutral Feedback = "neutral"
)

// Validate checks if the Feedback is a valid counter name.
func (f Feedback) Validate() error {
	switch f {
	case FeedbackHelpful, FeedbackHarmful, FeedbackNeutral:
		return nil
	default:
		return fmt.Errorf("unknown feedback tag: %q", f)
	}
}

// TagSkill increments one feedback counter on a skill by the given amount.
// Returns the updated skill, or an error if the skill or tag is unknown.
func (s *Store) TagSkill(path, skillID string, feedback Feedback, increment int) (Skill, error) {
	if err := feedback.Validate(); err != nil {
		return Skill{}, err
	}
	if increment < 0 {
		return Skill{}, fmt.Errorf("feedback increment must be non-negative, got %d", increment)
	}

	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	skills := s.loadLocked(path)
	for i := range skills {
		if skills[i].ID != skillID {
			continue
		}
		switch feedback {
		case FeedbackHelpful:
			skills[i].Helpful += increment
		case FeedbackHarmful:
			skills[i].Harmful += increment
		case FeedbackNeutral:
			skills[i].Neutral += increment
		}
		skills[i].UpdatedAt = s.clock().UTC()
		if !s.saveLocked(path, skills) {
			return Skill{}, fmt.Errorf("failed to save skillbook at %s", path)
		}
		return skills[i], nil
	}
	return Skill{}, fmt.Errorf("skill %q not found in %s", skillID, path)
}

// UpdateContent replaces a skill's content text.
func (s *Store) UpdateContent(path, skillID, content string) (Skill, error) {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	skills := s.loadLocked(path)
	for i := range skills {
		if skills[i].ID != skillID {
			continue
		}
		skills[i].Content = content
		skills[i].UpdatedAt = s.clock().UTC()
		if !s.saveLocked(path, skills) {
			return Skill{}, fmt.Errorf("failed to save skillbook at %s", path)
		}
		return skills[i], nil
	}
	return Skill{}, fmt.Errorf("skill %q not found in %s", skillID, path)
}

// Remove deletes a skill by ID. Returns true if a skill was removed.
func (s *Store) Remove(path, skillID string) (bool, error) {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	skills := s.loadLocked(path)
	kept := skills[:0]
	for _, skill := range skills {
		if skill.ID != skillID {
			kept = append(kept, skill)
		}
	}
	if len(kept) == len(skills) {
		return false, nil
	}
	if !s.saveLocked(path, kept) {
		return false, fmt.Errorf("failed to save skillbook at %s", path)
	}
	return true, nil
}

// Clear resets a collection to empty. This is the only operation that
// discards feedback counters, and it refuses to run without confirm.
func (s *Store) Clear(path string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("refusing to clear %s without explicit confirmation", path)
	}
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	if !s.saveLocked(path, []Skill{}) {
		return fmt.Errorf("failed to clear skillbook at %s", path)
	}
	return nil
}

// CollectionStats summarises the collection at path.
func (s *Store) CollectionStats(path string) Stats {
	skills := s.Load(path)

	stats := Stats{TotalSkills: len(skills), Sections: []string{}}
	seen := make(map[string]bool)
	for _, skill := range skills {
		switch {
		case skill.Helpful > skill.Harmful:
			stats.HelpfulSkills++
		case skill.Harmful > skill.Helpful:
			stats.HarmfulSkills++
		default:
			stats.NeutralSkills++
		}
		if !seen[skill.Section] {
			seen[skill.Section] = true
			stats.Sections = append(stats.Sections, skill.Section)
		}
	}
	return stats
}
