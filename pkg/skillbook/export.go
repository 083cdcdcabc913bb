package skillbook

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Export produces a portable snapshot of the collection at path. Each
// envelope carries a unique export ID so shared snapshots can be told
// apart after their filenames are lost.
func (s *Store) Export(path, agentID string) ExportEnvelope {
	return ExportEnvelope{
		Version:    FormatVersion,
		ExportID:   uuid.NewString(),
		ExportedAt: s.clock().UTC(),
		AgentID:    agentID,
		Skills:     s.Load(path),
	}
}

// WriteExport writes an export envelope as indented JSON.
func WriteExport(w io.Writer, envelope ExportEnvelope) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ReadExport parses an export envelope from r.
func ReadExport(r io.Reader) (ExportEnvelope, error) {
	var envelope ExportEnvelope
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return ExportEnvelope{}, fmt.Errorf("failed to parse export: %w", err)
	}
	return envelope, nil
}

// ImportMode selects how Import treats the target collection.
type ImportMode string

const (
	// ImportReplace replaces the target collection wholesale.
	ImportReplace ImportMode = "replace"

	// ImportMerge merges by skill ID, skipping IDs already present.
	ImportMerge ImportMode = "merge"
)

// Validate checks if the ImportMode is a valid enum value.
func (m ImportMode) Validate() error {
	switch m {
	case ImportReplace, ImportMerge:
		return nil
	default:
		return fmt.Errorf("unknown import mode: %q (must be 'replace' or 'merge')", m)
	}
}

// ImportResult reports what an Import call did.
type ImportResult struct {
	Imported   int // Skills written to the target collection
	Duplicates int // Skills skipped because their ID was already present (merge mode)
}

// Import writes the skills from an export envelope into the collection at
// path. Replace mode overwrites the collection; merge mode appends skills
// whose IDs are not already present and reports the duplicate count.
func (s *Store) Import(path string, envelope ExportEnvelope, mode ImportMode) (ImportResult, error) {
	if err := mode.Validate(); err != nil {
		return ImportResult{}, err
	}

	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	if mode == ImportReplace {
		if !s.saveLocked(path, envelope.Skills) {
			return ImportResult{}, fmt.Errorf("failed to save skillbook at %s", path)
		}
		return ImportResult{Imported: len(envelope.Skills)}, nil
	}

	existing := s.loadLocked(path)
	present := make(map[string]bool, len(existing))
	for _, skill := range existing {
		present[skill.ID] = true
	}

	result := ImportResult{}
	for _, skill := range envelope.Skills {
		if present[skill.ID] {
			result.Duplicates++
			continue
		}
		existing = append(existing, skill)
		present[skill.ID] = true
		result.Imported++
	}

	if !s.saveLocked(path, existing) {
		return ImportResult{}, fmt.Errorf("failed to save skillbook at %s", path)
	}
	return result, nil
}
