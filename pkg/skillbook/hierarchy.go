package skillbook

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Hierarchy maps scope levels to storage locations under a base directory.
// Every resolved path is unique: universal is a single file, languages and
// frameworks are one file per name inside their directories, and the
// optional project scope is a file at a path relative to the working
// directory (feature-flagged via ProjectsEnabled).
type Hierarchy struct {
	BaseDir         string // Root of the skillbook tree
	UniversalPath   string // Relative to BaseDir, e.g. "global/universal.json"
	LanguagesDir    string // Relative to BaseDir, e.g. "languages"
	FrameworksDir   string // Relative to BaseDir, e.g. "frameworks"
	ProjectsEnabled bool   // Whether the project scope is active
	ProjectRelPath  string // Relative to a project workdir, e.g. ".lore/skills.json"
}

// DefaultHierarchy returns the standard skillbook topology rooted at baseDir.
func DefaultHierarchy(baseDir string) Hierarchy {
	return Hierarchy{
		BaseDir:        baseDir,
		UniversalPath:  filepath.Join("global", "universal.json"),
		LanguagesDir:   "languages",
		FrameworksDir:  "frameworks",
		ProjectRelPath: filepath.Join(".lore", "skills.json"),
	}
}

// Universal returns the absolute path of the universal skillbook.
func (h Hierarchy) Universal() string {
	return filepath.Join(h.BaseDir, h.UniversalPath)
}

// Language returns the absolute path of the skillbook for one language.
// Names are lowercased so "Python" and "python" share a collection.
func (h Hierarchy) Language(language string) string {
	return filepath.Join(h.BaseDir, h.LanguagesDir, strings.ToLower(language)+".json")
}

// Framework returns the absolute path of the skillbook for one framework.
func (h Hierarchy) Framework(framework string) string {
	return filepath.Join(h.BaseDir, h.FrameworksDir, strings.ToLower(framework)+".json")
}

// Project returns the absolute path of the project-scope skillbook inside
// workDir, and whether the project scope is enabled at all.
func (h Hierarchy) Project(workDir string) (string, bool) {
	if !h.ProjectsEnabled || workDir == "" {
		return "", false
	}
	return filepath.Join(workDir, h.ProjectRelPath), true
}

// Resolve maps a routing level to a concrete path. An unresolvable language
// or framework (empty name) and a disabled or workdir-less project scope
// fall back to the universal path.
func (h Hierarchy) Resolve(level Level, language, framework, workDir string) string {
	switch level {
	case LevelLanguage:
		if language != "" {
			return h.Language(language)
		}
	case LevelFramework:
		if framework != "" {
			return h.Framework(framework)
		}
	case LevelProject:
		if path, ok := h.Project(workDir); ok {
			return path
		}
	}
	return h.Universal()
}

// Validate checks that the hierarchy paths are set and distinct.
func (h Hierarchy) Validate() error {
	if h.BaseDir == "" {
		return fmt.Errorf("hierarchy base directory cannot be empty")
	}
	if h.UniversalPath == "" {
		return fmt.Errorf("universal skillbook path cannot be empty")
	}
	if h.LanguagesDir == "" || h.FrameworksDir == "" {
		return fmt.Errorf("languages and frameworks directories cannot be empty")
	}
	if h.LanguagesDir == h.FrameworksDir {
		return fmt.Errorf("languages and frameworks directories must be distinct (both %q)", h.LanguagesDir)
	}
	if h.ProjectsEnabled && h.ProjectRelPath == "" {
		return fmt.Errorf("project scope enabled but project relative path is empty")
	}
	return nil
}
