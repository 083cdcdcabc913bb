// Package detect turns a working directory (plus optional session metadata)
// into a ProjectContext: the detected language, framework and project type
// for the code the session is working on. Detection is rule-driven - the
// rule sets are data, not code - and results are cached per working
// directory with a fixed TTL.
package detect

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Method records which sources contributed to a ProjectContext.
type Method string

const (
	// MethodFilesystem means only filesystem markers contributed.
	MethodFilesystem Method = "filesystem"

	// MethodSession means only caller-supplied session metadata contributed.
	MethodSession Method = "session"

	// MethodCombined means more than one source contributed.
	MethodCombined Method = "combined"
)

// ProjectContext describes the detected working environment. It is
// recomputed per working directory on demand and never persisted to disk.
type ProjectContext struct {
	Language    string    `json:"language,omitempty"`
	Framework   string    `json:"framework,omitempty"`
	ProjectType string    `json:"projectType,omitempty"`
	Confidence  float64   `json:"confidence"`
	Method      Method    `json:"detectionMethod"`
	WorkDir     string    `json:"workDir"`
	DetectedAt  time.Time `json:"detectedAt"`
}

// SessionMetadata carries context fields supplied by the host platform on
// session start. Supplied fields are trusted directly. A nil *SessionMetadata
// means the platform supplied nothing; a non-nil value with no fields set
// still counts as a (low-confidence) session contribution.
type SessionMetadata struct {
	Language    string
	Framework   string
	ProjectType string
}

func (m *SessionMetadata) empty() bool {
	return m.Language == "" && m.Framework == "" && m.ProjectType == ""
}

// cacheTTL is how long a detection result stays live per working directory.
const cacheTTL = time.Hour

// walkFileLimit bounds the filesystem pass on very large trees. Marker
// files live near the root, so the cap only affects extension scoring.
const walkFileLimit = 5000

// Detector performs rule-driven project context detection. Its cache is
// explicit, constructor-injected state: create one Detector at process
// start and share it. Detection is side-effect-free except for cache
// writes, and never returns an error - an unrecognisable directory yields
// an all-null context with confidence 0.
type Detector struct {
	rules Rules
	clock func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	ctx     ProjectContext
	expires time.Time
}

// New creates a Detector using the given rule sets.
func New(rules Rules) *Detector {
	return &Detector{
		rules: rules,
		clock: time.Now,
		cache: make(map[string]cacheEntry),
	}
}

// NewWithClock creates a Detector with an injected clock for tests.
func NewWithClock(rules Rules, clock func() time.Time) *Detector {
	d := New(rules)
	d.clock = clock
	return d
}

// Detect computes the ProjectContext for workDir, merging the filesystem
// pass with optional session metadata. The filesystem result wins on every
// field; session fields only fill gaps. A live cache entry short-circuits
// the filesystem pass entirely - cache reads never touch the disk.
func (d *Detector) Detect(workDir string, meta *SessionMetadata) ProjectContext {
	now := d.clock()

	d.mu.Lock()
	if entry, ok := d.cache[workDir]; ok && now.Before(entry.expires) {
		d.mu.Unlock()
		return entry.ctx
	}
	d.mu.Unlock()

	fsCtx := d.detectFilesystem(workDir, now)

	ctx := fsCtx
	sources := 0
	if fsCtx.Language != "" || fsCtx.Framework != "" || fsCtx.ProjectType != "" {
		sources++
	}

	if meta != nil {
		// Session metadata is trusted directly, but the filesystem result is
		// preferred: supplied fields only fill gaps. Metadata provided with
		// no fields set still counts as a contributor, at lower confidence.
		if ctx.Language == "" && meta.Language != "" {
			ctx.Language = strings.ToLower(meta.Language)
		}
		if ctx.Framework == "" && meta.Framework != "" {
			ctx.Framework = strings.ToLower(meta.Framework)
		}
		if ctx.ProjectType == "" && meta.ProjectType != "" {
			ctx.ProjectType = strings.ToLower(meta.ProjectType)
		}
		sources++
		sessionConfidence := 0.9
		if meta.empty() {
			sessionConfidence = 0.5
		}
		if sessionConfidence > ctx.Confidence {
			ctx.Confidence = sessionConfidence
		}
		ctx.Method = MethodSession
	}

	if sources > 1 {
		ctx.Method = MethodCombined
	}

	d.mu.Lock()
	d.cache[workDir] = cacheEntry{ctx: ctx, expires: now.Add(cacheTTL)}
	d.mu.Unlock()

	return ctx
}

// Invalidate drops the cache entry for workDir. Used by tests and by the
// CLI when the caller knows the tree changed.
func (d *Detector) Invalidate(workDir string) {
	d.mu.Lock()
	delete(d.cache, workDir)
	d.mu.Unlock()
}

// detectFilesystem runs the marker-file and extension scoring passes.
func (d *Detector) detectFilesystem(workDir string, now time.Time) ProjectContext {
	ctx := ProjectContext{
		WorkDir:    workDir,
		DetectedAt: now,
		Method:     MethodFilesystem,
	}

	tree := scanTree(workDir)
	if tree == nil {
		return ctx
	}

	ctx.Language = bestLanguage(d.rules.Languages, tree)
	ctx.Framework = bestFramework(d.rules.Frameworks, tree)
	ctx.ProjectType = firstProjectType(d.rules.ProjectTypes, ctx.Language, ctx.Framework, tree)

	fields := 0
	if ctx.Language != "" {
		fields++
	}
	if ctx.Framework != "" {
		fields++
	}
	if ctx.ProjectType != "" {
		fields++
	}
	ctx.Confidence = float64(fields) / 3
	return ctx
}

// treeSnapshot is one bounded walk of the working directory, shared by all
// rule evaluations so detection reads the disk once.
type treeSnapshot struct {
	root      string
	rootFiles map[string]bool // file name → present at tree root
	rootDirs  map[string]bool // directory name → present at tree root
	allExts   map[string]bool // lowercased extension (".go") → seen anywhere
}

// skipDirs are vendored or generated trees that would dominate extension
// scoring without saying anything about the project itself.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"venv":         true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
}

func scanTree(workDir string) *treeSnapshot {
	info, err := os.Stat(workDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	tree := &treeSnapshot{
		root:      workDir,
		rootFiles: make(map[string]bool),
		rootDirs:  make(map[string]bool),
		allExts:   make(map[string]bool),
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return tree
	}
	for _, entry := range entries {
		if entry.IsDir() {
			tree.rootDirs[entry.Name()] = true
		} else {
			tree.rootFiles[entry.Name()] = true
		}
	}

	seen := 0
	filepath.WalkDir(workDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if skipDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		seen++
		if seen > walkFileLimit {
			return filepath.SkipAll
		}
		if ext := strings.ToLower(filepath.Ext(entry.Name())); ext != "" {
			tree.allExts[ext] = true
		}
		return nil
	})

	return tree
}

// hasDir reports whether a (possibly nested) directory exists under root.
func (t *treeSnapshot) hasDir(name string) bool {
	if t.rootDirs[name] {
		return true
	}
	info, err := os.Stat(filepath.Join(t.root, filepath.FromSlash(name)))
	return err == nil && info.IsDir()
}

// markerContains reports whether a root marker file's content contains any
// of the hints, case-insensitively.
func (t *treeSnapshot) markerContains(marker string, hints []string) bool {
	if !t.rootFiles[marker] {
		return false
	}
	data, err := os.ReadFile(filepath.Join(t.root, marker))
	if err != nil {
		return false
	}
	content := strings.ToLower(string(data))
	for _, hint := range hints {
		if strings.Contains(content, strings.ToLower(hint)) {
			return true
		}
	}
	return false
}

// bestLanguage scores every language rule and returns the single highest
// scorer. Ties and all-zero scores yield "".
func bestLanguage(rules []LanguageRule, tree *treeSnapshot) string {
	best := ""
	bestScore := 0.0
	tied := false

	for _, rule := range rules {
		score := 0.0
		for _, marker := range rule.Markers {
			if tree.rootFiles[marker] {
				score += float64(rule.Priority)
			}
		}
		for _, ext := range rule.Extensions {
			if tree.allExts[strings.ToLower(ext)] {
				score += float64(rule.Priority) / 2
				break
			}
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = rule.Name, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	if tied || bestScore == 0 {
		return ""
	}
	return best
}

// bestFramework scores framework rules. A rule that declares dependency
// hints only awards its marker weight when the marker file's content
// mentions one of them; directory markers award half weight
// unconditionally.
func bestFramework(rules []FrameworkRule, tree *treeSnapshot) string {
	best := ""
	bestScore := 0.0
	tied := false

	for _, rule := range rules {
		score := 0.0
		for _, marker := range rule.Markers {
			if !tree.rootFiles[marker] {
				continue
			}
			if len(rule.DependencyHints) > 0 {
				if tree.markerContains(marker, rule.DependencyHints) {
					score += float64(rule.Priority)
				}
			} else {
				score += float64(rule.Priority)
			}
		}
		for _, dir := range rule.MarkerDirs {
			if tree.hasDir(dir) {
				score += float64(rule.Priority) / 2
			}
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = rule.Name, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	if tied || bestScore == 0 {
		return ""
	}
	return best
}

// firstProjectType returns the first rule matching at least two independent
// signals from {framework membership, language membership, directory
// existence}. First match wins, not highest score.
func firstProjectType(rules []ProjectTypeRule, language, framework string, tree *treeSnapshot) string {
	for _, rule := range rules {
		signals := 0
		for _, fw := range rule.Frameworks {
			if framework != "" && strings.EqualFold(fw, framework) {
				signals++
				break
			}
		}
		for _, lang := range rule.Languages {
			if language != "" && strings.EqualFold(lang, language) {
				signals++
				break
			}
		}
		for _, dir := range rule.Dirs {
			if tree.hasDir(dir) {
				signals++
				break
			}
		}
		if signals >= 2 {
			return rule.Name
		}
	}
	return ""
}
