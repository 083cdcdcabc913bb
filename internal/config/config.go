// Package config loads and validates lore.yml, the single configuration
// surface for the lore service and CLI. Defaults are applied during
// validation so a minimal (or absent) file yields a fully usable config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/lore/internal/detect"
	"github.com/dyluth/lore/pkg/skillbook"
)

// Config is the top-level lore.yml structure.
type Config struct {
	Version string `yaml:"version"`

	// Master switches.
	Enabled       bool `yaml:"enabled"`
	AutoInject    bool `yaml:"auto_inject"`
	AutoLearn     bool `yaml:"auto_learn"`
	AsyncLearning bool `yaml:"async_learning"`

	OpenCode   OpenCodeConfig  `yaml:"opencode"`
	Hierarchy  HierarchyConfig `yaml:"hierarchy"`
	Scopes     ScopesConfig    `yaml:"scopes"`
	Dedup      DedupConfig     `yaml:"dedup"`
	Validation ValidationCfg   `yaml:"validation"`
	Routing    RoutingConfig   `yaml:"routing"`
	Promotion  PromotionConfig `yaml:"promotion"`
	Migration  MigrationConfig `yaml:"migration"`

	// Detection rule sets. When omitted, built-in defaults apply.
	Detection *detect.Rules `yaml:"detection,omitempty"`
}

// OpenCodeConfig describes how to reach the host OpenCode server.
type OpenCodeConfig struct {
	BaseURL         string `yaml:"base_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	EventRetryLimit int    `yaml:"event_retry_limit"` // Bounded reconnect attempts for the event stream
	ProviderID      string `yaml:"provider_id"`
	ModelID         string `yaml:"model_id"`
}

// Timeout returns the request timeout as a duration.
func (o OpenCodeConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// HierarchyConfig maps scope levels to storage locations.
type HierarchyConfig struct {
	BaseDir        string `yaml:"base_dir"`
	UniversalPath  string `yaml:"universal_path"`
	LanguagesDir   string `yaml:"languages_dir"`
	FrameworksDir  string `yaml:"frameworks_dir"`
	ProjectRelPath string `yaml:"project_rel_path"`
}

// ScopesConfig holds the per-scope enable flags.
type ScopesConfig struct {
	Language  *bool `yaml:"language,omitempty"`
	Framework *bool `yaml:"framework,omitempty"`
	Project   *bool `yaml:"project,omitempty"` // Feature-flagged; default off
}

// DedupConfig holds the deduplication similarity threshold.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// ValidationCfg holds skill-content validation thresholds.
type ValidationCfg struct {
	MinLength       int   `yaml:"min_length"`
	MaxLength       int   `yaml:"max_length"`
	MaxSentences    int   `yaml:"max_sentences"`
	RequireEvidence *bool `yaml:"require_evidence,omitempty"`
}

// RoutingConfig holds routing behaviour switches.
type RoutingConfig struct {
	DefaultScope  string `yaml:"default_scope"`  // "language" or "universal"
	UseClassifier bool   `yaml:"use_classifier"` // Enable the external LLM classifier
}

// PromotionConfig holds promotion thresholds and the review interval.
type PromotionConfig struct {
	Enabled            bool    `yaml:"enabled"`
	MinHelpfulScore    int     `yaml:"min_helpful_score"`
	MinSuccessRate     float64 `yaml:"min_success_rate"`
	AgeThresholdDays   int     `yaml:"age_threshold_days"`
	ReviewIntervalDays int     `yaml:"review_interval_days"`
}

// MigrationConfig holds migration behaviour switches.
type MigrationConfig struct {
	BackupKeep  int   `yaml:"backup_keep"` // Rotation: backups retained beyond this count are deleted
	Incremental *bool `yaml:"incremental,omitempty"`
}

// DefaultPath returns the standard lore.yml location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lore.yml"
	}
	return filepath.Join(home, ".config", "lore", "lore.yml")
}

// Default returns a fully populated configuration.
func Default() *Config {
	cfg := &Config{Version: "1.0", Enabled: true, AutoInject: true, AutoLearn: true, AsyncLearning: true}
	cfg.Promotion.Enabled = true
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates lore.yml from the specified path. A missing
// file yields the default configuration - lore must work out of the box.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate performs strict validation and applies defaults for omitted
// fields.
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	c.applyDefaults()

	if c.OpenCode.TimeoutSeconds <= 0 {
		return fmt.Errorf("opencode.timeout_seconds must be positive, got %d", c.OpenCode.TimeoutSeconds)
	}
	if c.OpenCode.EventRetryLimit < 1 {
		return fmt.Errorf("opencode.event_retry_limit must be >= 1, got %d", c.OpenCode.EventRetryLimit)
	}
	if c.Dedup.SimilarityThreshold <= 0 || c.Dedup.SimilarityThreshold > 1 {
		return fmt.Errorf("dedup.similarity_threshold must be in (0, 1], got %v", c.Dedup.SimilarityThreshold)
	}
	if c.Validation.MinLength >= c.Validation.MaxLength {
		return fmt.Errorf("validation.min_length (%d) must be below validation.max_length (%d)",
			c.Validation.MinLength, c.Validation.MaxLength)
	}
	if c.Routing.DefaultScope != "language" && c.Routing.DefaultScope != "universal" {
		return fmt.Errorf("routing.default_scope must be 'language' or 'universal', got %q", c.Routing.DefaultScope)
	}
	if c.Promotion.MinSuccessRate < 0 || c.Promotion.MinSuccessRate > 1 {
		return fmt.Errorf("promotion.min_success_rate must be in [0, 1], got %v", c.Promotion.MinSuccessRate)
	}
	if c.Promotion.ReviewIntervalDays < 1 {
		return fmt.Errorf("promotion.review_interval_days must be >= 1, got %d", c.Promotion.ReviewIntervalDays)
	}
	if c.Migration.BackupKeep < 1 {
		return fmt.Errorf("migration.backup_keep must be >= 1, got %d", c.Migration.BackupKeep)
	}

	return c.SkillbookHierarchy().Validate()
}

func (c *Config) applyDefaults() {
	if c.OpenCode.BaseURL == "" {
		c.OpenCode.BaseURL = "http://localhost:4096"
	}
	c.OpenCode.BaseURL = strings.TrimRight(c.OpenCode.BaseURL, "/")
	if c.OpenCode.TimeoutSeconds == 0 {
		c.OpenCode.TimeoutSeconds = 120
	}
	if c.OpenCode.EventRetryLimit == 0 {
		c.OpenCode.EventRetryLimit = 10
	}
	if c.OpenCode.ProviderID == "" {
		c.OpenCode.ProviderID = "github-copilot"
	}
	if c.OpenCode.ModelID == "" {
		c.OpenCode.ModelID = "gpt-4o"
	}

	if c.Hierarchy.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.Hierarchy.BaseDir = filepath.Join(home, ".config", "lore", "skillbooks")
		} else {
			c.Hierarchy.BaseDir = "skillbooks"
		}
	}
	defaults := skillbook.DefaultHierarchy(c.Hierarchy.BaseDir)
	if c.Hierarchy.UniversalPath == "" {
		c.Hierarchy.UniversalPath = defaults.UniversalPath
	}
	if c.Hierarchy.LanguagesDir == "" {
		c.Hierarchy.LanguagesDir = defaults.LanguagesDir
	}
	if c.Hierarchy.FrameworksDir == "" {
		c.Hierarchy.FrameworksDir = defaults.FrameworksDir
	}
	if c.Hierarchy.ProjectRelPath == "" {
		c.Hierarchy.ProjectRelPath = defaults.ProjectRelPath
	}

	truth := true
	if c.Scopes.Language == nil {
		c.Scopes.Language = &truth
	}
	if c.Scopes.Framework == nil {
		c.Scopes.Framework = &truth
	}
	if c.Scopes.Project == nil {
		falsity := false
		c.Scopes.Project = &falsity
	}

	if c.Dedup.SimilarityThreshold == 0 {
		c.Dedup.SimilarityThreshold = 0.85
	}

	base := skillbook.DefaultValidator()
	if c.Validation.MinLength == 0 {
		c.Validation.MinLength = base.MinLength
	}
	if c.Validation.MaxLength == 0 {
		c.Validation.MaxLength = base.MaxLength
	}
	if c.Validation.MaxSentences == 0 {
		c.Validation.MaxSentences = base.MaxSentences
	}
	if c.Validation.RequireEvidence == nil {
		c.Validation.RequireEvidence = &truth
	}

	if c.Routing.DefaultScope == "" {
		c.Routing.DefaultScope = "language"
	}

	if c.Promotion.MinHelpfulScore == 0 {
		c.Promotion.MinHelpfulScore = 10
	}
	if c.Promotion.MinSuccessRate == 0 {
		c.Promotion.MinSuccessRate = 0.85
	}
	if c.Promotion.AgeThresholdDays == 0 {
		c.Promotion.AgeThresholdDays = 14
	}
	if c.Promotion.ReviewIntervalDays == 0 {
		c.Promotion.ReviewIntervalDays = 7
	}

	if c.Migration.BackupKeep == 0 {
		c.Migration.BackupKeep = 5
	}
	if c.Migration.Incremental == nil {
		c.Migration.Incremental = &truth
	}
}

// SkillbookHierarchy builds the skillbook topology from the configuration.
func (c *Config) SkillbookHierarchy() skillbook.Hierarchy {
	projects := c.Scopes.Project != nil && *c.Scopes.Project
	return skillbook.Hierarchy{
		BaseDir:         c.Hierarchy.BaseDir,
		UniversalPath:   c.Hierarchy.UniversalPath,
		LanguagesDir:    c.Hierarchy.LanguagesDir,
		FrameworksDir:   c.Hierarchy.FrameworksDir,
		ProjectsEnabled: projects,
		ProjectRelPath:  c.Hierarchy.ProjectRelPath,
	}
}

// DetectionRules returns the configured rule sets, or the defaults.
func (c *Config) DetectionRules() detect.Rules {
	if c.Detection != nil {
		return *c.Detection
	}
	return detect.DefaultRules()
}

// Validator builds the skill-content validator from configuration.
func (c *Config) Validator() skillbook.Validator {
	require := c.Validation.RequireEvidence == nil || *c.Validation.RequireEvidence
	return skillbook.Validator{
		MinLength:       c.Validation.MinLength,
		MaxLength:       c.Validation.MaxLength,
		MaxSentences:    c.Validation.MaxSentences,
		RequireEvidence: require,
	}
}
