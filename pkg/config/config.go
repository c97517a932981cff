package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/reviewer/pkg/analyzer"
	"github.com/panbanda/reviewer/pkg/language"
	"github.com/panbanda/reviewer/pkg/models"
)

// Config holds all configuration options for reviewer.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Per-module rule settings
	Security        SecurityConfig        `koanf:"security" toml:"security"`
	Bugs            BugsConfig            `koanf:"bugs" toml:"bugs"`
	Style           StyleConfig           `koanf:"style" toml:"style"`
	Maintainability MaintainabilityConfig `koanf:"maintainability" toml:"maintainability"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls which modules run and the resource ceiling.
type AnalysisConfig struct {
	Depth    string   `koanf:"depth" toml:"depth"`
	Modules  []string `koanf:"modules" toml:"modules"` // explicit selection; overrides depth
	MaxBytes int      `koanf:"max_bytes" toml:"max_bytes"`
	MaxLines int      `koanf:"max_lines" toml:"max_lines"`
	FailOn   string   `koanf:"fail_on" toml:"fail_on"` // severity that fails a CI run; empty = never
}

// SecurityConfig sets the language gates of the security rules.
type SecurityConfig struct {
	ScriptLanguages  []string `koanf:"script_languages" toml:"script_languages"`
	StorageLanguages []string `koanf:"storage_languages" toml:"storage_languages"`
}

// BugsConfig sets the unfinished-work markers.
type BugsConfig struct {
	Markers []string `koanf:"markers" toml:"markers"`
}

// StyleConfig controls the style checks.
type StyleConfig struct {
	MaxLineLength          int      `koanf:"max_line_length" toml:"max_line_length"`
	DocLookback            int      `koanf:"doc_lookback" toml:"doc_lookback"`
	LineLengthLanguages    []string `koanf:"line_length_languages" toml:"line_length_languages"`
	DocumentationLanguages []string `koanf:"documentation_languages" toml:"documentation_languages"`
	ReportAllUndocumented  bool     `koanf:"report_all_undocumented" toml:"report_all_undocumented"`
}

// MaintainabilityConfig controls the maintainability checks.
type MaintainabilityConfig struct {
	MaxLines int `koanf:"max_lines" toml:"max_lines"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon, yaml
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Depth:    string(models.DepthStandard),
			MaxBytes: 1 << 20,
			MaxLines: 100_000,
		},
		Security: SecurityConfig{
			ScriptLanguages:  []string{"javascript"},
			StorageLanguages: []string{"swift"},
		},
		Bugs: BugsConfig{
			Markers: []string{"TODO", "FIXME"},
		},
		Style: StyleConfig{
			MaxLineLength:          120,
			DocLookback:            3,
			LineLengthLanguages:    []string{"swift"},
			DocumentationLanguages: []string{"swift"},
		},
		Maintainability: MaintainabilityConfig{
			MaxLines: 500,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.generated.swift",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".reviewer",
				"Pods",
				"DerivedData",
				".build",
				"build",
				"dist",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".reviewer/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// parserFor picks a koanf parser from the file extension, defaulting to TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// loadKoanf reads path into a fresh koanf instance.
func loadKoanf(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return k, nil
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k, err := loadKoanf(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return cfg, nil
}

// configNames are searched, in order, in each of searchDirs.
var (
	configNames = []string{
		"reviewer.toml",
		"reviewer.yaml",
		"reviewer.yml",
		"reviewer.json",
		".reviewer.toml",
		".reviewer.yaml",
		".reviewer.yml",
		".reviewer.json",
	}
	searchDirs = []string{".", ".reviewer"}
)

// FindConfigFile returns the first config file found under dir, or "".
func FindConfigFile(dir string) string {
	for _, sub := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, sub, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := FindConfigFile("."); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// LoadResult is the outcome of LoadConfig.
type LoadResult struct {
	Config *Config
	Source string // file the config came from; empty for defaults
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dir  string
}

// WithPath loads an explicit file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDir changes the directory searched for config files.
func WithSearchDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// LoadConfig loads and validates configuration. Unlike LoadOrDefault it
// reports errors, so a broken config file is never silently ignored.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = FindConfigFile(o.dir)
	}
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// LoadError reports a config file that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ErrInvalidConfig is wrapped by every semantic validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks values that decode fine but make no sense.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := models.ParseDepth(c.Analysis.Depth); err != nil {
		result = multierror.Append(result, invalid("analysis.depth: %v", err))
	}
	for _, m := range c.Analysis.Modules {
		if !isModuleName(m) {
			result = multierror.Append(result, invalid("analysis.modules: unknown module %q", m))
		}
	}
	if c.Analysis.FailOn != "" {
		if _, err := models.ParseSeverity(c.Analysis.FailOn); err != nil {
			result = multierror.Append(result, invalid("analysis.fail_on: %v", err))
		}
	}
	if c.Style.MaxLineLength <= 0 {
		result = multierror.Append(result, invalid("style.max_line_length must be positive (got %d)", c.Style.MaxLineLength))
	}
	if c.Style.DocLookback <= 0 {
		result = multierror.Append(result, invalid("style.doc_lookback must be positive (got %d)", c.Style.DocLookback))
	}
	if c.Cache.TTL < 0 {
		result = multierror.Append(result, invalid("cache.ttl must not be negative (got %d)", c.Cache.TTL))
	}

	languageLists := map[string][]string{
		"security.script_languages":     c.Security.ScriptLanguages,
		"security.storage_languages":    c.Security.StorageLanguages,
		"style.line_length_languages":   c.Style.LineLengthLanguages,
		"style.documentation_languages": c.Style.DocumentationLanguages,
	}
	for _, key := range sortedKeys(languageLists) {
		for _, l := range languageLists[key] {
			if language.Normalize(l) == language.FamilyUnknown {
				result = multierror.Append(result, invalid("%s: unknown language %q", key, l))
			}
		}
	}

	return result.ErrorOrNil()
}

func isModuleName(name string) bool {
	for _, n := range analyzer.Order {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
