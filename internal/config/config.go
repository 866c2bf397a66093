// Package config defines the configuration records consumed by the scan and
// extract pipelines. The core packages never read flags or environment
// variables themselves; everything arrives through these records.
package config

// ScanConfig controls project discovery and classification.
type ScanConfig struct {
	// Extensions is the allow-list of code file extensions (with leading dot).
	Extensions []string `yaml:"extensions" mapstructure:"extensions" json:"extensions"`

	// IgnorePatterns are glob patterns matched against path segments and
	// base-relative paths. A match excludes the file or subtree.
	IgnorePatterns []string `yaml:"ignore" mapstructure:"ignore" json:"ignore"`

	// InactiveDays is the activity threshold: a project whose newest included
	// file is at least this many days old is considered inactive.
	InactiveDays int `yaml:"inactive_days" mapstructure:"inactive_days" json:"inactive_days"`

	// IncludeActive returns all detected projects regardless of activity.
	// By default only inactive projects are emitted; the tool harvests
	// abandoned code.
	IncludeActive bool `yaml:"include_active" mapstructure:"include_active" json:"include_active"`

	// MaxFileSizeBytes excludes files above this size from classification.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes" mapstructure:"max_file_size_bytes" json:"max_file_size_bytes"`

	// UseCache short-circuits the scan when a fresh cache entry exists.
	UseCache bool `yaml:"use_cache" mapstructure:"use_cache" json:"use_cache"`

	// CacheTTLHours is the freshness window for cache entries.
	CacheTTLHours int `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours" json:"cache_ttl_hours"`

	// MaxWorkers bounds the directory-walk worker pool.
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers" json:"max_workers"`
}

// ExtractConfig controls fragment extraction, scoring, and deduplication.
type ExtractConfig struct {
	// MinQuality drops fragments scoring below this bound (1-10).
	MinQuality int `yaml:"min_quality" mapstructure:"min_quality" json:"min_quality"`

	// MinLines and MaxLines bound fragment length at parse time.
	MinLines int `yaml:"min_lines" mapstructure:"min_lines" json:"min_lines"`
	MaxLines int `yaml:"max_lines" mapstructure:"max_lines" json:"max_lines"`

	// SkipTests drops fragments whose path or name matches a test indicator.
	SkipTests bool `yaml:"skip_tests" mapstructure:"skip_tests" json:"skip_tests"`

	// Deduplicate enables the exact + semantic duplicate passes.
	Deduplicate bool `yaml:"deduplicate" mapstructure:"deduplicate" json:"deduplicate"`

	// MaxWorkers bounds the file-extraction worker pool.
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers" json:"max_workers"`
}

// DefaultScan returns the scan defaults.
func DefaultScan() ScanConfig {
	return ScanConfig{
		Extensions: []string{
			".py", ".js", ".jsx", ".ts", ".tsx",
			".go", ".rs", ".java", ".c", ".cpp", ".h", ".hpp",
			".rb", ".php", ".swift", ".kt", ".scala", ".cs",
		},
		IgnorePatterns: []string{
			".git", "node_modules", "__pycache__", "venv", ".venv",
			"env", "build", "dist", ".idea", ".vscode", "target",
			"vendor", ".next", ".nuxt", "coverage",
		},
		InactiveDays:     60,
		IncludeActive:    false,
		MaxFileSizeBytes: 1 << 20,
		UseCache:         true,
		CacheTTLHours:    24,
		MaxWorkers:       4,
	}
}

// DefaultExtract returns the extraction defaults.
func DefaultExtract() ExtractConfig {
	return ExtractConfig{
		MinQuality:  5,
		MinLines:    5,
		MaxLines:    500,
		SkipTests:   false,
		Deduplicate: true,
		MaxWorkers:  4,
	}
}

// Config is the full application configuration loaded by the CLI layer.
type Config struct {
	Scan     ScanConfig    `yaml:"scan" mapstructure:"scan"`
	Extract  ExtractConfig `yaml:"extract" mapstructure:"extract"`
	CacheDir string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	LogLevel string        `yaml:"log_level" mapstructure:"log_level"`
}

// Default returns the full default configuration.
func Default() *Config {
	return &Config{
		Scan:     DefaultScan(),
		Extract:  DefaultExtract(),
		CacheDir: "", // empty means ~/.gleaner/cache
		LogLevel: "info",
	}
}
