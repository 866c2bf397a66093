package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration with the following priority (highest wins):
//  1. Environment variables (GLEANER_*)
//  2. Config file (explicit path, or ~/.gleaner/config.yaml)
//  3. Defaults
//
// A missing config file is not an error; anything else that prevents reading
// or decoding it is.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".gleaner"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("GLEANER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			if configPath != "" {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := ValidateScan(cfg.Scan); err != nil {
		return nil, fmt.Errorf("invalid scan config: %w", err)
	}
	if err := ValidateExtract(cfg.Extract); err != nil {
		return nil, fmt.Errorf("invalid extract config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("scan.extensions", d.Scan.Extensions)
	v.SetDefault("scan.ignore", d.Scan.IgnorePatterns)
	v.SetDefault("scan.inactive_days", d.Scan.InactiveDays)
	v.SetDefault("scan.include_active", d.Scan.IncludeActive)
	v.SetDefault("scan.max_file_size_bytes", d.Scan.MaxFileSizeBytes)
	v.SetDefault("scan.use_cache", d.Scan.UseCache)
	v.SetDefault("scan.cache_ttl_hours", d.Scan.CacheTTLHours)
	v.SetDefault("scan.max_workers", d.Scan.MaxWorkers)

	v.SetDefault("extract.min_quality", d.Extract.MinQuality)
	v.SetDefault("extract.min_lines", d.Extract.MinLines)
	v.SetDefault("extract.max_lines", d.Extract.MaxLines)
	v.SetDefault("extract.skip_tests", d.Extract.SkipTests)
	v.SetDefault("extract.deduplicate", d.Extract.Deduplicate)
	v.SetDefault("extract.max_workers", d.Extract.MaxWorkers)

	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("log_level", d.LogLevel)
}

// DefaultCacheDir resolves the cache directory, defaulting to ~/.gleaner/cache.
func (c *Config) DefaultCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gleaner-cache")
	}
	return filepath.Join(home, ".gleaner", "cache")
}
