package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	require.NoError(t, ValidateScan(cfg.Scan))
	require.NoError(t, ValidateExtract(cfg.Extract))
}

func TestValidateScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*ScanConfig)
		wantErr string
	}{
		{"no extensions", func(c *ScanConfig) { c.Extensions = nil }, "extensions"},
		{"negative inactive days", func(c *ScanConfig) { c.InactiveDays = -1 }, "inactive_days"},
		{"zero max file size", func(c *ScanConfig) { c.MaxFileSizeBytes = 0 }, "max_file_size_bytes"},
		{"zero ttl with cache", func(c *ScanConfig) { c.UseCache = true; c.CacheTTLHours = 0 }, "cache_ttl_hours"},
		{"zero workers", func(c *ScanConfig) { c.MaxWorkers = 0 }, "max_workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultScan()
			tt.mutate(&cfg)
			err := ValidateScan(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*ExtractConfig)
		wantErr string
	}{
		{"quality too low", func(c *ExtractConfig) { c.MinQuality = 0 }, "min_quality"},
		{"quality too high", func(c *ExtractConfig) { c.MinQuality = 11 }, "min_quality"},
		{"zero min lines", func(c *ExtractConfig) { c.MinLines = 0 }, "min_lines"},
		{"max not above min", func(c *ExtractConfig) { c.MinLines = 10; c.MaxLines = 10 }, "max_lines"},
		{"zero workers", func(c *ExtractConfig) { c.MaxWorkers = 0 }, "max_workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultExtract()
			tt.mutate(&cfg)
			err := ValidateExtract(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultScan().InactiveDays, cfg.Scan.InactiveDays)
	assert.Equal(t, DefaultExtract().MinQuality, cfg.Extract.MinQuality)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
scan:
  inactive_days: 90
  max_workers: 8
extract:
  min_quality: 7
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Scan.InactiveDays)
	assert.Equal(t, 8, cfg.Scan.MaxWorkers)
	assert.Equal(t, 7, cfg.Extract.MinQuality)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultExtract().MaxLines, cfg.Extract.MaxLines)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  max_workers: -2\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_workers")
}

func TestDefaultCacheDir(t *testing.T) {
	t.Parallel()
	cfg := &Config{CacheDir: "/tmp/custom"}
	assert.Equal(t, "/tmp/custom", cfg.DefaultCacheDir())

	cfg = &Config{}
	assert.NotEmpty(t, cfg.DefaultCacheDir())
}
