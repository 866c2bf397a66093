package config

import "fmt"

// ValidateScan checks scan bounds before any I/O begins.
func ValidateScan(cfg ScanConfig) error {
	if len(cfg.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	if cfg.InactiveDays < 0 {
		return fmt.Errorf("inactive_days must be >= 0, got %d", cfg.InactiveDays)
	}
	if cfg.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("max_file_size_bytes must be > 0, got %d", cfg.MaxFileSizeBytes)
	}
	if cfg.UseCache && cfg.CacheTTLHours < 1 {
		return fmt.Errorf("cache_ttl_hours must be >= 1, got %d", cfg.CacheTTLHours)
	}
	if cfg.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be >= 1, got %d", cfg.MaxWorkers)
	}
	return nil
}

// ValidateExtract checks extraction bounds before any I/O begins.
func ValidateExtract(cfg ExtractConfig) error {
	if cfg.MinQuality < 1 || cfg.MinQuality > 10 {
		return fmt.Errorf("min_quality must be in [1,10], got %d", cfg.MinQuality)
	}
	if cfg.MinLines < 1 {
		return fmt.Errorf("min_lines must be >= 1, got %d", cfg.MinLines)
	}
	if cfg.MaxLines <= cfg.MinLines {
		return fmt.Errorf("max_lines must be > min_lines (%d), got %d", cfg.MinLines, cfg.MaxLines)
	}
	if cfg.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be >= 1, got %d", cfg.MaxWorkers)
	}
	return nil
}
