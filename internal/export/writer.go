// Package export persists scan and extraction results as JSON documents.
// Writes are atomic: content lands in a temp file that is renamed into
// place, so readers never observe a partially written result.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/gleaner-cli/gleaner/internal/extractor"
	"github.com/gleaner-cli/gleaner/internal/scanner"
)

// WriteJSON marshals v with indentation and writes it atomically to path,
// creating parent directories as needed.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("wrote result")
	return nil
}

// WriteScanResult persists a scan result.
func WriteScanResult(path string, result *scanner.ScanResult) error {
	return WriteJSON(path, result)
}

// WriteExtractionResult persists an extraction result.
func WriteExtractionResult(path string, result *extractor.ExtractionResult) error {
	return WriteJSON(path, result)
}

// ReadScanResult loads a previously written scan result.
func ReadScanResult(path string) (*scanner.ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scan result: %w", err)
	}
	var result scanner.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse scan result %s: %w", path, err)
	}
	return &result, nil
}

// ReadExtractionResult loads a previously written extraction result.
func ReadExtractionResult(path string) (*extractor.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read extraction result: %w", err)
	}
	var result extractor.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse extraction result %s: %w", path, err)
	}
	return &result, nil
}
