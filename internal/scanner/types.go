// Package scanner locates project roots under a base path, classifies their
// files, and produces deterministic scan results suitable for caching.
package scanner

import (
	"time"

	"github.com/gleaner-cli/gleaner/internal/lang"
)

// CodeFile is one classified source file inside a project.
type CodeFile struct {
	Path    string        `json:"path"`
	Size    int64         `json:"size"`
	ModTime time.Time     `json:"mod_time"`
	Lang    lang.Language `json:"language"`
}

// Project is one detected project root. Projects are immutable once built;
// each is constructed entirely within a single scan worker.
type Project struct {
	Name         string          `json:"name"`
	Path         string          `json:"path"`
	Kind         lang.Language   `json:"kind"`
	Languages    []lang.Language `json:"languages"`
	Frameworks   []string        `json:"frameworks,omitempty"`
	Dependencies []string        `json:"dependencies,omitempty"`
	Files        int             `json:"files"`
	SizeBytes    int64           `json:"size_bytes"`
	CodeFiles    []CodeFile      `json:"code_files"`
	LastActivity time.Time       `json:"last_activity"`
	Inactive     bool            `json:"inactive"`
}

// FileError records a per-file failure that did not abort the scan.
type FileError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ScanResult is the outcome of one scan of a base path. Projects are sorted
// by path so the result is identical regardless of worker scheduling.
type ScanResult struct {
	ID             string      `json:"id"`
	BasePath       string      `json:"base_path"`
	Projects       []Project   `json:"projects"`
	TotalFiles     int         `json:"total_files"`
	TotalCodeFiles int         `json:"total_code_files"`
	TotalBytes     int64       `json:"total_bytes"`
	Duration       time.Duration `json:"duration"`
	Errors         []FileError `json:"errors,omitempty"`
	Truncated      bool        `json:"truncated,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}
