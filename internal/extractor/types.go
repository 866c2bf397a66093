// Package extractor slices code fragments out of scanned projects, scores
// their reuse quality, and removes exact and near duplicates.
package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gleaner-cli/gleaner/internal/lang"
)

// Kind is the closed set of fragment kinds.
type Kind string

const (
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindClass    Kind = "class"
	KindBlock    Kind = "block"
)

// Metrics records every intermediate scoring signal so downstream consumers
// can inspect how a score was produced. Each *Score field is the delta the
// corresponding signal contributed.
type Metrics struct {
	LineCount  int     `json:"line_count"`
	DocRatio   float64 `json:"doc_ratio"`
	Complexity int     `json:"complexity"`
	MaxIndent  int     `json:"max_indent"`

	HasTypes         bool `json:"has_types"`
	HasAsync         bool `json:"has_async"`
	HasErrorHandling bool `json:"has_error_handling"`
	HasExports       bool `json:"has_exports"`
	HasTodos         bool `json:"has_todos"`
	HasDebug         bool `json:"has_debug"`

	LengthScore     int `json:"length_score"`
	DocScore        int `json:"doc_score"`
	TypeScore       int `json:"type_score"`
	AsyncScore      int `json:"async_score"`
	ErrorScore      int `json:"error_score"`
	ExportScore     int `json:"export_score"`
	ComplexityScore int `json:"complexity_score"`
	IndentScore     int `json:"indent_score"`
	TodoScore       int `json:"todo_score"`
	DebugScore      int `json:"debug_score"`
	DensityScore    int `json:"density_score"`
}

// Fragment is one extracted, self-contained code unit. Fragments are
// immutable after scoring except for Absorbed, the dedup bookkeeping list of
// uids this fragment survived.
type Fragment struct {
	UID          string        `json:"uid"`
	Name         string        `json:"name"`
	Kind         Kind          `json:"kind"`
	File         string        `json:"file"`
	Project      string        `json:"project"`
	StartLine    int           `json:"start_line"`
	EndLine      int           `json:"end_line"`
	Code         string        `json:"code"`
	Language     lang.Language `json:"language"`
	Quality      int           `json:"quality"`
	Metrics      Metrics       `json:"metrics"`
	ExactHash    string        `json:"exact_hash"`
	SemanticHash string        `json:"semantic_hash"`
	Absorbed     []string      `json:"absorbed,omitempty"`
}

// Warning records a per-construct or per-file extraction problem that did
// not abort the run.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// FileError records a file that could not be read or parsed at all.
type FileError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ExtractionResult owns the surviving fragments of one extraction run,
// sorted by uid for scheduling-independent output.
type ExtractionResult struct {
	Fragments      []Fragment            `json:"fragments"`
	TotalBefore    int                   `json:"total_before"`
	TotalAfter     int                   `json:"total_after"`
	AverageQuality float64               `json:"average_quality"`
	ByLanguage     map[lang.Language]int `json:"by_language"`
	Duration       time.Duration         `json:"duration"`
	Errors         []FileError           `json:"errors,omitempty"`
	Warnings       []Warning             `json:"warnings,omitempty"`
	Truncated      bool                  `json:"truncated,omitempty"`
	Timestamp      time.Time             `json:"timestamp"`
}

// normalizeBody trims trailing whitespace from every line. This is the only
// normalization applied before exact hashing and uid derivation, so the uid
// is a pure function of (path, kind, name, normalized body).
func normalizeBody(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Join(lines, "\n")
}

// fragmentUID derives the stable identifier. Re-extracting unchanged code
// yields the same uid across runs.
func fragmentUID(file string, kind Kind, name, code string) string {
	h := sha256.Sum256([]byte(file + "\x00" + string(kind) + "\x00" + name + "\x00" + normalizeBody(code)))
	return hex.EncodeToString(h[:])[:16]
}

// newFragment builds a fragment with its identity and exact/semantic hashes.
// It enforces the constructor invariants: non-empty uid and name, positive
// line span.
func newFragment(file, project, name string, kind Kind, language lang.Language, startLine, endLine int, code string) (Fragment, error) {
	if name == "" {
		return Fragment{}, fmt.Errorf("fragment in %s has empty name", file)
	}
	if startLine < 1 || endLine < startLine {
		return Fragment{}, fmt.Errorf("fragment %s in %s has invalid span %d-%d", name, file, startLine, endLine)
	}
	return Fragment{
		UID:          fragmentUID(file, kind, name, code),
		Name:         name,
		Kind:         kind,
		File:         file,
		Project:      project,
		StartLine:    startLine,
		EndLine:      endLine,
		Code:         code,
		Language:     language,
		ExactHash:    ExactHash(code),
		SemanticHash: SemanticHash(code, language),
	}, nil
}
