package extractor

import (
	"strings"

	"github.com/gleaner-cli/gleaner/internal/config"
	"github.com/gleaner-cli/gleaner/internal/lang"
	"github.com/gleaner-cli/gleaner/internal/scanner"
)

// FragmentParser slices named constructs out of a single source file.
// Go files get a structural parse; every other language goes through
// line-oriented heuristics. Length bounds and the test filter are applied
// here, at parse time, so rejected constructs are never scored.
type FragmentParser struct {
	minLines  int
	maxLines  int
	skipTests bool
}

// NewFragmentParser builds a parser from the extraction config.
func NewFragmentParser(cfg config.ExtractConfig) *FragmentParser {
	return &FragmentParser{
		minLines:  cfg.MinLines,
		maxLines:  cfg.MaxLines,
		skipTests: cfg.SkipTests,
	}
}

// Parse extracts fragments from one file's contents. Parse failures are
// reported as warnings, never as errors; a file that cannot be parsed
// simply contributes no fragments.
func (p *FragmentParser) Parse(path, project string, src []byte, language lang.Language) ([]Fragment, []Warning) {
	if p.skipTests && scanner.IsTestPath(path) {
		return nil, nil
	}
	switch language {
	case lang.Go:
		return p.parseGo(path, project, src)
	case lang.Unknown:
		return nil, nil
	default:
		return p.parseHeuristic(path, project, src, language)
	}
}

// admit applies the length bounds and the per-construct test filter.
func (p *FragmentParser) admit(name string, startLine, endLine int) bool {
	span := endLine - startLine + 1
	if span < p.minLines || span > p.maxLines {
		return false
	}
	if p.skipTests && strings.Contains(strings.ToLower(name), "test") {
		return false
	}
	return true
}

// sliceLines returns the verbatim text of lines start..end (1-based,
// inclusive).
func sliceLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n")
}
