package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gleaner-cli/gleaner/internal/lang"
)

// Heuristic extraction for languages without a structural parser: regex
// tables find declaration lines, then a block matcher finds where each
// construct ends. Brace languages match braces, Python matches dedents,
// Ruby matches keyword/end depth.

type declPattern struct {
	re   *regexp.Regexp
	kind Kind
}

// blockScanCap bounds how far the block matcher looks for a terminator.
const blockScanCap = 500

var bracePatterns = map[lang.Language][]declPattern{
	lang.JavaScript: {
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`), KindFunction},
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$][\w$]*)`), KindClass},
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)`), KindFunction},
	},
	lang.TypeScript: {
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`), KindFunction},
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`), KindClass},
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)`), KindFunction},
		{regexp.MustCompile(`^\s*(?:export\s+)?interface\s+([A-Za-z_$][\w$]*)`), KindClass},
	},
	lang.Rust: {
		{regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+(\w+)`), KindFunction},
		{regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait)\s+(\w+)`), KindClass},
	},
	lang.Java: {
		{regexp.MustCompile(`^\s*(?:public\s+|protected\s+|private\s+|abstract\s+|final\s+|static\s+)*(?:class|interface|enum)\s+(\w+)`), KindClass},
		{regexp.MustCompile(`^\s*(?:public\s+|protected\s+|private\s+|static\s+|final\s+|synchronized\s+)+[\w<>\[\],\s]+?\s(\w+)\s*\([^;]*\)\s*(?:throws\s+[\w,\s]+)?\{`), KindMethod},
	},
	lang.CSharp: {
		{regexp.MustCompile(`^\s*(?:public\s+|protected\s+|private\s+|internal\s+|abstract\s+|sealed\s+|static\s+|partial\s+)*(?:class|interface|struct|enum|record)\s+(\w+)`), KindClass},
		{regexp.MustCompile(`^\s*(?:public\s+|protected\s+|private\s+|internal\s+|static\s+|virtual\s+|override\s+|async\s+)+[\w<>\[\],\s]+?\s(\w+)\s*\([^;]*\)`), KindMethod},
	},
	lang.Kotlin: {
		{regexp.MustCompile(`^\s*(?:public\s+|private\s+|internal\s+|open\s+|abstract\s+|suspend\s+)*fun\s+(?:<[^>]+>\s+)?(\w+)`), KindFunction},
		{regexp.MustCompile(`^\s*(?:public\s+|private\s+|internal\s+|open\s+|abstract\s+|sealed\s+|data\s+)*(?:class|interface|object)\s+(\w+)`), KindClass},
	},
	lang.Scala: {
		{regexp.MustCompile(`^\s*(?:private\s+|protected\s+|implicit\s+)*def\s+(\w+)`), KindFunction},
		{regexp.MustCompile(`^\s*(?:abstract\s+|final\s+|sealed\s+|case\s+)*(?:class|trait|object)\s+(\w+)`), KindClass},
	},
	lang.Swift: {
		{regexp.MustCompile(`^\s*(?:public\s+|private\s+|internal\s+|open\s+|static\s+)*func\s+(\w+)`), KindFunction},
		{regexp.MustCompile(`^\s*(?:public\s+|private\s+|internal\s+|open\s+|final\s+)*(?:class|struct|enum|protocol|extension)\s+(\w+)`), KindClass},
	},
	lang.PHP: {
		{regexp.MustCompile(`^\s*(?:public\s+|protected\s+|private\s+|static\s+|abstract\s+|final\s+)*function\s+(\w+)`), KindFunction},
		{regexp.MustCompile(`^\s*(?:abstract\s+|final\s+)*(?:class|interface|trait)\s+(\w+)`), KindClass},
	},
	lang.C: {
		{regexp.MustCompile(`^[A-Za-z_][\w\s\*]+?\b(\w+)\s*\([^;]*\)\s*\{?\s*$`), KindFunction},
		{regexp.MustCompile(`^\s*(?:typedef\s+)?(?:struct|union|enum)\s+(\w+)`), KindClass},
	},
	lang.CPP: {
		{regexp.MustCompile(`^[A-Za-z_][\w\s\*&:<>,]+?\b([\w:]+)\s*\([^;]*\)\s*(?:const\s*)?\{?\s*$`), KindFunction},
		{regexp.MustCompile(`^\s*(?:template\s*<[^>]*>\s*)?(?:class|struct)\s+(\w+)`), KindClass},
	},
}

var (
	pythonDefRe   = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+(\w+)`)
	pythonClassRe = regexp.MustCompile(`^(\s*)class\s+(\w+)`)
	rubyDefRe     = regexp.MustCompile(`^(\s*)def\s+(self\.)?([\w?!=]+)`)
	rubyClassRe   = regexp.MustCompile(`^(\s*)(?:class|module)\s+([A-Z]\w*)`)
)

// rubyOpeners are line-start keywords that open an end-terminated block.
var rubyOpeners = []string{
	"def ", "class ", "module ", "if ", "unless ", "while ", "until ",
	"case ", "begin", "for ",
}

func (p *FragmentParser) parseHeuristic(path, project string, src []byte, language lang.Language) ([]Fragment, []Warning) {
	lines := strings.Split(string(src), "\n")
	switch language {
	case lang.Python:
		return p.parseIndented(path, project, lines)
	case lang.Ruby:
		return p.parseRuby(path, project, lines)
	default:
		return p.parseBraced(path, project, lines, language)
	}
}

// parseBraced extracts constructs terminated by balanced braces. Brace
// counting is textual; braces inside string literals can skew it, which is
// an accepted limitation of heuristic extraction.
func (p *FragmentParser) parseBraced(path, project string, lines []string, language lang.Language) ([]Fragment, []Warning) {
	patterns, ok := bracePatterns[language]
	if !ok {
		return nil, nil
	}

	var (
		fragments []Fragment
		warnings  []Warning
		claimed   = map[int]bool{}
	)
	for i, line := range lines {
		if claimed[i] {
			continue
		}
		for _, pat := range patterns {
			m := pat.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[len(m)-1]
			end, ok := matchBraces(lines, i)
			if !ok {
				// Rust struct/enum and C typedef lines legitimately end
				// in a semicolon with no body.
				if strings.Contains(line, ";") {
					break
				}
				warnings = append(warnings, Warning{
					Path:    path,
					Message: fmt.Sprintf("unterminated block for %q at line %d", name, i+1),
				})
				break
			}
			claimed[i] = true
			startLine, endLine := i+1, end+1
			if p.admit(name, startLine, endLine) {
				f, err := newFragment(path, project, name, pat.kind, language, startLine, endLine, sliceLines(lines, startLine, endLine))
				if err != nil {
					warnings = append(warnings, Warning{Path: path, Message: err.Error()})
				} else {
					fragments = append(fragments, f)
				}
			}
			break
		}
	}
	return fragments, warnings
}

// matchBraces finds the line closing the block opened at or just after
// start. The opening brace must appear within three lines of the
// declaration; the search gives up after blockScanCap lines.
func matchBraces(lines []string, start int) (int, bool) {
	depth := 0
	opened := false
	limit := start + blockScanCap
	if limit > len(lines) {
		limit = len(lines)
	}
	for i := start; i < limit; i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i, true
		}
		if !opened && i-start >= 3 {
			return 0, false
		}
	}
	return 0, false
}

// parseIndented extracts Python defs and classes. A construct runs from its
// decorators through the last line more indented than the declaration.
func (p *FragmentParser) parseIndented(path, project string, lines []string) ([]Fragment, []Warning) {
	var (
		fragments []Fragment
		warnings  []Warning
	)
	for i, line := range lines {
		var indent, name string
		kind := KindBlock
		if m := pythonDefRe.FindStringSubmatch(line); m != nil {
			indent, name = m[1], m[2]
			kind = KindFunction
			if len(indent) > 0 {
				kind = KindMethod
			}
		} else if m := pythonClassRe.FindStringSubmatch(line); m != nil {
			indent, name = m[1], m[2]
			kind = KindClass
		} else {
			continue
		}

		start := i
		for start > 0 {
			prev := strings.TrimSpace(lines[start-1])
			if strings.HasPrefix(prev, "@") {
				start--
				continue
			}
			break
		}

		// Column-weighted depth on both sides, so tab and space
		// indentation dedent consistently.
		declIndent := lineIndent(line)
		end := i
		limit := i + blockScanCap
		if limit > len(lines) {
			limit = len(lines)
		}
		for j := i + 1; j < limit; j++ {
			trimmed := strings.TrimSpace(lines[j])
			if trimmed == "" {
				continue
			}
			if lineIndent(lines[j]) <= declIndent {
				break
			}
			end = j
		}
		if end == i {
			continue
		}

		startLine, endLine := start+1, end+1
		if !p.admit(name, startLine, endLine) {
			continue
		}
		f, err := newFragment(path, project, name, kind, lang.Python, startLine, endLine, sliceLines(lines, startLine, endLine))
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Message: err.Error()})
			continue
		}
		fragments = append(fragments, f)
	}
	return fragments, warnings
}

// parseRuby extracts defs, classes, and modules by tracking keyword/end
// depth from the declaration line.
func (p *FragmentParser) parseRuby(path, project string, lines []string) ([]Fragment, []Warning) {
	var (
		fragments []Fragment
		warnings  []Warning
	)
	for i, line := range lines {
		var name string
		kind := KindBlock
		if m := rubyDefRe.FindStringSubmatch(line); m != nil {
			name = m[3]
			kind = KindFunction
			if m[2] != "" || len(m[1]) > 0 {
				kind = KindMethod
			}
		} else if m := rubyClassRe.FindStringSubmatch(line); m != nil {
			name = m[2]
			kind = KindClass
		} else {
			continue
		}

		end, ok := matchRubyEnd(lines, i)
		if !ok {
			warnings = append(warnings, Warning{
				Path:    path,
				Message: fmt.Sprintf("unterminated block for %q at line %d", name, i+1),
			})
			continue
		}
		startLine, endLine := i+1, end+1
		if !p.admit(name, startLine, endLine) {
			continue
		}
		f, err := newFragment(path, project, name, kind, lang.Ruby, startLine, endLine, sliceLines(lines, startLine, endLine))
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Message: err.Error()})
			continue
		}
		fragments = append(fragments, f)
	}
	return fragments, warnings
}

func matchRubyEnd(lines []string, start int) (int, bool) {
	depth := 1
	limit := start + blockScanCap
	if limit > len(lines) {
		limit = len(lines)
	}
	for i := start + 1; i < limit; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "end" || strings.HasPrefix(trimmed, "end ") || strings.HasPrefix(trimmed, "end.") {
			depth--
			if depth == 0 {
				return i, true
			}
			continue
		}
		for _, op := range rubyOpeners {
			if trimmed == strings.TrimSpace(op) || strings.HasPrefix(trimmed, op) {
				depth++
				break
			}
		}
		if strings.HasSuffix(trimmed, " do") || strings.Contains(trimmed, " do |") {
			depth++
		}
	}
	return 0, false
}

func lineIndent(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 4
		} else {
			break
		}
	}
	return n
}
