package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gleaner-cli/gleaner/internal/lang"
)

// QualityScorer computes a bounded reuse-quality score from static textual
// signals. Scoring is a deterministic pure function of the fragment's code,
// language, and kind; it never executes anything.
type QualityScorer struct{}

// Decision keywords are matched with \b-anchored, QuoteMeta-escaped regexes
// compiled once here. Operator tokens like && and ? are counted as literal
// substrings and must never reach the regexp compiler.
var decisionRegexps = buildDecisionRegexps()

func buildDecisionRegexps() map[lang.Language][]*regexp.Regexp {
	out := make(map[lang.Language][]*regexp.Regexp, len(decisionKeywords))
	for l, words := range decisionKeywords {
		res := make([]*regexp.Regexp, 0, len(words))
		for _, w := range words {
			res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
		}
		out[l] = res
	}
	return out
}

var asyncIndicators = map[lang.Language][]string{
	lang.Go:     {"go ", "chan ", "<-", "sync.", "select {"},
	lang.Java:   {"CompletableFuture", "synchronized", "Thread(", "ExecutorService"},
	lang.Rust:   {"async", "await", "tokio::", "spawn("},
	lang.Ruby:   {"Thread.new", "async"},
	lang.Python: {"async ", "await ", "asyncio"},
}

var defaultAsyncIndicators = []string{"async", "await"}

var errorIndicators = map[lang.Language][]string{
	lang.Go:     {"if err != nil", "recover(", "errors.", "fmt.Errorf"},
	lang.Python: {"try:", "except", "raise "},
	lang.Ruby:   {"begin", "rescue", "raise "},
	lang.Rust:   {"Result<", "Err(", ".unwrap_or", "?;"},
}

var defaultErrorIndicators = []string{"try", "catch", "throw"}

var densityKeywords = []string{"if", "for", "while", "case", "switch", "when", "unless"}

var densityRegexps = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(densityKeywords))
	for _, w := range densityKeywords {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return res
}()

// debugPatterns are lowercase substrings indicating debug output.
var debugPatterns = []string{
	"console.log", "print(", "println", "fmt.println", "debugger",
	"var_dump", "system.out.println", "dbg!(",
}

// Score computes the quality score and metrics record for a fragment.
// The result is always in [1, 10], for any input including empty code.
func (QualityScorer) Score(f Fragment) (int, Metrics) {
	code := f.Code
	lower := strings.ToLower(code)
	lines := strings.Split(code, "\n")
	m := Metrics{}
	score := 5

	// Length band.
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			m.LineCount++
		}
	}
	switch {
	case m.LineCount >= 10 && m.LineCount <= 50:
		m.LengthScore = 2
	case m.LineCount < 5 || m.LineCount > 200:
		m.LengthScore = -1
	}
	score += m.LengthScore

	// Documentation ratio. Absence is not penalized; the length band
	// already covers degenerate fragments.
	m.DocRatio = docRatio(lines, f.Language)
	if m.DocRatio > 0.15 {
		m.DocScore = 2
	}
	score += m.DocScore

	// Type annotations / signatures.
	m.HasTypes = hasTypes(code, f.Language)
	if m.HasTypes {
		m.TypeScore = 1
	}
	score += m.TypeScore

	// Concurrency constructs.
	m.HasAsync = containsAny(code, indicatorsFor(asyncIndicators, defaultAsyncIndicators, f.Language))
	if m.HasAsync {
		m.AsyncScore = 1
	}
	score += m.AsyncScore

	// Explicit error handling.
	m.HasErrorHandling = containsAny(code, indicatorsFor(errorIndicators, defaultErrorIndicators, f.Language))
	if m.HasErrorHandling {
		m.ErrorScore = 1
	}
	score += m.ErrorScore

	// Export / visibility markers.
	m.HasExports = hasExports(f)
	if m.HasExports {
		m.ExportScore = 1
	}
	score += m.ExportScore

	// Cyclomatic-style complexity: keywords via word-boundary regexes,
	// operator tokens via literal substring counts.
	m.Complexity = 1
	for _, re := range decisionRegexpsFor(f.Language) {
		m.Complexity += len(re.FindAllStringIndex(code, -1))
	}
	for _, op := range decisionOperatorsFor(f.Language) {
		m.Complexity += strings.Count(code, op)
	}
	switch {
	case m.Complexity > 15:
		m.ComplexityScore = -2
	case m.Complexity >= 3 && m.Complexity <= 8:
		m.ComplexityScore = 1
	}
	score += m.ComplexityScore

	// Maximum indentation depth, tabs counted as four columns.
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := 0
		for _, r := range line {
			if r == ' ' {
				indent++
			} else if r == '\t' {
				indent += 4
			} else {
				break
			}
		}
		if indent > m.MaxIndent {
			m.MaxIndent = indent
		}
	}
	if m.MaxIndent > 24 {
		m.IndentScore = -2
	}
	score += m.IndentScore

	// Work markers.
	m.HasTodos = strings.Contains(lower, "todo") || strings.Contains(lower, "fixme") || strings.Contains(lower, "hack")
	if m.HasTodos {
		m.TodoScore = -1
	}
	score += m.TodoScore

	// Debug output.
	m.HasDebug = containsAny(lower, debugPatterns)
	if m.HasDebug {
		m.DebugScore = -1
	}
	score += m.DebugScore

	// Excess conditional/loop density beyond the stricter ceiling.
	density := 0
	for _, re := range densityRegexps {
		density += len(re.FindAllStringIndex(code, -1))
	}
	if density > 10 {
		m.DensityScore = -1
	}
	score += m.DensityScore

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score, m
}

func decisionRegexpsFor(l lang.Language) []*regexp.Regexp {
	if res, ok := decisionRegexps[l]; ok {
		return res
	}
	return decisionRegexps[lang.Unknown]
}

func indicatorsFor(table map[lang.Language][]string, fallback []string, l lang.Language) []string {
	if ind, ok := table[l]; ok {
		return ind
	}
	return fallback
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// docRatio is the share of non-blank lines that are comment or docstring
// lines under the language's comment syntax.
func docRatio(lines []string, l lang.Language) float64 {
	prefixes := l.CommentPrefixes()
	doc, code := 0, 0
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		code++
		for _, p := range prefixes {
			if strings.HasPrefix(stripped, p) {
				doc++
				break
			}
		}
	}
	if code == 0 {
		return 0
	}
	return float64(doc) / float64(code)
}

// hasTypes reports type annotations or signatures. Statically typed
// languages carry signatures by construction.
func hasTypes(code string, l lang.Language) bool {
	switch l {
	case lang.Go, lang.Rust, lang.Java, lang.C, lang.CPP, lang.CSharp, lang.Swift, lang.Kotlin, lang.Scala:
		return true
	case lang.Python:
		return strings.Contains(code, "->") || strings.Contains(code, ": ")
	case lang.TypeScript:
		return strings.Contains(code, ": ") || strings.Contains(code, "interface ") || strings.Contains(code, "type ")
	case lang.PHP:
		return strings.Contains(code, ": ")
	default:
		return strings.Contains(code, "@param") || strings.Contains(code, "@returns")
	}
}

// hasExports reports a visibility marker that makes the fragment usable
// from outside its defining scope.
func hasExports(f Fragment) bool {
	switch f.Language {
	case lang.Go:
		r := []rune(f.Name)
		return len(r) > 0 && unicode.IsUpper(r[0])
	case lang.Rust:
		return strings.Contains(f.Code, "pub ")
	case lang.Java, lang.CSharp, lang.Kotlin, lang.Scala, lang.Swift, lang.PHP:
		return strings.Contains(f.Code, "public ")
	case lang.Python:
		// Python has no export keyword; a bare def earns nothing. Only an
		// explicit public-API declaration counts.
		return strings.Contains(f.Code, "__all__")
	default:
		return strings.Contains(f.Code, "export ") || strings.Contains(f.Code, "module.exports")
	}
}
