package extractor

import (
	"github.com/gleaner-cli/gleaner/internal/lang"
)

// Language keyword tables. The skeleton normalizer keeps these words intact
// while erasing every other identifier, and the scorer uses the decision
// subsets for complexity counting.

var commonKeywords = []string{
	"if", "else", "for", "while", "do", "switch", "case", "break", "continue",
	"return", "new", "try", "catch", "finally", "throw", "class", "function",
	"import", "export", "default", "static", "public", "private", "protected",
	"const", "let", "var", "void", "true", "false", "null", "this", "super",
	"interface", "enum", "extends", "implements", "async", "await", "yield",
	"typeof", "instanceof", "in", "of", "delete",
}

var extraKeywords = map[lang.Language][]string{
	lang.Go: {
		"func", "go", "chan", "select", "defer", "range", "map", "struct",
		"type", "package", "fallthrough", "goto", "nil", "make", "append",
	},
	lang.Python: {
		"def", "elif", "except", "raise", "pass", "lambda", "with", "as",
		"from", "and", "or", "not", "is", "None", "True", "False", "global",
		"nonlocal", "assert", "del",
	},
	lang.Ruby: {
		"def", "end", "module", "unless", "until", "begin", "rescue", "ensure",
		"elsif", "then", "nil", "self", "require", "and", "or", "not",
	},
	lang.Rust: {
		"fn", "impl", "trait", "struct", "match", "loop", "mut", "pub", "use",
		"mod", "ref", "unsafe", "where", "dyn", "crate", "self", "Some", "None",
	},
	lang.Java: {
		"abstract", "final", "synchronized", "volatile", "transient", "native",
		"package", "throws", "boolean", "int", "long", "double", "float",
	},
	lang.PHP: {
		"echo", "foreach", "elseif", "endif", "require", "include", "use",
		"namespace", "fn", "match",
	},
	lang.CSharp: {
		"namespace", "using", "struct", "readonly", "sealed", "override",
		"virtual", "foreach", "out", "ref", "internal",
	},
	lang.Swift: {
		"func", "guard", "defer", "protocol", "struct", "extension", "init",
		"nil", "some", "any",
	},
	lang.Kotlin: {
		"fun", "val", "when", "object", "companion", "init", "lateinit",
		"suspend", "data", "sealed",
	},
	lang.Scala: {
		"def", "val", "object", "trait", "match", "implicit", "sealed",
		"lazy", "with",
	},
	lang.C:   {"struct", "union", "typedef", "sizeof", "goto", "register", "volatile"},
	lang.CPP: {"struct", "union", "typedef", "template", "namespace", "virtual", "operator", "nullptr"},
}

var keywordSets = buildKeywordSets()

func buildKeywordSets() map[lang.Language]map[string]struct{} {
	sets := make(map[lang.Language]map[string]struct{}, len(extraKeywords)+1)
	base := make(map[string]struct{}, len(commonKeywords))
	for _, w := range commonKeywords {
		base[w] = struct{}{}
	}
	sets[lang.Unknown] = base
	for l, extra := range extraKeywords {
		set := make(map[string]struct{}, len(base)+len(extra))
		for w := range base {
			set[w] = struct{}{}
		}
		for _, w := range extra {
			set[w] = struct{}{}
		}
		sets[l] = set
	}
	return sets
}

func keywordSet(l lang.Language) map[string]struct{} {
	if set, ok := keywordSets[l]; ok {
		return set
	}
	return keywordSets[lang.Unknown]
}

// decisionKeywords are the word-boundary decision points per language,
// matched with escaped, \b-anchored regexes.
var decisionKeywords = map[lang.Language][]string{
	lang.Unknown:    {"if", "else", "for", "while", "case", "catch"},
	lang.Go:         {"if", "else", "for", "case", "select"},
	lang.Python:     {"if", "elif", "else", "for", "while", "except", "and", "or"},
	lang.Ruby:       {"if", "elsif", "else", "unless", "while", "until", "case", "rescue", "and", "or"},
	lang.JavaScript: {"if", "else", "for", "while", "case", "catch"},
	lang.TypeScript: {"if", "else", "for", "while", "case", "catch"},
	lang.Rust:       {"if", "else", "for", "while", "match", "loop"},
	lang.Java:       {"if", "else", "for", "while", "case", "catch"},
	lang.PHP:        {"if", "elseif", "else", "for", "foreach", "while", "case", "catch"},
	lang.C:          {"if", "else", "for", "while", "case"},
	lang.CPP:        {"if", "else", "for", "while", "case", "catch"},
	lang.CSharp:     {"if", "else", "for", "foreach", "while", "case", "catch"},
	lang.Swift:      {"if", "else", "for", "while", "switch", "case", "guard", "catch"},
	lang.Kotlin:     {"if", "else", "for", "while", "when", "catch"},
	lang.Scala:      {"if", "else", "for", "while", "match", "catch"},
}

// decisionOperators are literal operator tokens counted by substring, never
// compiled as patterns. Python spells these as words and is covered by its
// keyword list alone; Ruby supports both spellings and gets both counts.
var decisionOperators = map[lang.Language][]string{
	lang.Python: {},
	lang.Ruby:   {"&&", "||", "?"},
}

var defaultDecisionOperators = []string{"&&", "||", "?"}

func decisionOperatorsFor(l lang.Language) []string {
	if ops, ok := decisionOperators[l]; ok {
		return ops
	}
	return defaultDecisionOperators
}
