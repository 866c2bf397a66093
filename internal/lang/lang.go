// Package lang defines the closed set of languages the pipeline understands.
package lang

import (
	"path/filepath"
	"strings"
)

// Language identifies a source language. The zero value is Unknown.
type Language string

const (
	Unknown    Language = ""
	Go         Language = "go"
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Rust       Language = "rust"
	Java       Language = "java"
	Ruby       Language = "ruby"
	PHP        Language = "php"
	C          Language = "c"
	CPP        Language = "cpp"
	CSharp     Language = "csharp"
	Swift      Language = "swift"
	Kotlin     Language = "kotlin"
	Scala      Language = "scala"
)

var byExtension = map[string]Language{
	".go":    Go,
	".py":    Python,
	".js":    JavaScript,
	".jsx":   JavaScript,
	".mjs":   JavaScript,
	".ts":    TypeScript,
	".tsx":   TypeScript,
	".rs":    Rust,
	".java":  Java,
	".rb":    Ruby,
	".php":   PHP,
	".c":     C,
	".h":     C,
	".cpp":   CPP,
	".cc":    CPP,
	".hpp":   CPP,
	".cs":    CSharp,
	".swift": Swift,
	".kt":    Kotlin,
	".kts":   Kotlin,
	".scala": Scala,
}

// FromExtension maps a file extension (with leading dot) to a Language.
func FromExtension(ext string) Language {
	if l, ok := byExtension[strings.ToLower(ext)]; ok {
		return l
	}
	return Unknown
}

// FromPath maps a file path to a Language by its extension.
func FromPath(path string) Language {
	return FromExtension(filepath.Ext(path))
}

// CommentPrefixes returns the line prefixes that mark a comment or
// documentation line in the language. Used for documentation-ratio counting,
// not for parsing.
func (l Language) CommentPrefixes() []string {
	switch l {
	case Python:
		return []string{"#", `"""`, "'''"}
	case Ruby:
		return []string{"#", "=begin", "=end"}
	case PHP:
		return []string{"//", "#", "/*", "*"}
	default:
		return []string{"//", "/*", "*"}
	}
}

// String returns the language tag, "unknown" for the zero value.
func (l Language) String() string {
	if l == Unknown {
		return "unknown"
	}
	return string(l)
}
