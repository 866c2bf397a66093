package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/gleaner-cli/gleaner/internal/config"
	"github.com/gleaner-cli/gleaner/internal/lang"
)

// Classification is the outcome of classifying a single path.
type Classification struct {
	Included bool
	Language lang.Language
	Reason   string
}

type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileClassifier decides whether a path is a source file of interest.
// Classification is a pure function over the path and its stat metadata.
type FileClassifier struct {
	extensions map[string]struct{}
	ignore     []compiledPattern
	maxSize    int64
}

// NewFileClassifier compiles the allow/deny lists from the scan config.
func NewFileClassifier(cfg config.ScanConfig) (*FileClassifier, error) {
	c := &FileClassifier{
		extensions: make(map[string]struct{}, len(cfg.Extensions)),
		maxSize:    cfg.MaxFileSizeBytes,
	}
	for _, ext := range cfg.Extensions {
		c.extensions[strings.ToLower(ext)] = struct{}{}
	}
	for _, pattern := range cfg.IgnorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", pattern, err)
		}
		c.ignore = append(c.ignore, compiledPattern{pattern: pattern, glob: g})
	}
	return c, nil
}

// Classify reports whether the file at relPath (slash-separated, relative to
// the scan base) with the given metadata is an included code file.
// An unreadable stat is reported by the caller passing a nil info: the file
// is excluded with the reason recorded, never an error.
func (c *FileClassifier) Classify(relPath string, info fs.FileInfo) Classification {
	if info == nil {
		return Classification{Reason: "unreadable"}
	}
	if seg := c.ignoredSegment(relPath); seg != "" {
		return Classification{Reason: "ignored: " + seg}
	}
	ext := strings.ToLower(filepath.Ext(relPath))
	if _, ok := c.extensions[ext]; !ok {
		return Classification{Reason: "extension not allowed"}
	}
	if info.Size() > c.maxSize {
		return Classification{Reason: fmt.Sprintf("file too large (%d bytes)", info.Size())}
	}
	return Classification{Included: true, Language: lang.FromExtension(ext)}
}

// IgnoreDir reports whether a directory name should be pruned from the walk.
func (c *FileClassifier) IgnoreDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return c.matchSegment(name)
}

// ignoredSegment returns the first path segment (or the whole relative path)
// that matches an ignore pattern, or "" when nothing matches.
func (c *FileClassifier) ignoredSegment(relPath string) string {
	relPath = filepath.ToSlash(relPath)
	for _, seg := range strings.Split(relPath, "/") {
		if c.matchSegment(seg) {
			return seg
		}
	}
	for _, cp := range c.ignore {
		if strings.ContainsRune(cp.pattern, '/') && cp.glob.Match(relPath) {
			return cp.pattern
		}
	}
	return ""
}

func (c *FileClassifier) matchSegment(seg string) bool {
	for _, cp := range c.ignore {
		if strings.ContainsRune(cp.pattern, '/') {
			continue
		}
		if cp.glob.Match(seg) {
			return true
		}
	}
	return false
}
