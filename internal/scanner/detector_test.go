package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleaner-cli/gleaner/internal/config"
	"github.com/gleaner-cli/gleaner/internal/lang"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// ageTree pushes every file's mtime back by age.
func ageTree(t *testing.T, root string, age time.Duration) {
	t.Helper()
	when := time.Now().Add(-age)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		return os.Chtimes(path, when, when)
	})
	require.NoError(t, err)
}

func newTestDetector(t *testing.T, inactiveDays int, includeActive bool) *ProjectDetector {
	t.Helper()
	classifier, err := NewFileClassifier(config.DefaultScan())
	require.NoError(t, err)
	return NewProjectDetector(classifier, inactiveDays, includeActive)
}

func TestDetectInactiveGoProject(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":         "module example.com/old\n",
		"main.go":        "package main\n",
		"pkg/util.go":    "package pkg\n",
		"docs/notes.txt": "not code\n",
	})
	ageTree(t, root, 90*24*time.Hour)

	d := newTestDetector(t, 60, false)
	p, errs := d.Detect(root)
	require.NotNil(t, p)
	assert.Empty(t, errs)

	assert.Equal(t, filepath.Base(root), p.Name)
	assert.Equal(t, lang.Go, p.Kind)
	assert.Equal(t, []lang.Language{lang.Go}, p.Languages)
	assert.Contains(t, p.Frameworks, "go")
	assert.Len(t, p.CodeFiles, 2)
	assert.True(t, p.Inactive)
	// Code files come back sorted by path.
	assert.True(t, p.CodeFiles[0].Path < p.CodeFiles[1].Path)
}

func TestDetectSkipsActiveProjectByDefault(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":  "module example.com/fresh\n",
		"main.go": "package main\n",
	})

	d := newTestDetector(t, 60, false)
	p, _ := d.Detect(root)
	assert.Nil(t, p)

	d = newTestDetector(t, 60, true)
	p, _ = d.Detect(root)
	require.NotNil(t, p)
	assert.False(t, p.Inactive)
}

func TestDetectNoCodeFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md": "docs only\n",
	})

	d := newTestDetector(t, 60, true)
	p, _ := d.Detect(root)
	assert.Nil(t, p)
}

func TestDetectMajorityLanguageWithoutManifest(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py": "x = 1\n",
		"b.py": "y = 2\n",
		"c.js": "var z = 3;\n",
	})
	ageTree(t, root, 90*24*time.Hour)

	d := newTestDetector(t, 60, false)
	p, _ := d.Detect(root)
	require.NotNil(t, p)
	assert.Equal(t, lang.Python, p.Kind)
	assert.Equal(t, []lang.Language{lang.JavaScript, lang.Python}, p.Languages)
}

func TestDetectPrunesIgnoredDirs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json":              `{"dependencies": {"react": "^18.0.0"}}`,
		"src/app.js":                "app\n",
		"node_modules/lib/index.js": "dep\n",
	})
	ageTree(t, root, 90*24*time.Hour)

	d := newTestDetector(t, 60, false)
	p, _ := d.Detect(root)
	require.NotNil(t, p)
	assert.Len(t, p.CodeFiles, 1)
	assert.Contains(t, p.CodeFiles[0].Path, "app.js")
	assert.Contains(t, p.Frameworks, "react")
	assert.Contains(t, p.Dependencies, "react")
}

func TestHasMarker(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	assert.False(t, HasMarker(root))
	writeTree(t, root, map[string]string{"Cargo.toml": "[package]\n"})
	assert.True(t, HasMarker(root))
}

func TestIsTestPath(t *testing.T) {
	t.Parallel()
	assert.True(t, IsTestPath("pkg/server_test.go"))
	assert.True(t, IsTestPath("src/__tests__/app.js"))
	assert.True(t, IsTestPath("lib/helpers.spec.ts"))
	assert.True(t, IsTestPath("project/tests/unit.py"))
	assert.False(t, IsTestPath("pkg/server.go"))
	assert.False(t, IsTestPath("src/contest/rules.py"))
}
