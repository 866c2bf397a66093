package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"

	"github.com/gleaner-cli/gleaner/internal/lang"
)

// manifestInfo maps a marker file to the language and framework tags it
// implies. This table is configuration, not logic.
type manifestInfo struct {
	language   lang.Language
	frameworks []string
}

var manifestTable = map[string]manifestInfo{
	"go.mod":           {lang.Go, []string{"go"}},
	"package.json":     {lang.JavaScript, []string{"node"}},
	"tsconfig.json":    {lang.TypeScript, []string{"typescript"}},
	"requirements.txt": {lang.Python, []string{"pip"}},
	"pyproject.toml":   {lang.Python, []string{"poetry"}},
	"Pipfile":          {lang.Python, []string{"pipenv"}},
	"setup.py":         {lang.Python, []string{"setuptools"}},
	"manage.py":        {lang.Python, []string{"django"}},
	"Cargo.toml":       {lang.Rust, []string{"cargo"}},
	"pom.xml":          {lang.Java, []string{"maven"}},
	"build.gradle":     {lang.Java, []string{"gradle"}},
	"build.gradle.kts": {lang.Kotlin, []string{"gradle", "kotlin"}},
	"composer.json":    {lang.PHP, []string{"composer"}},
	"Gemfile":          {lang.Ruby, []string{"bundler"}},
	"mix.exs":          {lang.Unknown, []string{"elixir"}},
	"CMakeLists.txt":   {lang.CPP, []string{"cmake"}},
	"Makefile":         {lang.Unknown, []string{"make"}},
	".git":             {lang.Unknown, []string{"git"}},
}

// packageJSONFrameworks maps package.json dependency names to framework tags.
var packageJSONFrameworks = map[string]string{
	"react":        "react",
	"vue":          "vue",
	"express":      "express",
	"fastify":      "fastify",
	"@nestjs/core": "nestjs",
	"next":         "next",
}

// ProjectDetector turns a candidate root directory into a Project.
type ProjectDetector struct {
	classifier    *FileClassifier
	inactiveDays  int
	includeActive bool
	now           func() time.Time
}

// NewProjectDetector builds a detector over the given classifier.
func NewProjectDetector(classifier *FileClassifier, inactiveDays int, includeActive bool) *ProjectDetector {
	return &ProjectDetector{
		classifier:    classifier,
		inactiveDays:  inactiveDays,
		includeActive: includeActive,
		now:           time.Now,
	}
}

// HasMarker reports whether dir directly contains a known project marker.
func HasMarker(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if _, ok := manifestTable[e.Name()]; ok {
			return true
		}
	}
	return false
}

// Detect walks a candidate root and returns a Project, or nil when the root
// holds no classified code files or fails the activity filter. Per-file
// errors are recorded and never abort the walk.
func (d *ProjectDetector) Detect(root string) (*Project, []FileError) {
	var (
		errs      []FileError
		codeFiles []CodeFile
		files     int
		size      int64
		latest    time.Time
		langCount = map[lang.Language]int{}
	)

	walkErr := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if path != root && d.classifier.IgnoreDir(de.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = de.Name()
			}
			info, err := os.Stat(path)
			if err != nil {
				errs = append(errs, FileError{Path: path, Reason: err.Error()})
				cl := d.classifier.Classify(rel, nil)
				log.Debug().Str("path", path).Str("reason", cl.Reason).Msg("skipping unreadable file")
				return nil
			}
			files++
			size += info.Size()
			cl := d.classifier.Classify(rel, info)
			if !cl.Included {
				return nil
			}
			codeFiles = append(codeFiles, CodeFile{
				Path:    path,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Lang:    cl.Language,
			})
			langCount[cl.Language]++
			if info.ModTime().After(latest) {
				latest = info.ModTime()
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			errs = append(errs, FileError{Path: path, Reason: err.Error()})
			return godirwalk.SkipNode
		},
	})
	if walkErr != nil {
		errs = append(errs, FileError{Path: root, Reason: walkErr.Error()})
	}

	if len(codeFiles) == 0 {
		return nil, errs
	}

	inactive := d.now().Sub(latest) >= time.Duration(d.inactiveDays)*24*time.Hour
	if !d.includeActive && !inactive {
		log.Debug().Str("root", root).Msg("skipping active project")
		return nil, errs
	}

	sort.Slice(codeFiles, func(i, j int) bool { return codeFiles[i].Path < codeFiles[j].Path })

	project := &Project{
		Name:         filepath.Base(root),
		Path:         root,
		Files:        files,
		SizeBytes:    size,
		CodeFiles:    codeFiles,
		LastActivity: latest,
		Inactive:     inactive,
	}
	d.tagProject(project, langCount)
	return project, errs
}

// tagProject fills Kind, Languages, Frameworks, and Dependencies from the
// root's manifest files and the classified language counts.
func (d *ProjectDetector) tagProject(p *Project, langCount map[lang.Language]int) {
	frameworks := map[string]struct{}{}
	var manifestLang lang.Language

	entries, err := os.ReadDir(p.Path)
	if err == nil {
		for _, e := range entries {
			info, ok := manifestTable[e.Name()]
			if !ok {
				continue
			}
			for _, f := range info.frameworks {
				frameworks[f] = struct{}{}
			}
			if manifestLang == lang.Unknown && info.language != lang.Unknown {
				manifestLang = info.language
			}
			if e.Name() == "package.json" {
				d.probePackageJSON(p, filepath.Join(p.Path, e.Name()), frameworks)
			}
		}
	}

	for l := range langCount {
		p.Languages = append(p.Languages, l)
	}
	sort.Slice(p.Languages, func(i, j int) bool { return p.Languages[i] < p.Languages[j] })

	p.Kind = manifestLang
	if p.Kind == lang.Unknown {
		// Majority language among classified files; lexical tiebreak keeps
		// the result stable.
		best, bestN := lang.Unknown, -1
		for _, l := range p.Languages {
			if n := langCount[l]; n > bestN {
				best, bestN = l, n
			}
		}
		p.Kind = best
	}

	for f := range frameworks {
		p.Frameworks = append(p.Frameworks, f)
	}
	sort.Strings(p.Frameworks)
}

// probePackageJSON extracts framework hints and leading dependency names.
func (d *ProjectDetector) probePackageJSON(p *Project, path string, frameworks map[string]struct{}) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("unparseable package.json")
		return
	}
	names := make([]string, 0, len(pkg.Dependencies))
	for name := range pkg.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if tag, ok := packageJSONFrameworks[name]; ok {
			frameworks[tag] = struct{}{}
		}
	}
	for name := range pkg.DevDependencies {
		if tag, ok := packageJSONFrameworks[name]; ok {
			frameworks[tag] = struct{}{}
		}
	}
	if len(names) > 10 {
		names = names[:10]
	}
	p.Dependencies = names
}

// testIndicator reports whether a path looks like test code. Shared with the
// extraction layer via the scanner package to keep one definition.
func testIndicator(path string) bool {
	p := strings.ToLower(filepath.ToSlash(path))
	if strings.Contains(p, "/test/") || strings.Contains(p, "/tests/") || strings.Contains(p, "/__tests__/") {
		return true
	}
	base := filepath.Base(p)
	return strings.Contains(base, "test") || strings.Contains(base, "spec.")
}

// IsTestPath reports whether the file path matches the test-indicator pattern.
func IsTestPath(path string) bool { return testIndicator(path) }
