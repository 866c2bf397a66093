package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"

	"github.com/gleaner-cli/gleaner/internal/config"
)

// DirectoryScanner walks a base path and produces a ScanResult. Top-level
// subdirectories are independent scan units handed to a bounded worker pool;
// every Project is built entirely within one worker, so workers share nothing
// but the append-only collector.
type DirectoryScanner struct {
	cfg        config.ScanConfig
	classifier *FileClassifier
	detector   *ProjectDetector
	cache      *ScanCache
}

// New builds a scanner. cache may be nil to disable caching regardless of
// cfg.UseCache; the cache lifetime is owned by the caller.
func New(cfg config.ScanConfig, cache *ScanCache) (*DirectoryScanner, error) {
	if err := config.ValidateScan(cfg); err != nil {
		return nil, err
	}
	classifier, err := NewFileClassifier(cfg)
	if err != nil {
		return nil, err
	}
	return &DirectoryScanner{
		cfg:        cfg,
		classifier: classifier,
		detector:   NewProjectDetector(classifier, cfg.InactiveDays, cfg.IncludeActive),
		cache:      cache,
	}, nil
}

// Scan is the package entry point for callers that do not hold a cache.
func Scan(ctx context.Context, basePath string, cfg config.ScanConfig) (*ScanResult, error) {
	s, err := New(cfg, nil)
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, basePath)
}

// Scan walks basePath and returns a deterministic ScanResult. A fresh cache
// entry short-circuits the walk entirely. Cancellation stops dispatching new
// scan units; in-flight units finish and the result is flagged Truncated.
func (s *DirectoryScanner) Scan(ctx context.Context, basePath string) (*ScanResult, error) {
	base, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("stat base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path %s is not a directory", base)
	}

	var cacheKey string
	if s.cfg.UseCache && s.cache != nil {
		cacheKey = s.cache.Key(base, s.cfg)
		if cached, ok := s.cache.Get(cacheKey); ok {
			log.Info().Str("base", base).Int("projects", len(cached.Projects)).Msg("scan served from cache")
			return cached, nil
		}
	}

	start := time.Now()
	units := s.scanUnits(base)
	log.Info().Str("base", base).Int("units", len(units)).Int("workers", s.cfg.MaxWorkers).Msg("scanning")

	var (
		mu        sync.Mutex
		projects  []Project
		fileErrs  []FileError
		truncated bool
	)

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.MaxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range jobs {
				found, errs := s.scanUnit(unit)
				mu.Lock()
				projects = append(projects, found...)
				fileErrs = append(fileErrs, errs...)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, unit := range units {
		select {
		case <-ctx.Done():
			truncated = true
			break dispatch
		default:
		}
		select {
		case <-ctx.Done():
			truncated = true
			break dispatch
		case jobs <- unit:
		}
	}
	close(jobs)
	wg.Wait()

	// Normalize ordering so the result is independent of scheduling.
	sort.Slice(projects, func(i, j int) bool { return projects[i].Path < projects[j].Path })
	sort.Slice(fileErrs, func(i, j int) bool { return fileErrs[i].Path < fileErrs[j].Path })

	result := &ScanResult{
		ID:        uuid.New().String(),
		BasePath:  base,
		Projects:  projects,
		Duration:  time.Since(start),
		Errors:    fileErrs,
		Truncated: truncated,
		Timestamp: time.Now().UTC(),
	}
	for _, p := range projects {
		result.TotalFiles += p.Files
		result.TotalCodeFiles += len(p.CodeFiles)
		result.TotalBytes += p.SizeBytes
	}

	if s.cfg.UseCache && s.cache != nil && !truncated {
		s.cache.Put(cacheKey, result)
	}
	log.Info().Int("projects", len(projects)).Dur("took", result.Duration).Bool("truncated", truncated).Msg("scan complete")
	return result, nil
}

// scanUnits enumerates the independent scan units under base. When base
// itself carries a project marker the whole tree is a single unit.
func (s *DirectoryScanner) scanUnits(base string) []string {
	if HasMarker(base) {
		return []string{base}
	}
	names, err := godirwalk.ReadDirnames(base, nil)
	if err != nil {
		return []string{base}
	}
	sort.Strings(names)
	var units []string
	for _, name := range names {
		path := filepath.Join(base, name)
		if st, err := os.Stat(path); err != nil || !st.IsDir() {
			continue
		}
		if s.classifier.IgnoreDir(name) {
			continue
		}
		units = append(units, path)
	}
	if len(units) == 0 {
		return []string{base}
	}
	return units
}

// scanUnit discovers project roots inside one unit and detects each. The
// first marker directory along a path claims the subtree; roots never nest.
func (s *DirectoryScanner) scanUnit(unit string) ([]Project, []FileError) {
	var (
		projects []Project
		errs     []FileError
	)
	roots := s.discoverRoots(unit)
	if len(roots) == 0 {
		roots = []string{unit}
	}
	for _, root := range roots {
		p, rootErrs := s.detector.Detect(root)
		errs = append(errs, rootErrs...)
		if p != nil {
			projects = append(projects, *p)
		}
	}
	return projects, errs
}

// discoverRoots finds marker-bearing directories under unit without
// descending into claimed subtrees.
func (s *DirectoryScanner) discoverRoots(unit string) []string {
	var roots []string
	err := godirwalk.Walk(unit, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if path != unit && s.classifier.IgnoreDir(de.Name()) {
				return filepath.SkipDir
			}
			if HasMarker(path) {
				roots = append(roots, path)
				return filepath.SkipDir
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("unit", unit).Msg("root discovery aborted")
	}
	sort.Strings(roots)
	return roots
}
