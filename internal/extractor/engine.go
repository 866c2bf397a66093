package extractor

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gleaner-cli/gleaner/internal/config"
	"github.com/gleaner-cli/gleaner/internal/lang"
	"github.com/gleaner-cli/gleaner/internal/scanner"
)

// ExtractionEngine runs the parse, score, filter, and dedup stages over a
// scan result. Files are independent units of work handed to a bounded
// worker pool; deduplication runs once, globally, after every file is done.
type ExtractionEngine struct {
	cfg    config.ExtractConfig
	parser *FragmentParser
	scorer QualityScorer
}

// fileJob is one source file queued for extraction.
type fileJob struct {
	path     string
	project  string
	language lang.Language
}

// NewEngine builds an engine, validating the config eagerly so no file is
// touched under an invalid configuration.
func NewEngine(cfg config.ExtractConfig) (*ExtractionEngine, error) {
	if err := config.ValidateExtract(cfg); err != nil {
		return nil, err
	}
	return &ExtractionEngine{cfg: cfg, parser: NewFragmentParser(cfg)}, nil
}

// Extract is the package entry point.
func Extract(ctx context.Context, scan *scanner.ScanResult, cfg config.ExtractConfig) (*ExtractionResult, error) {
	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, scan, nil)
}

// Extract processes every code file in scan. onFile, when non-nil, is
// invoked after each file completes with (done, total) counts; it is called
// from worker goroutines and must be safe for concurrent use.
// Cancellation stops dispatching new files; in-flight files finish and the
// result is flagged Truncated.
func (e *ExtractionEngine) Extract(ctx context.Context, scan *scanner.ScanResult, onFile func(done, total int)) (*ExtractionResult, error) {
	start := time.Now()

	var jobs []fileJob
	for _, p := range scan.Projects {
		for _, cf := range p.CodeFiles {
			jobs = append(jobs, fileJob{path: cf.Path, project: p.Name, language: cf.Lang})
		}
	}
	total := len(jobs)
	log.Info().Int("files", total).Int("workers", e.cfg.MaxWorkers).Msg("extracting fragments")

	var (
		mu        sync.Mutex
		fragments []Fragment
		fileErrs  []FileError
		warnings  []Warning
		done      int
		truncated bool
	)

	ch := make(chan fileJob)
	var wg sync.WaitGroup
	for i := 0; i < e.cfg.MaxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range ch {
				found, warns, ferr := e.extractFile(job)
				mu.Lock()
				fragments = append(fragments, found...)
				warnings = append(warnings, warns...)
				if ferr != nil {
					fileErrs = append(fileErrs, *ferr)
				}
				done++
				n := done
				mu.Unlock()
				if onFile != nil {
					onFile(n, total)
				}
			}
		}()
	}

dispatch:
	for _, job := range jobs {
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
		case ch <- job:
		}
	}
	close(ch)
	wg.Wait()

	// Order before dedup so first-wins picks the same survivor every run.
	sort.Slice(fragments, func(i, j int) bool {
		if fragments[i].File != fragments[j].File {
			return fragments[i].File < fragments[j].File
		}
		return fragments[i].StartLine < fragments[j].StartLine
	})

	result := &ExtractionResult{
		TotalBefore: len(fragments),
		ByLanguage:  map[lang.Language]int{},
		Errors:      fileErrs,
		Warnings:    warnings,
		Truncated:   truncated,
		Timestamp:   time.Now().UTC(),
	}

	if e.cfg.Deduplicate {
		fragments = Dedupe(fragments)
	}
	sort.Slice(fragments, func(i, j int) bool { return fragments[i].UID < fragments[j].UID })
	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Path < result.Errors[j].Path })
	sort.Slice(result.Warnings, func(i, j int) bool {
		if result.Warnings[i].Path != result.Warnings[j].Path {
			return result.Warnings[i].Path < result.Warnings[j].Path
		}
		return result.Warnings[i].Message < result.Warnings[j].Message
	})

	result.Fragments = fragments
	result.TotalAfter = len(fragments)
	qualitySum := 0
	for _, f := range fragments {
		qualitySum += f.Quality
		result.ByLanguage[f.Language]++
	}
	if len(fragments) > 0 {
		result.AverageQuality = float64(qualitySum) / float64(len(fragments))
	}
	result.Duration = time.Since(start)

	log.Info().
		Int("before", result.TotalBefore).
		Int("after", result.TotalAfter).
		Dur("took", result.Duration).
		Bool("truncated", truncated).
		Msg("extraction complete")
	return result, nil
}

// extractFile reads, parses, scores, and quality-filters one file.
func (e *ExtractionEngine) extractFile(job fileJob) ([]Fragment, []Warning, *FileError) {
	src, err := os.ReadFile(job.path)
	if err != nil {
		return nil, nil, &FileError{Path: job.path, Reason: err.Error()}
	}
	parsed, warnings := e.parser.Parse(job.path, job.project, src, job.language)

	kept := parsed[:0]
	for _, f := range parsed {
		f.Quality, f.Metrics = e.scorer.Score(f)
		if f.Quality < e.cfg.MinQuality {
			continue
		}
		kept = append(kept, f)
	}
	return kept, warnings, nil
}
