package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gleaner-cli/gleaner/internal/config"
	"github.com/gleaner-cli/gleaner/internal/export"
	"github.com/gleaner-cli/gleaner/internal/extractor"
	"github.com/gleaner-cli/gleaner/internal/scanner"
)

var (
	extractOutput     string
	extractMinQuality int
	extractMinLines   int
	extractMaxLines   int
	extractSkipTests  bool
	extractNoDedupe   bool
	extractWorkers    int
	quietFlag         bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <path>",
	Short: "Extract reusable code fragments",
	Long: `Extract parses the code files of scanned projects, slices out functions,
methods, and classes, scores their reuse quality, and removes exact and
near duplicates.

The argument is either a directory (scanned first, using the scan cache)
or a scan result previously written by 'gleaner scan -o'.

Examples:
  # Scan and extract in one step
  gleaner extract ~/projects

  # Extract from a saved scan result
  gleaner extract scan.json

  # Only keep high-quality fragments, skip test code
  gleaner extract ~/projects --min-quality 7 --skip-tests`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "fragments.json", "Where to write the extraction result")
	extractCmd.Flags().IntVar(&extractMinQuality, "min-quality", 0, "Minimum fragment quality 1-10 (0 = use config)")
	extractCmd.Flags().IntVar(&extractMinLines, "min-lines", 0, "Minimum fragment length in lines (0 = use config)")
	extractCmd.Flags().IntVar(&extractMaxLines, "max-lines", 0, "Maximum fragment length in lines (0 = use config)")
	extractCmd.Flags().BoolVar(&extractSkipTests, "skip-tests", false, "Skip test files and test-named constructs")
	extractCmd.Flags().BoolVar(&extractNoDedupe, "no-dedupe", false, "Keep exact and near duplicates")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "Worker pool size (0 = use config)")
	extractCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Finishing in-flight files...")
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if extractMinQuality > 0 {
		cfg.Extract.MinQuality = extractMinQuality
	}
	if extractMinLines > 0 {
		cfg.Extract.MinLines = extractMinLines
	}
	if extractMaxLines > 0 {
		cfg.Extract.MaxLines = extractMaxLines
	}
	if extractSkipTests {
		cfg.Extract.SkipTests = true
	}
	if extractNoDedupe {
		cfg.Extract.Deduplicate = false
	}
	if extractWorkers > 0 {
		cfg.Extract.MaxWorkers = extractWorkers
	}

	scan, err := loadScan(ctx, cfg, args[0])
	if err != nil {
		return err
	}

	engine, err := extractor.NewEngine(cfg.Extract)
	if err != nil {
		return err
	}

	var (
		barOnce sync.Once
		bar     *progressbar.ProgressBar
	)
	onFile := func(done, total int) {
		if quietFlag {
			return
		}
		barOnce.Do(func() { bar = newProgressBar(total, "Extracting fragments") })
		bar.Set(done)
	}

	result, err := engine.Extract(ctx, scan, onFile)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if bar != nil {
		bar.Finish()
	}

	if err := export.WriteExtractionResult(extractOutput, result); err != nil {
		return err
	}

	if !quietFlag {
		fmt.Printf("✓ Extraction complete: %d fragment(s) kept of %d found (avg quality %.1f, took %s)\n",
			result.TotalAfter, result.TotalBefore, result.AverageQuality,
			formatDuration(result.Duration))
		for l, n := range result.ByLanguage {
			fmt.Printf("  %-12s %d\n", string(l), n)
		}
		if len(result.Warnings) > 0 {
			fmt.Printf("%d construct(s) skipped with warnings\n", len(result.Warnings))
		}
		if len(result.Errors) > 0 {
			fmt.Printf("%d file(s) failed to read\n", len(result.Errors))
		}
	}
	if result.Truncated {
		fmt.Println("Extraction was interrupted; result is partial.")
	}
	fmt.Printf("Result written to %s\n", extractOutput)
	return nil
}

// loadScan resolves the extract argument: a directory is scanned (through
// the cache), anything else is read as a saved scan result.
func loadScan(ctx context.Context, cfg *config.Config, path string) (*scanner.ScanResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return export.ReadScanResult(path)
	}

	var cache *scanner.ScanCache
	if cfg.Scan.UseCache {
		cache, err = scanner.NewScanCache(cfg.DefaultCacheDir(), cfg.Scan.CacheTTLHours)
		if err != nil {
			return nil, fmt.Errorf("failed to open scan cache: %w", err)
		}
		defer cache.Close()
	}
	s, err := scanner.New(cfg.Scan, cache)
	if err != nil {
		return nil, err
	}
	scan, err := s.Scan(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return scan, nil
}
