package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gleaner-cli/gleaner/internal/export"
	"github.com/gleaner-cli/gleaner/internal/scanner"
)

var (
	scanOutput        string
	scanIncludeActive bool
	scanNoCache       bool
	scanInactiveDays  int
	scanWorkers       int
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory tree for dormant projects",
	Long: `Scan walks the given base path (default: current directory), detects
project roots, classifies their code files, and reports the projects that
have gone inactive.

Results are cached; a repeat scan with the same configuration inside the
cache TTL is served without touching the filesystem.

Examples:
  # Scan the current directory
  gleaner scan

  # Scan a projects folder and keep the result
  gleaner scan ~/projects -o scan.json

  # Include projects that are still active
  gleaner scan ~/projects --include-active`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "scan.json", "Where to write the scan result")
	scanCmd.Flags().BoolVar(&scanIncludeActive, "include-active", false, "Also report projects with recent activity")
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "Bypass the scan cache")
	scanCmd.Flags().IntVar(&scanInactiveDays, "inactive-days", 0, "Days without changes before a project counts as inactive (0 = use config)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Worker pool size (0 = use config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Finishing in-flight work...")
		cancel()
	}()

	basePath := "."
	if len(args) == 1 {
		basePath = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if scanIncludeActive {
		cfg.Scan.IncludeActive = true
	}
	if scanNoCache {
		cfg.Scan.UseCache = false
	}
	if scanInactiveDays > 0 {
		cfg.Scan.InactiveDays = scanInactiveDays
	}
	if scanWorkers > 0 {
		cfg.Scan.MaxWorkers = scanWorkers
	}

	var cache *scanner.ScanCache
	if cfg.Scan.UseCache {
		cache, err = scanner.NewScanCache(cfg.DefaultCacheDir(), cfg.Scan.CacheTTLHours)
		if err != nil {
			return fmt.Errorf("failed to open scan cache: %w", err)
		}
		defer cache.Close()
	}

	s, err := scanner.New(cfg.Scan, cache)
	if err != nil {
		return err
	}
	result, err := s.Scan(ctx, basePath)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if err := export.WriteScanResult(scanOutput, result); err != nil {
		return err
	}

	fmt.Printf("Scanned %s: %d project(s), %s of code in %d file(s) (took %s)\n",
		result.BasePath, len(result.Projects),
		formatSize(result.TotalBytes), result.TotalCodeFiles,
		formatDuration(result.Duration))
	for _, p := range result.Projects {
		status := "inactive"
		if !p.Inactive {
			status = "active"
		}
		fmt.Printf("  %-30s %-12s %4d files  %s\n",
			truncate(p.Name, 30), string(p.Kind), len(p.CodeFiles), status)
	}
	if len(result.Errors) > 0 {
		fmt.Printf("%d file(s) skipped with errors\n", len(result.Errors))
	}
	if result.Truncated {
		fmt.Println("Scan was interrupted; result is partial and was not cached.")
	}
	fmt.Printf("Result written to %s\n", scanOutput)
	return nil
}
