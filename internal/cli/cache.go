package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gleaner-cli/gleaner/internal/scanner"
)

// cacheCmd represents the cache command group
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the scan result cache",
	Long: `Manage the on-disk cache of scan results.

Available commands:
  info   - Show cache location and entry count
  clear  - Remove every cached scan result`,
}

// cacheInfoCmd shows cache location and basic stats
var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location and entry count",
	RunE:  runCacheInfo,
}

// cacheClearCmd removes all cached entries
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached scan result",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCache() (*scanner.ScanCache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cache, err := scanner.NewScanCache(cfg.DefaultCacheDir(), cfg.Scan.CacheTTLHours)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan cache: %w", err)
	}
	return cache, nil
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	fmt.Printf("Cache Location: %s\n", cache.Dir())
	fmt.Printf("Entries: %d\n", cache.Entries())
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	entries := cache.Entries()
	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Printf("Removed %d cache entr(ies)\n", entries)
	return nil
}
