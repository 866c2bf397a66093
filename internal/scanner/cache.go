package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maypok86/otter"
	"github.com/rs/zerolog/log"

	"github.com/gleaner-cli/gleaner/internal/config"
)

// ScanCache is a content-addressed, time-boxed cache of scan results.
// Entries live on disk under a caller-owned directory with an in-memory
// layer in front. Every failure on the read or write path degrades to a
// cache miss; the cache never surfaces errors to the scan itself.
type ScanCache struct {
	dir string
	ttl time.Duration
	mem otter.Cache[string, cacheEntry]
	now func() time.Time
}

// cacheEntry carries its write time through both layers, so freshness is
// always judged against the original write, never against rehydration.
type cacheEntry struct {
	WriteTime time.Time   `json:"write_time"`
	Result    *ScanResult `json:"result"`
}

// NewScanCache opens (creating if needed) a cache rooted at dir.
func NewScanCache(dir string, ttlHours int) (*ScanCache, error) {
	if ttlHours < 1 {
		return nil, fmt.Errorf("cache ttl must be >= 1 hour, got %d", ttlHours)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	ttl := time.Duration(ttlHours) * time.Hour
	mem, err := otter.MustBuilder[string, cacheEntry](64).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build memory cache: %w", err)
	}
	return &ScanCache{dir: dir, ttl: ttl, mem: mem, now: time.Now}, nil
}

// Key derives the cache key from the base path and every config field that
// can change the scan outcome.
func (c *ScanCache) Key(basePath string, cfg config.ScanConfig) string {
	exts := append([]string(nil), cfg.Extensions...)
	sort.Strings(exts)
	ignores := append([]string(nil), cfg.IgnorePatterns...)
	sort.Strings(ignores)

	var b strings.Builder
	b.WriteString(basePath)
	fmt.Fprintf(&b, "\x00%d\x00%t\x00%d\x00", cfg.InactiveDays, cfg.IncludeActive, cfg.MaxFileSizeBytes)
	b.WriteString(strings.Join(exts, ","))
	b.WriteString("\x00")
	b.WriteString(strings.Join(ignores, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Get returns a fresh cached result, or a miss. Stale and corrupt entries
// are both misses; stale disk entries are evicted on sight.
func (c *ScanCache) Get(key string) (*ScanResult, bool) {
	if entry, ok := c.mem.Get(key); ok {
		if c.now().Sub(entry.WriteTime) < c.ttl {
			return entry.Result, true
		}
		c.mem.Delete(key)
	}

	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Result == nil {
		log.Debug().Str("path", path).Msg("corrupt cache entry treated as miss")
		return nil, false
	}
	if c.now().Sub(entry.WriteTime) >= c.ttl {
		_ = os.Remove(path)
		return nil, false
	}
	c.mem.Set(key, entry)
	return entry.Result, true
}

// Put stores the result. Writes are atomic (temp then rename) so a crash
// mid-write can never leave a half-written entry a later Get would trust.
func (c *ScanCache) Put(key string, result *ScanResult) {
	entry := cacheEntry{WriteTime: c.now().UTC(), Result: result}
	c.mem.Set(key, entry)

	data, err := json.Marshal(entry)
	if err != nil {
		log.Warn().Err(err).Msg("cache entry not written")
		return
	}
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		log.Warn().Err(err).Msg("cache entry not written")
		return
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		log.Warn().Err(err).Msg("cache entry not written")
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		log.Warn().Err(err).Msg("cache entry not written")
		return
	}
	if err := os.Rename(tmpPath, c.entryPath(key)); err != nil {
		os.Remove(tmpPath)
		log.Warn().Err(err).Msg("cache entry not written")
	}
}

// Clear removes every entry, disk and memory.
func (c *ScanCache) Clear() error {
	c.mem.Clear()
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("remove cache entry %s: %w", m, err)
		}
	}
	return nil
}

// Entries reports how many entries currently sit on disk.
func (c *ScanCache) Entries() int {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0
	}
	return len(matches)
}

// Dir returns the cache directory.
func (c *ScanCache) Dir() string { return c.dir }

// Close releases the in-memory layer.
func (c *ScanCache) Close() { c.mem.Close() }

func (c *ScanCache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
