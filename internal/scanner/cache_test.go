package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleaner-cli/gleaner/internal/config"
)

func newTestCache(t *testing.T) *ScanCache {
	t.Helper()
	c, err := NewScanCache(t.TempDir(), 1)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func sampleResult() *ScanResult {
	return &ScanResult{
		ID:       "r1",
		BasePath: "/projects",
		Projects: []Project{{Name: "p", Path: "/projects/p", Files: 2}},
	}
}

func TestCacheKeyDependsOnConfig(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	cfg := config.DefaultScan()

	base := c.Key("/projects", cfg)
	assert.Equal(t, base, c.Key("/projects", cfg))

	other := cfg
	other.InactiveDays = 30
	assert.NotEqual(t, base, c.Key("/projects", other))

	other = cfg
	other.IncludeActive = true
	assert.NotEqual(t, base, c.Key("/projects", other))

	assert.NotEqual(t, base, c.Key("/elsewhere", cfg))

	// Extension order must not matter.
	reordered := cfg
	reordered.Extensions = append([]string(nil), cfg.Extensions...)
	reordered.Extensions[0], reordered.Extensions[1] = reordered.Extensions[1], reordered.Extensions[0]
	assert.Equal(t, base, c.Key("/projects", reordered))
}

func TestCachePutGetRoundTrip(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	key := c.Key("/projects", config.DefaultScan())

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Put(key, sampleResult())
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, 1, c.Entries())
}

func TestCacheDiskSurvivesMemoryLoss(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first, err := NewScanCache(dir, 1)
	require.NoError(t, err)
	key := first.Key("/projects", config.DefaultScan())
	first.Put(key, sampleResult())
	first.Close()

	second, err := NewScanCache(dir, 1)
	require.NoError(t, err)
	defer second.Close()
	got, ok := second.Get(key)
	require.True(t, ok)
	assert.Equal(t, "r1", got.ID)
}

func TestCacheStaleEntryIsMissAndEvicted(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	key := c.Key("/projects", config.DefaultScan())

	entry := cacheEntry{
		WriteTime: time.Now().UTC().Add(-2 * time.Hour),
		Result:    sampleResult(),
	}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	path := filepath.Join(c.Dir(), key+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, ok := c.Get(key)
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCacheMemoryEntryExpiresWithTTL(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	key := c.Key("/projects", config.DefaultScan())
	c.Put(key, sampleResult())

	_, ok := c.Get(key)
	require.True(t, ok)

	// The memory layer must honor the original write time, not serve a
	// rehydrated entry on a fresh clock.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	key := c.Key("/projects", config.DefaultScan())
	path := filepath.Join(c.Dir(), key+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestCacheClear(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	key := c.Key("/projects", config.DefaultScan())
	c.Put(key, sampleResult())
	require.Equal(t, 1, c.Entries())

	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Entries())
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestNewScanCacheRejectsZeroTTL(t *testing.T) {
	t.Parallel()
	_, err := NewScanCache(t.TempDir(), 0)
	require.Error(t, err)
}
