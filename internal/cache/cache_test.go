package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/panbanda/reviewer/pkg/config"
	"github.com/panbanda/reviewer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.AnalysisResult {
	issues := []models.Issue{
		models.NewLineIssue(models.SeverityHigh, models.CategorySecurity, 2, "Sensitive data stored in UserDefaults at line 2 - use Keychain instead"),
		models.NewIssue(models.SeverityMedium, models.CategoryBug, "Found TODO/FIXME comments that should be addressed"),
	}
	return &models.AnalysisResult{
		Language: "Swift",
		Depth:    models.DepthStandard,
		Issues:   issues,
		Summary:  models.Summarize(issues, 3),
	}
}

func newCache(t *testing.T, fingerprint string) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true, fingerprint)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	c, err := New(dir, 24, true, "fp")
	require.NoError(t, err)
	assert.True(t, c.Enabled())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSetAndGet(t *testing.T) {
	c := newCache(t, "fp")
	want := sampleResult()
	hash := HashString("let password = \"x\"")

	require.NoError(t, c.Set("App/Login.swift", hash, want))

	got, ok := c.Get("App/Login.swift", hash)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestGetMisses(t *testing.T) {
	c := newCache(t, "fp")
	hash := HashString("a")
	require.NoError(t, c.Set("a.swift", hash, sampleResult()))

	_, ok := c.Get("missing.swift", hash)
	assert.False(t, ok, "unknown path")

	_, ok = c.Get("a.swift", HashString("b"))
	assert.False(t, ok, "content changed")

	other, err := New(c.dir, 24, true, "other-fp")
	require.NoError(t, err)
	_, ok = other.Get("a.swift", hash)
	assert.False(t, ok, "configuration changed")
}

func TestCorruptEntryIsDropped(t *testing.T) {
	c := newCache(t, "fp")
	path := c.keyPath("a.swift")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, ok := c.Get("a.swift", "h")
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTTLExpiration(t *testing.T) {
	c := newCache(t, "fp")
	entry := Entry{
		Hash:        "h",
		Fingerprint: "fp",
		Timestamp:   time.Now().Add(-48 * time.Hour),
		Result:      sampleResult(),
	}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.keyPath("old.swift"), data, 0o600))

	_, ok := c.Get("old.swift", "h")
	assert.False(t, ok)
}

func TestInvalidateAndClear(t *testing.T) {
	c := newCache(t, "fp")
	require.NoError(t, c.Set("a.swift", "h", sampleResult()))
	require.NoError(t, c.Set("b.swift", "h", sampleResult()))

	require.NoError(t, c.Invalidate("a.swift"))
	require.NoError(t, c.Invalidate("a.swift"), "invalidating twice is fine")
	_, ok := c.Get("a.swift", "h")
	assert.False(t, ok)
	_, ok = c.Get("b.swift", "h")
	assert.True(t, ok)

	require.NoError(t, c.Clear())
	_, ok = c.Get("b.swift", "h")
	assert.False(t, ok)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}

func TestDisabledCache(t *testing.T) {
	c, err := New("", 24, false, "fp")
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	require.NoError(t, c.Set("a.swift", "h", sampleResult()))
	_, ok := c.Get("a.swift", "h")
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate("a.swift"))
	assert.NoError(t, c.Clear())

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}

func TestGetStats(t *testing.T) {
	c := newCache(t, "fp")
	for _, p := range []string{"a.swift", "b.swift", "c.swift"} {
		require.NoError(t, c.Set(p, "h", sampleResult()))
	}

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Entries)
	assert.Positive(t, stats.TotalSize)
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("hello"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashString("hello"))
	assert.NotEqual(t, a, HashString("hello!"))
}

func TestFingerprint(t *testing.T) {
	base := Fingerprint(config.DefaultConfig())
	assert.Equal(t, base, Fingerprint(nil), "nil means defaults")
	assert.Equal(t, base, Fingerprint(config.DefaultConfig()), "stable")

	cfg := config.DefaultConfig()
	cfg.Style.MaxLineLength = 100
	assert.NotEqual(t, base, Fingerprint(cfg))

	cfg = config.DefaultConfig()
	cfg.Output.Format = "json"
	assert.Equal(t, base, Fingerprint(cfg), "output settings do not affect results")

	assert.NotEqual(t, base, Fingerprint(config.DefaultConfig(), "deep"))
}

func TestKeyPathIsSafe(t *testing.T) {
	c := newCache(t, "fp")
	for _, p := range []string{"../../etc/passwd", "a b/c:d.swift", ""} {
		path := c.keyPath(p)
		assert.Equal(t, c.dir, filepath.Dir(path))
		assert.Equal(t, ".json", filepath.Ext(path))
	}
}
