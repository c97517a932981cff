// Package cache stores per-file analysis results keyed by content hash.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"

	"github.com/panbanda/reviewer/pkg/config"
	"github.com/panbanda/reviewer/pkg/models"
)

// formatVersion is folded into every fingerprint; bump it when the entry
// layout or rule output changes so stale entries stop matching.
const formatVersion = "1"

// Cache provides file-based caching for analysis results. An entry is reused
// only when both the content hash and the configuration fingerprint match.
type Cache struct {
	dir         string
	ttl         time.Duration
	enabled     bool
	fingerprint string
}

// Entry represents a cached analysis result.
type Entry struct {
	Hash        string                 `json:"hash"`
	Fingerprint string                 `json:"fingerprint"`
	Timestamp   time.Time              `json:"timestamp"`
	Result      *models.AnalysisResult `json:"result"`
}

// New creates a new cache instance. A disabled cache never hits and never writes.
func New(dir string, ttlHours int, enabled bool, fingerprint string) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:         dir,
		ttl:         time.Duration(ttlHours) * time.Hour,
		enabled:     true,
		fingerprint: fingerprint,
	}, nil
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString is HashBytes for source text.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// Fingerprint summarizes every setting that changes analysis output, plus
// any extra values such as a depth given on the command line.
func Fingerprint(cfg *config.Config, extra ...string) string {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	relevant := struct {
		Version         string
		Analysis        config.AnalysisConfig
		Security        config.SecurityConfig
		Bugs            config.BugsConfig
		Style           config.StyleConfig
		Maintainability config.MaintainabilityConfig
		Extra           []string
	}{formatVersion, cfg.Analysis, cfg.Security, cfg.Bugs, cfg.Style, cfg.Maintainability, extra}

	// Marshalling plain structs of strings, ints and bools cannot fail.
	data, _ := json.Marshal(relevant)
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// Get returns the cached result for path if its content hash still matches.
func (c *Cache) Get(path, hash string) (*models.AnalysisResult, bool) {
	if !c.enabled {
		return nil, false
	}

	file := c.keyPath(path)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Result == nil {
		os.Remove(file)
		return nil, false
	}
	if entry.Hash != hash || entry.Fingerprint != c.fingerprint {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		os.Remove(file)
		return nil, false
	}

	return entry.Result, true
}

// Set stores result for path. The entry is written to a temporary file and
// renamed so concurrent readers never see a partial entry.
func (c *Cache) Set(path, hash string, result *models.AnalysisResult) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(Entry{
		Hash:        hash,
		Fingerprint: c.fingerprint,
		Timestamp:   time.Now(),
		Result:      result,
	})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.keyPath(path))
}

// Invalidate removes the entry for path.
func (c *Cache) Invalidate(path string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.keyPath(path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a source path to an entry path.
func (c *Cache) keyPath(path string) string {
	hash := blake3.Sum256([]byte(path))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:16])+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int           `json:"entries" toon:"entries" yaml:"entries"`
	TotalSize int64         `json:"total_size" toon:"total_size" yaml:"total_size"`
	OldestAge time.Duration `json:"oldest_age" toon:"oldest_age" yaml:"oldest_age"`
	NewestAge time.Duration `json:"newest_age" toon:"newest_age" yaml:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
