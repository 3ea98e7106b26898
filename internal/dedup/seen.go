package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	seenFile = "seen_jobs.json"
	// DefaultRetention is how long a notified job stays in the cache
	DefaultRetention = 30 * 24 * time.Hour
)

type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// SeenCache remembers across runs which job URLs were already reported, so
// repeated scrapes of a listing only notify about new postings
type SeenCache struct {
	mu        sync.Mutex
	filePath  string
	seen      map[string]int64
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewSeenCache loads the cache in cacheDir, dropping entries older than retention
func NewSeenCache(cacheDir string, retention time.Duration, log zerolog.Logger) (*SeenCache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	cache := &SeenCache{
		filePath:  filepath.Join(cacheDir, seenFile),
		seen:      make(map[string]int64),
		retention: retention,
		now:       time.Now,
		log:       log.With().Str("component", "seen_cache").Logger(),
	}
	if err := cache.load(); err != nil {
		return nil, err
	}
	return cache, nil
}

// IsSeen checks if a URL has already been reported
func (c *SeenCache) IsSeen(u string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.seen[Key(u)]
	return exists
}

// Add marks urls as reported and writes the cache if anything changed.
// Blank URLs are ignored.
func (c *SeenCache) Add(urls []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixMilli()
	changed := false
	for _, u := range urls {
		key := Key(u)
		if key == "" {
			continue
		}
		if _, exists := c.seen[key]; !exists {
			c.seen[key] = now
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return c.save()
}

func (c *SeenCache) load() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", seenFile, err)
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.log.Warn().Err(err).Str("path", c.filePath).Msg("⚠️ Corrupt seen cache, starting empty")
		return nil
	}

	cutoff := c.now().Add(-c.retention).UnixMilli()
	loaded := 0
	for _, e := range entries {
		if e.Timestamp > cutoff {
			c.seen[Key(e.URL)] = e.Timestamp
			loaded++
		}
	}
	c.log.Debug().Int("loaded", loaded).Int("expired", len(entries)-loaded).Msg("📋 Loaded seen jobs")
	return nil
}

// save writes the cache to disk. Callers hold mu.
func (c *SeenCache) save() error {
	entries := make([]seenEntry, 0, len(c.seen))
	for u, ts := range c.seen {
		entries = append(entries, seenEntry{URL: u, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen jobs: %w", err)
	}
	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", seenFile, err)
	}
	c.log.Debug().Int("entries", len(entries)).Msg("💾 Saved seen jobs")
	return nil
}
