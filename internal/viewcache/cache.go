package viewcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"expertstats/internal/logging"
)

// Entry is a cached view.
type Entry struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	CachedAt time.Time       `json:"cached_at"`
}

// Cache provides thread-safe access to cached views.
type Cache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewCache creates a cache backed by path. An empty path yields a cache whose
// operations are no-ops. The file is created lazily on the first Store.
func NewCache(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "viewcache")

	c := &Cache{
		path:    path,
		logger:  logger,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	if path == "" {
		return c
	}

	if err := c.load(); err != nil {
		logger.Warn("failed to load view cache",
			logging.String(logging.FieldEventType, "viewcache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty"),
			logging.String(logging.FieldImpact, "reports are recomputed from the database"))
	}
	return c
}

// Lookup decodes the cached view for key into dest.
func (c *Cache) Lookup(key string, dest any) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" || c.path == "" {
		return false, nil
	}

	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return false, fmt.Errorf("decode cached view %q: %w", key, err)
	}
	return true, nil
}

// Store caches value under key and persists the cache.
func (c *Cache) Store(key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("view key cannot be empty")
	}
	if c.path == "" {
		return nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode view %q: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{Key: key, Value: encoded, CachedAt: c.now().UTC()}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("cached view", logging.String("key", key))
	return nil
}

// Flush drops every cached view and persists the empty cache.
func (c *Cache) Flush() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := len(c.entries)
	c.entries = make(map[string]Entry)
	if dropped == 0 {
		if _, err := os.Stat(c.path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("flushed view cache", logging.Int("dropped", dropped))
	return nil
}

// Count returns the number of cached views.
func (c *Cache) Count() int {
	if c.path == "" {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) != "" {
			c.entries[entry.Key] = entry
		}
	}
	c.logger.Debug("loaded view cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// save writes the cache atomically via a temp file.
func (c *Cache) save() error {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
