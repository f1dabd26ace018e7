// Package filecache stores JSON values on disk with a time-to-live.
package filecache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileSuffix = ".json"

// Entry is a cached value with the time it was stored.
type Entry[T any] struct {
	CachedAt time.Time `json:"cached_at"`
	Data     T         `json:"data"`
	// Tag identifies the source the value came from; a different tag is a miss.
	Tag string `json:"tag,omitempty"`
}

// Cache keeps one JSON file per key under a directory.
type Cache[T any] struct {
	now func() time.Time
	dir string
}

// New creates a cache rooted at dir. The directory is created on first Put.
func New[T any](dir string) *Cache[T] {
	return &Cache[T]{dir: dir, now: time.Now}
}

// Key derives a short file-safe key from parts.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:])[:16]
}

// Path returns the file that holds key.
func (c *Cache[T]) Path(key string) string {
	return filepath.Join(c.dir, key+fileSuffix)
}

// Get returns the value for key when it was stored under tag less than ttl ago.
// A missing or stale entry is a miss, not an error. A corrupt file is removed.
func (c *Cache[T]) Get(key, tag string, ttl time.Duration) (*Entry[T], bool, error) {
	path := c.Path(key)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache file: %w", err)
	}

	var e Entry[T]
	if err := json.Unmarshal(b, &e); err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			slog.Debug("Failed to remove corrupted cache file", "path", path, "error", removeErr)
		}
		return nil, false, fmt.Errorf("unmarshal cache: %w", err)
	}

	if e.Tag != tag {
		return nil, false, nil
	}
	if age := c.now().Sub(e.CachedAt); age < 0 || age >= ttl {
		return nil, false, nil
	}
	return &e, true, nil
}

// Put stores v under key, replacing the file atomically.
func (c *Cache[T]) Put(key, tag string, v T) error {
	b, err := json.Marshal(Entry[T]{CachedAt: c.now(), Data: v, Tag: tag})
	if err != nil {
		return fmt.Errorf("marshal cache data: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()           //nolint:errcheck,gosec // write error takes precedence
		os.Remove(tmp.Name()) //nolint:errcheck,gosec // best effort cleanup
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck,gosec // best effort cleanup
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.Path(key)); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck,gosec // best effort cleanup
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// Cleanup removes cache files last written more than maxAge ago.
func (c *Cache[T]) Cleanup(maxAge time.Duration) (cleaned int, errs int) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("Failed to read cache directory for cleanup", "error", err)
			return 0, 1
		}
		return 0, 0
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			errs++
			continue
		}
		if c.now().Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			errs++
		} else {
			cleaned++
		}
	}
	return cleaned, errs
}
