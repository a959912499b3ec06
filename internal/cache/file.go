package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lattice/audio2manim/internal/logger"
)

const fileSuffix = ".cache"

// FileCache keeps entries as files under a directory, one per key.
// Expiry is judged by file modification time, so entries survive
// process restarts.
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates the cache directory if needed. A zero ttl means
// entries never expire.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache directory: %w", err)
		}
		dir = filepath.Join(home, ".audio2manim_cache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+fileSuffix)
}

// Get returns the cached value for key. Expired and unreadable entries
// are removed and reported as misses.
func (c *FileCache) Get(key string) ([]byte, bool) {
	path := c.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		logger.Debug("cache entry expired", logger.String("key", key))
		os.Remove(path)
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read cache entry",
			logger.String("key", key),
			logger.ErrorField(err))
		os.Remove(path)
		return nil, false
	}
	return data, true
}

// Set writes the value for key, replacing any previous entry.
func (c *FileCache) Set(key string, value []byte) error {
	if err := os.WriteFile(c.path(key), value, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry in the store.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read cache directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fileSuffix) {
			if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stats reports entry count and total size on disk.
func (c *FileCache) Stats() Stats {
	st := Stats{Location: c.dir}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return st
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		st.Entries++
		if info, err := e.Info(); err == nil {
			st.TotalBytes += info.Size()
		}
	}
	return st
}
