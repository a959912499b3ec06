// Package cache provides a TTL cache for expensive collaborator
// results (transcriptions, generated code). Stores are constructed and
// injected explicitly; nothing here is a package-level singleton.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Cache is the store contract. A miss is not an error; Get reports it
// through the second return value.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Clear() error
	Stats() Stats
}

// Stats describes the current contents of a store.
type Stats struct {
	Entries    int
	TotalBytes int64
	Location   string
}

// Key derives a stable cache key from its parts.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
