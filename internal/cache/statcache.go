// Package cache provides the per-repository index stat cache and a
// sqlite-backed file digest cache.
package cache

import "time"

// StatCache remembers the last observed modification time of each
// repository's staging index, keyed by repository root. It lets many file
// entries share one stat comparison instead of re-checking per entry.
//
// The cache is not locked: the host runs validation and refresh on a
// single goroutine, and entries for different roots never interact.
type StatCache struct {
	mtimes map[string]time.Time
}

// NewStatCache creates an empty stat cache.
func NewStatCache() *StatCache {
	return &StatCache{mtimes: make(map[string]time.Time)}
}

// Get returns the last recorded index mtime for a repository root.
func (c *StatCache) Get(root string) (time.Time, bool) {
	t, ok := c.mtimes[root]
	return t, ok
}

// Put records a freshly observed index mtime for a repository root. The
// write is unconditional: an older stat overwrites a newer one, so callers
// must only pass times they actually observed.
func (c *StatCache) Put(root string, mtime time.Time) {
	c.mtimes[root] = mtime
}
