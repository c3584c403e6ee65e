package cache

import (
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"lukechampine.com/blake3"
)

// DigestCache caches worktree file digests keyed by (path, size, mtime)
// so repeated scans do not rehash unchanged files.
type DigestCache struct {
	db *sql.DB
}

const digestSchema = `
CREATE TABLE IF NOT EXISTS digest_cache (
	path TEXT PRIMARY KEY,
	size INTEGER NOT NULL,
	mtime INTEGER NOT NULL,
	digest TEXT NOT NULL
);
`

// Digest returns the blake3 digest of content as a hex string.
func Digest(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// OpenDigestCache opens or creates the digest database at
// {dir}/digests.db.
func OpenDigestCache(dir string) (*DigestCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "digests.db"))
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(digestSchema); err != nil {
		db.Close()
		return nil, err
	}

	return &DigestCache{db: db}, nil
}

// Close closes the cache database.
func (c *DigestCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// GetOrCompute returns the digest for a file, reusing the cached value
// when (size, mtime) is unchanged and recomputing otherwise.
func (c *DigestCache) GetOrCompute(path string, info os.FileInfo, content []byte) string {
	size := info.Size()
	mtime := info.ModTime().UnixNano()

	var cachedSize, cachedMtime int64
	var cachedDigest string
	err := c.db.QueryRow(
		"SELECT size, mtime, digest FROM digest_cache WHERE path = ?",
		path,
	).Scan(&cachedSize, &cachedMtime, &cachedDigest)

	if err == nil && cachedSize == size && cachedMtime == mtime {
		return cachedDigest
	}

	digest := Digest(content)

	// A failed write only costs a rehash on the next scan.
	_, _ = c.db.Exec(
		`INSERT OR REPLACE INTO digest_cache (path, size, mtime, digest)
		 VALUES (?, ?, ?, ?)`,
		path, size, mtime, digest,
	)

	return digest
}

// Clear removes all entries.
func (c *DigestCache) Clear() error {
	_, err := c.db.Exec("DELETE FROM digest_cache")
	return err
}
