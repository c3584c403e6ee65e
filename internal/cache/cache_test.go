package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStatCache(t *testing.T) {
	c := NewStatCache()

	if _, ok := c.Get("/repo"); ok {
		t.Error("expected empty cache to miss")
	}

	t1 := time.Now()
	c.Put("/repo", t1)

	got, ok := c.Get("/repo")
	if !ok || !got.Equal(t1) {
		t.Errorf("Get = %v, %v; expected %v, true", got, ok, t1)
	}

	// Roots are independent.
	if _, ok := c.Get("/other"); ok {
		t.Error("expected miss for a different root")
	}

	// Refresh is unconditional: an older time still overwrites.
	older := t1.Add(-time.Hour)
	c.Put("/repo", older)
	got, _ = c.Get("/repo")
	if !got.Equal(older) {
		t.Errorf("Put with older time did not overwrite: got %v", got)
	}
}

func TestDigestCacheHitAndMiss(t *testing.T) {
	dir := t.TempDir()

	c, err := OpenDigestCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	file := filepath.Join(dir, "test.txt")
	content := []byte("hello world\n")
	if err := os.WriteFile(file, content, 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}

	d1 := c.GetOrCompute("test.txt", info, content)
	if d1 != Digest(content) {
		t.Errorf("digest = %q, expected %q", d1, Digest(content))
	}

	// Same stat: cache hit returns the same digest even with different
	// content (the caller guarantees content matches the stat).
	d2 := c.GetOrCompute("test.txt", info, []byte("ignored"))
	if d2 != d1 {
		t.Errorf("cache hit returned %q, expected %q", d2, d1)
	}

	// Changed mtime/size: cache miss recomputes.
	newContent := []byte("hello world changed\n")
	if err := os.WriteFile(file, newContent, 0644); err != nil {
		t.Fatal(err)
	}
	// Make sure mtime moves even on coarse filesystems.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(file, future, future); err != nil {
		t.Fatal(err)
	}
	info, err = os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}

	d3 := c.GetOrCompute("test.txt", info, newContent)
	if d3 != Digest(newContent) {
		t.Errorf("recomputed digest = %q, expected %q", d3, Digest(newContent))
	}
	if d3 == d1 {
		t.Error("expected a different digest after content change")
	}
}

func TestDigestCacheClear(t *testing.T) {
	dir := t.TempDir()

	c, err := OpenDigestCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(file)
	c.GetOrCompute("a.txt", info, []byte("x"))

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM digest_cache").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected empty cache after Clear, got %d rows", count)
	}
}
