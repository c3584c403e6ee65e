// Package filelist builds diffed file entries from worktree status.
package filelist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/tarkah/diffview/internal/cache"
	"github.com/tarkah/diffview/internal/entry"
	"github.com/tarkah/diffview/internal/gitvcs"
	"github.com/tarkah/diffview/internal/rev"
)

// Options configures a scan.
type Options struct {
	// Digests, when set, memoizes worktree content digests across scans
	// so unchanged files are not rehashed.
	Digests *cache.DigestCache

	// Match, when set, limits the scan to paths it accepts.
	Match func(path string) bool
}

// Scan builds a file entry for every changed path in the worktree:
// two-way entries against HEAD for ordinary changes, merge entries for
// conflicted paths. Entries are sorted by path.
func Scan(adapter *gitvcs.Adapter, opts Options) ([]*entry.FileEntry, error) {
	status, err := adapter.Status()
	if err != nil {
		return nil, fmt.Errorf("scanning worktree: %w", err)
	}

	var headRev *rev.Rev
	if head, err := adapter.Head(); err == nil {
		headRev = &head
	}

	var entries []*entry.FileEntry
	for path, fs := range status {
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		if opts.Match != nil && !opts.Match(path) {
			continue
		}

		var e *entry.FileEntry
		if fs.Staging == git.UpdatedButUnmerged || fs.Worktree == git.UpdatedButUnmerged {
			e, err = conflictEntry(adapter, path)
		} else {
			e, err = workingEntry(adapter, path, fs, headRev, opts)
		}
		if err != nil {
			return nil, err
		}
		if e != nil {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func workingEntry(adapter *gitvcs.Adapter, path string, fs *git.FileStatus, headRev *rev.Rev, opts Options) (*entry.FileEntry, error) {
	code := statusCode(fs)

	stats, identical := diffStats(adapter, path, code, opts)
	if identical {
		// Touched but content-unchanged; nothing to diff.
		return nil, nil
	}

	local := rev.NewLocal()
	oldPath := ""
	if fs.Staging == git.Renamed {
		oldPath = fs.Extra
	}

	return entry.WithLayout(entry.KindTwoWay, entry.Options{
		Adapter: adapter,
		Path:    path,
		OldPath: oldPath,
		Revs:    entry.RevMap{A: headRev, B: &local},
		Status:  code,
		Stats:   stats,
		Kind:    entry.Working,
	})
}

func conflictEntry(adapter *gitvcs.Adapter, path string) (*entry.FileEntry, error) {
	base := rev.NewStage(1)
	ours := rev.NewStage(2)
	theirs := rev.NewStage(3)
	local := rev.NewLocal()

	stats := entry.Stats{Conflicts: conflictCount(adapter, path)}

	return entry.WithLayout(entry.KindFourWay, entry.Options{
		Adapter: adapter,
		Path:    path,
		Revs:    entry.RevMap{A: &base, B: &ours, C: &theirs, D: &local},
		Status:  "U",
		Stats:   stats,
		Kind:    entry.Conflicting,
	})
}

// statusCode picks the single status letter for the primary diff,
// preferring the worktree side when both changed.
func statusCode(fs *git.FileStatus) string {
	if fs.Worktree != git.Unmodified {
		return string(byte(fs.Worktree))
	}
	return string(byte(fs.Staging))
}

// diffStats line-diffs HEAD content against the worktree. identical is
// true when both sides exist with equal digests (an mtime-only touch).
func diffStats(adapter *gitvcs.Adapter, path, code string, opts Options) (entry.Stats, bool) {
	headContent, headOK, err := adapter.HeadFileContent(path)
	if err != nil {
		headOK = false
	}

	wtContent, info, wtOK, err := adapter.WorktreeFileContent(path)
	if err != nil {
		wtOK = false
	}

	switch {
	case !headOK && !wtOK:
		return entry.Stats{}, false
	case !headOK:
		return entry.Stats{Additions: countLines(string(wtContent))}, false
	case !wtOK:
		return entry.Stats{Deletions: countLines(string(headContent))}, false
	}

	wtDigest := cache.Digest(wtContent)
	if opts.Digests != nil {
		wtDigest = opts.Digests.GetOrCompute(path, info, wtContent)
	}
	if code == "M" && wtDigest == cache.Digest(headContent) {
		return entry.Stats{}, true
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(headContent), string(wtContent))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var stats entry.Stats
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.Additions += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			stats.Deletions += countLines(d.Text)
		}
	}
	return stats, false
}

// conflictCount counts conflict hunks by their opening markers.
func conflictCount(adapter *gitvcs.Adapter, path string) int {
	content, _, ok, err := adapter.WorktreeFileContent(path)
	if err != nil || !ok {
		return 0
	}

	count := 0
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, "<<<<<<<") {
			count++
		}
	}
	return count
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
