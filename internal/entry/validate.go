package entry

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tarkah/diffview/internal/cache"
)

// ValidateOptions tunes stage-buffer validation.
type ValidateOptions struct {
	// Stat is a precomputed stat of the index resource. When nil the
	// index is stat'ed freshly. Passing one stat to many entries keeps
	// bulk validation to a single filesystem call.
	Stat os.FileInfo

	// Notify delivers the user-facing staleness warning. Optional.
	Notify func(msg string)

	// Logger records staleness warnings. Nil means no logging.
	Logger *zap.Logger
}

// ValidateStageBuffers drops stale staged buffers so they reload from
// the current index.
//
// The check short-circuits when the stat cache already reflects the
// observed index mtime, which is what makes calling this for every entry
// in a tree affordable. Past the short-circuit, conflict-stage buffers
// are reloaded unconditionally; stage-0 buffers are only reloaded when
// they carry no user edits and no recorded blob hash, and a user-edited
// buffer whose recorded hash no longer matches the index gets a warning
// instead, since writing it would clobber the externally staged content.
//
// This never writes the stat cache; callers validate every relevant
// entry against one observed stat and then commit it with
// RefreshIndexStat.
func (e *FileEntry) ValidateStageBuffers(adapter Adapter, sc *cache.StatCache, opts ValidateOptions) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	st := opts.Stat
	if st == nil {
		var err error
		st, err = os.Stat(adapter.IndexPath())
		if err != nil {
			// No index, no staged state to validate.
			return
		}
	}

	if last, ok := sc.Get(adapter.Root()); ok && !last.Before(st.ModTime()) {
		return
	}

	if e.Layout == nil {
		return
	}

	for _, f := range e.Layout.Files() {
		if !f.Valid() || f.Rev == nil || !f.Rev.Staged() {
			continue
		}

		if f.Rev.Conflicted() {
			// Conflict-stage content is never edited in place; staleness
			// is resolved by reloading.
			f.DisposeBuffer()
			continue
		}

		modified := false
		name := f.Path
		if b := f.Buffer(); b != nil && b.Valid() {
			m, err := b.Modified()
			modified = err == nil && m
			name = b.Name()
		}

		switch {
		case modified && f.BlobHash != "":
			cur, ok := adapter.StageHash(f.Path, 0)
			if ok && cur != f.BlobHash {
				msg := fmt.Sprintf(
					"the index entry for %q changed while buffer %s has unsaved edits; writing the buffer would overwrite the staged changes",
					f.Path, name,
				)
				logger.Warn("staged buffer out of sync",
					zap.String("buffer", name),
					zap.String("path", f.Path),
				)
				if opts.Notify != nil {
					opts.Notify(msg)
				}
			}
		case !modified && f.BlobHash == "":
			// Nothing to compare against: reload from the current index.
			f.DisposeBuffer()
		}
	}
}

// RefreshIndexStat records the index's current modification time in the
// stat cache. It is the cache's only writer. The write is unconditional
// when a stat is present, so callers must validate first and refresh
// after.
func RefreshIndexStat(adapter Adapter, sc *cache.StatCache, st os.FileInfo) {
	if st == nil {
		var err error
		st, err = os.Stat(adapter.IndexPath())
		if err != nil {
			return
		}
	}
	sc.Put(adapter.Root(), st.ModTime())
}
