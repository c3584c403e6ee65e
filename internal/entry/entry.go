package entry

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/tarkah/diffview/internal/rev"
)

// Adapter is the VCS collaborator contract the core needs: repository
// paths and the blob hash of staged content.
type Adapter interface {
	// Root returns the repository's top-level working directory.
	Root() string

	// IndexPath returns the on-disk path of the staging index.
	IndexPath() string

	// StageHash returns the blob hash recorded in the index for path at
	// the given stage; ok is false when the hash is unavailable.
	StageHash(path string, stage int) (string, bool)
}

// Stats summarizes the line changes of an entry.
type Stats struct {
	Additions int
	Deletions int
	Conflicts int
}

// Options configures FileEntry construction.
type Options struct {
	Adapter Adapter

	// Path is the repository-relative, slash-separated file path.
	Path string

	// OldPath is set only when the entry represents a rename.
	OldPath string

	Revs   RevMap
	Layout Layout
	Status string
	Stats  Stats
	Kind   FileKind
	Commit string

	// Nulled, when non-nil, overrides the layout kind's null-decision
	// rule for every handle WithLayout builds.
	Nulled *bool

	// Producer is attached to every handle WithLayout builds.
	Producer Producer
}

// FileEntry represents one logical path across all of its diffed
// revisions. It owns the layout and every handle reachable through it.
type FileEntry struct {
	Path    string
	OldPath string

	// Derived from Path and the repository root at construction; never
	// recomputed.
	AbsolutePath string
	ParentPath   string
	BaseName     string
	Extension    string

	Revs   RevMap
	Layout Layout
	Status string
	Stats  Stats
	Kind   FileKind
	Commit string
	Active bool
}

// New constructs an entry around an already-built layout. All derived
// path fields are computed here, relative to the adapter's repository
// root. Construction is all-or-nothing.
func New(opt Options) (*FileEntry, error) {
	if opt.Path == "" {
		return nil, fmt.Errorf("file entry requires a path")
	}
	if path.IsAbs(opt.Path) || filepath.IsAbs(opt.Path) {
		return nil, fmt.Errorf("file entry path must be repository-relative: %s", opt.Path)
	}
	if opt.Adapter == nil {
		return nil, fmt.Errorf("file entry requires an adapter")
	}

	parent := path.Dir(opt.Path)
	if parent == "." {
		parent = ""
	}

	base := path.Base(opt.Path)

	return &FileEntry{
		Path:         opt.Path,
		OldPath:      opt.OldPath,
		AbsolutePath: filepath.Join(opt.Adapter.Root(), filepath.FromSlash(opt.Path)),
		ParentPath:   parent,
		BaseName:     base,
		Extension:    strings.TrimPrefix(path.Ext(base), "."),
		Revs:         opt.Revs,
		Layout:       opt.Layout,
		Status:       opt.Status,
		Stats:        opt.Stats,
		Kind:         opt.Kind,
		Commit:       opt.Commit,
	}, nil
}

// WithLayout is the one-shot constructor: it builds a handle for every
// slot the layout kind arranges, using opt.Nulled when set and the kind's
// null-decision rule otherwise, then constructs the entry around them.
func WithLayout(kind LayoutKind, opt Options) (*FileEntry, error) {
	files := make(map[Slot]*File)
	for _, s := range kind.Slots() {
		r := opt.Revs.Slot(s)
		nulled := shouldNull(kind, r, opt.Status, s)
		if opt.Nulled != nil {
			nulled = *opt.Nulled
		}
		files[s] = NewFile(FileOptions{
			Path:     opt.Path,
			Kind:     opt.Kind,
			Commit:   opt.Commit,
			Rev:      r,
			Nulled:   nulled,
			Producer: opt.Producer,
		})
	}

	opt.Layout = newLayout(kind, files)
	return New(opt)
}

// Destroy tears down every contained handle in slot order, then the
// layout container. Must be called exactly once.
func (e *FileEntry) Destroy() {
	if e.Layout == nil {
		return
	}
	for _, f := range e.Layout.Files() {
		f.Destroy()
	}
	e.Layout.Destroy()
}

// SetActive flags the entry as the one currently shown and propagates
// the flag to every contained handle.
func (e *FileEntry) SetActive(v bool) {
	e.Active = v
	if e.Layout == nil {
		return
	}
	for _, f := range e.Layout.Files() {
		f.SetActive(v)
	}
}

// UpdateHeads swaps newHead into every slot and handle whose revision
// tracks the branch head, disposing affected buffers first so they
// reload under the new revision.
func (e *FileEntry) UpdateHeads(newHead rev.Rev) {
	if e.Layout != nil {
		for _, f := range e.Layout.Files() {
			if f.Rev != nil && f.Rev.TracksHead {
				f.DisposeBuffer()
				r := newHead
				f.Rev = &r
			}
		}
	}

	for _, s := range slotOrder {
		if r := e.Revs.Slot(s); r != nil && r.TracksHead {
			nr := newHead
			e.Revs.Set(s, &nr)
		}
	}
}

// ConvertLayout rebuilds the layout as the target kind. Any live handle
// whose slot keeps the same revision is carried over with its identity
// intact; every other slot gets a fresh handle inheriting the first
// producer found in the old layout (slot order a,b,c,d) and a nulled
// flag from the target kind's rule, with rule failures meaning
// "not null".
//
// Handles arranged only by the old layout are dropped without being
// destroyed: they may still be displayed elsewhere. Callers converting
// anything other than a widen/narrow between the two layouts of the same
// entry own that cleanup.
func (e *FileEntry) ConvertLayout(target LayoutKind) {
	old := e.Layout
	producer := inheritedProducer(old)

	files := make(map[Slot]*File)
	for _, s := range target.Slots() {
		r := e.Revs.Slot(s)

		if old != nil {
			if cur := old.File(s); cur.Valid() && sameRev(cur.Rev, r) {
				files[s] = cur
				continue
			}
		}

		f := NewFile(FileOptions{
			Path:     e.Path,
			Kind:     e.Kind,
			Commit:   e.Commit,
			Rev:      r,
			Nulled:   shouldNull(target, r, e.Status, s),
			Producer: producer,
		})
		f.Active = e.Active
		files[s] = f
	}

	e.Layout = newLayout(target, files)
}

func inheritedProducer(l Layout) Producer {
	if l == nil {
		return nil
	}
	for _, f := range l.Files() {
		if f.Producer != nil {
			return f.Producer
		}
	}
	return nil
}

func sameRev(a, b *rev.Rev) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
