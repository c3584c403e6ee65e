// Package entry implements the diffed file entry core: per-revision file
// handles, the two layout variants, and stage-buffer validation.
package entry

import (
	"github.com/tarkah/diffview/internal/buffer"
	"github.com/tarkah/diffview/internal/rev"
)

// FileKind classifies what a file entry points at.
type FileKind int

// File kinds.
const (
	Working     FileKind = iota // tracked path in a working-tree comparison
	Conflicting                 // merge-conflict participant
	Stash                       // stash pseudo entry, not backed by a path
)

// Producer overrides how a file handle obtains its content, bypassing the
// default blob lookup.
type Producer func(kind FileKind, path string, r *rev.Rev) ([]string, error)

// FileOptions configures a new per-revision file handle.
type FileOptions struct {
	Path     string
	Kind     FileKind
	Commit   string
	Rev      *rev.Rev
	Nulled   bool
	Producer Producer
}

// File owns the lazily-loaded content and backing buffer for one
// (path, revision) pair.
type File struct {
	Path   string
	Kind   FileKind
	Commit string

	// Rev is the content source. Swapped in place only by head tracking.
	Rev *rev.Rev

	// BlobHash is the blob hash the buffer content was last loaded from,
	// recorded by whoever fills the buffer. Empty means unknown.
	BlobHash string

	// Nulled marks a slot that renders as an empty buffer.
	Nulled bool

	Active   bool
	Producer Producer

	buf       buffer.Buffer
	destroyed bool
}

// NewFile creates a file handle. The buffer is attached later, when
// content is first loaded.
func NewFile(opt FileOptions) *File {
	return &File{
		Path:     opt.Path,
		Kind:     opt.Kind,
		Commit:   opt.Commit,
		Rev:      opt.Rev,
		Nulled:   opt.Nulled,
		Producer: opt.Producer,
	}
}

// Valid reports whether the handle has not been destroyed.
func (f *File) Valid() bool {
	return f != nil && !f.destroyed
}

// Buffer returns the attached buffer, or nil.
func (f *File) Buffer() buffer.Buffer {
	return f.buf
}

// AttachBuffer binds a loaded buffer to the handle.
func (f *File) AttachBuffer(b buffer.Buffer) {
	f.buf = b
}

// DisposeBuffer drops the backing buffer so the next access reloads
// content. Safe to call with no buffer attached.
func (f *File) DisposeBuffer() {
	if f.buf == nil {
		return
	}
	if f.buf.Valid() {
		_ = f.buf.Dispose()
	}
	f.buf = nil
}

// SetActive flags whether this handle belongs to the currently shown
// entry.
func (f *File) SetActive(v bool) {
	f.Active = v
}

// Destroy tears down the handle and its buffer. The handle is invalid
// afterwards.
func (f *File) Destroy() {
	f.DisposeBuffer()
	f.destroyed = true
}
