// Package buffer defines the editable buffer contract the file entry core
// drives, plus an in-memory implementation.
package buffer

// Buffer is the editor-side collaborator backing a per-revision file
// handle. The core only uses its lifecycle: validity, disposal, and the
// user-modified query.
type Buffer interface {
	// Name returns the display name used in user-facing warnings.
	Name() string

	// Modified reports whether the user has edited the buffer since it
	// was last synchronized.
	Modified() (bool, error)

	// Valid reports whether the buffer still exists in the editor.
	Valid() bool

	// Dispose unloads the buffer so the next access reloads content.
	// Disposing an already-disposed buffer is a no-op.
	Dispose() error
}

// Memory is an in-process Buffer used by tests and non-editor hosts.
type Memory struct {
	name     string
	lines    []string
	modified bool
	disposed bool
}

// NewMemory creates an in-memory buffer with the given display name.
func NewMemory(name string, lines []string) *Memory {
	return &Memory{name: name, lines: lines}
}

// Name returns the buffer's display name.
func (b *Memory) Name() string { return b.name }

// Lines returns the buffer content.
func (b *Memory) Lines() []string { return b.lines }

// SetModified marks or clears the user-modified flag.
func (b *Memory) SetModified(v bool) { b.modified = v }

// Modified reports the user-modified flag.
func (b *Memory) Modified() (bool, error) { return b.modified, nil }

// Valid reports whether the buffer has not been disposed.
func (b *Memory) Valid() bool { return !b.disposed }

// Dispose drops the buffer content.
func (b *Memory) Dispose() error {
	b.disposed = true
	b.lines = nil
	b.modified = false
	return nil
}
