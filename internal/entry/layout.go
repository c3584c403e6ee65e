package entry

import (
	"fmt"

	"github.com/tarkah/diffview/internal/rev"
)

// Slot names one of the four layout positions.
type Slot int

// Layout slots. In a two-way layout a and b are the old and new side; in
// a merge layout a=base, b=ours, c=theirs, d=worktree.
const (
	SlotA Slot = iota
	SlotB
	SlotC
	SlotD
)

var slotOrder = [...]Slot{SlotA, SlotB, SlotC, SlotD}

func (s Slot) String() string {
	switch s {
	case SlotA:
		return "a"
	case SlotB:
		return "b"
	case SlotC:
		return "c"
	case SlotD:
		return "d"
	}
	return "?"
}

// LayoutKind discriminates the two layout variants.
type LayoutKind int

// Layout kinds.
const (
	KindTwoWay  LayoutKind = iota // side-by-side diff of two revisions
	KindFourWay                   // merge view: base, ours, theirs, worktree
)

// Slots returns the slots a layout kind arranges, in order.
func (k LayoutKind) Slots() []Slot {
	if k == KindTwoWay {
		return []Slot{SlotA, SlotB}
	}
	return []Slot{SlotA, SlotB, SlotC, SlotD}
}

// RevMap holds the revision for each layout slot. Absent slots are nil.
type RevMap struct {
	A, B, C, D *rev.Rev
}

// Slot returns the revision at a slot.
func (m *RevMap) Slot(s Slot) *rev.Rev {
	switch s {
	case SlotA:
		return m.A
	case SlotB:
		return m.B
	case SlotC:
		return m.C
	case SlotD:
		return m.D
	}
	return nil
}

// Set replaces the revision at a slot.
func (m *RevMap) Set(s Slot, r *rev.Rev) {
	switch s {
	case SlotA:
		m.A = r
	case SlotB:
		m.B = r
	case SlotC:
		m.C = r
	case SlotD:
		m.D = r
	}
}

// Layout arranges up to four file handles for display.
type Layout interface {
	Kind() LayoutKind

	// Files enumerates the contained handles in slot order a,b,c,d.
	Files() []*File

	// File returns the handle at a slot, or nil if the layout does not
	// arrange that slot.
	File(Slot) *File

	// Destroy tears down the layout container. Contained handles are the
	// owner's responsibility and are destroyed first.
	Destroy()

	// Destroyed reports whether Destroy has run.
	Destroyed() bool
}

// NullRule decides whether a slot should render as an empty buffer for a
// given revision and status code.
type NullRule func(r *rev.Rev, status string, slot Slot) (bool, error)

// RuleFor returns the null-decision rule of a layout kind.
func RuleFor(k LayoutKind) NullRule {
	if k == KindTwoWay {
		return twoWayNull
	}
	return fourWayNull
}

// shouldNull applies the target kind's rule, treating any failure as
// "not null".
func shouldNull(k LayoutKind, r *rev.Rev, status string, slot Slot) bool {
	null, err := RuleFor(k)(r, status, slot)
	if err != nil {
		return false
	}
	return null
}

func twoWayNull(r *rev.Rev, status string, slot Slot) (bool, error) {
	switch slot {
	case SlotA:
		// Added and untracked files have no old side.
		return r == nil || status == "A" || status == "?", nil
	case SlotB:
		// Deleted files have no new side.
		return r == nil || status == "D", nil
	default:
		return false, fmt.Errorf("two-way layout has no slot %s", slot)
	}
}

func fourWayNull(r *rev.Rev, status string, slot Slot) (bool, error) {
	if slot < SlotA || slot > SlotD {
		return false, fmt.Errorf("invalid slot %d", slot)
	}
	// A conflict side missing from the index (e.g. added by only one
	// branch) has no content to show.
	return r == nil, nil
}

// TwoWay lays out the two sides of an ordinary diff.
type TwoWay struct {
	a, b      *File
	destroyed bool
}

// NewTwoWay creates a two-way layout over the given handles.
func NewTwoWay(a, b *File) *TwoWay {
	return &TwoWay{a: a, b: b}
}

func (l *TwoWay) Kind() LayoutKind { return KindTwoWay }

func (l *TwoWay) File(s Slot) *File {
	switch s {
	case SlotA:
		return l.a
	case SlotB:
		return l.b
	}
	return nil
}

func (l *TwoWay) Files() []*File {
	return collect(l.a, l.b)
}

func (l *TwoWay) Destroy()        { l.destroyed = true }
func (l *TwoWay) Destroyed() bool { return l.destroyed }

// FourWay lays out a merge conflict: base, ours, theirs, and the
// worktree file carrying the conflict markers.
type FourWay struct {
	a, b, c, d *File
	destroyed  bool
}

// NewFourWay creates a merge layout over the given handles.
func NewFourWay(a, b, c, d *File) *FourWay {
	return &FourWay{a: a, b: b, c: c, d: d}
}

func (l *FourWay) Kind() LayoutKind { return KindFourWay }

func (l *FourWay) File(s Slot) *File {
	switch s {
	case SlotA:
		return l.a
	case SlotB:
		return l.b
	case SlotC:
		return l.c
	case SlotD:
		return l.d
	}
	return nil
}

func (l *FourWay) Files() []*File {
	return collect(l.a, l.b, l.c, l.d)
}

func (l *FourWay) Destroy()        { l.destroyed = true }
func (l *FourWay) Destroyed() bool { return l.destroyed }

// newLayout builds a layout of the given kind from per-slot handles.
func newLayout(k LayoutKind, files map[Slot]*File) Layout {
	if k == KindTwoWay {
		return NewTwoWay(files[SlotA], files[SlotB])
	}
	return NewFourWay(files[SlotA], files[SlotB], files[SlotC], files[SlotD])
}

func collect(files ...*File) []*File {
	out := make([]*File, 0, len(files))
	for _, f := range files {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}
