package main

import (
	"fmt"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/tarkah/diffview/internal/buffer"
	"github.com/tarkah/diffview/internal/entry"
	"github.com/tarkah/diffview/internal/rev"
)

type stubAdapter struct {
	root string
}

func (a *stubAdapter) Root() string                     { return a.root }
func (a *stubAdapter) IndexPath() string                { return filepath.Join(a.root, ".git", "index") }
func (a *stubAdapter) StageHash(string, int) (string, bool) { return "", false }

type fakeOpener struct {
	opened []string
	fail   bool
}

func (o *fakeOpener) Open(path string) (buffer.Buffer, error) {
	if o.fail {
		return nil, fmt.Errorf("no editor")
	}
	o.opened = append(o.opened, path)
	return buffer.NewMemory(path, nil), nil
}

func (o *fakeOpener) Close() error { return nil }

func stagedTestEntry(t *testing.T, adapter entry.Adapter) *entry.FileEntry {
	t.Helper()
	stage0 := rev.NewStage(0)
	stage2 := rev.NewStage(2)
	e, err := entry.WithLayout(entry.KindTwoWay, entry.Options{
		Adapter: adapter,
		Path:    "file.go",
		Revs:    entry.RevMap{A: &stage0, B: &stage2},
		Status:  "M",
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestAttachEditorBuffersAttachesToStagedHandles(t *testing.T) {
	adapter := &stubAdapter{root: t.TempDir()}
	e := stagedTestEntry(t, adapter)

	opener := &fakeOpener{}
	attachEditorBuffers(opener, adapter.Root(), []*entry.FileEntry{e}, zap.NewNop())

	if len(opener.opened) != 2 {
		t.Fatalf("opened %d buffers, expected 2", len(opener.opened))
	}
	want := filepath.Join(adapter.Root(), "file.go")
	if opener.opened[0] != want {
		t.Errorf("opened %q, expected %q", opener.opened[0], want)
	}
	for _, s := range []entry.Slot{entry.SlotA, entry.SlotB} {
		if e.Layout.File(s).Buffer() == nil {
			t.Errorf("slot %s has no buffer after attach", s)
		}
	}
}

func TestAttachEditorBuffersSkipsAttachedAndUnstaged(t *testing.T) {
	adapter := &stubAdapter{root: t.TempDir()}

	head := rev.NewHead("a1b2c3")
	local := rev.NewLocal()
	plain, err := entry.WithLayout(entry.KindTwoWay, entry.Options{
		Adapter: adapter,
		Path:    "plain.go",
		Revs:    entry.RevMap{A: &head, B: &local},
		Status:  "M",
	})
	if err != nil {
		t.Fatal(err)
	}

	staged := stagedTestEntry(t, adapter)
	existing := buffer.NewMemory("already", nil)
	staged.Layout.File(entry.SlotA).AttachBuffer(existing)

	opener := &fakeOpener{}
	attachEditorBuffers(opener, adapter.Root(), []*entry.FileEntry{plain, staged}, zap.NewNop())

	// Only the bare staged handle gets a fresh buffer.
	if len(opener.opened) != 1 {
		t.Fatalf("opened %d buffers, expected 1", len(opener.opened))
	}
	if got := staged.Layout.File(entry.SlotA).Buffer(); got != buffer.Buffer(existing) {
		t.Error("attach replaced an already-attached buffer")
	}
	for _, s := range []entry.Slot{entry.SlotA, entry.SlotB} {
		if plain.Layout.File(s).Buffer() != nil {
			t.Errorf("unstaged slot %s got a buffer", s)
		}
	}
}

func TestAttachEditorBuffersToleratesOpenFailure(t *testing.T) {
	adapter := &stubAdapter{root: t.TempDir()}
	e := stagedTestEntry(t, adapter)

	attachEditorBuffers(&fakeOpener{fail: true}, adapter.Root(), []*entry.FileEntry{e}, zap.NewNop())

	for _, s := range []entry.Slot{entry.SlotA, entry.SlotB} {
		if e.Layout.File(s).Buffer() != nil {
			t.Errorf("slot %s got a buffer despite open failure", s)
		}
	}
}
