package rev

import "testing"

func TestObject(t *testing.T) {
	tests := []struct {
		name     string
		rev      Rev
		expected string
	}{
		{"local", NewLocal(), "LOCAL"},
		{"commit", NewCommit("0123456789abcdef0123456789abcdef01234567"), "0123456789abcdef0123456789abcdef01234567"},
		{"stage zero", NewStage(0), ":0"},
		{"stage two", NewStage(2), ":2"},
		{"custom", NewCustom(), "CUSTOM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rev.Object(); got != tt.expected {
				t.Errorf("Object() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestAbbrev(t *testing.T) {
	r := NewCommit("0123456789abcdef0123456789abcdef01234567")
	if got := r.Abbrev(8); got != "01234567" {
		t.Errorf("Abbrev(8) = %q, expected %q", got, "01234567")
	}

	// Non-commit revisions are never truncated.
	if got := NewStage(1).Abbrev(1); got != ":1" {
		t.Errorf("Abbrev(1) on stage rev = %q, expected %q", got, ":1")
	}

	// n beyond the hash length returns the full hash.
	short := NewCommit("abc")
	if got := short.Abbrev(8); got != "abc" {
		t.Errorf("Abbrev(8) on short hash = %q, expected %q", got, "abc")
	}
}

func TestTracksHead(t *testing.T) {
	if NewCommit("abc").TracksHead {
		t.Error("NewCommit should not track head")
	}
	if !NewHead("abc").TracksHead {
		t.Error("NewHead should track head")
	}
}

func TestStagedAndConflicted(t *testing.T) {
	if !NewStage(0).Staged() || NewStage(0).Conflicted() {
		t.Error("stage 0 should be staged but not conflicted")
	}
	if !NewStage(3).Conflicted() {
		t.Error("stage 3 should be conflicted")
	}
	if NewLocal().Staged() {
		t.Error("local rev should not be staged")
	}
}
