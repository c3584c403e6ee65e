package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tarkah/diffview/internal/entry"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diffview.yml")
	content := `
default_layout: merge
include:
  - "src/**"
exclude:
  - "**/*_gen.go"
watch:
  enabled: false
  debounce_ms: 500
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LayoutKind() != entry.KindFourWay {
		t.Errorf("LayoutKind = %v, expected four-way", cfg.LayoutKind())
	}
	if cfg.Watch.Enabled {
		t.Error("watch should be disabled")
	}
	if cfg.Watch.DebounceMs != 500 {
		t.Errorf("debounce = %d, expected 500", cfg.Watch.DebounceMs)
	}
}

func TestLoadRejectsUnknownLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diffview.yml")
	if err := os.WriteFile(path, []byte("default_layout: diagonal\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.LayoutKind() != entry.KindTwoWay {
		t.Errorf("default layout = %v, expected two-way", cfg.LayoutKind())
	}
	if !cfg.Watch.Enabled {
		t.Error("watch should default to enabled")
	}
}

func TestMatchPath(t *testing.T) {
	cfg := &Config{
		Include: []string{"src/**", "docs/*.md"},
		Exclude: []string{"src/vendor/**"},
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"src/main.go", true},
		{"src/a/b/c.go", true},
		{"src/vendor/dep/x.go", false},
		{"docs/guide.md", true},
		{"docs/sub/guide.md", false},
		{"other.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := cfg.MatchPath(tt.path); got != tt.expected {
				t.Errorf("MatchPath(%s) = %v, expected %v", tt.path, got, tt.expected)
			}
		})
	}

	// No include patterns means everything passes the include side.
	open := &Config{Exclude: []string{"*.tmp"}}
	if !open.MatchPath("anything.go") {
		t.Error("empty include should match all paths")
	}
	if open.MatchPath("junk.tmp") {
		t.Error("exclude should still apply with empty include")
	}
}
