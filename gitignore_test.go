package main

import (
	"path/filepath"
	"testing"
)

func TestIgnoreMatcher(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, ".gitignore", "# build output\nbuild/\n*.tmp\n/vendor\nlegacy/markers\n!keep.tmp\n")
	m := NewIgnoreMatcher(LoadIgnoreFile(filepath.Join(dir, ".gitignore")), "stale")

	tests := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{rel: "build", isDir: true, want: true},
		{rel: "build", isDir: false, want: false},
		{rel: "a/build", isDir: true, want: true},
		{rel: "x.tmp", want: true},
		{rel: "a/keep.tmp", want: false},
		{rel: "vendor", isDir: true, want: true},
		{rel: "vendor/x", isDir: true, want: true},
		{rel: "a/vendor", isDir: true, want: false},
		{rel: "legacy/markers/sub", isDir: true, want: true},
		{rel: "internal/stale", isDir: true, want: true},
		{rel: "internal/hilt", isDir: true, want: false},
	}
	for _, tt := range tests {
		if got := m.Ignored(tt.rel, tt.isDir); got != tt.want {
			t.Errorf("Ignored(%q, %v) = %v, want %v", tt.rel, tt.isDir, got, tt.want)
		}
	}

	var nilMatcher *IgnoreMatcher
	if nilMatcher.Ignored("build", true) {
		t.Error("nil matcher ignores paths")
	}
	if LoadIgnoreFile(filepath.Join(dir, "missing")) != nil {
		t.Error("missing ignore file has patterns")
	}
}
