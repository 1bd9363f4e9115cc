package main

import (
	"bufio"
	"os"
	"path"
	"strings"
)

// IgnorePattern is one gitignore-style pattern.
type IgnorePattern struct {
	Pattern  string
	Negation bool
	DirOnly  bool
	Anchored bool // leading '/' or an inner '/': matched against the whole path
}

// ParseIgnorePattern parses a single line; ok is false for blanks and comments.
func ParseIgnorePattern(line string) (p IgnorePattern, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return IgnorePattern{}, false
	}
	if strings.HasPrefix(line, "!") {
		p.Negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.DirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		p.Anchored = true
	}
	p.Pattern = line
	return p, line != ""
}

// LoadIgnoreFile parses an ignore file; a missing file has no patterns.
func LoadIgnoreFile(name string) []IgnorePattern {
	f, err := os.Open(name)
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []IgnorePattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p, ok := ParseIgnorePattern(scanner.Text()); ok {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// IgnoreMatcher applies patterns in order; the last match wins.
type IgnoreMatcher struct {
	patterns []IgnorePattern
}

// NewIgnoreMatcher combines ignore file patterns with extra pattern lines.
func NewIgnoreMatcher(patterns []IgnorePattern, extra ...string) *IgnoreMatcher {
	m := &IgnoreMatcher{patterns: append([]IgnorePattern(nil), patterns...)}
	for _, line := range extra {
		if p, ok := ParseIgnorePattern(line); ok {
			m.patterns = append(m.patterns, p)
		}
	}
	return m
}

// Ignored reports whether the slash separated relative path is ignored.
func (m *IgnoreMatcher) Ignored(rel string, isDir bool) bool {
	if m == nil {
		return false
	}
	ignored := false
	for _, p := range m.patterns {
		if p.DirOnly && !isDir {
			continue
		}
		if p.matches(rel) {
			ignored = !p.Negation
		}
	}
	return ignored
}

func (p IgnorePattern) matches(rel string) bool {
	if p.Anchored {
		if ok, _ := path.Match(p.Pattern, rel); ok {
			return true
		}
		return strings.HasPrefix(rel, p.Pattern+"/")
	}

	// Unanchored: any single path segment may match.
	for _, seg := range strings.Split(rel, "/") {
		if ok, _ := path.Match(p.Pattern, seg); ok {
			return true
		}
	}
	return false
}
