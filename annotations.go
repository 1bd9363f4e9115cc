package main

import (
	"fmt"
	"go/ast"
	"slices"
	"strings"

	"github.com/iVampireSP/hiltagg/internal/metadata"
)

// DirectivePrefix starts every marker directive.
const DirectivePrefix = "hilt:"

// Directive is a parsed //hilt:<kind> key=value ... comment.
type Directive struct {
	Kind   string // one of metadata.Kinds
	Fields map[string]string
}

// ParseDirectives extracts marker directives from a declaration's doc
// comment. Values may be double quoted; lists are comma separated.
func ParseDirectives(doc *ast.CommentGroup) ([]Directive, error) {
	if doc == nil {
		return nil, nil
	}

	var directives []Directive
	for _, comment := range doc.List {
		text := strings.TrimPrefix(comment.Text, "//")
		if !strings.HasPrefix(text, DirectivePrefix) {
			continue
		}
		text = strings.TrimPrefix(text, DirectivePrefix)

		kind, rest, _ := strings.Cut(text, " ")
		kind = strings.TrimSpace(kind)
		if kind == "option" {
			continue // generate.go options, see parseGenerateFile
		}
		if !slices.Contains(metadata.Kinds, kind) {
			return nil, fmt.Errorf("unknown directive //%s%s", DirectivePrefix, kind)
		}

		fields, err := parseFields(rest)
		if err != nil {
			return nil, fmt.Errorf("//%s%s: %w", DirectivePrefix, kind, err)
		}
		directives = append(directives, Directive{Kind: kind, Fields: fields})
	}
	return directives, nil
}

// parseFields splits `a=b c="d e"` into a map.
func parseFields(s string) (map[string]string, error) {
	fields := make(map[string]string)
	for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("malformed field %q, want key=value", s)
		}
		key := s[:eq]
		if strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("malformed field %q, want key=value", key)
		}
		s = s[eq+1:]

		var value string
		if strings.HasPrefix(s, `"`) {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote in %s", key)
			}
			value = s[1 : 1+end]
			s = s[end+2:]
		} else {
			value, s, _ = strings.Cut(s, " ")
		}

		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate field %s", key)
		}
		fields[key] = value
	}
	return fields, nil
}
