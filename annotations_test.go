package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

func parseDoc(t *testing.T, src string) *ast.CommentGroup {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "marker.go", src, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	return f.Decls[0].(*ast.GenDecl).Doc
}

func TestParseDirectives(t *testing.T) {
	doc := parseDoc(t, `package markers

// AggregatedDeps_Foo installs FooModule.
//
//hilt:aggregatedDeps components=dagger.hilt.components.SingletonComponent modules=com.app.FooModule
//hilt:aggregatedRoot root=com.app.App rootAnnotation="dagger.hilt.android.HiltAndroidApp" allowsSharingComponent=false
//go:build ignore
type AggregatedDeps_Foo struct{}
`)
	directives, err := ParseDirectives(doc)
	if err != nil {
		t.Fatalf("ParseDirectives() error: %v", err)
	}
	if len(directives) != 2 {
		t.Fatalf("got %d directives, want 2: %+v", len(directives), directives)
	}
	if directives[0].Kind != "aggregatedDeps" || directives[0].Fields["modules"] != "com.app.FooModule" {
		t.Errorf("directives[0] = %+v", directives[0])
	}
	d := directives[1]
	if d.Fields["rootAnnotation"] != "dagger.hilt.android.HiltAndroidApp" || d.Fields["allowsSharingComponent"] != "false" || d.Fields["root"] != "com.app.App" {
		t.Errorf("directives[1] = %+v", d)
	}
}

func TestParseDirectives_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown kind":       "//hilt:bogus a=b",
		"missing value":      "//hilt:aggregatedRoot root",
		"unterminated":       `//hilt:aggregatedRoot root="com.app.App`,
		"duplicate field":    "//hilt:aggregatedRoot root=a.A root=b.B",
		"space before equal": "//hilt:aggregatedRoot root =a.A",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			doc := parseDoc(t, "package markers\n\n"+line+"\ntype X struct{}\n")
			if _, err := ParseDirectives(doc); err == nil {
				t.Errorf("ParseDirectives(%q) should fail", line)
			}
		})
	}
}

func TestParseDirectives_SkipsOptionsAndPlainComments(t *testing.T) {
	doc := parseDoc(t, "package markers\n\n// plain comment\n//hilt:option share-test-components=true\ntype X struct{}\n")
	directives, err := ParseDirectives(doc)
	if err != nil || len(directives) != 0 {
		t.Errorf("ParseDirectives() = %v, %v; want none", directives, err)
	}
	if got, err := ParseDirectives(nil); got != nil || err != nil {
		t.Errorf("ParseDirectives(nil) = %v, %v", got, err)
	}
}
