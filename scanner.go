package main

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/iVampireSP/hiltagg/internal/classname"
	"github.com/iVampireSP/hiltagg/internal/metadata"
	"golang.org/x/tools/go/packages"
)

// Scanner collects records from //hilt: marker declarations in Go packages:
//
//	//hilt:aggregatedRoot root=com.app.App rootAnnotation=dagger.hilt.android.HiltAndroidApp
//	type AggregatedRoot_App struct{}
//
// A marker's fqName defaults to <package path>.<type name>.
type Scanner struct {
	cfg    *Config
	ignore *IgnoreMatcher
}

// NewScanner creates a scanner.
func NewScanner(cfg *Config, ignore *IgnoreMatcher) *Scanner {
	return &Scanner{cfg: cfg, ignore: ignore}
}

// Scan loads the configured packages and adds their markers to set.
// It returns the number of markers found.
func (s *Scanner) Scan(set *metadata.Set) (int, error) {
	if len(s.cfg.Packages) == 0 {
		return 0, nil
	}

	pkgCfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:  s.cfg.Root,
	}
	pkgs, err := packages.Load(pkgCfg, s.cfg.Packages...)
	if err != nil {
		return 0, fmt.Errorf("load packages: %w", err)
	}

	var loadErrs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	}
	if len(loadErrs) > 0 {
		return 0, fmt.Errorf("package errors:\n  %s", strings.Join(loadErrs, "\n  "))
	}

	var (
		found int
		errs  []error
	)
	for _, pkg := range pkgs {
		if s.shouldExclude(pkg) {
			continue
		}
		n, err := s.extractMarkers(set, pkg)
		found += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return found, errors.Join(errs...)
}

// shouldExclude checks the package directory against the ignore patterns.
func (s *Scanner) shouldExclude(pkg *packages.Package) bool {
	if len(pkg.GoFiles) == 0 {
		return true
	}
	rel, err := filepath.Rel(s.cfg.Root, filepath.Dir(pkg.GoFiles[0]))
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	return s.ignore.Ignored(filepath.ToSlash(rel), true)
}

func (s *Scanner) extractMarkers(set *metadata.Set, pkg *packages.Package) (int, error) {
	var (
		found int
		errs  []error
	)
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}

				pos := pkg.Fset.Position(ts.Pos())
				directives, err := ParseDirectives(doc)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", pos, err))
					continue
				}
				for _, d := range directives {
					if err := s.addMarker(set, pkg.PkgPath, ts.Name.Name, d); err != nil {
						errs = append(errs, fmt.Errorf("%s: %w", pos, err))
						continue
					}
					found++
				}
			}
		}
	}
	return found, errors.Join(errs...)
}

func (s *Scanner) addMarker(set *metadata.Set, pkgPath, typeName string, d Directive) error {
	doc, err := metadata.DocFromFields(d.Kind, d.Fields)
	if err != nil {
		return err
	}
	if doc.FQName.IsZero() {
		doc.FQName = classname.Get(pkgPath, typeName)
	}
	return set.Add(doc)
}
