// Package classname models qualified identities of generated and user
// written declarations as a package plus a chain of nested simple names.
package classname

import (
	"fmt"
	"strings"
	"unicode"
)

// ClassName is a qualified name such as "com.example.Outer.Inner".
// The zero value means "no class". ClassName is comparable and may be used
// as a map key.
type ClassName struct {
	pkg   string
	names string // simple names joined by '.', outermost first
}

// Get returns the class pkg.simple[.nested...].
func Get(pkg, simple string, nested ...string) ClassName {
	return of(pkg, append([]string{simple}, nested...))
}

func of(pkg string, names []string) ClassName {
	return ClassName{pkg: pkg, names: strings.Join(names, ".")}
}

func (c ClassName) split() []string {
	if c.names == "" {
		return nil
	}
	return strings.Split(c.names, ".")
}

// Parse splits a qualified name into package and simple names.
// The first dotted segment that starts with an upper-case letter begins the
// class names; if none does, the last segment is taken as the class.
func Parse(s string) (ClassName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClassName{}, nil
	}
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return ClassName{}, fmt.Errorf("invalid class name %q", s)
		}
	}

	split := len(parts) - 1
	for i, p := range parts {
		if unicode.IsUpper([]rune(p)[0]) {
			split = i
			break
		}
	}
	return of(strings.Join(parts[:split], "."), parts[split:]), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) ClassName {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero reports whether c is the zero ClassName.
func (c ClassName) IsZero() bool {
	return c.names == ""
}

// PackageName returns the package part, possibly empty.
func (c ClassName) PackageName() string {
	return c.pkg
}

// SimpleName returns the innermost simple name.
func (c ClassName) SimpleName() string {
	names := c.split()
	if len(names) == 0 {
		return ""
	}
	return names[len(names)-1]
}

// SimpleNames returns a copy of all simple names, outermost first.
func (c ClassName) SimpleNames() []string {
	return c.split()
}

// EnclosedName joins the simple names with underscores: Outer.Inner → Outer_Inner.
func (c ClassName) EnclosedName() string {
	return strings.ReplaceAll(c.names, ".", "_")
}

// EnclosingClass returns the class that directly encloses c, and false when
// c is a top-level class.
func (c ClassName) EnclosingClass() (ClassName, bool) {
	names := c.split()
	if len(names) < 2 {
		return ClassName{}, false
	}
	return of(c.pkg, names[:len(names)-1]), true
}

// PeerClass returns a class with the given simple name enclosed by the same
// class (or living in the same package) as c.
func (c ClassName) PeerClass(name string) ClassName {
	names := c.split()
	if len(names) == 0 {
		return Get(c.pkg, name)
	}
	names[len(names)-1] = name
	return of(c.pkg, names)
}

// String returns the dotted qualified name.
func (c ClassName) String() string {
	if c.IsZero() {
		return ""
	}
	if c.pkg == "" {
		return c.names
	}
	return c.pkg + "." + c.names
}

// Compare orders classes by their qualified string form.
func Compare(a, b ClassName) int {
	return strings.Compare(a.String(), b.String())
}

// MarshalText implements encoding.TextMarshaler.
func (c ClassName) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClassName) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
