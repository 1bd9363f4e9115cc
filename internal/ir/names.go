package ir

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/iVampireSP/hiltagg/internal/classname"
)

// ComponentTreeDepsSuffix is appended to every generated tree name.
const ComponentTreeDepsSuffix = "_ComponentTreeDeps"

// NameGenerator names the component tree generated for a root. With no
// OtherRootNames the root's own enclosed name is used; otherwise roots
// sharing a simple name get short, deterministic prefixes.
type NameGenerator struct {
	// DestinationPackage overrides the root's package when non-empty.
	DestinationPackage string
	// OtherRootNames are every root named into the same package.
	OtherRootNames []classname.ClassName

	simpleNames map[classname.ClassName]string
}

// Generate returns the tree name for root.
func (g *NameGenerator) Generate(root classname.ClassName) (classname.ClassName, error) {
	pkg := root.PackageName()
	if g.DestinationPackage != "" {
		pkg = g.DestinationPackage
	}

	simple := root.EnclosedName()
	if len(g.OtherRootNames) > 0 {
		if g.simpleNames == nil {
			g.simpleNames = disambiguate(g.OtherRootNames)
		}
		var ok bool
		if simple, ok = g.simpleNames[root]; !ok {
			return classname.ClassName{}, fmt.Errorf("root %s is not among the roots being named", root)
		}
	}
	return classname.Get(pkg, simple+ComponentTreeDepsSuffix), nil
}

// disambiguate maps each root to a simple name unique among roots.
func disambiguate(roots []classname.ClassName) map[classname.ClassName]string {
	unique := NewSet(roots...)

	groups := make(map[string][]classname.ClassName)
	for _, r := range unique {
		groups[r.EnclosedName()] = append(groups[r.EnclosedName()], r)
	}

	out := make(map[classname.ClassName]string, len(unique))
	for enclosed, conflicting := range groups {
		if len(conflicting) == 1 {
			out[conflicting[0]] = enclosed
			continue
		}

		// Set order is already by qualified name, which keeps prefixes stable
		// across processors that see the roots in different orders.
		used := make(map[string]bool)
		for _, r := range conflicting {
			base := prefixOf(r)
			name := base
			for n := 2; used[name]; n++ {
				name = base + strconv.Itoa(n)
			}
			used[name] = true
			out[r] = name + "_" + enclosed
		}
	}
	return out
}

// prefixOf uses the upper-case initials of the enclosing class when it looks
// like a class, and the first letter of each package segment otherwise.
func prefixOf(c classname.ClassName) string {
	if enclosing, ok := c.EnclosingClass(); ok {
		container := enclosing.EnclosedName()
		if container != "" && unicode.IsUpper([]rune(container)[0]) {
			return strings.Map(func(r rune) rune {
				if unicode.IsLower(r) {
					return -1
				}
				return r
			}, container)
		}
	}

	segments := strings.Split(c.String(), ".")
	var b strings.Builder
	for _, seg := range segments[:len(segments)-1] {
		b.WriteRune([]rune(seg)[0])
	}
	return b.String()
}
