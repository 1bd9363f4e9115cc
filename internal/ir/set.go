package ir

import (
	"slices"

	"github.com/iVampireSP/hiltagg/internal/classname"
)

// Set is a sorted, duplicate free list of class names. The zero value is
// the empty set.
type Set []classname.ClassName

// NewSet returns the set of the given names.
func NewSet(names ...classname.ClassName) Set {
	s := slices.Clone(names)
	slices.SortFunc(s, classname.Compare)
	return Set(slices.Compact(s))
}

// Contains reports whether name is in s.
func (s Set) Contains(name classname.ClassName) bool {
	_, ok := slices.BinarySearchFunc(s, name, classname.Compare)
	return ok
}

// Strings returns the qualified names in order.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, n := range s {
		out[i] = n.String()
	}
	return out
}

// Equal reports whether s and o hold the same names.
func (s Set) Equal(o Set) bool {
	return slices.Equal(s, o)
}

func fqNames[T any](records []T, fq func(T) classname.ClassName) Set {
	names := make([]classname.ClassName, 0, len(records))
	for _, r := range records {
		names = append(names, fq(r))
	}
	return NewSet(names...)
}
