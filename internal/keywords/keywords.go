// Package keywords compares chart keyword lists as sets.
//
// Two notions of equality are used: the keyword sync compares exact strings,
// while the metadata validator compares lower-cased, whitespace-trimmed
// values. Order and duplicates never matter.
package keywords

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Exact returns the set of keywords as written.
func Exact(list []string) sets.Set[string] {
	return sets.New(list...)
}

// Normalized returns the set of lower-cased, trimmed keywords.
func Normalized(list []string) sets.Set[string] {
	s := sets.New[string]()
	for _, k := range list {
		s.Insert(Normalize(k))
	}

	return s
}

// Normalize lower-cases and trims a single keyword.
func Normalize(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// Equal reports whether a and b hold the same exact strings.
func Equal(a, b []string) bool {
	return Exact(a).Equal(Exact(b))
}

// EqualNormalized reports whether a and b hold the same keywords after
// normalization.
func EqualNormalized(a, b []string) bool {
	return Normalized(a).Equal(Normalized(b))
}

// Delta describes how to get from one keyword set to another.
type Delta struct {
	Added   []string
	Removed []string
}

// Empty reports whether the delta has no changes.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff returns the exact-string keywords that desired adds to and removes
// from current, each sorted.
func Diff(current, desired []string) Delta {
	cur, want := Exact(current), Exact(desired)

	return Delta{
		Added:   sets.List(want.Difference(cur)),
		Removed: sets.List(cur.Difference(want)),
	}
}

// Sorted returns the members of s in lexical order.
func Sorted(s sets.Set[string]) []string {
	return sets.List(s)
}

// Format renders a keyword list as "[a, b]".
func Format(list []string) string {
	return "[" + strings.Join(list, ", ") + "]"
}
