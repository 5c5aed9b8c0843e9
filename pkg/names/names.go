// Package names implements the canonical hierarchical identifier used to
// match symbols against a configured API catalogue (spec.md section 3,
// "Name").
package names

import "strings"

// Name is an ordered sequence of string parts representing a
// canonicalized hierarchical identifier, e.g. ["std", "fs", "read"].
type Name struct {
	Parts []string
}

// New builds a Name from parts. The slice is copied so callers can reuse
// their backing array.
func New(parts []string) Name {
	cp := make([]string, len(parts))
	copy(cp, parts)
	return Name{Parts: cp}
}

func (n Name) String() string {
	return strings.Join(n.Parts, "::")
}

// First returns the first part and true, or "" and false if Name is empty.
func (n Name) First() (string, bool) {
	if len(n.Parts) == 0 {
		return "", false
	}
	return n.Parts[0], true
}

// Equal compares two names by their parts.
func (n Name) Equal(other Name) bool {
	if len(n.Parts) != len(other.Parts) {
		return false
	}
	for i := range n.Parts {
		if n.Parts[i] != other.Parts[i] {
			return false
		}
	}
	return true
}

// Iterator walks the growing prefixes of a decomposed name: for
// ["std","fs","read"] it yields ["std"], ["std","fs"],
// ["std","fs","read"] in turn. This mirrors spec.md section 4.6's "for
// each prefix that yields a non-empty API set" matching loop: the
// matcher bridge asks the checker about each prefix in turn rather than
// only the full name, because an API may be declared at any level of the
// hierarchy (e.g. "std::fs" matching any function under it).
type Iterator struct {
	parts []string
	next  int
}

// NewIterator builds an Iterator over parts.
func NewIterator(parts []string) *Iterator {
	return &Iterator{parts: parts}
}

// Next returns the next growing prefix and the Name built from exactly
// that prefix, and true, or (nil, Name{}, false) once all prefixes have
// been produced. The returned Name is what gets attributed as an
// ApiUsage's target name, so it intentionally mirrors the prefix, not
// the full decomposed symbol: an API declared at "std::fs" should be
// reported as usage of "std::fs", not of the longer symbol it happened
// to match against.
func (it *Iterator) Next() ([]string, Name, bool) {
	if it.next >= len(it.parts) {
		return nil, Name{}, false
	}
	it.next++
	prefix := it.parts[:it.next]
	return prefix, New(prefix), true
}

// Reset rewinds the iterator so it can be walked again.
func (it *Iterator) Reset() {
	it.next = 0
}
