// Package demangle decomposes a raw symbol name into hierarchical name
// parts. Real demangling (Itanium C++, Rust v0/legacy, ...) is explicitly
// out of scope for this engine (see spec.md section 1): we assume a
// demangler exists upstream and only need the shape of its output, a
// slice of hierarchical parts such as ["std", "fs", "read"].
package demangle

import "strings"

// Demangler turns a raw (possibly mangled) symbol name into an ordered
// list of hierarchical name parts.
type Demangler interface {
	// Decompose returns the name parts for raw, or an error if raw isn't
	// a name this demangler understands.
	Decompose(raw []byte) ([]string, error)
}

// Basic is a stand-in demangler that treats its input as already
// hierarchical text delimited by "::", which is the display form used
// throughout spec.md's literal scenarios (e.g. "std::fs::read"). It
// performs no real mangled-name decoding; production use would replace
// this with a real Itanium/Rust demangler sitting behind the same
// interface.
type Basic struct {
	// Separator defaults to "::" when empty.
	Separator string
}

// Decompose splits raw on Separator (default "::"), dropping empty parts
// that result from leading/trailing/duplicated separators.
func (b Basic) Decompose(raw []byte) ([]string, error) {
	sep := b.Separator
	if sep == "" {
		sep = "::"
	}
	fields := strings.Split(string(raw), sep)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return parts, nil
}

// Default is the package-level demangler used when callers don't need to
// inject a different one.
var Default Demangler = Basic{}
