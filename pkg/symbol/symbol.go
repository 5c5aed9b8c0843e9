// Package symbol implements the Symbol value type from spec.md section 3:
// an opaque, mangled byte sequence with borrowed and heap-owned forms
// that compare and hash identically.
package symbol

import (
	"bytes"

	"github.com/trailwatch/apiscan/pkg/demangle"
	"github.com/trailwatch/apiscan/pkg/names"
)

// Symbol is a mangled symbol name. The zero value is the empty symbol.
//
// A Symbol constructed with Borrowed aliases the byte slice it was given
// (typically a slice into a parsed object file's string table, or into a
// reused archive-entry buffer). Callers that need to retain a Symbol past
// the lifetime of that backing buffer must call Heap first, matching the
// teacher's own borrowed-slice discipline in llvm/binaryfileparser.go's
// symbol-table walk, where symbol names alias the ELF string table for
// exactly as long as the object file bytes are alive.
type Symbol struct {
	data []byte
}

// Borrowed wraps b without copying it. b must remain valid and unmodified
// for as long as the returned Symbol (or anything derived from it that
// hasn't been made Heap) is used.
func Borrowed(b []byte) Symbol {
	return Symbol{data: b}
}

// Heap returns a Symbol with its own independent copy of the bytes, safe
// to retain beyond the lifetime of whatever buffer s currently aliases.
// A Heap symbol is structurally equal to the Symbol it was derived from,
// per spec.md's ownership invariant.
func (s Symbol) Heap() Symbol {
	cp := make([]byte, len(s.data))
	copy(cp, s.data)
	return Symbol{data: cp}
}

// Bytes returns the raw mangled bytes.
func (s Symbol) Bytes() []byte {
	return s.data
}

// Len returns the byte length of the mangled form, used by the
// shortest-representative emission in spec.md section 4.8.
func (s Symbol) Len() int {
	return len(s.data)
}

// String returns the mangled name as text.
func (s Symbol) String() string {
	return string(s.data)
}

// Key returns a value usable as a map key, with the same equality
// semantics as Equal. Go maps require comparable keys; converting to
// string is how this package gets byte-slice-content equality for free
// without wiring a custom hash.
func (s Symbol) Key() string {
	return string(s.data)
}

// Empty reports whether the symbol has no name.
func (s Symbol) Empty() bool {
	return len(s.data) == 0
}

// Equal compares two symbols by content.
func (s Symbol) Equal(other Symbol) bool {
	return bytes.Equal(s.data, other.data)
}

// Names decomposes the symbol through d and returns an iterator over its
// growing hierarchical prefixes, per spec.md section 4.6.
func (s Symbol) Names(d demangle.Demangler) (*names.Iterator, error) {
	parts, err := d.Decompose(s.data)
	if err != nil {
		return nil, err
	}
	return names.NewIterator(parts), nil
}

// CrateName returns the first hierarchical part of the symbol (the crate
// it belongs to), used by exported-API discovery (spec.md section 4.9)
// to guard against macro-expanded symbols being attributed to the wrong
// package.
func (s Symbol) CrateName(d demangle.Demangler) (string, bool) {
	parts, err := d.Decompose(s.data)
	if err != nil || len(parts) == 0 {
		return "", false
	}
	return parts[0], true
}

// ModuleName returns the second hierarchical part of the symbol, used by
// exported-API discovery to find candidate API-name matches (spec.md
// section 4.9: "Extract the symbol's module-name component").
func (s Symbol) ModuleName(d demangle.Demangler) (string, bool) {
	parts, err := d.Decompose(s.data)
	if err != nil || len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}
