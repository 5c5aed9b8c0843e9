// Package graphedge defines the symbol-graph edge type shared by
// refwalker (relocation-derived edges) and dwarfinfo (inlining-derived
// edges), and the lazy source-location wrapper both rely on to avoid
// paying for debug-info lookups on edges that never match a configured
// API (spec.md section 4.5: "Lazy, memoized per-edge source-location
// resolution").
//
// Grounded on mc/symbolresolver.go's lazy-resolve-on-demand pattern
// (SymbolResolver caches successful lookups but doesn't pre-resolve
// every address up front).
package graphedge

import "github.com/trailwatch/apiscan/pkg/location"

// Resolver produces a SourceLocation for an edge on demand. Implementations
// are expected to memoize: repeated calls for the same edge must be cheap.
type Resolver func() location.SourceLocation

// LazyLocation wraps a Resolver so its SourceLocation is computed at most
// once, only when actually requested.
type LazyLocation struct {
	resolve  Resolver
	resolved bool
	value    location.SourceLocation
}

// NewLazyLocation builds a LazyLocation that calls resolve the first time
// Get is called.
func NewLazyLocation(resolve Resolver) *LazyLocation {
	return &LazyLocation{resolve: resolve}
}

// Eager wraps an already-known location, for edges (like inlined calls)
// whose location is cheap to obtain up front.
func Eager(loc location.SourceLocation) *LazyLocation {
	return &LazyLocation{resolved: true, value: loc}
}

// Get returns the edge's source location, computing it on first use.
func (l *LazyLocation) Get() location.SourceLocation {
	if !l.resolved {
		l.value = l.resolve()
		l.resolved = true
		l.resolve = nil
	}
	return l.value
}

// UsageDebugData carries an edge's provenance: which binary, which
// object file, and which section it was discovered in. It exists purely
// for diagnostics, so it is only attached when debug mode is requested
// (SPEC_FULL.md section 12.2) — the common case skips the allocation and
// string-building entirely.
//
// Grounded on original_source/src/symbol_graph.rs's
// `UsageDebugData{bin_path, object_file_path, section_name}`.
type UsageDebugData struct {
	BinPath        string
	ObjectFilePath string
	SectionName    string
}

// Edge is a directed reference from one symbol to another, discovered
// either from a relocation entry in an unlinked object file or from a
// DWARF inlined-subroutine record.
type Edge struct {
	From     string // symbol.Symbol.Key() of the referencing symbol
	To       string // symbol.Symbol.Key() of the referenced symbol
	Location *LazyLocation
	// DebugData is nil unless the scan was run with debug mode enabled.
	// Inlined-call edges (pkg/dwarfinfo) never set it, matching the
	// original, which always passes None for those.
	DebugData *UsageDebugData
}
