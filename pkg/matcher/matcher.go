// Package matcher implements the Name/API Matcher Bridge from spec.md
// section 4.6: given a symbol, it enumerates candidate name views (a
// debug display name, then the mangled-name decomposition), consults the
// checker for API matches on each growing prefix, and returns one Match
// per prefix that adds APIs not already matched by a shorter prefix of
// the same view, updating the binary index's no-API memo when nothing
// matched at all.
//
// Grounded on mc/symbolresolver.go's resolve-then-cache pattern,
// generalized from address resolution to API-set resolution.
package matcher

import (
	"github.com/trailwatch/apiscan/pkg/binindex"
	"github.com/trailwatch/apiscan/pkg/checker"
	"github.com/trailwatch/apiscan/pkg/demangle"
	"github.com/trailwatch/apiscan/pkg/names"
	"github.com/trailwatch/apiscan/pkg/symbol"
)

// NameSource records whether a Match was produced via the symbol's debug
// display name or its mangled-name decomposition (spec.md section 3,
// ApiUsage.to_source_kind).
type NameSource int

const (
	// SourceSymbol means the match came from the mangled-name
	// decomposition; it carries the heap symbol.
	SourceSymbol NameSource = iota
	// SourceDebugName means the match came from the debug display name;
	// it carries the shared display-name string.
	SourceDebugName
)

// Match is one (name, name_source, api_set) tuple produced by the bridge
// for a given symbol.
type Match struct {
	Name       names.Name
	Source     NameSource
	DebugName  string
	Symbol     symbol.Symbol
	APIs       map[checker.APIName]struct{}
}

// Bridge runs the matcher bridge algorithm against a Checker and a
// Demangler, memoizing negative results into a binary index.
type Bridge struct {
	Checker   checker.Checker
	Demangler demangle.Demangler
	Bin       *binindex.Index
}

// New builds a Bridge.
func New(c checker.Checker, d demangle.Demangler, bin *binindex.Index) *Bridge {
	return &Bridge{Checker: c, Demangler: d, Bin: bin}
}

// Matches enumerates every Match for sym, per spec.md section 4.6's
// four-step algorithm: debug-name matches first, then mangled-name
// matches. Within each view an API is reported only at the shortest
// prefix that matches it. Callers that only need the API set can pass
// the result to APIUnion.
func (b *Bridge) Matches(sym symbol.Symbol) []Match {
	if b.Bin.NoAPIMemoized(sym) {
		return nil
	}

	var matches []Match

	if info, ok := b.Bin.DebugInfo(sym); ok && info.Name != nil && *info.Name != "" {
		matches = append(matches, b.matchDebugName(sym, *info.Name)...)
	}

	matches = append(matches, b.matchMangledName(sym)...)

	if len(matches) == 0 {
		b.Bin.SetNoAPIMemo(sym)
	}
	return matches
}

// matchDebugName implements step 2: iterate the debug display name's
// hierarchical parts via the same demangler (display names are already
// "::"-delimited text, matching demangle.Basic's assumption).
func (b *Bridge) matchDebugName(sym symbol.Symbol, displayName string) []Match {
	it, err := demangle.Basic{}.Decompose([]byte(displayName))
	if err != nil || len(it) == 0 {
		return nil
	}
	var matches []Match
	seen := map[checker.APIName]struct{}{}
	iter := names.NewIterator(it)
	for {
		parts, name, ok := iter.Next()
		if !ok {
			break
		}
		apis := b.Checker.ApisForNameIterator(parts)
		for api := range apis {
			if _, dup := seen[api]; dup {
				delete(apis, api)
			} else {
				seen[api] = struct{}{}
			}
		}
		if len(apis) == 0 {
			continue
		}
		matches = append(matches, Match{
			Name:      name,
			Source:    SourceDebugName,
			DebugName: displayName,
			Symbol:    sym,
			APIs:      apis,
		})
	}
	return matches
}

// matchMangledName implements step 3: iterate the mangled-name
// decomposition.
func (b *Bridge) matchMangledName(sym symbol.Symbol) []Match {
	iter, err := sym.Names(b.Demangler)
	if err != nil {
		return nil
	}
	var matches []Match
	seen := map[checker.APIName]struct{}{}
	for {
		parts, name, ok := iter.Next()
		if !ok {
			break
		}
		apis := b.Checker.ApisForNameIterator(parts)
		for api := range apis {
			if _, dup := seen[api]; dup {
				delete(apis, api)
			} else {
				seen[api] = struct{}{}
			}
		}
		if len(apis) == 0 {
			continue
		}
		matches = append(matches, Match{
			Name:   name,
			Source: SourceSymbol,
			Symbol: sym,
			APIs:   apis,
		})
	}
	return matches
}

// APIUnion returns the union of every API across matches, used by edge
// attribution to compute from_apis (spec.md section 4.7 step 1).
func APIUnion(matches []Match) map[checker.APIName]struct{} {
	out := map[checker.APIName]struct{}{}
	for _, m := range matches {
		for api := range m.APIs {
			out[api] = struct{}{}
		}
	}
	return out
}
