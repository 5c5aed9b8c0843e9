// Package binindex implements the Binary Index from spec.md section 4.2:
// a scan-lifetime map of every symbol in the linked binary to its final
// virtual address, plus the debug-info attributes keyed by symbol, plus
// the no-API memo the matcher bridge consults to skip known-negative
// symbols.
//
// Grounded on llvm/binaryfileparser.go's ELF symbol-table walk (the
// teacher's own Symbols map keyed by name), generalized to retain heap
// symbols (not borrowed slices, since the Index must outlive the parsed
// binary's buffer across the whole scan) and extended with the
// monotonic no-API memo from spec.md section 4.2/4.6/8 (property 5).
package binindex

import (
	"debug/elf"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/trailwatch/apiscan/pkg/dwarfinfo"
	"github.com/trailwatch/apiscan/pkg/symbol"
)

// Index is the scan-lifetime record of the linked binary's symbol
// addresses and debug-info attributes.
type Index struct {
	addresses map[string]uint64 // symbol.Key() -> address
	symbols   map[string]symbol.Symbol
	debugInfo map[string]dwarfinfo.SymbolDebugInfo
	// noAPIMemo only ever transitions false->true within a scan
	// (spec.md section 4.2, section 9, testable property 5).
	noAPIMemo map[string]bool
}

// New builds an empty Index.
func New() *Index {
	return &Index{
		addresses: make(map[string]uint64),
		symbols:   make(map[string]symbol.Symbol),
		debugInfo: make(map[string]dwarfinfo.SymbolDebugInfo),
		noAPIMemo: make(map[string]bool),
	}
}

// BuildFromELF populates an Index by iterating every symbol of the
// linked binary f and recording its address. Symbols are converted to
// heap-owned form since the Index outlives per-object-file processing
// and must not alias f's string table after this call returns.
func BuildFromELF(f *elf.File) (*Index, error) {
	syms, err := f.Symbols()
	if err != nil {
		return nil, fmt.Errorf("binindex: reading symbols: %w", err)
	}
	idx := New()
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		sym := symbol.Borrowed([]byte(s.Name)).Heap()
		idx.addresses[sym.Key()] = s.Value
		idx.symbols[sym.Key()] = sym
	}
	return idx, nil
}

// MergeDebugArtifacts records the per-symbol debug info recovered by
// pkg/dwarfinfo against this index's address map.
func (idx *Index) MergeDebugArtifacts(artifacts *dwarfinfo.DebugArtifacts) {
	for key, info := range artifacts.SymbolDebugInfo {
		idx.debugInfo[key] = info
	}
}

// Address returns sym's virtual address in the linked binary.
func (idx *Index) Address(sym symbol.Symbol) (uint64, bool) {
	addr, ok := idx.addresses[sym.Key()]
	return addr, ok
}

// DebugInfo returns sym's debug-info attributes, if any were recovered.
func (idx *Index) DebugInfo(sym symbol.Symbol) (dwarfinfo.SymbolDebugInfo, bool) {
	info, ok := idx.debugInfo[sym.Key()]
	return info, ok
}

// NoAPIMemoized reports whether sym is already known to match no API in
// either its debug name or mangled name.
func (idx *Index) NoAPIMemoized(sym symbol.Symbol) bool {
	return idx.noAPIMemo[sym.Key()]
}

// SetNoAPIMemo records that sym matches no configured API. Only ever
// transitions false->true; callers must never clear this mid-scan.
func (idx *Index) SetNoAPIMemo(sym symbol.Symbol) {
	idx.noAPIMemo[sym.Key()] = true
}

// Symbols returns every (symbol, debugInfo) pair known to the index, in
// a stable key order so that repeated scans of the same binary produce
// exported-API discovery results in the same order (spec.md testable
// property 1), used by exported-API discovery (spec.md section 4.9),
// which iterates the binary index independently of any edge.
func (idx *Index) Symbols(yield func(sym symbol.Symbol, info dwarfinfo.SymbolDebugInfo) bool) {
	keys := maps.Keys(idx.debugInfo)
	slices.Sort(keys)

	for _, key := range keys {
		info := idx.debugInfo[key]
		sym, ok := idx.symbols[key]
		if !ok {
			sym = symbol.Borrowed([]byte(key))
		}
		if !yield(sym, info) {
			return
		}
	}
}
