// Package dwarfinfo implements the one-pass debug-info walk from spec.md
// section 4.3: it recovers, for each symbol defined with debug info, a
// display name and source location, and separately recovers the edges
// that exist only because of inlining (a call that survives in DWARF's
// inlined-subroutine records but left no relocation in the linked
// binary, because the call site itself was inlined away).
//
// Grounded on llvm/dwarfparser.go's parseCompilationUnits/parseLineInfo
// walk, generalized from Cucaracha's toy function/variable debug model
// to spec.md's symbol-debug-info + inlined-call-edge model. Unlike the
// teacher's getFileName (a stub that always returns ""), this package
// resolves file indices against the compilation unit's own line-program
// file table.
package dwarfinfo

import (
	"debug/dwarf"
	"fmt"

	"github.com/trailwatch/apiscan/pkg/location"
	"github.com/trailwatch/apiscan/pkg/symbol"
)

// SymbolDebugInfo holds the debug-info-derived attributes of a single
// symbol: an optional source-level display name, and the location where
// it's defined.
type SymbolDebugInfo struct {
	Name     *string
	Location location.SourceLocation
}

// SourceLocation returns the symbol's source location, satisfying the
// "fallback_source_location" role from spec.md section 4.5.
func (s SymbolDebugInfo) SourceLocation() location.SourceLocation {
	return s.Location
}

// InlinedEdge is an edge that exists conceptually in the source but has
// no post-inlining relocation in the binary (spec.md section 4.3). Its
// location is known eagerly from the call site's decl_file/decl_line, so
// unlike refwalker's relocation-derived edges it needs no further lazy
// resolution.
type InlinedEdge struct {
	From     symbol.Symbol
	To       symbol.Symbol
	Location location.SourceLocation
}

// DebugArtifacts is the output of a single walk of a compilation's debug
// information.
type DebugArtifacts struct {
	// SymbolDebugInfo is keyed by symbol.Symbol.Key().
	SymbolDebugInfo  map[string]SymbolDebugInfo
	InlinedFunctions []InlinedEdge
}

// fileTable maps a compilation unit's per-CU file index to a path.
type fileTable map[int64]string

// FromDWARF walks data once and returns the recovered debug artifacts.
func FromDWARF(data *dwarf.Data) (*DebugArtifacts, error) {
	artifacts := &DebugArtifacts{
		SymbolDebugInfo: make(map[string]SymbolDebugInfo),
	}

	reader := data.Reader()
	seekReader := data.Reader()

	var files fileTable
	// funcStack holds the enclosing (possibly nested, for lexical
	// blocks) linkage symbol of the current non-inlined function, so
	// that an inlined-subroutine entry found while walking its children
	// knows which symbol the inlined call originated from.
	var funcStack []symbol.Symbol

	for {
		entry, err := reader.Next()
		if err != nil {
			return nil, fmt.Errorf("dwarfinfo: reading debug info: %w", err)
		}
		if entry == nil {
			break
		}

		switch entry.Tag {
		case dwarf.TagCompileUnit:
			lr, err := data.LineReader(entry)
			if err == nil && lr != nil {
				files = buildFileTable(lr)
			} else {
				files = nil
			}

		case dwarf.TagSubprogram:
			sym, name, loc, ok := subprogramInfo(entry, files)
			if ok {
				artifacts.SymbolDebugInfo[sym.Key()] = SymbolDebugInfo{
					Name:     name,
					Location: loc,
				}
			}
			if entry.Children {
				funcStack = append(funcStack, sym)
			}

		case dwarf.TagInlinedSubroutine:
			if len(funcStack) == 0 {
				break
			}
			from := funcStack[len(funcStack)-1]
			if from.Empty() {
				break
			}
			origin, ok := entry.Val(dwarf.AttrAbstractOrigin).(dwarf.Offset)
			if !ok {
				break
			}
			toSym, ok := resolveAbstractOrigin(seekReader, origin)
			if !ok {
				break
			}
			callLoc := declLocation(entry, files)
			artifacts.InlinedFunctions = append(artifacts.InlinedFunctions, InlinedEdge{
				From:     from.Heap(),
				To:       toSym.Heap(),
				Location: callLoc,
			})

		case 0:
			if len(funcStack) > 0 {
				funcStack = funcStack[:len(funcStack)-1]
			}
		}

		// Every other entry with children (compile units, lexical blocks,
		// inlined subroutines) re-pushes the enclosing function, so the
		// null entry that closes it pops only its own level.
		if entry.Children && entry.Tag != dwarf.TagSubprogram {
			var enclosing symbol.Symbol
			if n := len(funcStack); n > 0 {
				enclosing = funcStack[n-1]
			}
			funcStack = append(funcStack, enclosing)
		}
	}

	return artifacts, nil
}

// subprogramInfo extracts the linkage symbol, optional display name and
// source location for a DW_TAG_subprogram entry.
func subprogramInfo(entry *dwarf.Entry, files fileTable) (symbol.Symbol, *string, location.SourceLocation, bool) {
	name, hasName := entry.Val(dwarf.AttrName).(string)
	linkage, hasLinkage := entry.Val(dwarf.AttrLinkageName).(string)

	symName := linkage
	if !hasLinkage || symName == "" {
		symName = name
	}
	if symName == "" {
		return symbol.Symbol{}, nil, location.SourceLocation{}, false
	}

	loc := declLocation(entry, files)

	var displayName *string
	if hasName && name != "" {
		n := name
		displayName = &n
	}

	return symbol.Borrowed([]byte(symName)), displayName, loc, true
}

// declLocation reads DW_AT_decl_file/DW_AT_decl_line off entry and
// resolves the file index against files.
func declLocation(entry *dwarf.Entry, files fileTable) location.SourceLocation {
	declFile, _ := entry.Val(dwarf.AttrDeclFile).(int64)
	declLine, _ := entry.Val(dwarf.AttrDeclLine).(int64)
	declCol, _ := entry.Val(dwarf.AttrDeclColumn).(int64)

	filename := ""
	if files != nil {
		filename = files[declFile]
	}
	return location.New(filename, int(declLine), int(declCol))
}

// resolveAbstractOrigin seeks to the DIE at offset and extracts its
// linkage/display name as a symbol. r is a reader dedicated to seeking
// so it doesn't disturb the caller's sequential walk.
func resolveAbstractOrigin(r *dwarf.Reader, offset dwarf.Offset) (symbol.Symbol, bool) {
	r.Seek(offset)
	entry, err := r.Next()
	if err != nil || entry == nil {
		return symbol.Symbol{}, false
	}
	if linkage, ok := entry.Val(dwarf.AttrLinkageName).(string); ok && linkage != "" {
		return symbol.Borrowed([]byte(linkage)), true
	}
	if name, ok := entry.Val(dwarf.AttrName).(string); ok && name != "" {
		return symbol.Borrowed([]byte(name)), true
	}
	return symbol.Symbol{}, false
}

// buildFileTable resolves a compilation unit's line-program file table
// into an index->path map.
func buildFileTable(lr *dwarf.LineReader) fileTable {
	table := make(fileTable)
	files := lr.Files()
	for i, f := range files {
		if f != nil {
			table[int64(i)] = f.Name
		}
	}
	return table
}
