// Package objectindex implements the per-object-file Object Index from
// spec.md section 4.1: for each section, the first (lowest-address)
// defined symbol, and the relocation target-resolution algorithm used to
// turn a raw relocation into one or more symbols, forwarding through
// anonymous linker sections (vtables, string pools) when necessary.
//
// Grounded on llvm/binaryfileparser.go's ELF symbol-table walk (reading
// elf.File.Symbols(), checking st_shndx/st_value), generalized from a
// single linked executable to per-object-file relocation resolution.
// debug/elf exposes relocation struct layouts (elf.Rela64) but no
// generic relocation reader, so this package decodes REL and RELA
// entries itself, for ELF64 and ELF32, in the object file's own byte
// order.
package objectindex

import (
	"debug/elf"
	"fmt"

	"github.com/trailwatch/apiscan/pkg/symbol"
)

// SymbolInfo is a section's first defined symbol together with its
// address offset, per spec.md section 3.
type SymbolInfo struct {
	Symbol symbol.Symbol
	Offset uint64
}

// Relocation is one resolved relocation entry within a section: the byte
// offset at which the reference occurs, and the symbol table index it
// names.
type Relocation struct {
	Offset      uint64
	SymbolIndex int
}

// rawSymbol is the subset of an ELF symbol-table entry the resolution
// algorithm needs.
type rawSymbol struct {
	name    string
	section elf.SectionIndex
	value   uint64
}

// ObjectIndex is the object-file-scoped index described in spec.md
// section 4.1.
type ObjectIndex struct {
	symbols     []rawSymbol
	firstSymbol map[elf.SectionIndex]SymbolInfo
	// sectionReloc is keyed by the section the relocations apply to
	// (".rela.text" is filed under ".text", via the relocation section's
	// sh_info), because ELF keeps relocations in their own section.
	sectionReloc map[elf.SectionIndex][]Relocation
}

// Build parses f and constructs the Object Index.
func Build(f *elf.File) (*ObjectIndex, error) {
	elfSyms, err := f.Symbols()
	if err != nil && len(elfSyms) == 0 {
		// A relocatable object with no symbol table is degenerate but
		// not necessarily fatal; the index is simply empty.
		elfSyms = nil
	}

	idx := &ObjectIndex{
		firstSymbol:  make(map[elf.SectionIndex]SymbolInfo),
		sectionReloc: make(map[elf.SectionIndex][]Relocation),
	}

	// elf.File.Symbols omits the null symbol at index 0; slot 0 is kept
	// empty so idx.symbols is indexed exactly like the ELF symbol table
	// that relocations refer to.
	idx.symbols = make([]rawSymbol, len(elfSyms)+1)
	for i, s := range elfSyms {
		idx.symbols[i+1] = rawSymbol{name: s.Name, section: s.Section, value: s.Value}
	}

	for i, s := range idx.symbols {
		if s.name == "" {
			continue
		}
		if s.section == elf.SHN_UNDEF || s.section >= elf.SHN_LORESERVE {
			continue
		}
		cur, ok := idx.firstSymbol[s.section]
		if !ok || s.value < cur.Offset {
			idx.firstSymbol[s.section] = SymbolInfo{
				Symbol: symbol.Borrowed([]byte(s.name)),
				Offset: s.value,
			}
		}
		_ = i
	}

	for secIdx, sec := range f.Sections {
		if sec.Type != elf.SHT_RELA && sec.Type != elf.SHT_REL {
			continue
		}
		target := elf.SectionIndex(sec.Info)
		relocs, err := decodeRelocations(f, sec)
		if err != nil {
			return nil, fmt.Errorf("objectindex: decoding relocations in %s: %w", sec.Name, err)
		}
		idx.sectionReloc[target] = append(idx.sectionReloc[target], relocs...)
		_ = secIdx
	}

	return idx, nil
}

// decodeRelocations reads a SHT_RELA/SHT_REL section's raw entries using
// f's byte order and class (ELF64 or ELF32). Only r_offset and the symbol
// index from r_info are kept; SHT_REL entries share the same offset+info
// layout without the trailing addend field, and the addend is never read.
func decodeRelocations(f *elf.File, sec *elf.Section) ([]Relocation, error) {
	data, err := sec.Data()
	if err != nil {
		return nil, err
	}
	bo := f.ByteOrder

	var entrySize int
	switch {
	case f.Class == elf.ELFCLASS64 && sec.Type == elf.SHT_RELA:
		entrySize = 24 // r_offset(8) + r_info(8) + r_addend(8)
	case f.Class == elf.ELFCLASS64 && sec.Type == elf.SHT_REL:
		entrySize = 16 // r_offset(8) + r_info(8)
	case f.Class == elf.ELFCLASS32 && sec.Type == elf.SHT_RELA:
		entrySize = 12 // r_offset(4) + r_info(4) + r_addend(4)
	default:
		entrySize = 8 // 32-bit REL
	}

	var out []Relocation
	for off := 0; off+entrySize <= len(data); off += entrySize {
		entry := data[off : off+entrySize]
		var offset uint64
		var info uint64
		if f.Class == elf.ELFCLASS64 {
			offset = bo.Uint64(entry[0:8])
			info = bo.Uint64(entry[8:16])
		} else {
			offset = uint64(bo.Uint32(entry[0:4]))
			info = uint64(bo.Uint32(entry[4:8]))
		}
		symIdx := int(elf.R_SYM64(info))
		if f.Class == elf.ELFCLASS32 {
			symIdx = int(info >> 8)
		}
		out = append(out, Relocation{Offset: offset, SymbolIndex: symIdx})
	}
	return out, nil
}

// FirstSymbol returns the section's first defined symbol, if any.
func (idx *ObjectIndex) FirstSymbol(section elf.SectionIndex) (SymbolInfo, bool) {
	info, ok := idx.firstSymbol[section]
	return info, ok
}

// Relocations returns the relocations that apply to section.
func (idx *ObjectIndex) Relocations(section elf.SectionIndex) []Relocation {
	return idx.sectionReloc[section]
}

// ErrUnknownRelocation reports a relocation whose symbol index is out of
// range, an invariant violation per spec.md section 7.
var ErrUnknownRelocation = fmt.Errorf("objectindex: relocation symbol index out of range")

// AddTargetSymbols resolves reloc to one or more symbols, per spec.md
// section 4.1's target-resolution algorithm, appending them to out.
// visited guards against cyclic anonymous-section forwarding and must be
// scoped to a single outer call.
func (idx *ObjectIndex) AddTargetSymbols(reloc Relocation, out []symbol.Symbol, visited map[elf.SectionIndex]bool) ([]symbol.Symbol, error) {
	if reloc.SymbolIndex < 0 || reloc.SymbolIndex >= len(idx.symbols) {
		return out, fmt.Errorf("%w: index %d", ErrUnknownRelocation, reloc.SymbolIndex)
	}
	sym := idx.symbols[reloc.SymbolIndex]

	if sym.name != "" {
		return append(out, symbol.Borrowed([]byte(sym.name))), nil
	}

	return idx.resolveSection(sym.section, out, visited)
}

// resolveSection implements steps 3-4 of the target-resolution
// algorithm: a reference reduced to a bare section either has a
// first-symbol to report, or forwards through that section's own
// relocations.
func (idx *ObjectIndex) resolveSection(section elf.SectionIndex, out []symbol.Symbol, visited map[elf.SectionIndex]bool) ([]symbol.Symbol, error) {
	if info, ok := idx.firstSymbol[section]; ok {
		return append(out, info.Symbol), nil
	}
	if visited[section] {
		return out, nil
	}
	visited[section] = true

	var err error
	for _, reloc := range idx.sectionReloc[section] {
		out, err = idx.AddTargetSymbols(reloc, out, visited)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
