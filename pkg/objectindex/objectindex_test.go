package objectindex

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwatch/apiscan/pkg/symbol"
)

func newTestIndex() *ObjectIndex {
	return &ObjectIndex{
		firstSymbol:  make(map[elf.SectionIndex]SymbolInfo),
		sectionReloc: make(map[elf.SectionIndex][]Relocation),
	}
}

func TestAddTargetSymbols_NamedSymbolResolvesDirectly(t *testing.T) {
	idx := newTestIndex()
	idx.symbols = []rawSymbol{{name: "my_pkg::helper", section: 1}}

	syms, err := idx.AddTargetSymbols(Relocation{SymbolIndex: 0}, nil, map[elf.SectionIndex]bool{})
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "my_pkg::helper", syms[0].String())
}

func TestAddTargetSymbols_AnonymousSymbolForwardsToFirstSectionSymbol(t *testing.T) {
	idx := newTestIndex()
	idx.symbols = []rawSymbol{{name: "", section: 2}}
	idx.firstSymbol[2] = SymbolInfo{Symbol: symbol.Borrowed([]byte("vtable_entry"))}

	syms, err := idx.AddTargetSymbols(Relocation{SymbolIndex: 0}, nil, map[elf.SectionIndex]bool{})
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "vtable_entry", syms[0].String())
}

func TestAddTargetSymbols_ForwardsThroughAnonymousSectionRelocations(t *testing.T) {
	idx := newTestIndex()
	// section 3 has no symbol of its own, but carries a relocation into
	// section 4, which does.
	idx.symbols = []rawSymbol{
		{name: "", section: 3}, // index 0: reloc target, anonymous
		{name: "", section: 4}, // index 1: forwarded-to symbol, anonymous
	}
	idx.sectionReloc[3] = []Relocation{{SymbolIndex: 1}}
	idx.firstSymbol[4] = SymbolInfo{Symbol: symbol.Borrowed([]byte("real_target"))}

	syms, err := idx.AddTargetSymbols(Relocation{SymbolIndex: 0}, nil, map[elf.SectionIndex]bool{})
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "real_target", syms[0].String())
}

func TestAddTargetSymbols_CyclicForwardingTerminates(t *testing.T) {
	idx := newTestIndex()
	// section 5 forwards to section 6, which forwards back to section 5;
	// neither has a first symbol of its own.
	idx.symbols = []rawSymbol{
		{name: "", section: 5},
		{name: "", section: 6},
	}
	idx.sectionReloc[5] = []Relocation{{SymbolIndex: 1}}
	idx.sectionReloc[6] = []Relocation{{SymbolIndex: 0}}

	syms, err := idx.AddTargetSymbols(Relocation{SymbolIndex: 0}, nil, map[elf.SectionIndex]bool{})
	require.NoError(t, err)
	assert.Empty(t, syms, "a cycle with no first symbol anywhere resolves to nothing")
}

func TestAddTargetSymbols_UnknownIndexIsError(t *testing.T) {
	idx := newTestIndex()
	idx.symbols = []rawSymbol{{name: "a"}}

	_, err := idx.AddTargetSymbols(Relocation{SymbolIndex: 5}, nil, map[elf.SectionIndex]bool{})
	assert.ErrorIs(t, err, ErrUnknownRelocation)
}
