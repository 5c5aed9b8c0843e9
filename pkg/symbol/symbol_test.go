package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwatch/apiscan/pkg/demangle"
)

func TestHeap_EqualsItsBorrowedOrigin(t *testing.T) {
	buf := []byte("std::fs::read")
	borrowed := Borrowed(buf)
	heap := borrowed.Heap()

	assert.True(t, borrowed.Equal(heap))
	assert.Equal(t, borrowed.Key(), heap.Key())

	// Mutating (or reusing) the backing buffer must not affect the heap copy.
	copy(buf, "XXXXXXXXXXXXX")
	assert.Equal(t, "std::fs::read", heap.String())
}

func TestEqual(t *testing.T) {
	a := Borrowed([]byte("my_pkg::main"))
	b := Borrowed([]byte("my_pkg::main"))
	c := Borrowed([]byte("my_pkg::helper"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestEmpty(t *testing.T) {
	assert.True(t, Symbol{}.Empty())
	assert.False(t, Borrowed([]byte("x")).Empty())
}

func TestCrateNameAndModuleName(t *testing.T) {
	sym := Borrowed([]byte("std::fs::read"))

	crate, ok := sym.CrateName(demangle.Default)
	require.True(t, ok)
	assert.Equal(t, "std", crate)

	mod, ok := sym.ModuleName(demangle.Default)
	require.True(t, ok)
	assert.Equal(t, "fs", mod)
}

func TestCrateName_EmptySymbol(t *testing.T) {
	_, ok := Symbol{}.CrateName(demangle.Default)
	assert.False(t, ok)
}

func TestModuleName_SinglePartSymbol(t *testing.T) {
	sym := Borrowed([]byte("main"))
	_, ok := sym.ModuleName(demangle.Default)
	assert.False(t, ok, "a single-part name has no module component")
}

func TestNames_DecomposesIntoIterator(t *testing.T) {
	sym := Borrowed([]byte("std::fs::read"))
	iter, err := sym.Names(demangle.Default)
	require.NoError(t, err)

	_, name, ok := iter.Next()
	require.True(t, ok)
	assert.Equal(t, "std", name.String())
}

func TestLen(t *testing.T) {
	assert.Equal(t, 13, Borrowed([]byte("std::fs::read")).Len())
}
