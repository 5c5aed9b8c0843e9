package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterator_YieldsGrowingPrefixes(t *testing.T) {
	it := NewIterator([]string{"std", "fs", "read"})

	parts, name, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, []string{"std"}, parts)
	assert.Equal(t, "std", name.String())

	parts, name, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, []string{"std", "fs"}, parts)
	assert.Equal(t, "std::fs", name.String())

	parts, name, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, []string{"std", "fs", "read"}, parts)
	assert.Equal(t, "std::fs::read", name.String())

	_, _, ok = it.Next()
	assert.False(t, ok, "iterator should be exhausted")
}

func TestIterator_NameIsPrefixNotFullSymbol(t *testing.T) {
	it := NewIterator([]string{"my_pkg", "fs", "main"})

	_, name, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, New([]string{"my_pkg"}), name, "Next's Name must be exactly the matched prefix")
}

func TestIterator_Reset(t *testing.T) {
	it := NewIterator([]string{"a", "b"})
	it.Next()
	it.Next()
	_, _, ok := it.Next()
	require.False(t, ok)

	it.Reset()
	_, name, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "a", name.String())
}

func TestName_Equal(t *testing.T) {
	a := New([]string{"std", "fs"})
	b := New([]string{"std", "fs"})
	c := New([]string{"std", "net"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestName_First(t *testing.T) {
	first, ok := New([]string{"std", "fs"}).First()
	assert.True(t, ok)
	assert.Equal(t, "std", first)

	_, ok = New(nil).First()
	assert.False(t, ok)
}

func TestNew_CopiesBackingArray(t *testing.T) {
	parts := []string{"std", "fs"}
	n := New(parts)
	parts[0] = "mutated"
	assert.Equal(t, "std", n.Parts[0], "New must copy, not alias, its input")
}
