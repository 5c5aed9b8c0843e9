package demangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasic_Decompose(t *testing.T) {
	parts, err := Basic{}.Decompose([]byte("std::fs::read"))
	require.NoError(t, err)
	assert.Equal(t, []string{"std", "fs", "read"}, parts)
}

func TestBasic_Decompose_DropsEmptyParts(t *testing.T) {
	parts, err := Basic{}.Decompose([]byte("::std::fs::"))
	require.NoError(t, err)
	assert.Equal(t, []string{"std", "fs"}, parts)
}

func TestBasic_Decompose_CustomSeparator(t *testing.T) {
	parts, err := Basic{Separator: "."}.Decompose([]byte("std.fs.read"))
	require.NoError(t, err)
	assert.Equal(t, []string{"std", "fs", "read"}, parts)
}

func TestBasic_Decompose_SinglePart(t *testing.T) {
	parts, err := Basic{}.Decompose([]byte("main"))
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, parts)
}

func TestDefault_IsBasic(t *testing.T) {
	_, ok := Default.(Basic)
	assert.True(t, ok)
}
