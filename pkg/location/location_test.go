package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_WithColumn(t *testing.T) {
	loc := New("fs.rs", 10, 5)
	assert.Equal(t, "fs.rs:10:5", loc.String())
}

func TestString_WithoutColumn(t *testing.T) {
	loc := New("fs.rs", 10, 0)
	assert.Equal(t, "fs.rs:10", loc.String())
}

func TestString_Invalid(t *testing.T) {
	assert.Equal(t, "<unknown>", SourceLocation{}.String())
}

func TestIsValid(t *testing.T) {
	assert.True(t, New("fs.rs", 1, 0).IsValid())
	assert.False(t, New("", 1, 0).IsValid())
	assert.False(t, New("fs.rs", 0, 0).IsValid())
}

func TestEqual(t *testing.T) {
	a := New("fs.rs", 1, 2)
	b := New("fs.rs", 1, 2)
	c := New("fs.rs", 1, 3)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
