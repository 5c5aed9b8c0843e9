package graphedge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trailwatch/apiscan/pkg/location"
)

func TestLazyLocation_ResolvesOnlyOnce(t *testing.T) {
	calls := 0
	loc := NewLazyLocation(func() location.SourceLocation {
		calls++
		return location.New("a.rs", 1, 0)
	})

	assert.Equal(t, 0, calls, "resolve must not run until Get is called")

	first := loc.Get()
	second := loc.Get()

	assert.Equal(t, 1, calls, "resolve must run at most once")
	assert.Equal(t, first, second)
	assert.Equal(t, "a.rs", first.Filename)
}

func TestEager_NeverCallsResolver(t *testing.T) {
	loc := Eager(location.New("b.rs", 2, 0))
	assert.Equal(t, "b.rs", loc.Get().Filename)
	assert.Equal(t, "b.rs", loc.Get().Filename)
}
