package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwatch/apiscan/pkg/binindex"
	"github.com/trailwatch/apiscan/pkg/checker"
	"github.com/trailwatch/apiscan/pkg/demangle"
	"github.com/trailwatch/apiscan/pkg/dwarfinfo"
	"github.com/trailwatch/apiscan/pkg/location"
	"github.com/trailwatch/apiscan/pkg/symbol"
)

func testChecker() *checker.ConfigChecker {
	return checker.FromConfig(checker.Config{
		APIs: []checker.APIDef{
			{Name: "fs", Parts: []string{"std", "fs"}},
		},
	})
}

func TestMatches_MangledNameMatch(t *testing.T) {
	bin := binindex.New()
	bridge := New(testChecker(), demangle.Default, bin)

	sym := symbol.Borrowed([]byte("std::fs::read"))
	matches := bridge.Matches(sym)

	require.Len(t, matches, 1)
	assert.Equal(t, SourceSymbol, matches[0].Source)
	assert.Contains(t, matches[0].APIs, checker.APIName("fs"))
}

func TestMatches_DebugNameMatchPrecedesMangled(t *testing.T) {
	bin := binindex.New()
	sym := symbol.Borrowed([]byte("_ZN3std2fs4read"))
	displayName := "std::fs::read"
	bin.MergeDebugArtifacts(&dwarfinfo.DebugArtifacts{
		SymbolDebugInfo: map[string]dwarfinfo.SymbolDebugInfo{
			sym.Key(): {Name: &displayName, Location: location.New("fs.rs", 1, 0)},
		},
	})

	bridge := New(testChecker(), demangle.Default, bin)
	matches := bridge.Matches(sym)

	require.NotEmpty(t, matches)
	assert.Equal(t, SourceDebugName, matches[0].Source)
}

func TestMatches_NoMatchSetsNoAPIMemo(t *testing.T) {
	bin := binindex.New()
	bridge := New(testChecker(), demangle.Default, bin)

	sym := symbol.Borrowed([]byte("my_pkg::helper"))
	matches := bridge.Matches(sym)
	assert.Empty(t, matches)
	assert.True(t, bin.NoAPIMemoized(sym))
}

func TestMatches_MemoizedSymbolShortCircuits(t *testing.T) {
	bin := binindex.New()
	sym := symbol.Borrowed([]byte("std::fs::read"))
	bin.SetNoAPIMemo(sym)

	bridge := New(testChecker(), demangle.Default, bin)
	matches := bridge.Matches(sym)
	assert.Empty(t, matches, "a memoized symbol must short-circuit even if it would otherwise match")
}

func TestAPIUnion(t *testing.T) {
	matches := []Match{
		{APIs: map[checker.APIName]struct{}{"fs": {}}},
		{APIs: map[checker.APIName]struct{}{"net": {}}},
	}
	union := APIUnion(matches)
	assert.Contains(t, union, checker.APIName("fs"))
	assert.Contains(t, union, checker.APIName("net"))
}
