package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwatch/apiscan/pkg/binindex"
	"github.com/trailwatch/apiscan/pkg/checker"
	"github.com/trailwatch/apiscan/pkg/demangle"
	"github.com/trailwatch/apiscan/pkg/graphedge"
	"github.com/trailwatch/apiscan/pkg/location"
	"github.com/trailwatch/apiscan/pkg/matcher"
	"github.com/trailwatch/apiscan/pkg/symbol"
)

func symbolFromString(s string) symbol.Symbol {
	return symbol.Borrowed([]byte(s)).Heap()
}

func testSetup() (*Attributor, checker.Checker) {
	cfg := checker.Config{
		APIs: []checker.APIDef{
			{Name: "fs", Parts: []string{"std", "fs"}},
			{Name: "fs", Parts: []string{"my_pkg", "fs"}},
			{Name: "net", Parts: []string{"std", "net"}},
		},
		Packages: []checker.PackageRule{
			{PathPrefix: "/src/my_pkg", Package: "my_pkg", CrateName: "my_pkg", Primary: true},
		},
	}
	c := checker.FromConfig(cfg)
	bin := binindex.New()
	bridge := matcher.New(c, demangle.Default, bin)
	return New(bridge, c), c
}

func edge(from, to string, loc location.SourceLocation) graphedge.Edge {
	return graphedge.Edge{From: from, To: to, Location: graphedge.Eager(loc)}
}

// S1 from spec.md section 8.
func TestProcess_EmitsUsageAcrossPackageBoundary(t *testing.T) {
	a, _ := testSetup()

	edges := []graphedge.Edge{
		edge("my_pkg::main", "std::fs::read", location.New("/src/my_pkg/main.rs", 1, 0)),
	}

	recs, err := a.Process(edges)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, checker.APIName("fs"), recs[0].API)
	assert.Equal(t, "my_pkg::main", recs[0].Usage.FromSymbol.String())
	assert.Equal(t, "std::fs::read", recs[0].Usage.ToSymbol.String())
}

// S2 from spec.md section 8: caller already holds the API, so the edge
// contributes no usage (testable property 3: cancellation of
// already-used APIs).
func TestProcess_CancelsAlreadyUsedAPI(t *testing.T) {
	a, _ := testSetup()

	edges := []graphedge.Edge{
		edge("my_pkg::fs::main", "std::fs::read", location.New("/src/my_pkg/fs.rs", 1, 0)),
	}

	recs, err := a.Process(edges)
	require.NoError(t, err)
	assert.Empty(t, recs, "caller already resolves to API fs, so the edge must not add usage")
}

// S3 from spec.md section 8: shortest-representative emission.
func TestProcess_ShortestRepresentativeWins(t *testing.T) {
	a, _ := testSetup()

	edges := []graphedge.Edge{
		edge("my_pkg::helper", "std::net::connect_with_a_very_long_name", location.New("/src/my_pkg/helper.rs", 1, 0)),
		edge("my_pkg::helper", "std::net::go", location.New("/src/my_pkg/helper.rs", 1, 0)),
	}

	recs, err := a.Process(edges)
	require.NoError(t, err)
	require.Len(t, recs, 1, "both edges share a dedup key and must collapse to one record")
	assert.Equal(t, "std::net::go", recs[0].Usage.ToSymbol.String())
}

// Testable property 2: no emitted record's to_name first part equals the
// owning crate_sel's crate name (intra-package filter).
func TestProcess_FiltersIntraPackageReferences(t *testing.T) {
	a, _ := testSetup()

	edges := []graphedge.Edge{
		edge("my_pkg::main", "my_pkg::fs::helper", location.New("/src/my_pkg/main.rs", 1, 0)),
	}

	recs, err := a.Process(edges)
	require.NoError(t, err)
	assert.Empty(t, recs, "a reference whose matched name's crate equals the owning package must be filtered")
}

func TestProcess_NoMatchOnTarget_EmitsNothing(t *testing.T) {
	a, _ := testSetup()

	edges := []graphedge.Edge{
		edge("my_pkg::main", "my_pkg::helper", location.New("/src/my_pkg/main.rs", 1, 0)),
	}

	recs, err := a.Process(edges)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDeduplicationKey_ExcludesToSymbol(t *testing.T) {
	base := Record{
		CrateSel: checker.CrateSel{Package: "my_pkg", CrateName: "my_pkg", Primary: true},
		API:      "fs",
	}
	a := base
	a.Usage.ToSymbol = symbolFromString("std::fs::read")
	b := base
	b.Usage.ToSymbol = symbolFromString("std::fs::r")

	assert.Equal(t, a.DeduplicationKey(), b.DeduplicationKey())
}
