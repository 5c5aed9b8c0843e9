// Package export implements Exported-API Discovery from spec.md section
// 4.9: independently of any edge, it scans the binary index for symbols
// whose module-name component matches a configured API name and reports
// the owning package as a possible exporter.
//
// Grounded on mc/symbolresolver.go's binary-wide symbol scan, reused here
// for a module-name membership test rather than address lookup.
package export

import (
	"github.com/trailwatch/apiscan/pkg/binindex"
	"github.com/trailwatch/apiscan/pkg/checker"
	"github.com/trailwatch/apiscan/pkg/demangle"
	"github.com/trailwatch/apiscan/pkg/dwarfinfo"
	"github.com/trailwatch/apiscan/pkg/symbol"
)

// PossibleExportedApi is a hint that a package may intentionally
// implement a configured API, spec.md section 3.
type PossibleExportedApi struct {
	Package checker.PackageID
	API     checker.APIName
	Symbol  symbol.Symbol
}

// Discover runs spec.md section 4.9 over every symbol in bin, using d to
// decompose mangled names and index/checker to resolve source locations
// to crate selectors and module names to API identifiers. Reported
// (package, API) pairs are unique in the output, per spec.md testable
// property 7.
func Discover(bin *binindex.Index, d demangle.Demangler, c checker.Checker, index checker.PackageIndex) ([]PossibleExportedApi, error) {
	reported := make(map[string]bool) // "package\x00api"
	byModule := c.APINamesByModule()

	var out []PossibleExportedApi
	var walkErr error

	bin.Symbols(func(sym symbol.Symbol, info dwarfinfo.SymbolDebugInfo) bool {
		moduleName, ok := sym.ModuleName(d)
		if !ok {
			return true
		}
		api, ok := byModule[moduleName]
		if !ok {
			return true
		}

		sels, err := index.CrateSelsForPath(info.Location.Filename)
		if err != nil {
			walkErr = err
			return false
		}

		for _, sel := range sels {
			if !sel.Primary {
				continue
			}
			key := string(sel.Package) + "\x00" + string(api)
			if reported[key] {
				continue
			}
			// Claim the (package, API) slot before the crate-name guard
			// below, matching the original's found.insert(...) ordering:
			// a macro-expanded symbol that fails the guard still uses up
			// the slot, so a later, correctly-named symbol for the same
			// pair is not reported either.
			reported[key] = true
			crateName, ok := sym.CrateName(d)
			if !ok || crateName != sel.CrateName {
				continue
			}
			out = append(out, PossibleExportedApi{
				Package: sel.Package,
				API:     api,
				Symbol:  sym,
			})
		}
		return true
	})

	return out, walkErr
}
