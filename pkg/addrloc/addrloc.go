// Package addrloc implements the Address->Location Resolver from spec.md
// section 4.4: a line-program lookup service translating a runtime
// address in the linked binary to a source (file, line, column) tuple.
//
// Grounded on llvm/dwarfparser.go's line-number program walk (the
// teacher iterates dwarf.LineEntry rows to build its own address table);
// generalized here into a resolver built once ("Build addr2line context",
// the named timing checkpoint from spec.md section 6) and queried many
// times, lazily, per edge.
package addrloc

import (
	"debug/dwarf"
	"fmt"
	"sort"

	"github.com/trailwatch/apiscan/pkg/location"
)

// row is one resolved line-table entry, kept sorted by Address so lookups
// can binary-search for the entry covering a given address.
type row struct {
	Address uint64
	File    string
	Line    int
	Column  int
}

// Resolver answers find_location queries against a prebuilt line table.
type Resolver struct {
	rows []row
}

// Build walks every compilation unit's line-number program once and
// constructs a Resolver. This corresponds to the "Build addr2line
// context" timing checkpoint (spec.md section 6).
func Build(data *dwarf.Data) (*Resolver, error) {
	r := &Resolver{}
	reader := data.Reader()
	for {
		entry, err := reader.Next()
		if err != nil {
			return nil, fmt.Errorf("addrloc: reading debug info: %w", err)
		}
		if entry == nil {
			break
		}
		if entry.Tag != dwarf.TagCompileUnit {
			continue
		}
		lr, err := data.LineReader(entry)
		if err != nil || lr == nil {
			continue
		}
		var le dwarf.LineEntry
		for {
			if err := lr.Next(&le); err != nil {
				break
			}
			if le.File == nil {
				continue
			}
			r.rows = append(r.rows, row{
				Address: le.Address,
				File:    le.File.Name,
				Line:    le.Line,
				Column:  le.Column,
			})
		}
	}
	sort.Slice(r.rows, func(i, j int) bool { return r.rows[i].Address < r.rows[j].Address })
	return r, nil
}

// FindLocation returns the source location covering addr: the row with
// the greatest address not exceeding addr. Returns false if addr lies
// outside the line-program range or the covering row lacks file/line
// (spec.md section 4.4).
func (r *Resolver) FindLocation(addr uint64) (location.SourceLocation, bool) {
	if len(r.rows) == 0 || addr < r.rows[0].Address {
		return location.SourceLocation{}, false
	}
	i := sort.Search(len(r.rows), func(i int) bool { return r.rows[i].Address > addr }) - 1
	if i < 0 {
		return location.SourceLocation{}, false
	}
	hit := r.rows[i]
	if hit.File == "" || hit.Line <= 0 {
		return location.SourceLocation{}, false
	}
	return location.New(hit.File, hit.Line, hit.Column), true
}
