// Package refwalker implements the Reference Walker from spec.md section
// 4.5: given a list of object-file and archive paths, it parses each
// object file, builds its Object Index, and yields one Edge per
// relocation target, with lazy per-edge source-location resolution.
//
// Grounded on llvm/binaryfileparser.go's section-by-section ELF walk for
// the per-object-file parse, and on the original Rust's scan_objects
// archive-then-object dispatch (original_source/src/symbol_graph.rs) for
// the archive-vs-raw-object dispatch and the reused-entry-buffer
// discipline.
package refwalker

import (
	"bytes"
	"debug/elf"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/trailwatch/apiscan/pkg/addrloc"
	"github.com/trailwatch/apiscan/pkg/arreader"
	"github.com/trailwatch/apiscan/pkg/binindex"
	"github.com/trailwatch/apiscan/pkg/graphedge"
	"github.com/trailwatch/apiscan/pkg/location"
	"github.com/trailwatch/apiscan/pkg/objectindex"
)

// ArchiveLocation identifies a single member of an archive file.
type ArchiveLocation struct {
	ArchivePath string
	EntryName   string
}

// ObjectFilePath identifies where an object file's bytes came from,
// either a standalone file or a member of an archive (spec.md section
// 4.5).
type ObjectFilePath struct {
	Path    string
	Archive *ArchiveLocation
}

func (p ObjectFilePath) String() string {
	if p.Archive != nil {
		return fmt.Sprintf("%s(%s)", p.Archive.ArchivePath, p.Archive.EntryName)
	}
	return p.Path
}

// isArchive reports whether path's extension marks it as an archive
// container, matching only "rlib" and "a" per spec.md section 9 (the
// reference source's literal ".a" comparison is a documented bug: an
// extension never contains its leading dot).
func isArchive(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return ext == "rlib" || ext == "a"
}

// Walker walks reference-walker inputs against a prebuilt binary index
// and address resolver.
type Walker struct {
	Bin      *binindex.Index
	Resolver *addrloc.Resolver
	Log      *slog.Logger
	// BinPath is the linked binary's path, recorded into each edge's
	// DebugData when Debug is set.
	BinPath string
	// Debug gates construction of graphedge.UsageDebugData per edge
	// (SPEC_FULL.md section 12.2); left false avoids the extra
	// allocation and string work on the common path.
	Debug bool
}

// New builds a Walker against the linked binary at binPath. log may be
// nil, in which case a discard logger is used. debug gates per-edge
// UsageDebugData population.
func New(bin *binindex.Index, resolver *addrloc.Resolver, log *slog.Logger, binPath string, debug bool) *Walker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Walker{Bin: bin, Resolver: resolver, Log: log, BinPath: binPath, Debug: debug}
}

// Walk processes every input path and returns the edges discovered
// across all of them, in the deterministic order required by spec.md
// section 5: object files in the order given, sections in natural
// order, relocations in natural order.
func (w *Walker) Walk(paths []string) ([]graphedge.Edge, error) {
	var edges []graphedge.Edge
	for _, p := range paths {
		if isArchive(p) {
			more, err := w.walkArchive(p)
			if err != nil {
				return nil, err
			}
			edges = append(edges, more...)
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("refwalker: reading %s: %w", p, err)
		}
		more, err := w.walkObject(ObjectFilePath{Path: p}, data)
		if err != nil {
			return nil, fmt.Errorf("refwalker: processing %s: %w", p, err)
		}
		edges = append(edges, more...)
	}
	return edges, nil
}

// walkArchive iterates an ar archive's entries and processes each one as
// an object file. A member that fails to parse as an object file is
// skipped and iteration continues; a corrupt entry header ends the
// archive there (logged at debug level), keeping the edges of the
// entries before it and returning no error.
func (w *Walker) walkArchive(archivePath string) ([]graphedge.Edge, error) {
	raw, err := os.ReadFile(archivePath)
	if err != nil {
		return nil, fmt.Errorf("refwalker: reading archive %s: %w", archivePath, err)
	}
	reader, err := arreader.Read(raw)
	if err != nil {
		return nil, fmt.Errorf("refwalker: opening archive %s: %w", archivePath, err)
	}

	var edges []graphedge.Edge
	for {
		entry, ok, err := reader.Next()
		if err != nil {
			w.Log.Debug("skipping unreadable archive entry", "archive", archivePath, "error", err)
			break
		}
		if !ok {
			break
		}
		ofp := ObjectFilePath{Path: entry.Name, Archive: &ArchiveLocation{ArchivePath: archivePath, EntryName: entry.Name}}
		more, err := w.walkObject(ofp, entry.Data)
		if err != nil {
			w.Log.Debug("skipping unparseable archive member", "entry", ofp.String(), "error", err)
			continue
		}
		edges = append(edges, more...)
	}
	return edges, nil
}

// walkObject implements the per-object-file processing of spec.md
// section 4.5 step 2-3.
func (w *Walker) walkObject(ofp ObjectFilePath, data []byte) ([]graphedge.Edge, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing object %s: %w", ofp, err)
	}
	idx, err := objectindex.Build(f)
	if err != nil {
		return nil, fmt.Errorf("indexing object %s: %w", ofp, err)
	}

	var edges []graphedge.Edge
	for secIdx, sec := range f.Sections {
		sectionIndex := elf.SectionIndex(secIdx)
		first, ok := idx.FirstSymbol(sectionIndex)
		if !ok {
			w.Log.Debug("section has no first symbol, skipping", "object", ofp.String(), "section", sec.Name)
			continue
		}
		fromAddr, ok := w.Bin.Address(first.Symbol)
		if !ok {
			w.Log.Debug("section's first symbol not present in binary, skipping", "object", ofp.String(), "section", sec.Name, "symbol", first.Symbol.String())
			continue
		}
		debugInfo, ok := w.Bin.DebugInfo(first.Symbol)
		if !ok {
			w.Log.Debug("section's first symbol has no debug info, skipping", "object", ofp.String(), "section", sec.Name, "symbol", first.Symbol.String())
			continue
		}
		fallback := debugInfo.SourceLocation()

		// Built once per section, not per relocation, matching the
		// original's process_object_file_bytes.
		var debugData *graphedge.UsageDebugData
		if w.Debug {
			debugData = &graphedge.UsageDebugData{
				BinPath:        w.BinPath,
				ObjectFilePath: ofp.String(),
				SectionName:    sec.Name,
			}
		}

		relocs := idx.Relocations(sectionIndex)
		for _, reloc := range relocs {
			visited := make(map[elf.SectionIndex]bool)
			targetSyms, err := idx.AddTargetSymbols(reloc, nil, visited)
			if err != nil {
				return nil, fmt.Errorf("resolving relocation in %s section %s: %w", ofp, sec.Name, err)
			}
			addr := fromAddr + reloc.Offset - first.Offset
			resolver := w.Resolver
			for _, target := range targetSyms {
				loc := graphedge.NewLazyLocation(func() location.SourceLocation {
					if resolved, ok := resolver.FindLocation(addr); ok {
						return resolved
					}
					return fallback
				})
				edges = append(edges, graphedge.Edge{
					From:      first.Symbol.Heap().Key(),
					To:        target.Heap().Key(),
					Location:  loc,
					DebugData: debugData,
				})
			}
		}
	}
	return edges, nil
}
