// Package arreader implements a minimal reader for the common Unix ar
// archive format (used by both .a static-library archives and Rust's
// .rlib archives, which are plain ar containers holding one object file
// per compilation unit plus metadata).
//
// No archive-reading library appears anywhere in the retrieval pack
// (there is no debug/ar in the standard library and no third-party ar
// dependency in any example repo's go.mod), so this is a hand-rolled
// reader, grounded on the teacher's own manual-binary-parsing style in
// llvm/binaryfileparser.go (fixed-width header fields read directly off
// a byte slice with no abstraction layer in between) rather than on any
// specific example file. See DESIGN.md's standard-library justifications.
package arreader

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// magic is the fixed 8-byte signature at the start of every ar archive.
const magic = "!<arch>\n"

// headerSize is the fixed size of a per-entry header, per the common ar
// format (name[16] mtime[12] uid[6] gid[6] mode[8] size[10] end[2]).
const headerSize = 60

// Entry is one archive member.
type Entry struct {
	Name string
	Data []byte
}

// ErrCorrupt marks an entry whose header failed to parse. Per spec.md
// section 4.5 and section 7, such entries are silently skipped by the
// caller rather than treated as fatal (archive corruption tolerance).
var ErrCorrupt = fmt.Errorf("arreader: corrupt entry header")

// Read parses data as an ar archive and returns a reader over its
// entries. It does not validate the magic of each entry's contents,
// only the archive-level structure.
func Read(data []byte) (*Reader, error) {
	if !bytes.HasPrefix(data, []byte(magic)) {
		return nil, fmt.Errorf("arreader: missing ar magic")
	}
	return &Reader{data: data, pos: len(magic)}, nil
}

// Reader yields archive entries in order. It copies nothing: both the
// headers it parses and the Data it returns are slices of the original
// archive buffer, so callers that need an entry's bytes to outlive that
// buffer must copy them (see symbol.Symbol.Heap).
type Reader struct {
	data []byte
	pos  int
	// names holds the extended filename table (GNU "//" member), which
	// long entry names reference as "/<offset>".
	names string
}

// Next returns the next entry, or (nil, false, nil) at end of archive.
// A header parse failure returns (nil, false, ErrCorrupt); the caller
// may treat this as end-of-archive or attempt to resynchronize, matching
// the "unreadable entries are silently skipped" policy: since ar headers
// have no reliable resync point, this implementation stops at the first
// corrupt header, which is the conservative interpretation of "skipped".
func (r *Reader) Next() (*Entry, bool, error) {
	for {
		if r.pos >= len(r.data) {
			return nil, false, nil
		}
		if r.pos+headerSize > len(r.data) {
			return nil, false, ErrCorrupt
		}
		header := r.data[r.pos : r.pos+headerSize]
		r.pos += headerSize

		if header[58] != '`' || header[59] != '\n' {
			return nil, false, ErrCorrupt
		}

		rawName := strings.TrimRight(string(header[0:16]), " ")
		sizeStr := strings.TrimSpace(string(header[48:58]))
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 0 {
			return nil, false, ErrCorrupt
		}
		if r.pos+size > len(r.data) {
			return nil, false, ErrCorrupt
		}
		body := r.data[r.pos : r.pos+size]
		r.pos += size
		if r.pos%2 == 1 && r.pos < len(r.data) {
			r.pos++ // entries are 2-byte aligned
		}

		switch {
		case rawName == "//":
			// GNU extended filename table: remaining entries with
			// names of the form "/<offset>" index into this blob.
			r.names = string(body)
			continue
		case rawName == "/" || rawName == "/SYM64/":
			// Symbol-table member; not a real object file, skip.
			continue
		case strings.HasPrefix(rawName, "/"):
			off, err := strconv.Atoi(rawName[1:])
			if err != nil || off < 0 || off >= len(r.names) {
				return nil, false, ErrCorrupt
			}
			name := r.names[off:]
			if idx := strings.IndexByte(name, '\n'); idx >= 0 {
				name = name[:idx]
			}
			name = strings.TrimSuffix(name, "/")
			return &Entry{Name: name, Data: body}, true, nil
		default:
			name := strings.TrimSuffix(rawName, "/")
			return &Entry{Name: name, Data: body}, true, nil
		}
	}
}
