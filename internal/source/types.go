package source

import (
	"fmt"
	"strings"
)

// FileID indexes a file in its FileSet; ids start at 1.
type FileID uint32

// FileFlags records what Add did to the bytes before lexing.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // not read from disk
	FileHadBOM                               // a UTF-8 BOM was stripped
	FileNormalizedCRLF                       // \r\n became \n
)

func (f FileFlags) Has(flag FileFlags) bool { return f&flag != 0 }

func (f FileFlags) String() string {
	var parts []string
	for _, fl := range []struct {
		bit  FileFlags
		name string
	}{{FileVirtual, "virtual"}, {FileHadBOM, "bom"}, {FileNormalizedCRLF, "crlf"}} {
		if f.Has(fl.bit) {
			parts = append(parts, fl.name)
		}
	}
	return strings.Join(parts, "|")
}

// File is one loaded .ll file. Content is the normalized text every span
// points into; Hash is its SHA-256 and keys the caches.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // смещения '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string {
	return fmt.Sprintf("%d:%d", lc.Line, lc.Col)
}
