package source

import "bytes"

// FileID is the index of a script in its FileSet.
type FileID uint32

// FileFlags records how a file entered the set and what Load normalised away.
type FileFlags uint8

const (
	// FileVirtual: содержимое пришло из памяти (тесты, stdin), на диске файла нет.
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM: Load срезал UTF-8 BOM.
	FileHadBOM
	// FileNormalizedCRLF: Load свернул \r\n в \n.
	FileNormalizedCRLF
)

// File is one loaded script. Spans and LineIdx refer to the normalised Content.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte // sha256(Content), part of the cache key
	Flags   FileFlags
}

// Restore re-applies the BOM and CRLF line endings stripped by Load, so
// rewritten content can go back to disk in its original form.
func (f *File) Restore(content []byte) []byte {
	out := content
	if f.Flags&FileNormalizedCRLF != 0 {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	if f.Flags&FileHadBOM != 0 {
		out = append([]byte{0xEF, 0xBB, 0xBF}, out...)
	}
	return out
}

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}
