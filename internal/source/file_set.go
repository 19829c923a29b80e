package source

import (
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet manages the files touched during one run and resolves byte
// offsets into line/column positions.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes, computes LineIdx, and returns a
// new FileID. It always creates a new FileID even if a file with the same
// path already exists; the index points at the latest version.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Len returns the number of files in the set.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// GetLine returns the text of the given 1-based line, without the trailing
// newline. Out-of-range line numbers yield the empty string.
func (f *File) GetLine(lineNum uint32) string {
	start, end, ok := f.lineBounds(lineNum)
	if !ok {
		return ""
	}
	return string(f.Content[start:end])
}

// ReplaceLine returns a copy of the file content with the given 1-based
// line replaced. The trailing newline is preserved. Used by the degraded
// editing path where byte offsets are unavailable.
func (f *File) ReplaceLine(lineNum uint32, newText string) ([]byte, bool) {
	start, end, ok := f.lineBounds(lineNum)
	if !ok {
		return nil, false
	}
	out := make([]byte, 0, len(f.Content)-int(end-start)+len(newText))
	out = append(out, f.Content[:start]...)
	out = append(out, newText...)
	out = append(out, f.Content[end:]...)
	return out, true
}

// LineSpan returns the byte span covering the given 1-based line,
// excluding the trailing newline.
func (f *File) LineSpan(lineNum uint32) (Span, bool) {
	start, end, ok := f.lineBounds(lineNum)
	if !ok {
		return Span{}, false
	}
	return Span{File: f.ID, Start: start, End: end}, true
}

func (f *File) lineBounds(lineNum uint32) (start, end uint32, ok bool) {
	if lineNum == 0 {
		return 0, 0, false
	}

	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return 0, 0, false
	}

	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}

	if start > lenContent {
		return 0, 0, false
	}
	if end > lenContent {
		end = lenContent
	}
	return start, end, true
}
