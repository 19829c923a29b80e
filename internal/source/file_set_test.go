package source

import (
	"bytes"
	"testing"
)

func TestAddVirtualAndGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.ts", []byte("const x = 1;\nconst y = 2;\nconst z = 3;"))
	f := fs.Get(id)

	if f.Flags&FileVirtual == 0 {
		t.Fatalf("expected FileVirtual flag")
	}
	if got := f.GetLine(1); got != "const x = 1;" {
		t.Fatalf("line 1 = %q", got)
	}
	if got := f.GetLine(3); got != "const z = 3;" {
		t.Fatalf("line 3 = %q", got)
	}
	if got := f.GetLine(4); got != "" {
		t.Fatalf("line 4 should be empty, got %q", got)
	}
	if got := f.LineCount(); got != 3 {
		t.Fatalf("LineCount = %d, want 3", got)
	}
}

func TestReplaceLinePreservesNewlines(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("b.ts", []byte("one\ntwo\nthree\n"))
	f := fs.Get(id)

	out, ok := f.ReplaceLine(2, "TWO")
	if !ok {
		t.Fatalf("ReplaceLine failed")
	}
	if string(out) != "one\nTWO\nthree\n" {
		t.Fatalf("ReplaceLine = %q", out)
	}

	if _, ok := f.ReplaceLine(0, "x"); ok {
		t.Fatalf("line 0 must be rejected")
	}
	if _, ok := f.ReplaceLine(5, "x"); ok {
		t.Fatalf("out-of-range line must be rejected")
	}
}

func TestResolveSpan(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("c.ts", []byte("let a: any;\nlet b: any;\n"))

	// "any" на первой строке: offset 7..10
	start, end := fs.Resolve(Span{File: id, Start: 7, End: 10})
	if start.Line != 1 || start.Col != 8 {
		t.Fatalf("line 1 start = %+v", start)
	}
	if end.Line != 1 || end.Col != 11 {
		t.Fatalf("line 1 end = %+v", end)
	}

	// "any" на второй строке: offset 19..22
	start, end = fs.Resolve(Span{File: id, Start: 19, End: 22})
	if start.Line != 2 || start.Col != 8 {
		t.Fatalf("line 2 start = %+v", start)
	}
	if end.Line != 2 || end.Col != 11 {
		t.Fatalf("line 2 end = %+v", end)
	}

	// перенос в offset 11 закрывает первую строку
	nl, _ := fs.Resolve(Span{File: id, Start: 11, End: 11})
	if nl.Line != 1 || nl.Col != 12 {
		t.Fatalf("newline offset = %+v", nl)
	}
}

func TestLoadNormalizesCRLF(t *testing.T) {
	content, changed := normalizeCRLF([]byte("a\r\nb\r\n"))
	if !changed || string(content) != "a\nb\n" {
		t.Fatalf("normalizeCRLF = %q changed=%v", content, changed)
	}

	content, changed = normalizeCRLF([]byte("plain"))
	if changed || string(content) != "plain" {
		t.Fatalf("normalizeCRLF should be a no-op, got %q", content)
	}
}

func TestDenormalizeRestoresOriginalForm(t *testing.T) {
	raw := []byte("\xEF\xBB\xBFa\r\nb\r\n")

	content, hadBOM := removeBOM(raw)
	content, hadCRLF := normalizeCRLF(content)
	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}

	if got := Denormalize(content, flags); !bytes.Equal(got, raw) {
		t.Fatalf("Denormalize = %q, want %q", got, raw)
	}
	if got := Denormalize([]byte("plain\n"), 0); string(got) != "plain\n" {
		t.Fatalf("plain file must pass through, got %q", got)
	}
}
