package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNormalizesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.uc")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFclass A;\r\nvar int X;\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	file := fs.Get(id)
	if got := string(file.Content); got != "class A;\nvar int X;\n" {
		t.Fatalf("content = %q", got)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b", file.Flags)
	}
}

func TestLineColResolution(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.uc", []byte("one\ntwo\nthree\n"))
	sp := Span{File: id, Start: 4, End: 7} // "two"
	start, end := fs.Resolve(sp)
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("start = %d:%d", start.Line, start.Col)
	}
	if end.Line != 2 || end.Col != 4 {
		t.Fatalf("end = %d:%d", end.Line, end.Col)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.uc", []byte("alpha\nbeta\ngamma"))
	file := fs.Get(id)
	if got := file.GetLine(2); got != "beta" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := file.GetLine(3); got != "gamma" {
		t.Fatalf("line 3 = %q", got)
	}
	if got := file.GetLine(9); got != "" {
		t.Fatalf("out of range line = %q", got)
	}
}

func TestGetLatestTracksReplacement(t *testing.T) {
	fs := NewFileSet()
	first := fs.Add("a.uc", []byte("class A;"), 0)
	second := fs.Add("a.uc", []byte("class A extends Object;"), 0)
	got, ok := fs.GetLatest("a.uc")
	if !ok || got != second {
		t.Fatalf("latest = %v (ok=%v), want %v", got, ok, second)
	}
	if !fs.Has(first) {
		t.Fatalf("older revision dropped")
	}
}

func TestSpanCoverAndContains(t *testing.T) {
	a := Span{File: 1, Start: 2, End: 5}
	b := Span{File: 1, Start: 8, End: 12}
	cover := a.Cover(b)
	if cover.Start != 2 || cover.End != 12 {
		t.Fatalf("cover = %+v", cover)
	}
	if !cover.Contains(7) || cover.Contains(12) {
		t.Fatalf("contains is off: %+v", cover)
	}
	if got := a.Cover(Span{File: 2}); got != a {
		t.Fatalf("cover across files changed the span: %+v", got)
	}
}
