package diagfmt

import (
	"strings"
	"testing"

	"uscript/internal/diag"
	"uscript/internal/source"
)

func testBag(t *testing.T) (*diag.Bag, *source.FileSet, source.Span) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("Pawn.uc", []byte("class Pawn extends Object\nvar int Health\n"))
	span := source.Span{File: id, Start: 6, End: 10} // "Pawn"
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.SynExpectSemicolon, span, "expected ';' after class declaration"))
	return bag, fs, span
}

func TestPrettyPlain(t *testing.T) {
	bag, fs, _ := testBag(t)
	var sb strings.Builder
	if err := Pretty(&sb, bag, fs, PrettyOpts{}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "Pawn.uc:1:7: ERROR US2002: expected ';' after class declaration") {
		t.Fatalf("head line missing:\n%s", out)
	}
	if !strings.Contains(out, "class Pawn extends Object") {
		t.Fatalf("context line missing:\n%s", out)
	}
	if !strings.Contains(out, "      ^~~~") {
		t.Fatalf("underline missing or misaligned:\n%s", out)
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("Actor.uc", []byte("class Actor extends Object;\n"))
	span := source.Span{File: id, Start: 6, End: 11}
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.SemaDuplicateClassName, span, "class 'Actor' hides an earlier declaration").
		WithNote(span, "previous declaration here"))

	var sb strings.Builder
	if err := Pretty(&sb, bag, fs, PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if !strings.Contains(sb.String(), "note: Actor.uc:1:7: previous declaration here") {
		t.Fatalf("note missing:\n%s", sb.String())
	}

	sb.Reset()
	if err := Pretty(&sb, bag, fs, PrettyOpts{}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if strings.Contains(sb.String(), "note:") {
		t.Fatalf("notes printed without ShowNotes:\n%s", sb.String())
	}
}

func TestPrettyWidthClip(t *testing.T) {
	bag, fs, _ := testBag(t)
	var sb strings.Builder
	if err := Pretty(&sb, bag, fs, PrettyOpts{Width: 24}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		if len(line) > 24+4 { // indent is not counted against the width
			t.Fatalf("line too long: %q", line)
		}
	}
	if !strings.Contains(sb.String(), "...") {
		t.Fatalf("clip marker missing:\n%s", sb.String())
	}
}

func TestFormatPathModes(t *testing.T) {
	if got := formatPath("/src/Engine/Pawn.uc", PathModeBasename, ""); got != "Pawn.uc" {
		t.Fatalf("basename = %q", got)
	}
	if got := formatPath("/src/Engine/Pawn.uc", PathModeAuto, ""); got != "/src/Engine/Pawn.uc" {
		t.Fatalf("auto = %q", got)
	}
	if got := formatPath("/src/Engine/Pawn.uc", PathModeRelative, "/src"); got != "Engine/Pawn.uc" {
		t.Fatalf("relative = %q", got)
	}
}

func TestGoldenStable(t *testing.T) {
	bag, fs, span := testBag(t)
	bag.Add(diag.New(diag.SevWarning, diag.SemaTypeNotFound, span, "unknown type 'Weapon'"))

	first := GoldenString(bag, fs)
	second := GoldenString(bag, fs)
	if first != second {
		t.Fatalf("golden output not stable")
	}
	lines := strings.Split(strings.TrimRight(first, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ERROR US2002 Pawn.uc:1:7") {
		t.Fatalf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "WARNING US4001 Pawn.uc:1:7") {
		t.Fatalf("second line = %q", lines[1])
	}
}
