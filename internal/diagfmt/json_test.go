package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"uscript/internal/diag"
	"uscript/internal/source"
	"uscript/internal/token"
)

func TestJSONOutput(t *testing.T) {
	bag, fs, _ := testBag(t)
	var sb strings.Builder
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename}
	if err := JSON(&sb, bag, fs, opts); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal([]byte(sb.String()), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "US2002" {
		t.Fatalf("severity/code = %q/%q", d.Severity, d.Code)
	}
	if d.Location.File != "Pawn.uc" {
		t.Fatalf("file = %q", d.Location.File)
	}
	if d.Location.StartByte != 6 || d.Location.EndByte != 10 {
		t.Fatalf("bytes = %d..%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 1 || d.Location.StartCol != 7 {
		t.Fatalf("position = %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
}

func TestJSONMaxTruncates(t *testing.T) {
	bag, fs, span := testBag(t)
	bag.Add(diag.New(diag.SevWarning, diag.SemaTypeNotFound, span, "unknown type"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Fatalf("count = %d, want truncation to 1", out.Count)
	}
	if bag.Len() != 2 {
		t.Fatalf("truncation touched the bag")
	}
}

func TestJSONNotesGated(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("Actor.uc", []byte("class Actor extends Object;\n"))
	span := source.Span{File: id, Start: 0, End: 5}
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevInfo, diag.SemaReplicationInherited, span, "already replicated").
		WithNote(span, "inherited from here"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Fatalf("notes included without IncludeNotes")
	}
	out = BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeNotes: true})
	if len(out.Diagnostics[0].Notes) != 1 {
		t.Fatalf("notes missing with IncludeNotes")
	}
}

func TestFormatTokensPretty(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("Actor.uc", []byte("class Actor"))
	tokens := []token.Token{
		{Kind: token.KwClass, Span: source.Span{File: id, Start: 0, End: 5}, Text: "class"},
		{Kind: token.Ident, Span: source.Span{File: id, Start: 6, End: 11}, Text: "Actor",
			Leading: []token.Trivia{{Kind: token.TriviaSpace}}},
		{Kind: token.EOF, Span: source.Span{File: id, Start: 11, End: 11}},
	}

	var sb strings.Builder
	if err := FormatTokensPretty(&sb, tokens, fs); err != nil {
		t.Fatalf("FormatTokensPretty: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, `"class" at 1:1-1:6`) {
		t.Fatalf("class token missing:\n%s", out)
	}
	if !strings.Contains(out, "(leading: Space)") {
		t.Fatalf("leading trivia missing:\n%s", out)
	}
	if !strings.Contains(out, "EOF") {
		t.Fatalf("EOF missing:\n%s", out)
	}
}

func TestFormatTokensJSON(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("Actor.uc", []byte("class"))
	tokens := []token.Token{
		{Kind: token.KwClass, Span: source.Span{File: id, Start: 0, End: 5}, Text: "class"},
		{Kind: token.EOF, Span: source.Span{File: id, Start: 5, End: 5}},
	}

	var sb strings.Builder
	if err := FormatTokensJSON(&sb, tokens); err != nil {
		t.Fatalf("FormatTokensJSON: %v", err)
	}
	var out []TokenOutput
	if err := json.Unmarshal([]byte(sb.String()), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("token count = %d", len(out))
	}
	if out[0].Kind != "class" {
		t.Fatalf("kind = %q", out[0].Kind)
	}
}
