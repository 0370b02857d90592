package lexer

import (
	"testing"

	"uscript/internal/diag"
	"uscript/internal/source"
	"uscript/internal/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.uc", []byte(src))
	bag := diag.NewBag(0)
	return Scan(fs.Get(id), diag.BagReporter{Bag: bag}), bag
}

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}
	return out
}

func TestScanKeywordsCaseInsensitive(t *testing.T) {
	tokens, bag := scanAll(t, "CLASS Foo EXTENDS Bar;")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	want := []token.Kind{
		token.KwClass, token.Ident, token.KwExtends, token.Ident,
		token.Semicolon, token.EOF,
	}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanNumbers(t *testing.T) {
	tokens, bag := scanAll(t, "42 0x1F 3.14 1e6 2.5f .5")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	want := []token.Kind{
		token.IntLit, token.IntLit, token.FloatLit,
		token.FloatLit, token.FloatLit, token.FloatLit, token.EOF,
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Fatalf("token %d (%q) = %v, want %v", i, tokens[i].Text, tokens[i].Kind, k)
		}
	}
}

func TestScanLiteralsStripQuotes(t *testing.T) {
	tokens, bag := scanAll(t, `"hello" 'Engine.Pawn'`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if tokens[0].Kind != token.StringLit || tokens[0].Text != "hello" {
		t.Fatalf("string = %v %q", tokens[0].Kind, tokens[0].Text)
	}
	if tokens[1].Kind != token.NameLit || tokens[1].Text != "Engine.Pawn" {
		t.Fatalf("name = %v %q", tokens[1].Kind, tokens[1].Text)
	}
	// The span still covers the quotes for accurate underlining.
	if tokens[0].Span.Len() != 7 {
		t.Fatalf("string span length = %d", tokens[0].Span.Len())
	}
}

func TestScanOperators(t *testing.T) {
	tokens, _ := scanAll(t, "a += b $ c ~= d ^^ e")
	want := []token.Kind{
		token.Ident, token.PlusAssign, token.Ident, token.Dollar,
		token.Ident, token.TildeEq, token.Ident, token.CaretCaret,
		token.Ident, token.EOF,
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Fatalf("token %d = %v, want %v", i, tokens[i].Kind, k)
		}
	}
}

func TestLeadingTriviaCarriesComments(t *testing.T) {
	tokens, bag := scanAll(t, `
// Health of the pawn.
// Never negative.
var int Health;
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if tokens[0].Kind != token.KwVar {
		t.Fatalf("first token = %v", tokens[0].Kind)
	}
	var comments []string
	for _, tr := range tokens[0].Leading {
		if tr.IsComment() {
			comments = append(comments, tr.Text)
		}
	}
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, bag := scanAll(t, "var /* open")
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LexUnterminatedBlockComment {
			found = true
		}
	}
	if !found {
		t.Fatalf("unterminated comment not reported")
	}
}

func TestUnknownCharacter(t *testing.T) {
	tokens, bag := scanAll(t, "a # b")
	if !bag.HasErrors() {
		t.Fatalf("expected an error for '#'")
	}
	if tokens[1].Kind != token.Error {
		t.Fatalf("token 1 = %v", tokens[1].Kind)
	}
}
