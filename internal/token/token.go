package token

import "uscript/internal/source"

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
	// Synthetic marks tokens the parser invented during error recovery
	// (e.g. a missing semicolon). Synthetic tokens have empty spans and
	// no text.
	Synthetic bool
}

// IsIdent reports whether the token can serve as an identifier. Keywords
// that double as member names in this dialect (e.g. "default", "object")
// are not included; the parser handles those contextually.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsKeyword reports whether the token is any reserved word.
func (t Token) IsKeyword() bool {
	_, ok := keywordTexts[t.Kind]
	return ok
}
