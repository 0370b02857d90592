// Package lexer turns source bytes into tokens, collecting comment trivia
// onto the next significant token so later passes can recover doc comments.
package lexer

import (
	"uscript/internal/diag"
	"uscript/internal/source"
	"uscript/internal/token"
)

// Options configures lexer construction.
type Options struct {
	Reporter diag.Reporter
}

// Lexer scans one file. It is a single forward pass; tokens come out with
// their leading trivia already attached.
type Lexer struct {
	file *source.File
	off  uint32
	opts Options
	hold []token.Trivia
}

// New creates a lexer over the file.
func New(file *source.File, opts Options) *Lexer {
	return &Lexer{file: file, opts: opts}
}

// Scan collects every token of the file, EOF included.
func Scan(file *source.File, reporter diag.Reporter) []token.Token {
	lx := New(file, Options{Reporter: reporter})
	tokens := make([]token.Token, 0, len(file.Content)/4+8)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

func (lx *Lexer) eof() bool { return lx.off >= uint32(len(lx.file.Content)) }

func (lx *Lexer) peek() byte {
	if lx.eof() {
		return 0
	}
	return lx.file.Content[lx.off]
}

func (lx *Lexer) peekAt(n uint32) byte {
	if lx.off+n >= uint32(len(lx.file.Content)) {
		return 0
	}
	return lx.file.Content[lx.off+n]
}

func (lx *Lexer) span(start uint32) source.Span {
	return source.Span{File: lx.file.ID, Start: start, End: lx.off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

// Next returns the next significant token with its leading trivia.
// After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	lx.collectTrivia()

	if lx.eof() {
		return token.Token{
			Kind: token.EOF,
			Span: source.Span{File: lx.file.ID, Start: lx.off, End: lx.off},
		}
	}

	ch := lx.peek()
	var tok token.Token
	switch {
	case isIdentStart(ch):
		tok = lx.scanIdentOrKeyword()
	case isDigit(ch) || (ch == '.' && isDigit(lx.peekAt(1))):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanString()
	case ch == '\'':
		tok = lx.scanNameLit()
	default:
		tok = lx.scanOperator()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.off
	for !lx.eof() && isIdentContinue(lx.peek()) {
		lx.off++
	}
	sp := lx.span(start)
	text := lx.text(sp)
	return token.Token{Kind: token.LookupKeyword(text), Span: sp, Text: text}
}

func (lx *Lexer) scanNumber() token.Token {
	start := lx.off
	kind := token.IntLit

	if lx.peek() == '0' && (lx.peekAt(1) == 'x' || lx.peekAt(1) == 'X') {
		lx.off += 2
		for !lx.eof() && isHexDigit(lx.peek()) {
			lx.off++
		}
		sp := lx.span(start)
		if sp.Len() == 2 {
			lx.report(diag.LexBadNumber, sp, "hexadecimal literal has no digits")
		}
		return token.Token{Kind: token.IntLit, Span: sp, Text: lx.text(sp)}
	}

	for !lx.eof() && isDigit(lx.peek()) {
		lx.off++
	}
	if lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		kind = token.FloatLit
		lx.off++
		for !lx.eof() && isDigit(lx.peek()) {
			lx.off++
		}
	}
	// Optional exponent and float suffix.
	if c := lx.peek(); c == 'e' || c == 'E' {
		next := lx.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(lx.peekAt(2))) {
			kind = token.FloatLit
			lx.off += 2
			for !lx.eof() && isDigit(lx.peek()) {
				lx.off++
			}
		}
	}
	if c := lx.peek(); c == 'f' || c == 'F' {
		kind = token.FloatLit
		lx.off++
	}
	sp := lx.span(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) scanString() token.Token {
	start := lx.off
	lx.off++ // opening quote
	for !lx.eof() {
		c := lx.peek()
		if c == '\\' && lx.off+1 < uint32(len(lx.file.Content)) {
			lx.off += 2
			continue
		}
		if c == '"' || c == '\n' {
			break
		}
		lx.off++
	}
	closed := false
	if lx.peek() == '"' {
		lx.off++
		closed = true
	} else {
		lx.report(diag.LexUnterminatedString, lx.span(start), "unterminated string literal")
	}
	sp := lx.span(start)
	return token.Token{Kind: token.StringLit, Span: sp, Text: unquote(lx.text(sp), closed)}
}

func (lx *Lexer) scanNameLit() token.Token {
	start := lx.off
	lx.off++ // opening quote
	for !lx.eof() && lx.peek() != '\'' && lx.peek() != '\n' {
		lx.off++
	}
	closed := false
	if lx.peek() == '\'' {
		lx.off++
		closed = true
	} else {
		lx.report(diag.LexUnterminatedName, lx.span(start), "unterminated name literal")
	}
	sp := lx.span(start)
	return token.Token{Kind: token.NameLit, Span: sp, Text: unquote(lx.text(sp), closed)}
}

var twoCharOps = map[string]token.Kind{
	"++": token.PlusPlus, "--": token.MinusMinus,
	"+=": token.PlusAssign, "-=": token.MinusAssign,
	"*=": token.StarAssign, "/=": token.SlashAssign,
	"$=": token.DollarAssign, "@=": token.AtAssign,
	"==": token.EqEq, "!=": token.BangEq, "~=": token.TildeEq,
	"<=": token.LtEq, ">=": token.GtEq,
	"<<": token.Shl, ">>": token.Shr,
	"&&": token.AndAnd, "||": token.OrOr, "^^": token.CaretCaret,
}

var oneCharOps = map[byte]token.Kind{
	'(': token.LParen, ')': token.RParen,
	'{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket,
	';': token.Semicolon, ',': token.Comma,
	'.': token.Dot, ':': token.Colon, '?': token.Question,
	'=': token.Assign, '+': token.Plus, '-': token.Minus,
	'*': token.Star, '/': token.Slash, '%': token.Percent,
	'$': token.Dollar, '@': token.At,
	'<': token.Lt, '>': token.Gt,
	'&': token.Amp, '|': token.Pipe, '^': token.Caret,
	'!': token.Bang, '~': token.Tilde,
}

func (lx *Lexer) scanOperator() token.Token {
	start := lx.off
	if lx.off+1 < uint32(len(lx.file.Content)) {
		pair := string(lx.file.Content[lx.off : lx.off+2])
		if kind, ok := twoCharOps[pair]; ok {
			lx.off += 2
			sp := lx.span(start)
			return token.Token{Kind: kind, Span: sp, Text: pair}
		}
	}
	ch := lx.peek()
	lx.off++
	sp := lx.span(start)
	if kind, ok := oneCharOps[ch]; ok {
		return token.Token{Kind: kind, Span: sp, Text: string(ch)}
	}
	lx.report(diag.LexUnknownChar, sp, "unknown character "+string(ch))
	return token.Token{Kind: token.Error, Span: sp, Text: string(ch)}
}

// unquote strips the delimiters off a literal; Text carries the payload
// while the span still covers the quotes.
func unquote(raw string, closed bool) string {
	if len(raw) == 0 {
		return raw
	}
	raw = raw[1:]
	if closed && len(raw) > 0 {
		raw = raw[:len(raw)-1]
	}
	return raw
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter == nil {
		return
	}
	lx.opts.Reporter.Report(diag.New(diag.SevError, code, sp, msg))
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
