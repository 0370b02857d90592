// Package parser builds the arena parse tree from a token stream. Recovery
// is local: a malformed construct reports and skips to a sync point, and a
// missing semicolon is synthesized so one omitted terminator (common while
// editing) never cascades.
package parser

import (
	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/names"
	"uscript/internal/source"
	"uscript/internal/token"
)

// Options configures a parse run.
type Options struct {
	Reporter  diag.Reporter
	MaxErrors uint
}

// Result carries the parsed file root.
type Result struct {
	File ast.FileID
}

// Parser holds the state for parsing a single file.
type Parser struct {
	tokens   []token.Token
	pos      int
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	errCount uint
}

// ParseFile parses one file's tokens into the builder's arenas.
func ParseFile(tokens []token.Token, builder *ast.Builder, opts Options) Result {
	span := source.Span{}
	if len(tokens) > 0 {
		span = tokens[0].Span.Cover(tokens[len(tokens)-1].Span)
	}
	p := Parser{
		tokens: tokens,
		arenas: builder,
		file:   builder.Files.New(span),
		opts:   opts,
	}
	p.parseFile()
	return Result{File: p.file}
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		if n := len(p.tokens); n > 0 {
			return p.tokens[n-1] // EOF
		}
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) next() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	} else {
		p.pos = len(p.tokens)
	}
	return tok
}

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) eat(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.next(), true
	}
	return token.Token{}, false
}

func (p *Parser) eof() bool { return p.peek().Kind == token.EOF }

func (p *Parser) span() source.Span { return p.peek().Span }

// lastSpan is the span of the previously consumed token.
func (p *Parser) lastSpan() source.Span {
	if p.pos == 0 || p.pos > len(p.tokens) {
		return p.span()
	}
	return p.tokens[p.pos-1].Span
}

func (p *Parser) report(code diag.Code, sp source.Span, msg string) {
	p.errCount++
	if p.opts.Reporter == nil {
		return
	}
	if p.opts.MaxErrors > 0 && p.errCount > p.opts.MaxErrors {
		return
	}
	p.opts.Reporter.Report(diag.New(diag.SevError, code, sp, msg))
}

// expect consumes a token of the wanted kind or reports and stays put.
func (p *Parser) expect(k token.Kind, code diag.Code, what string) (token.Token, bool) {
	if tok, ok := p.eat(k); ok {
		return tok, true
	}
	p.report(code, p.span(), "expected "+what+", found '"+p.peek().Text+"'")
	return token.Token{}, false
}

// expectSemicolon synthesizes a missing terminator: it reports once and
// continues as if the semicolon were present, keeping the tree shape
// consistent for everything that follows.
func (p *Parser) expectSemicolon() token.Token {
	if tok, ok := p.eat(token.Semicolon); ok {
		return tok
	}
	sp := p.lastSpan()
	sp.Start = sp.End
	p.report(diag.SynExpectSemicolon, sp, "missing ';'")
	return token.Token{Kind: token.Semicolon, Span: sp, Synthetic: true}
}

func (p *Parser) ident() (ast.Ident, bool) {
	tok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "identifier")
	if !ok {
		return ast.Ident{}, false
	}
	return ast.Ident{Name: names.ToName(tok.Text), Span: tok.Span}, true
}

func identFromToken(tok token.Token) ast.Ident {
	return ast.Ident{Name: names.ToName(tok.Text), Span: tok.Span}
}

// identLoose accepts an identifier or any keyword usable as a member name.
func (p *Parser) identLoose() (ast.Ident, bool) {
	tok := p.peek()
	if tok.Kind == token.Ident || tok.IsKeyword() {
		p.next()
		return ast.Ident{Name: names.ToName(tok.Text), Span: tok.Span}, true
	}
	p.report(diag.SynExpectIdentifier, tok.Span, "expected identifier, found '"+tok.Text+"'")
	return ast.Ident{}, false
}

// syncTo skips tokens until one of the kinds (or EOF); the sync token is
// left for the caller.
func (p *Parser) syncTo(kinds ...token.Kind) {
	for !p.eof() {
		k := p.peek().Kind
		for _, want := range kinds {
			if k == want {
				return
			}
		}
		p.next()
	}
}

// syncDecl skips to the start of the next member declaration.
func (p *Parser) syncDecl() {
	for !p.eof() {
		switch p.peek().Kind {
		case token.Semicolon:
			p.next()
			return
		case token.KwConst, token.KwVar, token.KwEnum, token.KwStruct,
			token.KwFunction, token.KwEvent, token.KwOperator,
			token.KwPreOperator, token.KwPostOperator, token.KwDelegate,
			token.KwState, token.KwReplication, token.KwDefaultProperties,
			token.KwNative, token.KwStatic, token.KwFinal, token.KwSimulated:
			return
		}
		p.next()
	}
}
