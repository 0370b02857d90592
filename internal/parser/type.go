package parser

import (
	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/names"
	"uscript/internal/token"
)

// parseType parses a type reference. Returns NoTypeID after reporting when
// no type starts here.
func (p *Parser) parseType() ast.TypeID {
	tok := p.peek()

	if tok.Kind.IsPrimitiveType() {
		p.next()
		return p.arenas.Types.New(ast.TypeNode{
			Kind: ast.TypePrimitive,
			Span: tok.Span,
			Prim: tok.Kind,
		})
	}

	switch tok.Kind {
	case token.KwArray:
		p.next()
		base := p.parseAngleArg()
		return p.arenas.Types.New(ast.TypeNode{
			Kind: ast.TypeArray,
			Span: tok.Span.Cover(p.lastSpan()),
			Base: base,
		})

	case token.KwMap:
		p.next()
		var key, value ast.TypeID
		if _, ok := p.expect(token.Lt, diag.SynExpectType, "'<'"); ok {
			key = p.parseType()
			if _, ok := p.eat(token.Comma); ok {
				value = p.parseType()
			}
			p.expect(token.Gt, diag.SynUnclosedDelimiter, "'>'")
		}
		return p.arenas.Types.New(ast.TypeNode{
			Kind:  ast.TypeMap,
			Span:  tok.Span.Cover(p.lastSpan()),
			Base:  key,
			Value: value,
		})

	case token.KwClass:
		p.next()
		if p.at(token.Lt) {
			base := p.parseAngleArg()
			return p.arenas.Types.New(ast.TypeNode{
				Kind: ast.TypeClassMeta,
				Span: tok.Span.Cover(p.lastSpan()),
				Base: base,
			})
		}
		// Bare `class` is an object reference to the class type itself.
		return p.arenas.Types.New(ast.TypeNode{
			Kind: ast.TypeName,
			Span: tok.Span,
			Name: ast.Ident{Name: names.ToName(tok.Text), Span: tok.Span},
		})

	case token.KwDelegate:
		p.next()
		base := p.parseAngleArg()
		return p.arenas.Types.New(ast.TypeNode{
			Kind: ast.TypeDelegate,
			Span: tok.Span.Cover(p.lastSpan()),
			Base: base,
		})

	case token.Ident:
		return p.parseNamedType()
	}

	p.report(diag.SynExpectType, tok.Span, "expected type, found '"+tok.Text+"'")
	return ast.NoTypeID
}

// parseAngleArg parses `<Type>` for array/class/delegate wrappers.
func (p *Parser) parseAngleArg() ast.TypeID {
	if _, ok := p.expect(token.Lt, diag.SynExpectType, "'<'"); !ok {
		return ast.NoTypeID
	}
	base := p.parseType()
	p.expect(token.Gt, diag.SynUnclosedDelimiter, "'>'")
	return base
}

// parseNamedType parses `Name` or a dotted `Outer.Inner` chain. Each link
// is its own node so the indexer can resolve them one by one against a
// narrowing kind constraint.
func (p *Parser) parseNamedType() ast.TypeID {
	tok := p.next()
	id := p.arenas.Types.New(ast.TypeNode{
		Kind: ast.TypeName,
		Span: tok.Span,
		Name: ast.Ident{Name: names.ToName(tok.Text), Span: tok.Span},
	})
	for p.at(token.Dot) && p.peekAt(1).Kind == token.Ident {
		p.next() // dot
		seg := p.next()
		id = p.arenas.Types.New(ast.TypeNode{
			Kind: ast.TypeQualified,
			Span: tok.Span.Cover(seg.Span),
			Name: ast.Ident{Name: names.ToName(seg.Text), Span: seg.Span},
			Base: id,
		})
	}
	return id
}

// startsType reports whether a type reference can begin at the cursor.
func (p *Parser) startsType() bool {
	k := p.peek().Kind
	return k.IsPrimitiveType() || k == token.KwArray || k == token.KwMap ||
		k == token.KwClass || k == token.KwDelegate || k == token.Ident
}
