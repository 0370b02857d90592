package parser

import (
	"strings"

	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/names"
	"uscript/internal/token"
)

// parseFile parses the class header followed by a flat run of members.
// The grammar has no class body braces: everything after the header up to
// EOF belongs to the class. A stray second header is kept in the tree; the
// symbol builder reports and discards it.
func (p *Parser) parseFile() {
	current := ast.NoDeclID

	for !p.eof() {
		switch p.peek().Kind {
		case token.KwClass:
			// Only a header position `class X ...` counts; `class<...>` or
			// `class'X'` inside a member is handled by the member grammar.
			id := p.parseClassHeader()
			p.arenas.PushDecl(p.file, id)
			current = id

		case token.Semicolon:
			p.next()

		default:
			ids := p.parseMember()
			for _, id := range ids {
				if cls, ok := p.arenas.Decls.Class(current); ok {
					cls.Members = append(cls.Members, id)
				} else {
					p.arenas.PushDecl(p.file, id)
				}
			}
		}
	}
}

func (p *Parser) parseClassHeader() ast.DeclID {
	start := p.next() // class
	data := ast.ClassDecl{}
	data.Name, _ = p.ident()

	if _, ok := p.eat(token.KwExtends); ok {
		data.Extends = p.parseType()
	}
	if _, ok := p.eat(token.KwWithin); ok {
		data.Within = p.parseType()
	}

	// Header specifiers run until the terminating semicolon. Unknown
	// identifier specifiers (abstract, placeable, ...) are skipped along
	// with an optional parenthesized argument list.
	for !p.eof() && !p.at(token.Semicolon) {
		switch p.peek().Kind {
		case token.KwNative:
			p.next()
			data.Modifiers |= ast.PropNative
			p.skipParenGroup()
		case token.KwConfig:
			p.next()
			data.Modifiers |= ast.PropConfig
			p.skipParenGroup()
		case token.KwTransient:
			p.next()
			data.Modifiers |= ast.PropTransient
		case token.KwDependsOn:
			p.next()
			data.DependsOn = append(data.DependsOn, p.parseTypeGroup()...)
		case token.KwImplements:
			p.next()
			data.Implements = append(data.Implements, p.parseTypeGroup()...)
		case token.Ident:
			p.next()
			p.skipParenGroup()
		default:
			p.report(diag.SynUnexpectedToken, p.span(),
				"unexpected '"+p.peek().Text+"' in class header")
			p.next()
		}
	}
	end := p.expectSemicolon()

	return p.arenas.Decls.NewClass(start.Span.Cover(end.Span), data)
}

// parseTypeGroup parses `(Type, Type, ...)` after dependson/implements.
func (p *Parser) parseTypeGroup() []ast.TypeID {
	var out []ast.TypeID
	if _, ok := p.eat(token.LParen); !ok {
		return out
	}
	for !p.eof() && !p.at(token.RParen) {
		if ty := p.parseType(); ty.IsValid() {
			out = append(out, ty)
		} else {
			p.next()
		}
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
	return out
}

// skipParenGroup consumes a balanced (...) group if one starts here.
func (p *Parser) skipParenGroup() {
	if !p.at(token.LParen) {
		return
	}
	depth := 0
	for !p.eof() {
		switch p.next().Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func isFunctionStart(k token.Kind) bool {
	switch k {
	case token.KwFunction, token.KwEvent, token.KwOperator, token.KwPreOperator,
		token.KwPostOperator, token.KwDelegate, token.KwNative, token.KwStatic,
		token.KwFinal, token.KwSimulated, token.KwExec, token.KwPrivate,
		token.KwProtected, token.KwPublic:
		return true
	default:
		return false
	}
}

// parseMember parses one class member; var declarations may expand to
// several decl nodes (one per declared name).
func (p *Parser) parseMember() []ast.DeclID {
	tok := p.peek()
	switch tok.Kind {
	case token.KwConst:
		return []ast.DeclID{p.parseConst()}
	case token.KwVar:
		return p.parseVar()
	case token.KwEnum:
		id := p.parseEnum()
		p.expectSemicolon()
		return []ast.DeclID{id}
	case token.KwStruct:
		id := p.parseStruct()
		p.expectSemicolon()
		return []ast.DeclID{id}
	case token.KwState:
		return []ast.DeclID{p.parseState()}
	case token.KwReplication:
		return []ast.DeclID{p.parseReplication()}
	case token.KwDefaultProperties:
		return []ast.DeclID{p.parseDefaults()}
	case token.Ident:
		// `auto state Foo` — auto is contextual, not reserved.
		if strings.EqualFold(tok.Text, "auto") && p.peekAt(1).Kind == token.KwState {
			p.next()
			return []ast.DeclID{p.parseState()}
		}
	}

	if isFunctionStart(tok.Kind) {
		// Specifiers may precede a state as well as a function.
		if id, ok := p.parseFunctionOrState(); ok {
			return []ast.DeclID{id}
		}
		return nil
	}

	p.report(diag.SynUnexpectedToken, tok.Span,
		"unexpected '"+tok.Text+"' at class scope")
	p.syncDecl()
	return nil
}

func (p *Parser) parseConst() ast.DeclID {
	start := p.next() // const
	data := ast.ConstDecl{}
	data.Name, _ = p.ident()
	if _, ok := p.eat(token.Assign); ok {
		data.Value = p.parseExpr()
	}
	// A const without initializer is legal syntax here; the analyzer
	// reports the missing value.
	end := p.expectSemicolon()
	return p.arenas.Decls.NewConst(start.Span.Cover(end.Span), data)
}

func (p *Parser) parseVarModifiers() ast.PropModifiers {
	var mods ast.PropModifiers
	for {
		switch p.peek().Kind {
		case token.KwNative:
			mods |= ast.PropNative
		case token.KwConst:
			mods |= ast.PropConst
		case token.KwProtected:
			mods |= ast.PropProtected
		case token.KwPrivate:
			mods |= ast.PropPrivate
		case token.KwPublic:
			// default visibility; nothing to record
		case token.KwConfig:
			mods |= ast.PropConfig
		case token.KwLocalized:
			mods |= ast.PropLocalized
		case token.KwTransient:
			mods |= ast.PropTransient
		case token.KwTravel:
			mods |= ast.PropTravel
		default:
			return mods
		}
		p.next()
	}
}

func (p *Parser) parseVar() []ast.DeclID {
	start := p.next() // var
	var category ast.Ident
	var mods ast.PropModifiers

	if p.at(token.LParen) {
		p.next()
		mods |= ast.PropEditable
		if tok, ok := p.eat(token.Ident); ok {
			category = ast.Ident{Name: names.ToName(tok.Text), Span: tok.Span}
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
	}

	mods |= p.parseVarModifiers()

	// Nested type declarations are allowed inline: `var enum E {..} X;`
	var ty ast.TypeID
	var inline []ast.DeclID
	switch p.peek().Kind {
	case token.KwEnum:
		id := p.parseEnum()
		inline = append(inline, id)
		if e, ok := p.arenas.Decls.Enum(id); ok {
			ty = p.arenas.Types.New(ast.TypeNode{
				Kind: ast.TypeName,
				Span: e.Name.Span,
				Name: e.Name,
			})
		}
	case token.KwStruct:
		id := p.parseStruct()
		inline = append(inline, id)
		if s, ok := p.arenas.Decls.Struct(id); ok {
			ty = p.arenas.Types.New(ast.TypeNode{
				Kind: ast.TypeName,
				Span: s.Name.Span,
				Name: s.Name,
			})
		}
	default:
		ty = p.parseType()
	}

	out := inline
	for {
		name, ok := p.ident()
		if !ok {
			p.syncTo(token.Semicolon, token.Comma)
			if !p.at(token.Comma) {
				break
			}
			p.next()
			continue
		}
		data := ast.VarDecl{
			Name:      name,
			Type:      ty,
			Modifiers: mods,
			Category:  category,
		}
		if _, ok := p.eat(token.LBracket); ok {
			data.ArrayDim = p.parseExpr()
			p.expect(token.RBracket, diag.SynUnclosedDelimiter, "']'")
		}
		out = append(out, p.arenas.Decls.NewVar(start.Span.Cover(p.lastSpan()), data))
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expectSemicolon()
	return out
}

func (p *Parser) parseEnum() ast.DeclID {
	start := p.next() // enum
	data := ast.EnumDecl{}
	data.Name, _ = p.ident()

	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); ok {
		for !p.eof() && !p.at(token.RBrace) {
			member, ok := p.ident()
			if !ok {
				p.syncTo(token.Comma, token.RBrace)
			} else {
				data.Members = append(data.Members, member)
			}
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedDelimiter, "'}'")
	}
	return p.arenas.Decls.NewEnum(start.Span.Cover(p.lastSpan()), data)
}

func (p *Parser) parseStruct() ast.DeclID {
	start := p.next() // struct
	// Struct modifiers (native, transient) precede the name.
	for p.at(token.KwNative) || p.at(token.KwTransient) {
		p.next()
	}
	data := ast.StructDecl{}
	data.Name, _ = p.ident()
	if _, ok := p.eat(token.KwExtends); ok {
		data.Extends = p.parseType()
	}

	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); ok {
		for !p.eof() && !p.at(token.RBrace) {
			switch p.peek().Kind {
			case token.KwVar:
				data.Members = append(data.Members, p.parseVar()...)
			case token.KwConst:
				data.Members = append(data.Members, p.parseConst())
			case token.KwEnum:
				id := p.parseEnum()
				p.expectSemicolon()
				data.Members = append(data.Members, id)
			case token.KwStruct:
				id := p.parseStruct()
				p.expectSemicolon()
				data.Members = append(data.Members, id)
			case token.Semicolon:
				p.next()
			default:
				p.report(diag.SynUnexpectedToken, p.span(),
					"unexpected '"+p.peek().Text+"' in struct body")
				p.syncDecl()
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedDelimiter, "'}'")
	}
	return p.arenas.Decls.NewStruct(start.Span.Cover(p.lastSpan()), data)
}
