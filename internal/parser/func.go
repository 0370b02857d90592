package parser

import (
	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/names"
	"uscript/internal/source"
	"uscript/internal/token"
)

// parseFunctionOrState consumes leading specifier keywords, then dispatches
// to a function or a state body (`simulated state Foo` is legal).
func (p *Parser) parseFunctionOrState() (ast.DeclID, bool) {
	start := p.span()
	var flags ast.MethodFlags
	var mods ast.PropModifiers
	prec := int16(-1)

specifiers:
	for {
		switch p.peek().Kind {
		case token.KwNative:
			p.next()
			flags |= ast.MethodNative
			p.skipParenGroup() // native(123)
		case token.KwStatic:
			p.next()
			flags |= ast.MethodStatic
		case token.KwFinal:
			p.next()
			flags |= ast.MethodFinal
		case token.KwSimulated:
			p.next()
			flags |= ast.MethodSimulated
		case token.KwExec:
			p.next()
			flags |= ast.MethodExec
		case token.KwPrivate:
			p.next()
			mods |= ast.PropPrivate
		case token.KwProtected:
			p.next()
			mods |= ast.PropProtected
		case token.KwPublic:
			p.next()
		case token.KwFunction:
			p.next()
			flags |= ast.MethodFunction
		case token.KwEvent:
			p.next()
			flags |= ast.MethodEvent
		case token.KwDelegate:
			p.next()
			flags |= ast.MethodDelegate
		case token.KwPreOperator:
			p.next()
			flags |= ast.MethodPreOperator
		case token.KwPostOperator:
			p.next()
			flags |= ast.MethodPostOperator
		case token.KwOperator:
			p.next()
			flags |= ast.MethodOperator
			if _, ok := p.eat(token.LParen); ok {
				if tok, ok := p.expect(token.IntLit, diag.SynUnexpectedToken, "precedence"); ok {
					prec = int16(parseIntText(tok.Text))
				}
				p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
			}
		default:
			break specifiers
		}
	}

	if p.at(token.KwState) {
		id := p.parseState()
		return id, id.IsValid()
	}
	id := p.parseFunction(start, flags, mods, prec)
	return id, id.IsValid()
}

// isOperatorName reports whether the token kind can spell an operator
// declaration's name.
func isOperatorName(k token.Kind) bool {
	switch k {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Dollar, token.At, token.PlusAssign, token.MinusAssign,
		token.StarAssign, token.SlashAssign, token.DollarAssign,
		token.AtAssign, token.EqEq, token.BangEq, token.TildeEq,
		token.Lt, token.LtEq, token.Gt, token.GtEq, token.Shl, token.Shr,
		token.AndAnd, token.OrOr, token.CaretCaret, token.Amp, token.Pipe,
		token.Caret, token.Bang, token.Tilde, token.PlusPlus, token.MinusMinus:
		return true
	default:
		return false
	}
}

// functionName accepts an identifier or, for operator declarations, an
// operator symbol spelled as the name.
func (p *Parser) functionName() (ast.Ident, bool) {
	tok := p.peek()
	if tok.Kind == token.Ident || isOperatorName(tok.Kind) {
		p.next()
		text := tok.Text
		if text == "" {
			text = tok.Kind.String()
		}
		return ast.Ident{Name: names.ToName(text), Span: tok.Span}, true
	}
	p.report(diag.SynExpectIdentifier, tok.Span,
		"expected function name, found '"+tok.Text+"'")
	return ast.Ident{}, false
}

func (p *Parser) parseFunction(start source.Span, flags ast.MethodFlags, mods ast.PropModifiers, prec int16) ast.DeclID {
	data := ast.FunctionDecl{Flags: flags, Modifiers: mods, Precedence: prec}

	// `function Foo(` has no return type; anything else that starts a type
	// is one, with the name following.
	switch {
	case p.at(token.Ident) && p.peekAt(1).Kind == token.LParen:
		data.Name, _ = p.functionName()
	case isOperatorName(p.peek().Kind):
		data.Name, _ = p.functionName()
	case p.startsType():
		data.ReturnType = p.parseType()
		data.Name, _ = p.functionName()
	default:
		data.Name, _ = p.functionName()
	}

	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
		for !p.eof() && !p.at(token.RParen) {
			if id := p.parseParam(); id.IsValid() {
				data.Params = append(data.Params, id)
			} else {
				p.syncTo(token.Comma, token.RParen, token.Semicolon)
			}
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
	}

	// Trailing `const` after the parameter list.
	if _, ok := p.eat(token.KwConst); ok {
		data.Modifiers |= ast.PropConst
	}

	if p.at(token.LBrace) {
		data.Body = p.parseBlock()
	} else {
		p.expectSemicolon()
	}
	return p.arenas.Decls.NewFunction(start.Cover(p.lastSpan()), data)
}

func (p *Parser) parseParam() ast.DeclID {
	start := p.span()
	data := ast.ParamDecl{}

mods:
	for {
		switch p.peek().Kind {
		case token.KwOptional:
			data.Modifiers |= ast.PropOptional
		case token.KwOut:
			data.Modifiers |= ast.PropOut
		case token.KwSkip:
			data.Modifiers |= ast.PropSkip
		case token.KwCoerce:
			data.Modifiers |= ast.PropCoerce
		case token.KwConst:
			data.Modifiers |= ast.PropConst
		default:
			break mods
		}
		p.next()
	}

	data.Type = p.parseType()
	name, ok := p.ident()
	if !ok {
		return ast.NoDeclID
	}
	data.Name = name

	if _, ok := p.eat(token.LBracket); ok {
		data.ArrayDim = p.parseExpr()
		p.expect(token.RBracket, diag.SynUnclosedDelimiter, "']'")
	}
	if _, ok := p.eat(token.Assign); ok {
		data.Default = p.parseExpr()
	}
	return p.arenas.Decls.NewParam(start.Cover(p.lastSpan()), data)
}

// parseState parses `state Name [extends Name] { ignores ...; functions;
// Label: statements }`. Labeled code after the member declarations is kept
// as one block statement.
func (p *Parser) parseState() ast.DeclID {
	start := p.next() // state
	p.skipParenGroup() // state() editor grouping
	data := ast.StateDecl{}
	data.Name, _ = p.ident()
	if _, ok := p.eat(token.KwExtends); ok {
		data.Extends = p.parseType()
	}

	var body []ast.StmtID
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); ok {
		for !p.eof() && !p.at(token.RBrace) {
			switch {
			case p.at(token.KwIgnores):
				p.next()
				for {
					if name, ok := p.identLoose(); ok {
						data.Ignores = append(data.Ignores, name)
					}
					if _, ok := p.eat(token.Comma); !ok {
						break
					}
				}
				p.expectSemicolon()

			case p.at(token.KwConst):
				data.Members = append(data.Members, p.parseConst())

			case p.at(token.KwLocal):
				body = append(body, p.parseStmt())

			case isFunctionStart(p.peek().Kind):
				if id, ok := p.parseFunctionOrState(); ok {
					data.Members = append(data.Members, id)
				}

			case p.at(token.Semicolon):
				p.next()

			default:
				body = append(body, p.parseStmt())
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedDelimiter, "'}'")
	}

	if len(body) > 0 {
		data.Body = p.arenas.Stmts.New(ast.Stmt{
			Kind:  ast.StmtBlock,
			Span:  start.Span.Cover(p.lastSpan()),
			Stmts: body,
		})
	}
	return p.arenas.Decls.NewState(start.Span.Cover(p.lastSpan()), data)
}

func (p *Parser) parseReplication() ast.DeclID {
	start := p.next() // replication
	data := ast.ReplicationDecl{}

	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); ok {
		for !p.eof() && !p.at(token.RBrace) {
			condStart := p.span()
			cond := ast.RepCondition{}
			switch p.peek().Kind {
			case token.KwReliable:
				p.next()
				cond.Reliable = true
			case token.KwUnreliable:
				p.next()
			default:
				p.report(diag.SynUnexpectedToken, p.span(),
					"expected 'reliable' or 'unreliable', found '"+p.peek().Text+"'")
				p.syncTo(token.Semicolon, token.RBrace)
				p.eat(token.Semicolon)
				continue
			}

			if _, ok := p.expect(token.KwIf, diag.SynUnexpectedToken, "'if'"); ok {
				if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
					cond.Cond = p.parseExpr()
					p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
				}
			}
			for {
				if name, ok := p.identLoose(); ok {
					cond.Names = append(cond.Names, name)
				}
				if _, ok := p.eat(token.Comma); !ok {
					break
				}
			}
			p.expectSemicolon()
			cond.Span = condStart.Cover(p.lastSpan())
			data.Conditions = append(data.Conditions, cond)
		}
		p.expect(token.RBrace, diag.SynUnclosedDelimiter, "'}'")
	}
	return p.arenas.Decls.NewReplication(start.Span.Cover(p.lastSpan()), data)
}

func (p *Parser) parseDefaults() ast.DeclID {
	start := p.next() // defaultproperties
	assigns, objects := p.parseDefaultsBody(token.RBrace)
	return p.arenas.Decls.NewDefaults(start.Span.Cover(p.lastSpan()),
		ast.DefaultsDecl{Assigns: assigns, Objects: objects})
}

// parseDefaultsBody parses defaults entries up to the closing brace (for
// the block itself) or `End Object` (for sub-objects). Entries have no
// statement terminators; newlines separate them, so the parser just reads
// entry after entry.
func (p *Parser) parseDefaultsBody(closer token.Kind) ([]ast.ExprID, []ast.DeclID) {
	var assigns []ast.ExprID
	var objects []ast.DeclID

	if closer == token.RBrace {
		if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); !ok {
			return assigns, objects
		}
	}

	for !p.eof() {
		switch p.peek().Kind {
		case token.RBrace:
			if closer == token.RBrace {
				p.next()
				return assigns, objects
			}
			p.next()

		case token.KwEnd:
			if closer == token.KwEnd {
				p.next()
				p.eat(token.KwObject)
				return assigns, objects
			}
			p.next()

		case token.KwBegin:
			objStart := p.next()
			p.expect(token.KwObject, diag.SynUnexpectedToken, "'Object'")
			objAssigns, objObjects := p.parseDefaultsBody(token.KwEnd)
			objects = append(objects, p.arenas.Decls.NewObject(
				objStart.Span.Cover(p.lastSpan()),
				ast.ObjectDecl{Assigns: objAssigns, Objects: objObjects}))

		case token.Semicolon:
			p.next()

		default:
			if id := p.parseDefaultsAssign(); id.IsValid() {
				assigns = append(assigns, id)
			} else {
				p.next()
			}
		}
	}
	return assigns, objects
}

// parseDefaultsAssign parses `Name[idx]=value` or `Name(idx)=value`.
func (p *Parser) parseDefaultsAssign() ast.ExprID {
	tok := p.peek()
	if tok.Kind != token.Ident && !tok.IsKeyword() {
		p.report(diag.SynUnexpectedToken, tok.Span,
			"expected property name, found '"+tok.Text+"'")
		return ast.NoExprID
	}
	p.next()

	target := p.arenas.Exprs.New(ast.Expr{
		Kind: ast.ExprIdent,
		Span: tok.Span,
		Name: ast.Ident{Name: names.ToName(tok.Text), Span: tok.Span},
	})

	// Array element targets accept either bracket or paren index syntax.
	switch p.peek().Kind {
	case token.LBracket:
		p.next()
		idx := p.parseDefaultsValue()
		p.expect(token.RBracket, diag.SynUnclosedDelimiter, "']'")
		elem := p.arenas.Exprs.New(ast.Expr{
			Kind:   ast.ExprElement,
			Span:   tok.Span.Cover(p.lastSpan()),
			Target: target,
			Left:   idx,
		})
		p.arenas.Exprs.SetOuter(target, elem)
		p.arenas.Exprs.SetOuter(idx, elem)
		target = elem
	case token.LParen:
		p.next()
		idx := p.parseDefaultsValue()
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
		elem := p.arenas.Exprs.New(ast.Expr{
			Kind:   ast.ExprElement,
			Span:   tok.Span.Cover(p.lastSpan()),
			Target: target,
			Left:   idx,
		})
		p.arenas.Exprs.SetOuter(target, elem)
		p.arenas.Exprs.SetOuter(idx, elem)
		target = elem
	}

	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "'='"); !ok {
		return ast.NoExprID
	}
	value := p.parseDefaultsValue()

	assign := p.arenas.Exprs.New(ast.Expr{
		Kind: ast.ExprDefaultAssign,
		Span: tok.Span.Cover(p.lastSpan()),
		Left: target,
		Right: value,
		Op:   token.Assign,
	})
	p.arenas.Exprs.SetOuter(target, assign)
	p.arenas.Exprs.SetOuter(value, assign)
	return assign
}

// parseDefaultsValue parses the restricted value grammar of defaults
// entries: literals, names, dotted names, object literals, and
// parenthesized struct literals.
func (p *Parser) parseDefaultsValue() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.LParen:
		return p.parseStructLit()

	case token.Minus, token.Plus:
		p.next()
		operand := p.parseDefaultsValue()
		id := p.arenas.Exprs.New(ast.Expr{
			Kind:   ast.ExprPreOp,
			Span:   tok.Span.Cover(p.lastSpan()),
			Target: operand,
			Op:     tok.Kind,
			OpName: names.ToName(tok.Kind.String()),
		})
		p.arenas.Exprs.SetOuter(operand, id)
		return id

	case token.Ident, token.KwClass:
		// `Texture'Package.Name'` and `class'Name'` object literals.
		if p.peekAt(1).Kind == token.NameLit {
			p.next()
			lit := p.next()
			kind := ast.ExprObjectLit
			if tok.Kind == token.KwClass {
				kind = ast.ExprMetaClass
			}
			return p.arenas.Exprs.New(ast.Expr{
				Kind: kind,
				Span: tok.Span.Cover(lit.Span),
				Name: ast.Ident{Name: names.ToName(lit.Text), Span: lit.Span},
				Text: lit.Text,
			})
		}
	}

	// Enum values may be written qualified: `EType.ET_Rifle`.
	id := p.parsePrimary()
	for id.IsValid() && p.at(token.Dot) {
		p.next()
		name, ok := p.identLoose()
		if !ok {
			break
		}
		member := p.arenas.Exprs.New(ast.Expr{
			Kind:   ast.ExprMember,
			Span:   p.exprSpan(id).Cover(name.Span),
			Target: id,
			Name:   name,
		})
		p.arenas.Exprs.SetOuter(id, member)
		id = member
	}
	return id
}

// parseStructLit parses `(X=1,Y=2,...)`.
func (p *Parser) parseStructLit() ast.ExprID {
	start := p.next() // (
	var fields []ast.ExprID
	for !p.eof() && !p.at(token.RParen) {
		if id := p.parseDefaultsAssign(); id.IsValid() {
			fields = append(fields, id)
		} else {
			p.syncTo(token.Comma, token.RParen)
		}
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
	id := p.arenas.Exprs.New(ast.Expr{
		Kind: ast.ExprStructLit,
		Span: start.Span.Cover(p.lastSpan()),
		Args: fields,
	})
	for _, f := range fields {
		p.arenas.Exprs.SetOuter(f, id)
	}
	return id
}

func parseIntText(text string) int64 {
	var n int64
	for _, c := range text {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int64(c-'0')
	}
	return n
}
