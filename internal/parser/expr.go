package parser

import (
	"strconv"
	"strings"

	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/names"
	"uscript/internal/source"
	"uscript/internal/token"
)

// Binary operator binding powers. Declared operator precedences only affect
// overload resolution; the parse shape uses this fixed table.
var binPower = map[token.Kind]int{
	token.OrOr:       1,
	token.CaretCaret: 1,
	token.AndAnd:     2,
	token.Pipe:       3,
	token.Caret:      3,
	token.Amp:        3,
	token.EqEq:       4,
	token.BangEq:     4,
	token.TildeEq:    4,
	token.Lt:         5,
	token.LtEq:       5,
	token.Gt:         5,
	token.GtEq:       5,
	token.Shl:        5,
	token.Shr:        5,
	token.Dollar:     6,
	token.At:         6,
	token.Plus:       7,
	token.Minus:      7,
	token.Star:       8,
	token.Slash:      8,
	token.Percent:    8,
}

func isCompoundAssign(k token.Kind) bool {
	switch k {
	case token.PlusAssign, token.MinusAssign, token.StarAssign,
		token.SlashAssign, token.DollarAssign, token.AtAssign:
		return true
	default:
		return false
	}
}

// parseExpr parses a full expression including assignment, which is
// right-associative and lowest precedence.
func (p *Parser) parseExpr() ast.ExprID {
	lhs := p.parseTernary()
	if !lhs.IsValid() {
		return lhs
	}

	op := p.peek()
	if op.Kind != token.Assign && !isCompoundAssign(op.Kind) {
		return lhs
	}
	p.next()
	rhs := p.parseExpr()

	id := p.arenas.Exprs.New(ast.Expr{
		Kind:   ast.ExprAssign,
		Span:   p.exprSpan(lhs).Cover(p.lastSpan()),
		Left:   lhs,
		Right:  rhs,
		Op:     op.Kind,
		OpName: names.ToName(op.Kind.String()),
	})
	p.arenas.Exprs.SetOuter(lhs, id)
	p.arenas.Exprs.SetOuter(rhs, id)
	return id
}

func (p *Parser) parseTernary() ast.ExprID {
	cond := p.parseBinary(1)
	if !cond.IsValid() || !p.at(token.Question) {
		return cond
	}
	p.next()
	then := p.parseTernary()
	p.expect(token.Colon, diag.SynUnexpectedToken, "':'")
	els := p.parseTernary()

	id := p.arenas.Exprs.New(ast.Expr{
		Kind:  ast.ExprTernary,
		Span:  p.exprSpan(cond).Cover(p.lastSpan()),
		Left:  cond,
		Right: then,
		Third: els,
	})
	p.arenas.Exprs.SetOuter(cond, id)
	p.arenas.Exprs.SetOuter(then, id)
	p.arenas.Exprs.SetOuter(els, id)
	return id
}

func (p *Parser) parseBinary(minPower int) ast.ExprID {
	lhs := p.parseUnary()
	for lhs.IsValid() {
		op := p.peek()
		power, ok := binPower[op.Kind]
		if !ok || power < minPower {
			return lhs
		}
		p.next()
		rhs := p.parseBinary(power + 1)

		id := p.arenas.Exprs.New(ast.Expr{
			Kind:   ast.ExprBinary,
			Span:   p.exprSpan(lhs).Cover(p.lastSpan()),
			Left:   lhs,
			Right:  rhs,
			Op:     op.Kind,
			OpName: names.ToName(op.Kind.String()),
		})
		p.arenas.Exprs.SetOuter(lhs, id)
		p.arenas.Exprs.SetOuter(rhs, id)
		lhs = id
	}
	return lhs
}

func (p *Parser) parseUnary() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.Bang, token.Minus, token.Tilde, token.PlusPlus, token.MinusMinus:
		p.next()
		operand := p.parseUnary()
		id := p.arenas.Exprs.New(ast.Expr{
			Kind:   ast.ExprPreOp,
			Span:   tok.Span.Cover(p.lastSpan()),
			Target: operand,
			Op:     tok.Kind,
			OpName: names.ToName(tok.Kind.String()),
		})
		p.arenas.Exprs.SetOuter(operand, id)
		return id
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by member access,
// calls, element access, and post-increment chains.
func (p *Parser) parsePostfix() ast.ExprID {
	id := p.parsePrimary()
	for id.IsValid() {
		switch p.peek().Kind {
		case token.Dot:
			p.next()
			name, ok := p.identLoose()
			if !ok {
				return id
			}
			member := p.arenas.Exprs.New(ast.Expr{
				Kind:   ast.ExprMember,
				Span:   p.exprSpan(id).Cover(name.Span),
				Target: id,
				Name:   name,
			})
			p.arenas.Exprs.SetOuter(id, member)
			id = member

		case token.LParen:
			p.next()
			var args []ast.ExprID
			for !p.eof() && !p.at(token.RParen) {
				// Skipped arguments keep their slot: `Foo(a, , c)`.
				if p.at(token.Comma) {
					args = append(args, ast.NoExprID)
				} else {
					args = append(args, p.parseExpr())
				}
				if _, ok := p.eat(token.Comma); !ok {
					break
				}
			}
			p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
			call := p.arenas.Exprs.New(ast.Expr{
				Kind:   ast.ExprCall,
				Span:   p.exprSpan(id).Cover(p.lastSpan()),
				Target: id,
				Args:   args,
			})
			p.arenas.Exprs.SetOuter(id, call)
			for _, a := range args {
				p.arenas.Exprs.SetOuter(a, call)
			}
			id = call

		case token.LBracket:
			p.next()
			index := p.parseExpr()
			p.expect(token.RBracket, diag.SynUnclosedDelimiter, "']'")
			elem := p.arenas.Exprs.New(ast.Expr{
				Kind:   ast.ExprElement,
				Span:   p.exprSpan(id).Cover(p.lastSpan()),
				Target: id,
				Left:   index,
			})
			p.arenas.Exprs.SetOuter(id, elem)
			p.arenas.Exprs.SetOuter(index, elem)
			id = elem

		case token.PlusPlus, token.MinusMinus:
			op := p.next()
			post := p.arenas.Exprs.New(ast.Expr{
				Kind:   ast.ExprPostOp,
				Span:   p.exprSpan(id).Cover(op.Span),
				Target: id,
				Op:     op.Kind,
				OpName: names.ToName(op.Kind.String()),
			})
			p.arenas.Exprs.SetOuter(id, post)
			id = post

		default:
			return id
		}
	}
	return id
}

func (p *Parser) parsePrimary() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.LParen:
		p.next()
		inner := p.parseExpr()
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
		return inner

	case token.IntLit:
		p.next()
		n, _ := strconv.ParseInt(tok.Text, 0, 64)
		return p.arenas.Exprs.New(ast.Expr{
			Kind: ast.ExprIntLit, Span: tok.Span, Text: tok.Text, IntVal: n,
		})

	case token.FloatLit:
		p.next()
		f, _ := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(tok.Text), "f"), 64)
		return p.arenas.Exprs.New(ast.Expr{
			Kind: ast.ExprFloatLit, Span: tok.Span, Text: tok.Text, FltVal: f,
		})

	case token.StringLit:
		p.next()
		return p.arenas.Exprs.New(ast.Expr{
			Kind: ast.ExprStringLit, Span: tok.Span, Text: tok.Text,
		})

	case token.NameLit:
		p.next()
		return p.arenas.Exprs.New(ast.Expr{
			Kind: ast.ExprNameLit, Span: tok.Span, Text: tok.Text,
			Name: identFromToken(tok),
		})

	case token.KwTrue, token.KwFalse:
		p.next()
		return p.arenas.Exprs.New(ast.Expr{
			Kind: ast.ExprBoolLit, Span: tok.Span, Text: tok.Text,
		})

	case token.KwNone:
		p.next()
		return p.arenas.Exprs.New(ast.Expr{Kind: ast.ExprNone, Span: tok.Span})

	case token.KwSelf:
		p.next()
		return p.arenas.Exprs.New(ast.Expr{Kind: ast.ExprSelf, Span: tok.Span})

	case token.KwDefault:
		p.next()
		return p.arenas.Exprs.New(ast.Expr{Kind: ast.ExprDefault, Span: tok.Span})

	case token.KwSuper:
		p.next()
		node := ast.Expr{Kind: ast.ExprSuper, Span: tok.Span}
		if _, ok := p.eat(token.LParen); ok {
			if name, ok := p.ident(); ok {
				node.Name = name
			}
			p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
			node.Span = tok.Span.Cover(p.lastSpan())
		}
		return p.arenas.Exprs.New(node)

	case token.KwNew:
		return p.parseNew()

	case token.KwClass:
		p.next()
		if lit, ok := p.eat(token.NameLit); ok {
			return p.arenas.Exprs.New(ast.Expr{
				Kind: ast.ExprMetaClass,
				Span: tok.Span.Cover(lit.Span),
				Name: identFromToken(lit),
				Text: lit.Text,
			})
		}
		// Bare `class` references the current class object.
		return p.arenas.Exprs.New(ast.Expr{
			Kind: ast.ExprIdent,
			Span: tok.Span,
			Name: identFromToken(tok),
		})

	case token.KwVect, token.KwRot, token.KwRng:
		return p.parseComponentLit(tok.Kind)

	case token.KwArrayCount, token.KwNameOf:
		p.next()
		kind := ast.ExprArrayCount
		if tok.Kind == token.KwNameOf {
			kind = ast.ExprNameOf
		}
		var arg ast.ExprID
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
			arg = p.parseExpr()
			p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
		}
		id := p.arenas.Exprs.New(ast.Expr{
			Kind:   kind,
			Span:   tok.Span.Cover(p.lastSpan()),
			Target: arg,
		})
		p.arenas.Exprs.SetOuter(arg, id)
		return id

	case token.KwInt, token.KwFloat, token.KwByte, token.KwBool,
		token.KwString, token.KwName:
		// Primitive cast target: `float(Health)`.
		p.next()
		return p.arenas.Exprs.New(ast.Expr{
			Kind: ast.ExprIdent,
			Span: tok.Span,
			Name: identFromToken(tok),
		})

	case token.Ident:
		p.next()
		// `Texture'Package.Name'` object literal.
		if lit, ok := p.eat(token.NameLit); ok {
			return p.arenas.Exprs.New(ast.Expr{
				Kind: ast.ExprObjectLit,
				Span: tok.Span.Cover(lit.Span),
				Name: identFromToken(lit),
				Text: lit.Text,
			})
		}
		return p.arenas.Exprs.New(ast.Expr{
			Kind: ast.ExprIdent,
			Span: tok.Span,
			Name: identFromToken(tok),
		})
	}

	p.report(diag.SynExpectExpression, tok.Span,
		"expected expression, found '"+tok.Text+"'")
	return ast.NoExprID
}

// parseNew parses `new [(outer[, flags])] ClassExpr`.
func (p *Parser) parseNew() ast.ExprID {
	start := p.next() // new
	var args []ast.ExprID
	if _, ok := p.eat(token.LParen); ok {
		for !p.eof() && !p.at(token.RParen) {
			args = append(args, p.parseExpr())
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
	}
	class := p.parsePostfix()

	id := p.arenas.Exprs.New(ast.Expr{
		Kind:  ast.ExprNew,
		Span:  start.Span.Cover(p.lastSpan()),
		Third: class,
		Args:  args,
	})
	p.arenas.Exprs.SetOuter(class, id)
	for _, a := range args {
		p.arenas.Exprs.SetOuter(a, id)
	}
	return id
}

// parseComponentLit parses vect/rot/rng component literals.
func (p *Parser) parseComponentLit(kw token.Kind) ast.ExprID {
	start := p.next()
	kind := ast.ExprVectLit
	want := 3
	switch kw {
	case token.KwRot:
		kind = ast.ExprRotLit
	case token.KwRng:
		kind = ast.ExprRngLit
		want = 2
	}

	var args []ast.ExprID
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
		for !p.eof() && !p.at(token.RParen) {
			args = append(args, p.parseExpr())
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
	}
	if len(args) != want {
		p.report(diag.SynUnexpectedToken, start.Span.Cover(p.lastSpan()),
			"'"+start.Text+"' takes "+strconv.Itoa(want)+" components")
	}

	id := p.arenas.Exprs.New(ast.Expr{
		Kind: kind,
		Span: start.Span.Cover(p.lastSpan()),
		Args: args,
	})
	for _, a := range args {
		p.arenas.Exprs.SetOuter(a, id)
	}
	return id
}

func (p *Parser) exprSpan(id ast.ExprID) source.Span {
	if node := p.arenas.Exprs.Get(id); node != nil {
		return node.Span
	}
	return p.span()
}
