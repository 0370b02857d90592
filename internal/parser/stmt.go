package parser

import (
	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/token"
)

// parseBlock parses `{ stmt* }` into a block statement.
func (p *Parser) parseBlock() ast.StmtID {
	start, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'")
	if !ok {
		return ast.NoStmtID
	}
	var stmts []ast.StmtID
	for !p.eof() && !p.at(token.RBrace) {
		if id := p.parseStmt(); id.IsValid() {
			stmts = append(stmts, id)
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "'}'")
	return p.arenas.Stmts.New(ast.Stmt{
		Kind:  ast.StmtBlock,
		Span:  start.Span.Cover(p.lastSpan()),
		Stmts: stmts,
	})
}

// parseStmtOrBlock parses the body of a control statement: either a braced
// block or a single statement.
func (p *Parser) parseStmtOrBlock() ast.StmtID {
	if p.at(token.LBrace) {
		return p.parseBlock()
	}
	return p.parseStmt()
}

func (p *Parser) parseStmt() ast.StmtID {
	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		return p.parseBlock()

	case token.Semicolon:
		p.next()
		return ast.NoStmtID

	case token.KwLocal:
		return p.parseLocal()

	case token.KwIf:
		p.next()
		var cond ast.ExprID
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
			cond = p.parseExpr()
			p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
		}
		body := p.parseStmtOrBlock()
		var els ast.StmtID
		if _, ok := p.eat(token.KwElse); ok {
			els = p.parseStmtOrBlock()
		}
		return p.arenas.Stmts.New(ast.Stmt{
			Kind: ast.StmtIf,
			Span: tok.Span.Cover(p.lastSpan()),
			Cond: cond,
			Body: body,
			Else: els,
		})

	case token.KwWhile:
		p.next()
		var cond ast.ExprID
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
			cond = p.parseExpr()
			p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
		}
		body := p.parseStmtOrBlock()
		return p.arenas.Stmts.New(ast.Stmt{
			Kind: ast.StmtWhile,
			Span: tok.Span.Cover(p.lastSpan()),
			Cond: cond,
			Body: body,
		})

	case token.KwDo:
		p.next()
		body := p.parseStmtOrBlock()
		var cond ast.ExprID
		if _, ok := p.expect(token.KwUntil, diag.SynUnexpectedToken, "'until'"); ok {
			if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
				cond = p.parseExpr()
				p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
			}
		}
		p.eat(token.Semicolon)
		return p.arenas.Stmts.New(ast.Stmt{
			Kind: ast.StmtDoUntil,
			Span: tok.Span.Cover(p.lastSpan()),
			Cond: cond,
			Body: body,
		})

	case token.KwFor:
		p.next()
		var init, cond, post ast.ExprID
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
			if !p.at(token.Semicolon) {
				init = p.parseExpr()
			}
			p.expectSemicolon()
			if !p.at(token.Semicolon) {
				cond = p.parseExpr()
			}
			p.expectSemicolon()
			if !p.at(token.RParen) {
				post = p.parseExpr()
			}
			p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
		}
		body := p.parseStmtOrBlock()
		return p.arenas.Stmts.New(ast.Stmt{
			Kind: ast.StmtFor,
			Span: tok.Span.Cover(p.lastSpan()),
			Init: init,
			Cond: cond,
			Post: post,
			Body: body,
		})

	case token.KwForEach:
		p.next()
		iter := p.parseExpr()
		body := p.parseStmtOrBlock()
		return p.arenas.Stmts.New(ast.Stmt{
			Kind:  ast.StmtForEach,
			Span:  tok.Span.Cover(p.lastSpan()),
			Value: iter,
			Body:  body,
		})

	case token.KwSwitch:
		return p.parseSwitch()

	case token.KwReturn:
		p.next()
		var value ast.ExprID
		if !p.at(token.Semicolon) && !p.at(token.RBrace) {
			value = p.parseExpr()
		}
		p.expectSemicolon()
		return p.arenas.Stmts.New(ast.Stmt{
			Kind:  ast.StmtReturn,
			Span:  tok.Span.Cover(p.lastSpan()),
			Value: value,
		})

	case token.KwGoto:
		p.next()
		stmt := ast.Stmt{Kind: ast.StmtGoto, Span: tok.Span}
		switch p.peek().Kind {
		case token.Ident, token.NameLit:
			target := p.next()
			stmt.Label = identFromToken(target)
		default:
			p.report(diag.SynExpectIdentifier, p.span(),
				"expected label, found '"+p.peek().Text+"'")
		}
		p.expectSemicolon()
		stmt.Span = tok.Span.Cover(p.lastSpan())
		return p.arenas.Stmts.New(stmt)

	case token.KwAssert:
		p.next()
		var cond ast.ExprID
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
			cond = p.parseExpr()
			p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
		}
		p.expectSemicolon()
		return p.arenas.Stmts.New(ast.Stmt{
			Kind: ast.StmtAssert,
			Span: tok.Span.Cover(p.lastSpan()),
			Cond: cond,
		})

	case token.KwBreak:
		p.next()
		p.expectSemicolon()
		return p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtBreak, Span: tok.Span})

	case token.KwContinue:
		p.next()
		p.expectSemicolon()
		return p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtContinue, Span: tok.Span})

	case token.Ident:
		// `Label:` state code labels.
		if p.peekAt(1).Kind == token.Colon {
			name := p.next()
			p.next() // colon
			return p.arenas.Stmts.New(ast.Stmt{
				Kind:  ast.StmtLabel,
				Span:  name.Span.Cover(p.lastSpan()),
				Label: identFromToken(name),
			})
		}
	}

	// Expression statement.
	value := p.parseExpr()
	if !value.IsValid() {
		p.syncStmt()
		return ast.NoStmtID
	}
	p.expectSemicolon()
	return p.arenas.Stmts.New(ast.Stmt{
		Kind:  ast.StmtExpr,
		Span:  tok.Span.Cover(p.lastSpan()),
		Value: value,
	})
}

// parseLocal parses `local type a, b[4], c;`.
func (p *Parser) parseLocal() ast.StmtID {
	start := p.next() // local
	ty := p.parseType()
	var locals []ast.LocalTarget
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
		target := ast.LocalTarget{Name: name}
		if _, ok := p.eat(token.LBracket); ok {
			target.ArrayDim = p.parseExpr()
			p.expect(token.RBracket, diag.SynUnclosedDelimiter, "']'")
		}
		locals = append(locals, target)
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expectSemicolon()
	return p.arenas.Stmts.New(ast.Stmt{
		Kind:   ast.StmtLocal,
		Span:   start.Span.Cover(p.lastSpan()),
		Type:   ty,
		Locals: locals,
	})
}

func (p *Parser) parseSwitch() ast.StmtID {
	start := p.next() // switch
	var value ast.ExprID
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); ok {
		value = p.parseExpr()
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
	}

	var clauses []ast.StmtID
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); ok {
		for !p.eof() && !p.at(token.RBrace) {
			switch p.peek().Kind {
			case token.KwCase:
				caseTok := p.next()
				caseValue := p.parseExpr()
				p.expect(token.Colon, diag.SynUnexpectedToken, "':'")
				clauses = append(clauses, p.arenas.Stmts.New(ast.Stmt{
					Kind:  ast.StmtCase,
					Span:  caseTok.Span.Cover(p.lastSpan()),
					Value: caseValue,
					Stmts: p.parseCaseBody(),
				}))
			case token.KwDefault:
				caseTok := p.next()
				p.expect(token.Colon, diag.SynUnexpectedToken, "':'")
				clauses = append(clauses, p.arenas.Stmts.New(ast.Stmt{
					Kind:  ast.StmtCase,
					Span:  caseTok.Span.Cover(p.lastSpan()),
					Stmts: p.parseCaseBody(),
				}))
			default:
				p.report(diag.SynUnexpectedToken, p.span(),
					"expected 'case' or 'default', found '"+p.peek().Text+"'")
				p.syncTo(token.KwCase, token.KwDefault, token.RBrace)
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedDelimiter, "'}'")
	}

	return p.arenas.Stmts.New(ast.Stmt{
		Kind:  ast.StmtSwitch,
		Span:  start.Span.Cover(p.lastSpan()),
		Value: value,
		Stmts: clauses,
	})
}

func (p *Parser) parseCaseBody() []ast.StmtID {
	var stmts []ast.StmtID
	// `default` only ends the clause when it starts a `default:` label;
	// otherwise it is the expression keyword (default.Prop).
	for !p.eof() && !p.at(token.RBrace) && !p.at(token.KwCase) &&
		!(p.at(token.KwDefault) && p.peekAt(1).Kind == token.Colon) {
		if id := p.parseStmt(); id.IsValid() {
			stmts = append(stmts, id)
		}
	}
	return stmts
}

// syncStmt skips to a likely statement boundary after a parse failure.
func (p *Parser) syncStmt() {
	for !p.eof() {
		switch p.peek().Kind {
		case token.Semicolon:
			p.next()
			return
		case token.RBrace, token.KwIf, token.KwWhile, token.KwFor,
			token.KwForEach, token.KwSwitch, token.KwReturn, token.KwLocal,
			token.KwDo, token.KwBreak, token.KwContinue, token.KwGoto:
			return
		}
		p.next()
	}
}
