package symbols

import (
	"fmt"

	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/names"
	"uscript/internal/source"
	"uscript/internal/token"
)

// Build runs the declaration pass: one forward walk over the parse tree
// producing the symbol tree. No name resolution happens here; every
// document must be built before any is indexed.
func (d *Document) Build() {
	d.collectDocComments()

	root := d.Ast.Files.Get(d.Root)
	if root == nil {
		return
	}

	for _, declID := range root.Decls {
		decl := d.Ast.Decls.Get(declID)
		if decl == nil {
			continue
		}
		if decl.Kind != ast.DeclClass {
			// A stray member before any class header still gets a symbol
			// once a class exists; otherwise it has no home.
			if d.Class.IsValid() {
				d.safeBuild(d.Class, declID)
			}
			continue
		}
		if d.Class.IsValid() {
			d.reporter.Report(diag.New(diag.SevError, diag.SynDuplicateClass,
				decl.Span, "only one class declaration is allowed per file"))
			continue // the subtree is discarded
		}
		d.buildClass(declID, root.Span)
	}
}

func (d *Document) buildClass(declID ast.DeclID, fileSpan source.Span) {
	cls, ok := d.Ast.Decls.Class(declID)
	if !ok {
		return
	}
	decl := d.Ast.Decls.Get(declID)

	// The class symbol spans the whole file: members follow the header
	// without braces, so position queries land inside the class.
	id := d.newSymbol(Symbol{
		Kind:      KindClass,
		Name:      cls.Name.Name,
		Span:      fileSpan,
		NameSpan:  cls.Name.Span,
		Doc:       d.docText[decl.Span.Start],
		Decl:      declID,
		TypeExpr:  cls.Extends,
		Modifiers: cls.Modifiers,
	})
	d.Class = id

	for _, member := range cls.Members {
		d.safeBuild(id, member)
	}
}

// safeBuild builds one member, recovering from internal failures so one
// broken construct never takes out its siblings.
func (d *Document) safeBuild(parent SymbolID, declID ast.DeclID) {
	defer func() {
		if r := recover(); r != nil {
			span := source.Span{File: d.File}
			if decl := d.Ast.Decls.Get(declID); decl != nil {
				span = decl.Span
			}
			d.reporter.Report(diag.New(diag.SevError, diag.SymInternalBuildError,
				span, fmt.Sprintf("internal error while building symbols: %v", r)))
		}
	}()
	d.buildMember(parent, declID)
}

func (d *Document) buildMember(parent SymbolID, declID ast.DeclID) {
	decl := d.Ast.Decls.Get(declID)
	if decl == nil {
		return
	}

	switch decl.Kind {
	case ast.DeclConst:
		data, _ := d.Ast.Decls.Const(declID)
		// Consts are class-scoped no matter where they are written.
		target := d.Class
		if !target.IsValid() {
			target = parent
		}
		id := d.newSymbol(Symbol{
			Kind:     KindConst,
			Name:     data.Name.Name,
			Span:     decl.Span,
			NameSpan: data.Name.Span,
			Doc:      d.docText[decl.Span.Start],
			Decl:     declID,
			Value:    data.Value,
		})
		d.attach(target, id)

	case ast.DeclVar:
		data, _ := d.Ast.Decls.Var(declID)
		id := d.newSymbol(Symbol{
			Kind:      KindProperty,
			Name:      data.Name.Name,
			Span:      decl.Span,
			NameSpan:  data.Name.Span,
			Doc:       d.docText[decl.Span.Start],
			Decl:      declID,
			TypeExpr:  data.Type,
			Modifiers: data.Modifiers,
			ArrayDim:  data.ArrayDim,
		})
		d.attach(parent, id)

	case ast.DeclEnum:
		d.buildEnum(parent, declID)

	case ast.DeclStruct:
		data, _ := d.Ast.Decls.Struct(declID)
		id := d.newSymbol(Symbol{
			Kind:     KindStruct,
			Name:     data.Name.Name,
			Span:     decl.Span,
			NameSpan: data.Name.Span,
			Doc:      d.docText[decl.Span.Start],
			Decl:     declID,
			TypeExpr: data.Extends,
		})
		d.attach(parent, id)
		for _, member := range data.Members {
			d.safeBuild(id, member)
		}

	case ast.DeclFunction:
		d.buildFunction(parent, declID)

	case ast.DeclState:
		d.buildState(parent, declID)

	case ast.DeclReplication:
		id := d.newSymbol(Symbol{
			Kind: KindReplication,
			Span: decl.Span,
			Decl: declID,
		})
		d.attach(parent, id)

	case ast.DeclDefaults:
		data, _ := d.Ast.Decls.DefaultsBlock(declID)
		id := d.newSymbol(Symbol{
			Kind: KindDefaults,
			Span: decl.Span,
			Decl: declID,
		})
		d.attach(parent, id)
		for _, obj := range data.Objects {
			d.buildObject(id, obj)
		}

	case ast.DeclObject:
		d.buildObject(parent, declID)
	}
}

func (d *Document) buildEnum(parent SymbolID, declID ast.DeclID) {
	data, _ := d.Ast.Decls.Enum(declID)
	decl := d.Ast.Decls.Get(declID)

	id := d.newSymbol(Symbol{
		Kind:     KindEnum,
		Name:     data.Name.Name,
		Span:     decl.Span,
		NameSpan: data.Name.Span,
		Doc:      d.docText[decl.Span.Start],
		Decl:     declID,
	})
	d.attach(parent, id)

	for i, member := range data.Members {
		m := d.newSymbol(Symbol{
			Kind:     KindEnumMember,
			Name:     member.Name,
			Span:     member.Span,
			NameSpan: member.Span,
			Decl:     declID,
			Ordinal:  uint16(i),
		})
		d.attach(id, m)
	}

	// The language defines `<Enum>_MAX` as the member count sentinel.
	maxName := names.ToName(data.Name.Name.String() + "_MAX")
	m := d.newSymbol(Symbol{
		Kind:      KindEnumMember,
		Name:      maxName,
		Span:      data.Name.Span,
		NameSpan:  data.Name.Span,
		Decl:      declID,
		Ordinal:   uint16(len(data.Members)),
		Synthetic: true,
	})
	d.attach(id, m)
}

func (d *Document) buildFunction(parent SymbolID, declID ast.DeclID) {
	data, _ := d.Ast.Decls.Function(declID)
	decl := d.Ast.Decls.Get(declID)

	flags := data.Flags
	if flags&ast.KindBits == 0 {
		d.reporter.Report(diag.New(diag.SevError, diag.SymMissingFunctionKind,
			data.Name.Span, "declaration of '"+data.Name.Name.String()+
				"' is missing a function kind keyword"))
		flags |= ast.MethodFunction
	}

	id := d.newSymbol(Symbol{
		Kind:       KindMethod,
		Name:       data.Name.Name,
		Span:       decl.Span,
		NameSpan:   data.Name.Span,
		Doc:        d.docText[decl.Span.Start],
		Decl:       declID,
		TypeExpr:   data.ReturnType,
		Flags:      flags,
		Modifiers:  data.Modifiers,
		Precedence: data.Precedence,
	})
	d.attach(parent, id)

	for _, paramID := range data.Params {
		param, ok := d.Ast.Decls.Param(paramID)
		if !ok {
			continue
		}
		pdecl := d.Ast.Decls.Get(paramID)
		p := d.newSymbol(Symbol{
			Kind:      KindParam,
			Name:      param.Name.Name,
			Span:      pdecl.Span,
			NameSpan:  param.Name.Span,
			Decl:      paramID,
			TypeExpr:  param.Type,
			Modifiers: param.Modifiers,
			ArrayDim:  param.ArrayDim,
			Value:     param.Default,
		})
		d.attach(id, p)
	}

	if data.Body.IsValid() {
		d.buildLocals(id, data.Body)
	}
}

// buildLocals walks a body collecting local declarations and labels into
// the method scope.
func (d *Document) buildLocals(method SymbolID, stmtID ast.StmtID) {
	stmt := d.Ast.Stmts.Get(stmtID)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtLocal:
		for _, target := range stmt.Locals {
			id := d.newSymbol(Symbol{
				Kind:     KindLocal,
				Name:     target.Name.Name,
				Span:     stmt.Span,
				NameSpan: target.Name.Span,
				TypeExpr: stmt.Type,
				ArrayDim: target.ArrayDim,
			})
			d.attach(method, id)
		}
	case ast.StmtLabel:
		id := d.newSymbol(Symbol{
			Kind:     KindLabel,
			Name:     stmt.Label.Name,
			Span:     stmt.Span,
			NameSpan: stmt.Label.Span,
		})
		d.attach(method, id)
	}
	for _, child := range stmt.Stmts {
		d.buildLocals(method, child)
	}
	if stmt.Body.IsValid() {
		d.buildLocals(method, stmt.Body)
	}
	if stmt.Else.IsValid() {
		d.buildLocals(method, stmt.Else)
	}
}

func (d *Document) buildState(parent SymbolID, declID ast.DeclID) {
	data, _ := d.Ast.Decls.State(declID)
	decl := d.Ast.Decls.Get(declID)

	id := d.newSymbol(Symbol{
		Kind:     KindState,
		Name:     data.Name.Name,
		Span:     decl.Span,
		NameSpan: data.Name.Span,
		Doc:      d.docText[decl.Span.Start],
		Decl:     declID,
		TypeExpr: data.Extends,
	})
	d.attach(parent, id)

	for _, member := range data.Members {
		d.safeBuild(id, member)
	}
	if data.Body.IsValid() {
		d.buildLocals(id, data.Body)
	}
}

func (d *Document) buildObject(parent SymbolID, declID ast.DeclID) {
	data, ok := d.Ast.Decls.Object(declID)
	if !ok {
		return
	}
	decl := d.Ast.Decls.Get(declID)

	sym := Symbol{Kind: KindObject, Span: decl.Span, Decl: declID}
	// The first assignments conventionally label the object:
	// `Begin Object Class=PointLight Name=Light0`.
	for i, assignID := range data.Assigns {
		if i >= 2 {
			break
		}
		key, value := d.defaultsAssignParts(assignID)
		switch key {
		case names.ToName("name"):
			if value != nil && value.Kind == ast.ExprIdent {
				sym.Name = value.Name.Name
				sym.NameSpan = value.Name.Span
			}
		case names.ToName("class"):
			if value != nil && value.Kind == ast.ExprIdent {
				sym.ClassName = value.Name.Name
			}
		}
	}

	id := d.newSymbol(sym)
	d.attach(parent, id)
	for _, obj := range data.Objects {
		d.buildObject(id, obj)
	}
}

// defaultsAssignParts splits a defaults assignment into its target name
// and value expression.
func (d *Document) defaultsAssignParts(assignID ast.ExprID) (names.Name, *ast.Expr) {
	assign := d.Ast.Exprs.Get(assignID)
	if assign == nil || assign.Kind != ast.ExprDefaultAssign {
		return names.None, nil
	}
	left := d.Ast.Exprs.Get(assign.Left)
	if left == nil || left.Kind != ast.ExprIdent {
		return names.None, nil
	}
	return left.Name.Name, d.Ast.Exprs.Get(assign.Right)
}

// collectDocComments maps declaration start offsets to their doc comment:
// the full-line block immediately above the declaration, or a trailing
// comment on the declaration's own line. A blank line breaks attachment.
func (d *Document) collectDocComments() {
	d.docText = make(map[uint32]string)
	lineStart := 0
	for i, tok := range d.Tokens {
		lead := tok.Leading
		// Trivia before the first newline sit on the previous token's
		// line; a comment there trails the declaration opening that line.
		cut := -1
		if i > 0 {
			for j, tr := range lead {
				if tr.Kind == token.TriviaNewline {
					cut = j
					break
				}
			}
		}
		if cut < 0 {
			if i > 0 {
				d.attachTrailing(lineStart, lead)
			} else if text := adjacentComment(lead); text != "" {
				d.docText[tok.Span.Start] = text
			}
			continue
		}
		d.attachTrailing(lineStart, lead[:cut])
		if text := adjacentComment(lead[cut:]); text != "" {
			d.docText[tok.Span.Start] = text
		}
		lineStart = i
	}
}

// attachTrailing records a same-line comment against the token that opens
// the line. A leading block already attached there wins.
func (d *Document) attachTrailing(lineStart int, trivia []token.Trivia) {
	for _, tr := range trivia {
		if !tr.IsComment() {
			continue
		}
		start := d.Tokens[lineStart].Span.Start
		if _, ok := d.docText[start]; !ok {
			d.docText[start] = CleanDoc(tr.Text)
		}
		return
	}
}

func adjacentComment(leading []token.Trivia) string {
	var lines []string
	newlines := 0
	for i := len(leading) - 1; i >= 0; i-- {
		tr := leading[i]
		if tr.IsComment() {
			if newlines > 1 {
				break // blank line gap, comment belongs to nothing
			}
			lines = append(lines, tr.Text)
			newlines = 0
			continue
		}
		if tr.Kind == token.TriviaNewline {
			newlines++
			if newlines > 1 && len(lines) > 0 {
				break
			}
		}
	}
	if len(lines) == 0 {
		return ""
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	joined := lines[0]
	for _, l := range lines[1:] {
		joined += "\n" + l
	}
	return CleanDoc(joined)
}
