// Package sema runs the diagnostic pass over an indexed document. The pass
// is read-only except for one derived field: the required-parameter count
// of methods. Everything the indexer left silently unresolved gets its
// report here.
package sema

import (
	"fmt"

	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/names"
	"uscript/internal/source"
	"uscript/internal/symbols"
	"uscript/internal/token"
)

// Language generations; later generations accept more syntax.
const (
	Gen2 = 2
	Gen3 = 3
)

// Options gate optional rule groups.
type Options struct {
	// CheckTypes enables unresolved-type diagnostics. Off when analyzing a
	// lone file without its dependency tree.
	CheckTypes bool
	// Generation selects the language revision, Gen3 by default.
	Generation int
}

const (
	minFixedArray = 2
	maxFixedArray = 2048
	maxPrecedence = 255
)

type analyzer struct {
	doc      *symbols.Document
	reporter diag.Reporter
	opts     Options
}

// Analyze checks one indexed document and reports through reporter.
func Analyze(doc *symbols.Document, reporter diag.Reporter, opts Options) {
	if doc == nil || !doc.Class.IsValid() {
		return
	}
	if opts.Generation == 0 {
		opts.Generation = Gen3
	}
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	a := &analyzer{doc: doc, reporter: reporter, opts: opts}

	a.checkClassHeader()
	doc.Walk(doc.Class, func(id symbols.SymbolID, sym *symbols.Symbol) bool {
		switch sym.Kind {
		case symbols.KindConst:
			a.checkConst(sym)
		case symbols.KindProperty, symbols.KindLocal:
			a.checkVariable(sym)
		case symbols.KindMethod:
			a.checkMethod(id, sym)
		case symbols.KindState:
			a.checkState(id, sym)
		case symbols.KindReplication:
			a.checkReplication(sym)
		}
		return true
	})
	a.checkAssignments()
}

func (a *analyzer) report(code diag.Code, sp source.Span, msg string) {
	a.reporter.Report(diag.New(diag.SevError, code, sp, msg))
}

func (a *analyzer) warn(code diag.Code, sp source.Span, msg string) {
	a.reporter.Report(diag.New(diag.SevWarning, code, sp, msg))
}

func (a *analyzer) checkClassHeader() {
	cls := a.doc.Symbol(a.doc.Class)

	base := source.BaseName(a.doc.Path)
	if cls.Name != names.None && names.ToName(base) != cls.Name {
		a.report(diag.SemaClassNameMismatch, cls.NameSpan,
			fmt.Sprintf("class '%s' must match its file name '%s'",
				cls.Name.String(), base))
	}

	if reg := a.doc.Registry(); reg != nil {
		if live := reg.Document(cls.Name); live != nil && live != a.doc {
			a.report(diag.SemaDuplicateClassName, cls.NameSpan,
				"class '"+cls.Name.String()+"' is declared in another file")
		}
	}

	if decl, ok := a.doc.Ast.Decls.Class(cls.Decl); ok {
		a.checkTypeResolved(decl.Extends)
		a.checkTypeResolved(decl.Within)
		for _, ty := range decl.DependsOn {
			a.checkTypeResolved(ty)
		}
		for _, ty := range decl.Implements {
			a.checkTypeResolved(ty)
		}
	}
}

// checkTypeResolved reports named type nodes the indexer could not bind.
// Package prefixes of qualified names are exempt: only the final segment
// must resolve.
func (a *analyzer) checkTypeResolved(id ast.TypeID) {
	if !a.opts.CheckTypes || !id.IsValid() {
		return
	}
	node := a.doc.Ast.Types.Get(id)
	if node == nil {
		return
	}
	switch node.Kind {
	case ast.TypeName, ast.TypeQualified:
		if _, ok := a.doc.TypeRefs[id]; !ok {
			a.report(diag.SemaTypeNotFound, node.Span,
				"unknown type '"+node.Name.Name.String()+"'")
		}
	case ast.TypeArray, ast.TypeDelegate, ast.TypeClassMeta:
		a.checkTypeResolved(node.Base)
	case ast.TypeMap:
		a.checkTypeResolved(node.Base)
		a.checkTypeResolved(node.Value)
	}
}

func (a *analyzer) checkConst(sym *symbols.Symbol) {
	if !sym.Value.IsValid() {
		a.report(diag.SemaConstMissingValue, sym.NameSpan,
			"const '"+sym.Name.String()+"' has no value")
	}
}

func (a *analyzer) checkVariable(sym *symbols.Symbol) {
	a.checkTypeResolved(sym.TypeExpr)

	if !sym.ArrayDim.IsValid() {
		return
	}
	if n, ok := a.evalConstInt(sym.ArrayDim, 0); !ok {
		a.report(diag.SemaArrayBadSize, a.exprSpan(sym.ArrayDim),
			"fixed array size must be a constant integer")
	} else if n < minFixedArray || n > maxFixedArray {
		a.report(diag.SemaArrayBadSize, a.exprSpan(sym.ArrayDim),
			fmt.Sprintf("fixed array size %d is outside [%d, %d]",
				n, minFixedArray, maxFixedArray))
	}
	if node := a.doc.Ast.Types.Get(sym.TypeExpr); node != nil {
		switch {
		case node.Kind == ast.TypePrimitive && node.Prim == token.KwBool:
			a.report(diag.SemaArrayBadElement, node.Span,
				"fixed arrays of bool are not allowed")
		case node.Kind == ast.TypeArray:
			a.report(diag.SemaArrayBadElement, node.Span,
				"fixed arrays of dynamic arrays are not allowed")
		}
	}
}

func (a *analyzer) checkMethod(id symbols.SymbolID, sym *symbols.Symbol) {
	a.checkTypeResolved(sym.TypeExpr)

	params := a.methodParams(id)
	required := len(params)
	reported := false
	sawOptional := false
	for i, pid := range params {
		p := a.doc.Symbol(pid)
		if p.Modifiers&ast.PropOptional != 0 {
			if !sawOptional {
				sawOptional = true
				required = i
			}
		} else if sawOptional && !reported {
			a.report(diag.SemaOptionalParamOrder, p.NameSpan,
				"required parameter '"+p.Name.String()+
					"' follows an optional parameter")
			reported = true
		}

		if p.Value.IsValid() {
			switch {
			case a.opts.Generation < Gen3:
				a.report(diag.SemaParamDefaultValue, a.exprSpan(p.Value),
					"parameter defaults need language generation 3")
			case p.Modifiers&ast.PropOptional == 0:
				a.report(diag.SemaParamDefaultValue, a.exprSpan(p.Value),
					"only optional parameters may declare a default")
			}
		}
	}
	sym.RequiredParams = required

	if !sym.Flags.IsOperatorKind() {
		return
	}
	if sym.Flags&ast.MethodFinal == 0 {
		a.report(diag.SemaOperatorNotFinal, sym.NameSpan,
			"operator '"+sym.Name.String()+"' must be declared final")
	}
	if sym.Flags&ast.MethodOperator != 0 {
		if len(params) != 2 {
			a.report(diag.SemaOperatorArity, sym.NameSpan,
				fmt.Sprintf("binary operator '%s' takes 2 parameters, not %d",
					sym.Name.String(), len(params)))
		}
		if sym.Precedence < 0 || sym.Precedence > maxPrecedence {
			a.report(diag.SemaOperatorPrecedence, sym.NameSpan,
				fmt.Sprintf("operator precedence must be in [0, %d]", maxPrecedence))
		}
	} else if len(params) != 1 {
		a.report(diag.SemaOperatorArity, sym.NameSpan,
			"unary operator '"+sym.Name.String()+"' takes exactly 1 parameter")
	}
}

func (a *analyzer) methodParams(id symbols.SymbolID) []symbols.SymbolID {
	var out []symbols.SymbolID
	for _, child := range a.doc.Children(id) {
		if a.doc.Symbol(child).Kind == symbols.KindParam {
			out = append(out, child)
		}
	}
	return out
}

func (a *analyzer) checkState(id symbols.SymbolID, sym *symbols.Symbol) {
	if sym.TypeExpr.IsValid() {
		if target := sym.Super.Deref(); target != nil && target.Kind != symbols.KindState {
			node := a.doc.Ast.Types.Get(sym.TypeExpr)
			a.report(diag.SemaStateExtendsNonState, node.Span,
				"state '"+sym.Name.String()+"' can only extend another state")
		}
	}

	decl, ok := a.doc.Ast.Decls.State(sym.Decl)
	if !ok {
		return
	}
	for _, ignored := range decl.Ignores {
		ref := a.doc.LookupMethod(ignored.Name)
		if !ref.Valid() {
			if a.doc.LookupMember(ignored.Name).Valid() {
				a.report(diag.SemaStateIgnoresNonMethod, ignored.Span,
					"'"+ignored.Name.String()+"' is not a function")
			} else if a.opts.CheckTypes {
				a.report(diag.SemaIgnoresUnknownMethod, ignored.Span,
					"unknown function '"+ignored.Name.String()+"' in ignores")
			}
			continue
		}
		if target := ref.Deref(); target != nil && target.Flags&ast.MethodFinal != 0 {
			a.report(diag.SemaIgnoresFinalMethod, ignored.Span,
				"final function '"+ignored.Name.String()+"' cannot be ignored")
		}
	}
}

func (a *analyzer) checkReplication(sym *symbols.Symbol) {
	decl, ok := a.doc.Ast.Decls.Replication(sym.Decl)
	if !ok {
		return
	}
	for _, cond := range decl.Conditions {
		for _, name := range cond.Names {
			ref := a.doc.LookupMember(name.Name)
			if !ref.Valid() {
				if a.opts.CheckTypes {
					a.report(diag.SemaReplicationUnknown, name.Span,
						"unknown symbol '"+name.Name.String()+"' in replication")
				}
				continue
			}
			if ref.Doc != a.doc {
				a.report(diag.SemaReplicationInherited, name.Span,
					"'"+name.Name.String()+"' must be replicated by the class declaring it")
				continue
			}
			if target := ref.Deref(); target != nil {
				if target.Kind != symbols.KindProperty && target.Kind != symbols.KindMethod {
					a.report(diag.SemaReplicationNotMember, name.Span,
						"'"+name.Name.String()+"' is not a variable or function")
				}
			}
		}
	}
}

// checkAssignments validates the left side of every assignment, in
// function bodies and defaults blocks alike.
func (a *analyzer) checkAssignments() {
	exprs := a.doc.Ast.Exprs
	for id := uint32(1); id <= exprs.Arena.Len(); id++ {
		expr := exprs.Get(ast.ExprID(id))
		if expr == nil {
			continue
		}
		if expr.Kind != ast.ExprAssign && expr.Kind != ast.ExprDefaultAssign {
			continue
		}
		a.checkAssignTarget(expr.Left)
	}
}

func (a *analyzer) checkAssignTarget(id ast.ExprID) {
	expr := a.doc.Ast.Exprs.Get(id)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprIdent, ast.ExprMember:
		ref, ok := a.doc.ExprRefs[id]
		if !ok || !ref.Valid() {
			return // unresolved, not our report
		}
		target := ref.Deref()
		switch target.Kind {
		case symbols.KindConst:
			a.report(diag.SemaAssignToConst, expr.Span,
				"cannot assign to const '"+target.Name.String()+"'")
		case symbols.KindProperty, symbols.KindParam, symbols.KindLocal:
			if target.ArrayDim.IsValid() {
				a.report(diag.SemaAssignToFixedArray, expr.Span,
					"cannot assign a whole fixed array, assign its elements")
			}
		default:
			a.report(diag.SemaAssignToNonVariable, expr.Span,
				"cannot assign to "+target.Kind.String()+" '"+target.Name.String()+"'")
		}
	case ast.ExprElement:
		// Element writes into fixed arrays are fine; check the index side
		// only for resolution, nothing to report here.
	default:
		if expr.Kind.IsLeaf() {
			a.report(diag.SemaAssignToNonVariable, expr.Span,
				"left side of assignment is not a variable")
		}
	}
}

// evalConstInt resolves an expression to a constant integer, following
// const references up to a small depth.
func (a *analyzer) evalConstInt(id ast.ExprID, depth int) (int64, bool) {
	if depth > 8 {
		return 0, false
	}
	expr := a.doc.Ast.Exprs.Get(id)
	if expr == nil {
		return 0, false
	}
	switch expr.Kind {
	case ast.ExprIntLit:
		return expr.IntVal, true
	case ast.ExprPreOp:
		if expr.Op == token.Minus {
			if n, ok := a.evalConstInt(expr.Target, depth+1); ok {
				return -n, true
			}
		}
		return 0, false
	case ast.ExprIdent, ast.ExprMember:
		ref, ok := a.doc.ExprRefs[id]
		if !ok || !ref.Valid() {
			return 0, false
		}
		sym := ref.Deref()
		if sym == nil {
			return 0, false
		}
		switch sym.Kind {
		case symbols.KindConst:
			if !sym.Value.IsValid() {
				return 0, false
			}
			return evalConstIntIn(ref.Doc, sym.Value, depth+1)
		case symbols.KindEnumMember:
			return int64(sym.Ordinal), true
		}
	}
	return 0, false
}

// evalConstIntIn evaluates inside the document owning the const, so
// cross-document const references resolve against the right arenas.
func evalConstIntIn(doc *symbols.Document, id ast.ExprID, depth int) (int64, bool) {
	sub := &analyzer{doc: doc, reporter: diag.NopReporter{}}
	return sub.evalConstInt(id, depth)
}

func (a *analyzer) exprSpan(id ast.ExprID) source.Span {
	if expr := a.doc.Ast.Exprs.Get(id); expr != nil {
		return expr.Span
	}
	return source.Span{File: a.doc.File}
}
