package symbols

import (
	"strings"

	"uscript/internal/ast"
	"uscript/internal/names"
)

// resolveTypeNode resolves a type reference and records the target for
// every named node of the chain. Wrapper types (array, map, class<>,
// delegate) pass through to their element type.
func (d *Document) resolveTypeNode(id ast.TypeID) Ref {
	node := d.Ast.Types.Get(id)
	if node == nil {
		return Ref{}
	}
	switch node.Kind {
	case ast.TypePrimitive:
		return Ref{}

	case ast.TypeName:
		ref := d.findTypeSymbol(node.Name.Name)
		if ref.Valid() {
			d.TypeRefs[id] = ref
		}
		return ref

	case ast.TypeQualified:
		// `Outer.Inner` first tries a nested type of a resolved outer;
		// when the outer is a package prefix the final segment resolves
		// globally on its own.
		base := d.resolveTypeNode(node.Base)
		if base.Valid() {
			if ref := lookupNestedType(base, node.Name.Name); ref.Valid() {
				d.TypeRefs[id] = ref
				return ref
			}
		}
		ref := d.findTypeSymbol(node.Name.Name)
		if ref.Valid() {
			d.TypeRefs[id] = ref
		}
		return ref

	case ast.TypeArray, ast.TypeDelegate, ast.TypeClassMeta:
		return d.resolveTypeNode(node.Base)

	case ast.TypeMap:
		d.resolveTypeNode(node.Base)
		return d.resolveTypeNode(node.Value)
	}
	return Ref{}
}

// findTypeSymbol resolves a bare type name: own nested types, the class
// itself, the super chain's nested types, then the global class and
// struct/enum tables. Results (including misses) are cached per document.
func (d *Document) findTypeSymbol(name names.Name) Ref {
	if name == names.None {
		return Ref{}
	}
	if ref, ok := d.typeCache[name]; ok {
		return ref
	}
	var ref Ref

	if id := d.findLocalType(d.Class, name); id.IsValid() {
		ref = MakeRef(d, id)
	}
	if !ref.Valid() && d.ClassName() == name {
		ref = MakeRef(d, d.Class)
	}
	if !ref.Valid() {
		d.forSupers(func(doc *Document, class SymbolID) bool {
			if id := doc.findLocalType(class, name); id.IsValid() {
				ref = MakeRef(doc, id)
				return false
			}
			return true
		})
	}
	if !ref.Valid() && d.registry != nil {
		ref = d.registry.Class(name)
		if !ref.Valid() {
			ref = d.registry.Object(name)
		}
	}

	d.typeCache[name] = ref
	return ref
}

// findLocalType scans a container subtree for a nested enum or struct.
func (d *Document) findLocalType(container SymbolID, name names.Name) SymbolID {
	for _, child := range d.Children(container) {
		sym := d.Symbol(child)
		if sym.Kind == KindEnum || sym.Kind == KindStruct {
			if sym.Name == name {
				return child
			}
			if sym.Kind == KindStruct {
				if id := d.findLocalType(child, name); id.IsValid() {
					return id
				}
			}
		}
	}
	return NoSymbol
}

// lookupNestedType looks for a type member directly inside a resolved
// container symbol.
func lookupNestedType(container Ref, name names.Name) Ref {
	doc := container.Doc
	if doc == nil || !container.Valid() {
		return Ref{}
	}
	for _, child := range doc.Children(container.Sym) {
		sym := doc.Symbol(child)
		if sym.Kind.IsType() && sym.Name == name {
			return MakeRef(doc, child)
		}
	}
	return Ref{}
}

// forSupers walks the inheritance chain, indexing dependencies on demand.
// The visited set guards against inheritance cycles.
func (d *Document) forSupers(visit func(doc *Document, class SymbolID) bool) {
	seen := map[*Document]bool{d: true}
	ref := d.superRef()
	for ref.Valid() {
		doc := ref.Doc
		if seen[doc] {
			return
		}
		seen[doc] = true
		if !visit(doc, ref.Sym) {
			return
		}
		ref = doc.superRef()
	}
}

// findChildKind scans direct members for a name with a specific kind.
func (d *Document) findChildKind(parent SymbolID, name names.Name, kind SymbolKind) SymbolID {
	for _, child := range d.Children(parent) {
		sym := d.Symbol(child)
		if sym.Kind == kind && sym.Name == name {
			return child
		}
	}
	return NoSymbol
}

// lookupState resolves a state name in the own class, then the supers.
func (d *Document) lookupState(name names.Name) Ref {
	if id := d.findChildKind(d.Class, name, KindState); id.IsValid() {
		return MakeRef(d, id)
	}
	var ref Ref
	d.forSupers(func(doc *Document, class SymbolID) bool {
		if id := doc.findChildKind(class, name, KindState); id.IsValid() {
			ref = MakeRef(doc, id)
			return false
		}
		return true
	})
	return ref
}

// lookupInSuper finds a class member of the given kind along the super
// chain, not looking at the own class.
func (d *Document) lookupInSuper(name names.Name, kind SymbolKind) Ref {
	var ref Ref
	d.forSupers(func(doc *Document, class SymbolID) bool {
		if id := doc.findChildKind(class, name, kind); id.IsValid() {
			ref = MakeRef(doc, id)
			return false
		}
		return true
	})
	return ref
}

// LookupMethod resolves a method name against the class and its supers.
// Used by the analyzer for ignores and replication checks.
func (d *Document) LookupMethod(name names.Name) Ref {
	if id := d.findChildKind(d.Class, name, KindMethod); id.IsValid() {
		return MakeRef(d, id)
	}
	return d.lookupInSuper(name, KindMethod)
}

// LookupMember resolves a class member by name, climbing the super chain.
func (d *Document) LookupMember(name names.Name) Ref {
	return lookupMemberIn(MakeRef(d, d.Class), name)
}

// Registry returns the registry the document was added to, nil before Add.
func (d *Document) Registry() *Registry { return d.registry }

// SuperRef exposes the resolved base class for queries and the analyzer.
func (d *Document) SuperRef() Ref { return d.superRef() }

// lookupValue resolves a bare value name from an inner scope outward:
// enclosing scopes, the super chain, then the global enum member table.
func (d *Document) lookupValue(scope SymbolID, name names.Name) Ref {
	for s := scope; s.IsValid(); s = d.Symbol(s).Outer {
		if id := d.FindChild(s, name); id.IsValid() {
			return MakeRef(d, id)
		}
	}
	if ref := lookupMemberIn(d.superRef(), name); ref.Valid() {
		return ref
	}
	if d.registry != nil {
		if ref := d.registry.EnumMember(name); ref.Valid() {
			return ref
		}
	}
	return Ref{}
}

// lookupMemberIn resolves a member against a container symbol, climbing
// class and struct inheritance.
func lookupMemberIn(container Ref, name names.Name) Ref {
	seen := make(map[*Document]bool)
	for container.Valid() {
		doc := container.Doc
		if id := doc.FindChild(container.Sym, name); id.IsValid() {
			return MakeRef(doc, id)
		}
		sym := doc.Symbol(container.Sym)
		switch sym.Kind {
		case KindClass:
			if seen[doc] {
				return Ref{}
			}
			seen[doc] = true
			container = doc.superRef()
		case KindStruct:
			container = sym.Super
		default:
			return Ref{}
		}
	}
	return Ref{}
}

// lookupOperator resolves an operator overload by spelling, restricted to
// the matching operator kind, climbing the super chain.
func (d *Document) lookupOperator(name names.Name, kind ast.MethodFlags) Ref {
	match := func(doc *Document, class SymbolID) SymbolID {
		for _, child := range doc.Children(class) {
			sym := doc.Symbol(child)
			if sym.Kind == KindMethod && sym.Flags&kind != 0 && sym.Name == name {
				return child
			}
		}
		return NoSymbol
	}
	if id := match(d, d.Class); id.IsValid() {
		return MakeRef(d, id)
	}
	var ref Ref
	d.forSupers(func(doc *Document, class SymbolID) bool {
		if id := match(doc, class); id.IsValid() {
			ref = MakeRef(doc, id)
			return false
		}
		return true
	})
	return ref
}

func (d *Document) resolveStmt(scope SymbolID, id ast.StmtID) {
	stmt := d.Ast.Stmts.Get(id)
	if stmt == nil {
		return
	}
	if stmt.Cond.IsValid() {
		d.resolveExpr(scope, stmt.Cond, false)
	}
	if stmt.Value.IsValid() {
		d.resolveExpr(scope, stmt.Value, false)
	}
	if stmt.Init.IsValid() {
		d.resolveExpr(scope, stmt.Init, false)
	}
	if stmt.Post.IsValid() {
		d.resolveExpr(scope, stmt.Post, false)
	}
	for _, child := range stmt.Stmts {
		d.resolveStmt(scope, child)
	}
	if stmt.Body.IsValid() {
		d.resolveStmt(scope, stmt.Body)
	}
	if stmt.Else.IsValid() {
		d.resolveStmt(scope, stmt.Else)
	}
}

var primitiveCasts = map[string]bool{
	"int": true, "float": true, "byte": true, "bool": true,
	"string": true, "name": true,
}

func isPrimitiveCast(name names.Name) bool {
	return primitiveCasts[strings.ToLower(name.String())]
}

func (d *Document) resolveExpr(scope SymbolID, id ast.ExprID, assignTarget bool) {
	expr := d.Ast.Exprs.Get(id)
	if expr == nil {
		return
	}
	if assignTarget {
		d.AssignTargets[id] = struct{}{}
	}

	switch expr.Kind {
	case ast.ExprIdent:
		ref := d.lookupValue(scope, expr.Name.Name)
		if !ref.Valid() {
			// A bare class name in static access position.
			ref = d.findTypeSymbol(expr.Name.Name)
		}
		if ref.Valid() {
			d.ExprRefs[id] = ref
		}

	case ast.ExprMember:
		d.resolveExpr(scope, expr.Target, assignTarget)
		// `.static` / `.default` / `.const` pass the container through.
		switch strings.ToLower(expr.Name.Name.String()) {
		case "static", "default", "const":
			if ref, ok := d.ExprRefs[expr.Target]; ok {
				d.ExprRefs[id] = ref
			}
			return
		}
		container := d.memberScope(expr.Target)
		if container.Valid() {
			if ref := lookupMemberIn(container, expr.Name.Name); ref.Valid() {
				d.ExprRefs[id] = ref
			}
		}

	case ast.ExprCall:
		d.resolveCallee(scope, expr.Target)
		for _, arg := range expr.Args {
			if arg.IsValid() {
				d.resolveExpr(scope, arg, false)
			}
		}
		if ref, ok := d.ExprRefs[expr.Target]; ok {
			d.ExprRefs[id] = ref
		}

	case ast.ExprElement:
		d.resolveExpr(scope, expr.Target, assignTarget)
		d.resolveExpr(scope, expr.Left, false)
		if ref, ok := d.ExprRefs[expr.Target]; ok {
			d.ExprRefs[id] = ref
		}

	case ast.ExprAssign, ast.ExprDefaultAssign:
		d.resolveExpr(scope, expr.Left, true)
		if expr.Right.IsValid() {
			d.resolveExpr(scope, expr.Right, false)
		}

	case ast.ExprBinary:
		d.resolveExpr(scope, expr.Left, false)
		d.resolveExpr(scope, expr.Right, false)
		if ref := d.lookupOperator(expr.OpName, ast.MethodOperator); ref.Valid() {
			d.ExprRefs[id] = ref
		}

	case ast.ExprPreOp:
		d.resolveExpr(scope, expr.Target, false)
		if ref := d.lookupOperator(expr.OpName, ast.MethodPreOperator); ref.Valid() {
			d.ExprRefs[id] = ref
		}

	case ast.ExprPostOp:
		d.resolveExpr(scope, expr.Target, false)
		if ref := d.lookupOperator(expr.OpName, ast.MethodPostOperator); ref.Valid() {
			d.ExprRefs[id] = ref
		}

	case ast.ExprTernary:
		d.resolveExpr(scope, expr.Left, false)
		d.resolveExpr(scope, expr.Right, false)
		d.resolveExpr(scope, expr.Third, false)

	case ast.ExprNew:
		for _, arg := range expr.Args {
			d.resolveExpr(scope, arg, false)
		}
		d.resolveExpr(scope, expr.Third, false)

	case ast.ExprSelf, ast.ExprDefault:
		d.ExprRefs[id] = MakeRef(d, d.Class)

	case ast.ExprSuper:
		if expr.Name.Name != names.None {
			if ref := d.findTypeSymbol(expr.Name.Name); ref.Valid() {
				d.ExprRefs[id] = ref
			}
		} else if ref := d.superRef(); ref.Valid() {
			d.ExprRefs[id] = ref
		}

	case ast.ExprMetaClass, ast.ExprObjectLit:
		if ref := d.findTypeSymbol(lastSegment(expr.Text)); ref.Valid() {
			d.ExprRefs[id] = ref
		}

	case ast.ExprArrayCount, ast.ExprNameOf:
		d.resolveExpr(scope, expr.Target, false)

	case ast.ExprVectLit, ast.ExprRotLit, ast.ExprRngLit, ast.ExprStructLit:
		for _, arg := range expr.Args {
			d.resolveExpr(scope, arg, false)
		}
	}
}

// resolveCallee classifies a call target: primitive cast, class cast,
// struct or enum cast, then a regular value lookup.
func (d *Document) resolveCallee(scope SymbolID, id ast.ExprID) {
	callee := d.Ast.Exprs.Get(id)
	if callee == nil {
		return
	}
	if callee.Kind == ast.ExprIdent {
		name := callee.Name.Name
		if isPrimitiveCast(name) {
			return
		}
		if d.registry != nil {
			if ref := d.registry.Class(name); ref.Valid() {
				d.ExprRefs[id] = ref
				return
			}
			if ref := d.registry.Object(name); ref.Valid() {
				d.ExprRefs[id] = ref
				return
			}
		}
	}
	d.resolveExpr(scope, id, false)
}

// memberScope maps a resolved target expression to the container its
// members live in.
func (d *Document) memberScope(targetID ast.ExprID) Ref {
	ref, ok := d.ExprRefs[targetID]
	if !ok || !ref.Valid() {
		return Ref{}
	}
	return ContainerOf(ref)
}

// ContainerOf maps a resolved symbol to the container whose members are
// addressable through it: a type symbol is its own scope, a value symbol
// opens the scope of its type.
func ContainerOf(ref Ref) Ref {
	sym := ref.Deref()
	if sym == nil {
		return Ref{}
	}
	switch sym.Kind {
	case KindClass, KindStruct, KindEnum, KindState:
		return ref
	case KindObject, KindProperty, KindParam, KindLocal, KindMethod:
		// The member set is that of the symbol's type.
		ensureIndexed(ref.Doc)
		return ref.Doc.Symbol(ref.Sym).TypeRef
	default:
		return Ref{}
	}
}

func ensureIndexed(doc *Document) {
	if doc != nil && !doc.indexed && !doc.indexing {
		doc.Index()
	}
}

func lastSegment(path string) names.Name {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return names.None
	}
	return names.ToName(path)
}
