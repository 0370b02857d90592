package symbols

import (
	"uscript/internal/ast"
	"uscript/internal/names"
)

// Index runs the resolution pass: type references, super links, member and
// operator references in bodies. Cross-document lookups may recursively
// index a dependency; the indexing flag breaks inheritance cycles.
// Resolution failures stay silent here, the analyzer reports them.
func (d *Document) Index() {
	if d.indexed || d.indexing {
		return
	}
	d.indexing = true
	defer func() {
		d.indexing = false
		d.indexed = true
	}()

	cls := d.Symbol(d.Class)
	if cls == nil {
		return
	}

	d.resolveClassHeader()

	children := d.Children(d.Class)

	// Nested types first so sibling declarations can refer to them by the
	// time their own types resolve.
	for _, id := range children {
		sym := d.Symbol(id)
		if sym.Kind == KindStruct || sym.Kind == KindEnum {
			d.indexType(id)
		}
	}
	for _, id := range children {
		sym := d.Symbol(id)
		switch sym.Kind {
		case KindStruct, KindEnum:
			// done above
		case KindProperty, KindConst:
			d.indexField(id)
		case KindMethod:
			d.indexMethod(id)
		case KindState:
			d.indexState(id)
		case KindReplication:
			d.indexReplication(id)
		case KindDefaults:
			d.indexDefaults(id)
		}
	}
}

func (d *Document) resolveClassHeader() {
	cls := d.Symbol(d.Class)
	decl, ok := d.Ast.Decls.Class(cls.Decl)
	if !ok {
		return
	}
	if decl.Extends.IsValid() {
		cls.Super = d.resolveTypeNode(decl.Extends)
	}
	if decl.Within.IsValid() {
		cls.Within = d.resolveTypeNode(decl.Within)
	}
	for _, ty := range decl.DependsOn {
		d.resolveTypeNode(ty)
	}
	for _, ty := range decl.Implements {
		d.resolveTypeNode(ty)
	}
}

// superRef returns the resolved base class handle, resolving it on demand
// so dependency documents can be indexed lazily.
func (d *Document) superRef() Ref {
	cls := d.Symbol(d.Class)
	if cls == nil {
		return Ref{}
	}
	if !cls.Super.Valid() && cls.TypeExpr.IsValid() {
		cls.Super = d.resolveTypeNode(cls.TypeExpr)
	}
	return cls.Super
}

func (d *Document) indexType(id SymbolID) {
	sym := d.Symbol(id)
	if sym.Kind == KindStruct {
		if sym.TypeExpr.IsValid() {
			sym.Super = d.resolveTypeNode(sym.TypeExpr)
		}
		for _, child := range d.Children(id) {
			c := d.Symbol(child)
			switch c.Kind {
			case KindStruct, KindEnum:
				d.indexType(child)
			case KindProperty, KindConst:
				d.indexField(child)
			}
		}
	}
}

func (d *Document) indexField(id SymbolID) {
	sym := d.Symbol(id)
	if sym.TypeExpr.IsValid() {
		sym.TypeRef = d.resolveTypeNode(sym.TypeExpr)
	}
	if sym.ArrayDim.IsValid() {
		d.resolveExpr(id, sym.ArrayDim, false)
	}
	if sym.Value.IsValid() {
		d.resolveExpr(id, sym.Value, false)
	}
}

func (d *Document) indexMethod(id SymbolID) {
	sym := d.Symbol(id)
	if sym.TypeExpr.IsValid() {
		sym.TypeRef = d.resolveTypeNode(sym.TypeExpr)
	}
	for _, child := range d.Children(id) {
		c := d.Symbol(child)
		if c.Kind == KindParam || c.Kind == KindLocal {
			d.indexField(child)
		}
	}

	if over := d.lookupInSuper(sym.Name, KindMethod); over.Valid() {
		sym.Overridden = over
	}

	if decl, ok := d.Ast.Decls.Function(sym.Decl); ok && decl.Body.IsValid() {
		d.resolveStmt(id, decl.Body)
	}
}

func (d *Document) indexState(id SymbolID) {
	sym := d.Symbol(id)
	// `state B extends A` refers to a sibling state, not a type.
	if decl, ok := d.Ast.Decls.State(sym.Decl); ok && decl.Extends.IsValid() {
		if node := d.Ast.Types.Get(decl.Extends); node != nil && node.Kind == ast.TypeName {
			ref := d.lookupState(node.Name.Name)
			sym.Super = ref
			if ref.Valid() {
				d.TypeRefs[decl.Extends] = ref
			} else {
				// Fall back to regular type resolution so hover still works.
				d.TypeRefs[decl.Extends] = d.resolveTypeNode(decl.Extends)
				sym.Super = d.TypeRefs[decl.Extends]
			}
		}
	}

	for _, child := range d.Children(id) {
		c := d.Symbol(child)
		switch c.Kind {
		case KindMethod:
			d.indexMethod(child)
		case KindLocal:
			d.indexField(child)
		}
	}
	if decl, ok := d.Ast.Decls.State(sym.Decl); ok && decl.Body.IsValid() {
		d.resolveStmt(id, decl.Body)
	}
}

func (d *Document) indexReplication(id SymbolID) {
	sym := d.Symbol(id)
	decl, ok := d.Ast.Decls.Replication(sym.Decl)
	if !ok {
		return
	}
	for _, cond := range decl.Conditions {
		if cond.Cond.IsValid() {
			d.resolveExpr(d.Class, cond.Cond, false)
		}
	}
}

func (d *Document) indexDefaults(id SymbolID) {
	sym := d.Symbol(id)
	decl, ok := d.Ast.Decls.DefaultsBlock(sym.Decl)
	if !ok {
		return
	}
	for _, assign := range decl.Assigns {
		d.resolveExpr(d.Class, assign, false)
	}
	for _, child := range d.Children(id) {
		if d.Symbol(child).Kind == KindObject {
			d.indexObject(child)
		}
	}
}

func (d *Document) indexObject(id SymbolID) {
	sym := d.Symbol(id)
	if sym.ClassName != names.None {
		sym.TypeRef = d.findTypeSymbol(sym.ClassName)
	}
	decl, ok := d.Ast.Decls.Object(sym.Decl)
	if !ok {
		return
	}
	scope := d.Class
	if sym.TypeRef.Valid() {
		// Property names inside the block belong to the object's class.
		for _, assign := range decl.Assigns {
			d.resolveObjectAssign(sym.TypeRef, assign)
		}
	} else {
		for _, assign := range decl.Assigns {
			d.resolveExpr(scope, assign, false)
		}
	}
	for _, child := range d.Children(id) {
		if d.Symbol(child).Kind == KindObject {
			d.indexObject(child)
		}
	}
}

// resolveObjectAssign resolves a sub-object assignment target against the
// object's own class members.
func (d *Document) resolveObjectAssign(class Ref, assignID ast.ExprID) {
	assign := d.Ast.Exprs.Get(assignID)
	if assign == nil || assign.Kind != ast.ExprDefaultAssign {
		return
	}
	if left := d.Ast.Exprs.Get(assign.Left); left != nil && left.Kind == ast.ExprIdent {
		if ref := lookupMemberIn(class, left.Name.Name); ref.Valid() {
			d.ExprRefs[assign.Left] = ref
			d.AssignTargets[assign.Left] = struct{}{}
		}
	}
	if assign.Right.IsValid() {
		d.resolveExpr(d.Class, assign.Right, false)
	}
}
