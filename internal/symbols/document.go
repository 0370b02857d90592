package symbols

import (
	"strings"

	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/names"
	"uscript/internal/source"
	"uscript/internal/token"
)

// Document owns the semantic state of one source file: its parse arenas,
// retained token stream, and symbol tree. Queries and the analyzer only
// read; rebuild replaces the whole document.
type Document struct {
	Path   string
	File   source.FileID
	Ast    *ast.Builder
	Tokens []token.Token
	Root   ast.FileID

	Class SymbolID // the single top-level class symbol

	syms     *ast.Arena[Symbol]
	reporter diag.Reporter
	registry *Registry

	// Reference targets recorded by the index pass.
	ExprRefs map[ast.ExprID]Ref
	TypeRefs map[ast.TypeID]Ref
	// Expressions that appear in assignment-target position.
	AssignTargets map[ast.ExprID]struct{}

	typeCache map[names.Name]Ref
	docText   map[uint32]string // decl start offset -> adjacent doc comment

	gen      uint32
	indexed  bool
	indexing bool
}

// NewDocument wraps a parsed file. Build must run before the document is
// registered or queried.
func NewDocument(path string, file source.FileID, builder *ast.Builder,
	tokens []token.Token, root ast.FileID, reporter diag.Reporter) *Document {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Document{
		Path:          path,
		File:          file,
		Ast:           builder,
		Tokens:        tokens,
		Root:          root,
		syms:          ast.NewArena[Symbol](1 << 6),
		reporter:      reporter,
		ExprRefs:      make(map[ast.ExprID]Ref),
		TypeRefs:      make(map[ast.TypeID]Ref),
		AssignTargets: make(map[ast.ExprID]struct{}),
		typeCache:     make(map[names.Name]Ref),
		gen:           1,
	}
}

// Symbol returns the arena node, or nil for the invalid id.
func (d *Document) Symbol(id SymbolID) *Symbol {
	return d.syms.Get(uint32(id))
}

// ClassName is the interned name of the document's class, or names.None
// when the file declared none.
func (d *Document) ClassName() names.Name {
	if cls := d.Symbol(d.Class); cls != nil {
		return cls.Name
	}
	return names.None
}

// Invalidate retires the document: every Ref minted against it goes stale.
func (d *Document) Invalidate() {
	d.gen++
}

// Indexed reports whether the resolution pass has completed.
func (d *Document) Indexed() bool { return d.indexed }

func (d *Document) newSymbol(sym Symbol) SymbolID {
	return SymbolID(d.syms.Allocate(sym))
}

// attach prepends child to parent's intrusive child list.
func (d *Document) attach(parent, child SymbolID) {
	c := d.Symbol(child)
	if c == nil {
		return
	}
	c.Outer = parent
	if p := d.Symbol(parent); p != nil {
		c.NextSibling = p.FirstChild
		p.FirstChild = child
	}
}

// Children returns the member list in declaration order.
func (d *Document) Children(id SymbolID) []SymbolID {
	sym := d.Symbol(id)
	if sym == nil {
		return nil
	}
	var out []SymbolID
	for c := sym.FirstChild; c.IsValid(); c = d.Symbol(c).NextSibling {
		out = append(out, c)
	}
	// The list is built newest-first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// FindChild scans the direct members of id for name.
func (d *Document) FindChild(id SymbolID, name names.Name) SymbolID {
	sym := d.Symbol(id)
	if sym == nil || name == names.None {
		return NoSymbol
	}
	for c := sym.FirstChild; c.IsValid(); {
		child := d.Symbol(c)
		if child.Name == name {
			return c
		}
		c = child.NextSibling
	}
	return NoSymbol
}

// QualifiedName renders Outer.Name chains, outermost first.
func (d *Document) QualifiedName(id SymbolID) string {
	var parts []string
	for id.IsValid() {
		sym := d.Symbol(id)
		if sym == nil {
			break
		}
		if sym.Name != names.None {
			parts = append(parts, sym.Name.String())
		}
		id = sym.Outer
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// SymbolAt returns the deepest symbol whose span contains the offset.
func (d *Document) SymbolAt(off uint32) SymbolID {
	best := NoSymbol
	var walk func(id SymbolID)
	walk = func(id SymbolID) {
		sym := d.Symbol(id)
		if sym == nil || !sym.Span.Contains(off) {
			return
		}
		best = id
		for c := sym.FirstChild; c.IsValid(); c = d.Symbol(c).NextSibling {
			walk(c)
		}
	}
	if d.Class.IsValid() {
		walk(d.Class)
	}
	return best
}

// Walk visits the symbol tree depth-first in declaration order. Returning
// false from the visitor skips the subtree.
func (d *Document) Walk(root SymbolID, visit func(id SymbolID, sym *Symbol) bool) {
	sym := d.Symbol(root)
	if sym == nil {
		return
	}
	if !visit(root, sym) {
		return
	}
	for _, c := range d.Children(root) {
		d.Walk(c, visit)
	}
}
