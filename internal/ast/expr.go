package ast

import (
	"uscript/internal/names"
	"uscript/internal/source"
	"uscript/internal/token"
)

// ExprKind enumerates expression node shapes.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIdent
	ExprMember  // Target.Name
	ExprCall    // Callee(Args...)
	ExprElement // Target[Index]
	ExprPreOp
	ExprPostOp
	ExprBinary
	// ExprAssign is a Binary specialization: plain `=`.
	ExprAssign
	// ExprDefaultAssign is an Assign specialization used in defaults blocks.
	ExprDefaultAssign
	ExprTernary
	ExprSuper // super or super(ClassName)
	ExprSelf
	ExprNew       // new (Outer) Class
	ExprMetaClass // class'Name'
	ExprDefault   // the `default` pseudo-target

	ExprNone
	ExprIntLit
	ExprFloatLit
	ExprStringLit
	ExprNameLit
	ExprBoolLit
	ExprVectLit // vect(x, y, z)
	ExprRotLit  // rot(p, y, r)
	ExprRngLit  // rng(min, max)
	ExprArrayCount
	ExprNameOf
	ExprObjectLit // Texture'Package.Object'
	ExprStructLit // (X=1,Y=2) in defaults blocks
)

// Expr is one expression node. Outer is the syntactic parent expression,
// set when the parent node is allocated; it disambiguates context-sensitive
// resolution such as assignment-target position.
type Expr struct {
	Kind  ExprKind
	Span  source.Span
	Outer ExprID

	Name   Ident        // ident, member name, super class, metaclass name
	Target ExprID       // member/element target, callee, unary operand
	Left   ExprID       // binary lhs, ternary condition
	Right  ExprID       // binary rhs, ternary then
	Third  ExprID       // ternary else, new class expr
	Args   []ExprID     // call args, vect/rot components
	Op     token.Kind   // operator token for unary/binary
	OpName names.Name   // interned operator spelling for overload lookup
	Text   string       // literal text as written
	IntVal int64
	FltVal float64
}

// Exprs stores expression nodes.
type Exprs struct {
	Arena *Arena[Expr]
}

func NewExprs(capHint uint) *Exprs {
	return &Exprs{Arena: NewArena[Expr](capHint)}
}

func (e *Exprs) New(node Expr) ExprID {
	return ExprID(e.Arena.Allocate(node))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// SetOuter records the parent backref on a child expression.
func (e *Exprs) SetOuter(child, parent ExprID) {
	if node := e.Get(child); node != nil {
		node.Outer = parent
	}
}

// IsLeaf reports whether the expression kind never has child expressions.
func (k ExprKind) IsLeaf() bool {
	switch k {
	case ExprIdent, ExprSelf, ExprDefault, ExprNone, ExprIntLit, ExprFloatLit,
		ExprStringLit, ExprNameLit, ExprBoolLit, ExprMetaClass, ExprObjectLit:
		return true
	default:
		return false
	}
}
