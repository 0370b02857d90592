package ast

import (
	"uscript/internal/source"
	"uscript/internal/token"
)

// TypeKind enumerates type reference shapes.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	// TypeName is a named reference to a class, struct, or enum.
	TypeName
	// TypeQualified is a dotted Outer.Inner reference.
	TypeQualified
	// TypeArray is a dynamic array<T>. Fixed-size arrays appear through a
	// var declaration dimension instead, never as a type wrapper.
	TypeArray
	// TypeMap is map<K, V>, reserved by the grammar.
	TypeMap
	// TypeDelegate is delegate<FunctionName>.
	TypeDelegate
	// TypeClassMeta is class<T>, the metaclass form.
	TypeClassMeta
	// TypePrimitive is a built-in value type keyword.
	TypePrimitive
)

// TypeNode is one type reference. Field use depends on Kind:
// Name for TypeName/TypeQualified (rightmost segment), Base for
// array/map/delegate/classmeta wrappers and the qualifier chain,
// Value for a map value type, Prim for the primitive keyword.
type TypeNode struct {
	Kind  TypeKind
	Span  source.Span
	Name  Ident
	Base  TypeID
	Value TypeID
	Prim  token.Kind
}

// Types stores type reference nodes.
type Types struct {
	Arena *Arena[TypeNode]
}

func NewTypes(capHint uint) *Types {
	return &Types{Arena: NewArena[TypeNode](capHint)}
}

func (t *Types) New(node TypeNode) TypeID {
	return TypeID(t.Arena.Allocate(node))
}

func (t *Types) Get(id TypeID) *TypeNode {
	return t.Arena.Get(uint32(id))
}
