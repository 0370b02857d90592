package ast

import (
	"uscript/internal/source"
)

// DeclKind enumerates declaration node shapes.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclClass
	DeclConst
	DeclVar
	DeclEnum
	DeclStruct
	DeclFunction
	DeclParam
	DeclState
	DeclReplication
	DeclDefaults
	DeclObject // Begin Object ... End Object inside defaults
)

// MethodFlags distinguish the method kind and its kind-level specifiers.
// Exactly one of the kind bits is expected; the builder diagnoses a
// declaration that sets none.
type MethodFlags uint16

const (
	MethodFunction MethodFlags = 1 << iota
	MethodEvent
	MethodOperator
	MethodPreOperator
	MethodPostOperator
	MethodDelegate
	MethodStatic
	MethodFinal
	MethodSimulated
	MethodExec
	MethodNative
	MethodIterator
)

// KindBits masks the flags that determine what kind of method this is.
const KindBits = MethodFunction | MethodEvent | MethodOperator |
	MethodPreOperator | MethodPostOperator | MethodDelegate

// IsOperatorKind reports whether any operator kind bit is set.
func (f MethodFlags) IsOperatorKind() bool {
	return f&(MethodOperator|MethodPreOperator|MethodPostOperator) != 0
}

// PropModifiers are access and storage modifiers on fields and parameters.
type PropModifiers uint16

const (
	PropNative PropModifiers = 1 << iota
	PropConst
	PropProtected
	PropPrivate
	PropConfig
	PropLocalized
	PropTransient
	PropTravel
	PropOptional
	PropOut
	PropSkip
	PropCoerce
	PropEditable // declared with var(Category)
)

// ClassDecl is the single top-level class header of a document.
type ClassDecl struct {
	Name       Ident
	Extends    TypeID
	Within     TypeID
	DependsOn  []TypeID
	Implements []TypeID
	Modifiers  PropModifiers
	Members    []DeclID
}

// ConstDecl is `const NAME = expr;`. Value may be invalid on broken input;
// the analyzer reports that case.
type ConstDecl struct {
	Name  Ident
	Value ExprID
}

// VarDecl declares one variable; a multi-name var statement yields one
// VarDecl per name, all sharing the type node.
type VarDecl struct {
	Name      Ident
	Type      TypeID
	Modifiers PropModifiers
	ArrayDim  ExprID // fixed array dimension, 0 when absent
	Category  Ident  // var(Category) editability group
}

// EnumDecl declares an enumeration; member ordinals are assigned by the
// symbol builder, not here.
type EnumDecl struct {
	Name    Ident
	Members []Ident
}

// StructDecl is a script struct with optional superstruct.
type StructDecl struct {
	Name    Ident
	Extends TypeID
	Members []DeclID
}

// FunctionDecl covers functions, events, operators, and delegates.
type FunctionDecl struct {
	Name       Ident
	Flags      MethodFlags
	Modifiers  PropModifiers
	ReturnType TypeID
	Params     []DeclID
	Body       StmtID
	// Precedence is the declared binary operator precedence; -1 when the
	// declaration carries none.
	Precedence int16
}

// ParamDecl is one function parameter.
type ParamDecl struct {
	Name      Ident
	Type      TypeID
	Modifiers PropModifiers
	Default   ExprID // optional default value expression
	ArrayDim  ExprID
}

// StateDecl is a class state: ignores list, nested functions, and labeled
// code body.
type StateDecl struct {
	Name    Ident
	Extends TypeID
	Ignores []Ident
	Members []DeclID
	Body    StmtID // block of labeled statements, 0 when empty
}

// RepCondition is one `reliable/unreliable if (...) names;` statement.
type RepCondition struct {
	Reliable bool
	Cond     ExprID
	Names    []Ident
	Span     source.Span
}

// ReplicationDecl is the class replication block.
type ReplicationDecl struct {
	Conditions []RepCondition
}

// DefaultsDecl is the defaultproperties block: raw assignment expressions
// plus nested object declarations.
type DefaultsDecl struct {
	Assigns []ExprID
	Objects []DeclID
}

// ObjectDecl is a Begin Object ... End Object sub-object declaration.
type ObjectDecl struct {
	Assigns []ExprID
	Objects []DeclID
}

// Decl is the envelope node; Payload indexes the per-kind arena.
type Decl struct {
	Kind    DeclKind
	Span    source.Span
	Payload uint32
}

// Decls aggregates declaration storage with per-kind payload arenas.
type Decls struct {
	Arena        *Arena[Decl]
	Classes      *Arena[ClassDecl]
	Consts       *Arena[ConstDecl]
	Vars         *Arena[VarDecl]
	Enums        *Arena[EnumDecl]
	Structs      *Arena[StructDecl]
	Functions    *Arena[FunctionDecl]
	Params       *Arena[ParamDecl]
	States       *Arena[StateDecl]
	Replications *Arena[ReplicationDecl]
	Defaults     *Arena[DefaultsDecl]
	Objects      *Arena[ObjectDecl]
}

func NewDecls(capHint uint) *Decls {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Decls{
		Arena:        NewArena[Decl](capHint),
		Classes:      NewArena[ClassDecl](2),
		Consts:       NewArena[ConstDecl](capHint / 4),
		Vars:         NewArena[VarDecl](capHint),
		Enums:        NewArena[EnumDecl](capHint / 8),
		Structs:      NewArena[StructDecl](capHint / 8),
		Functions:    NewArena[FunctionDecl](capHint / 2),
		Params:       NewArena[ParamDecl](capHint),
		States:       NewArena[StateDecl](capHint / 8),
		Replications: NewArena[ReplicationDecl](1),
		Defaults:     NewArena[DefaultsDecl](1),
		Objects:      NewArena[ObjectDecl](2),
	}
}

func (d *Decls) new(kind DeclKind, span source.Span, payload uint32) DeclID {
	return DeclID(d.Arena.Allocate(Decl{Kind: kind, Span: span, Payload: payload}))
}

func (d *Decls) Get(id DeclID) *Decl {
	return d.Arena.Get(uint32(id))
}

func (d *Decls) NewClass(span source.Span, data ClassDecl) DeclID {
	return d.new(DeclClass, span, d.Classes.Allocate(data))
}

func (d *Decls) Class(id DeclID) (*ClassDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclClass {
		return nil, false
	}
	return d.Classes.Get(decl.Payload), true
}

func (d *Decls) NewConst(span source.Span, data ConstDecl) DeclID {
	return d.new(DeclConst, span, d.Consts.Allocate(data))
}

func (d *Decls) Const(id DeclID) (*ConstDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclConst {
		return nil, false
	}
	return d.Consts.Get(decl.Payload), true
}

func (d *Decls) NewVar(span source.Span, data VarDecl) DeclID {
	return d.new(DeclVar, span, d.Vars.Allocate(data))
}

func (d *Decls) Var(id DeclID) (*VarDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclVar {
		return nil, false
	}
	return d.Vars.Get(decl.Payload), true
}

func (d *Decls) NewEnum(span source.Span, data EnumDecl) DeclID {
	return d.new(DeclEnum, span, d.Enums.Allocate(data))
}

func (d *Decls) Enum(id DeclID) (*EnumDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclEnum {
		return nil, false
	}
	return d.Enums.Get(decl.Payload), true
}

func (d *Decls) NewStruct(span source.Span, data StructDecl) DeclID {
	return d.new(DeclStruct, span, d.Structs.Allocate(data))
}

func (d *Decls) Struct(id DeclID) (*StructDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclStruct {
		return nil, false
	}
	return d.Structs.Get(decl.Payload), true
}

func (d *Decls) NewFunction(span source.Span, data FunctionDecl) DeclID {
	return d.new(DeclFunction, span, d.Functions.Allocate(data))
}

func (d *Decls) Function(id DeclID) (*FunctionDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclFunction {
		return nil, false
	}
	return d.Functions.Get(decl.Payload), true
}

func (d *Decls) NewParam(span source.Span, data ParamDecl) DeclID {
	return d.new(DeclParam, span, d.Params.Allocate(data))
}

func (d *Decls) Param(id DeclID) (*ParamDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclParam {
		return nil, false
	}
	return d.Params.Get(decl.Payload), true
}

func (d *Decls) NewState(span source.Span, data StateDecl) DeclID {
	return d.new(DeclState, span, d.States.Allocate(data))
}

func (d *Decls) State(id DeclID) (*StateDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclState {
		return nil, false
	}
	return d.States.Get(decl.Payload), true
}

func (d *Decls) NewReplication(span source.Span, data ReplicationDecl) DeclID {
	return d.new(DeclReplication, span, d.Replications.Allocate(data))
}

func (d *Decls) Replication(id DeclID) (*ReplicationDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclReplication {
		return nil, false
	}
	return d.Replications.Get(decl.Payload), true
}

func (d *Decls) NewDefaults(span source.Span, data DefaultsDecl) DeclID {
	return d.new(DeclDefaults, span, d.Defaults.Allocate(data))
}

func (d *Decls) DefaultsBlock(id DeclID) (*DefaultsDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclDefaults {
		return nil, false
	}
	return d.Defaults.Get(decl.Payload), true
}

func (d *Decls) NewObject(span source.Span, data ObjectDecl) DeclID {
	return d.new(DeclObject, span, d.Objects.Allocate(data))
}

func (d *Decls) Object(id DeclID) (*ObjectDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclObject {
		return nil, false
	}
	return d.Objects.Get(decl.Payload), true
}
