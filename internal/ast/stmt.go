package ast

import (
	"uscript/internal/source"
)

// StmtKind enumerates statement node shapes.
type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtExpr
	StmtLocal
	StmtIf
	StmtWhile
	StmtDoUntil
	StmtFor
	StmtForEach
	StmtSwitch
	StmtCase // one case (or default) clause inside a switch
	StmtReturn
	StmtGoto
	StmtLabel
	StmtAssert
	StmtBreak
	StmtContinue
)

// LocalTarget is one declared local variable name.
type LocalTarget struct {
	Name     Ident
	ArrayDim ExprID // fixed array dimension, 0 when absent
}

// Stmt is one statement node. Field use depends on Kind:
// Cond for if/while/until/assert/for, Value for expr/return/switch/case
// (case with no Value is the default clause), Init/Post for for-headers,
// Body for the primary block, Else for the else branch, Stmts for
// block/switch children, Label for goto/label, Type+Locals for local decls.
type Stmt struct {
	Kind   StmtKind
	Span   source.Span
	Cond   ExprID
	Value  ExprID
	Init   ExprID
	Post   ExprID
	Body   StmtID
	Else   StmtID
	Stmts  []StmtID
	Label  Ident
	Type   TypeID
	Locals []LocalTarget
}

// Stmts stores statement nodes.
type Stmts struct {
	Arena *Arena[Stmt]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{Arena: NewArena[Stmt](capHint)}
}

func (s *Stmts) New(node Stmt) StmtID {
	return StmtID(s.Arena.Allocate(node))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}
