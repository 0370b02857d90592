package ast

import (
	"uscript/internal/source"
)

// File is the root of one parsed document.
type File struct {
	Span  source.Span
	Decls []DeclID
}

// Files stores file roots.
type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{Arena: NewArena[File](capHint)}
}

func (f *Files) New(sp source.Span) FileID {
	return FileID(f.Arena.Allocate(File{Span: sp}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}

// Hints suggest arena capacities for a builder.
type Hints struct{ Files, Decls, Types, Stmts, Exprs uint }

// Builder aggregates the arenas for one or more parsed files.
type Builder struct {
	Files *Files
	Decls *Decls
	Types *Types
	Stmts *Stmts
	Exprs *Exprs
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 4
	}
	if hints.Decls == 0 {
		hints.Decls = 1 << 7
	}
	if hints.Types == 0 {
		hints.Types = 1 << 7
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	return &Builder{
		Files: NewFiles(hints.Files),
		Decls: NewDecls(hints.Decls),
		Types: NewTypes(hints.Types),
		Stmts: NewStmts(hints.Stmts),
		Exprs: NewExprs(hints.Exprs),
	}
}

// PushDecl appends a top-level declaration to the file root.
func (b *Builder) PushDecl(file FileID, decl DeclID) {
	if f := b.Files.Get(file); f != nil {
		f.Decls = append(f.Decls, decl)
	}
}
