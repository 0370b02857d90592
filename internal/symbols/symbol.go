// Package symbols builds and resolves the semantic model: one symbol tree
// per document, linked across documents through a shared registry. Building
// is a single AST walk; resolution is a separate index pass so every
// document's declarations exist before any cross-document lookup runs.
package symbols

import (
	"strings"

	"uscript/internal/ast"
	"uscript/internal/names"
	"uscript/internal/source"
)

// SymbolID indexes the document's symbol arena. 0 is the invalid sentinel.
type SymbolID uint32

const NoSymbol SymbolID = 0

func (id SymbolID) IsValid() bool { return id != NoSymbol }

// SymbolKind enumerates semantic symbol categories.
type SymbolKind uint8

const (
	KindInvalid SymbolKind = iota
	KindClass
	KindConst
	KindProperty
	KindEnum
	KindEnumMember
	KindStruct
	KindMethod
	KindParam
	KindLocal
	KindState
	KindReplication
	KindDefaults
	KindObject // named sub-object in a defaults block
	KindLabel
)

var kindNames = [...]string{
	KindInvalid:     "invalid",
	KindClass:       "class",
	KindConst:       "const",
	KindProperty:    "var",
	KindEnum:        "enum",
	KindEnumMember:  "enum member",
	KindStruct:      "struct",
	KindMethod:      "function",
	KindParam:       "parameter",
	KindLocal:       "local",
	KindState:       "state",
	KindReplication: "replication",
	KindDefaults:    "defaultproperties",
	KindObject:      "object",
	KindLabel:       "label",
}

func (k SymbolKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsType reports whether the symbol can serve as a type reference target.
func (k SymbolKind) IsType() bool {
	return k == KindClass || k == KindStruct || k == KindEnum
}

// Ref is a cross-document symbol handle. It pins the generation of the
// document it was created against; after a rebuild the handle resolves to
// nothing instead of to freed state.
type Ref struct {
	Doc *Document
	Sym SymbolID
	gen uint32
}

// MakeRef builds a handle for a symbol in doc at its current generation.
func MakeRef(doc *Document, sym SymbolID) Ref {
	if doc == nil || !sym.IsValid() {
		return Ref{}
	}
	return Ref{Doc: doc, Sym: sym, gen: doc.gen}
}

// Valid reports whether the handle still points at live state.
func (r Ref) Valid() bool {
	return r.Doc != nil && r.Sym.IsValid() && r.gen == r.Doc.gen
}

// Deref returns the symbol, or nil when the handle is unset or stale.
func (r Ref) Deref() *Symbol {
	if !r.Valid() {
		return nil
	}
	return r.Doc.Symbol(r.Sym)
}

// Symbol is the arena node for every declaration kind; which fields are
// meaningful depends on Kind.
type Symbol struct {
	Kind     SymbolKind
	Name     names.Name
	Span     source.Span // whole declaration
	NameSpan source.Span // just the identifier
	Doc      string      // adjacent leading comment text

	Outer       SymbolID
	FirstChild  SymbolID // newest-first intrusive child list
	NextSibling SymbolID

	Decl ast.DeclID // originating declaration node

	TypeExpr ast.TypeID // declared type (property, param, local, method return)
	TypeRef  Ref        // resolved type symbol
	Super    Ref        // resolved base of class/struct/state
	Within   Ref        // resolved within class

	Flags      ast.MethodFlags
	Modifiers  ast.PropModifiers
	Precedence int16
	// RequiredParams is derived by the analyzer: the number of leading
	// parameters before the first optional one.
	RequiredParams int
	Overridden     Ref // super-chain method this one overrides

	Ordinal   uint16     // enum member position
	ArrayDim  ast.ExprID // fixed array dimension expression
	Value     ast.ExprID // const initializer / param default
	ClassName names.Name // Class= label of a defaults sub-object
	Synthetic bool       // compiler-generated (enum _MAX sentinel)
}

// IsContainer reports whether the symbol owns a member scope.
func (s *Symbol) IsContainer() bool {
	switch s.Kind {
	case KindClass, KindStruct, KindEnum, KindState, KindMethod,
		KindDefaults, KindObject:
		return true
	default:
		return false
	}
}

// CleanDoc strips comment markers from an attached doc comment block.
func CleanDoc(raw string) string {
	if raw == "" {
		return ""
	}
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "//"):
			line = strings.TrimPrefix(line, "//")
		case strings.HasPrefix(line, "/*"):
			line = strings.TrimSuffix(strings.TrimPrefix(line, "/*"), "*/")
		case strings.HasPrefix(line, "*"):
			line = strings.TrimSuffix(strings.TrimPrefix(line, "*"), "*/")
		}
		out = append(out, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
