package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"uscript/internal/ast"
	"uscript/internal/source"
	"uscript/internal/symbols"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	entry := s.entryFor(params.TextDocument.URI)
	if entry == nil {
		return s.sendResponse(msg.ID, nil)
	}
	result := buildHover(s.fs, entry, params.Position)
	return s.sendResponse(msg.ID, result)
}

func buildHover(fs *source.FileSet, entry *docEntry, pos position) *hover {
	if entry.file == nil || entry.doc == nil {
		return nil
	}
	offset := offsetForPositionInFile(entry.file, pos)

	ref, span, ok := entry.referenceAt(offset)
	if !ok {
		ref, span, ok = entry.declarationAt(offset)
	}
	if !ok {
		return nil
	}
	sym := ref.Deref()
	if sym == nil {
		return nil
	}

	lines := make([]string, 0, 3)
	if signature := formatSignature(fs, ref); signature != "" {
		lines = append(lines, "```uscript\n"+signature+"\n```")
	}
	if container := ref.Doc.QualifiedName(sym.Outer); container != "" {
		lines = append(lines, "Member of `"+container+"`")
	} else if loc := definedIn(fs, sym); loc != "" {
		lines = append(lines, loc)
	}
	if sym.Doc != "" {
		lines = append(lines, sym.Doc)
	}
	if len(lines) == 0 {
		return nil
	}
	hoverRange := rangeForSpan(entry.file, span)
	return &hover{
		Contents: markupContent{
			Kind:  "markdown",
			Value: strings.Join(lines, "\n\n"),
		},
		Range: &hoverRange,
	}
}

// formatSignature renders a declaration header the way the user wrote it.
func formatSignature(fs *source.FileSet, ref symbols.Ref) string {
	sym := ref.Deref()
	if sym == nil {
		return ""
	}
	doc := ref.Doc
	file := fs.Get(doc.File)
	name := sym.Name.String()

	switch sym.Kind {
	case symbols.KindClass:
		out := "class " + name
		if label := typeLabel(file, doc, sym.TypeExpr); label != "" {
			out += " extends " + label
		}
		return out
	case symbols.KindStruct:
		out := "struct " + name
		if label := typeLabel(file, doc, sym.TypeExpr); label != "" {
			out += " extends " + label
		}
		return out
	case symbols.KindEnum:
		return "enum " + name
	case symbols.KindEnumMember:
		return fmt.Sprintf("%s = %d", name, sym.Ordinal)
	case symbols.KindConst:
		out := "const " + name
		if text := exprText(file, doc, sym.Value); text != "" {
			out += " = " + text
		}
		return out
	case symbols.KindProperty:
		return "var " + typedName(file, doc, sym)
	case symbols.KindLocal:
		return "local " + typedName(file, doc, sym)
	case symbols.KindParam:
		return paramLabel(file, doc, sym)
	case symbols.KindMethod:
		return methodSignature(fs, ref)
	case symbols.KindState:
		out := "state " + name
		if super := sym.Super.Deref(); super != nil {
			out += " extends " + super.Name.String()
		}
		return out
	case symbols.KindObject:
		out := "object " + name
		if sym.ClassName.IsValid() {
			out += " (" + sym.ClassName.String() + ")"
		}
		return out
	case symbols.KindLabel:
		return name + ":"
	default:
		return name
	}
}

func methodSignature(fs *source.FileSet, ref symbols.Ref) string {
	sym := ref.Deref()
	doc := ref.Doc
	file := fs.Get(doc.File)

	var b strings.Builder
	if sym.Flags&ast.MethodStatic != 0 {
		b.WriteString("static ")
	}
	if sym.Flags&ast.MethodFinal != 0 {
		b.WriteString("final ")
	}
	switch {
	case sym.Flags&ast.MethodEvent != 0:
		b.WriteString("event ")
	case sym.Flags&ast.MethodDelegate != 0:
		b.WriteString("delegate ")
	case sym.Flags&ast.MethodOperator != 0:
		fmt.Fprintf(&b, "operator(%d) ", sym.Precedence)
	case sym.Flags&ast.MethodPreOperator != 0:
		b.WriteString("preoperator ")
	case sym.Flags&ast.MethodPostOperator != 0:
		b.WriteString("postoperator ")
	default:
		b.WriteString("function ")
	}
	if label := typeLabel(file, doc, sym.TypeExpr); label != "" {
		b.WriteString(label)
		b.WriteByte(' ')
	}
	b.WriteString(sym.Name.String())
	b.WriteByte('(')
	first := true
	for _, childID := range doc.Children(ref.Sym) {
		child := doc.Symbol(childID)
		if child.Kind != symbols.KindParam {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(paramLabel(file, doc, child))
	}
	b.WriteByte(')')
	return b.String()
}

func paramLabel(file *source.File, doc *symbols.Document, sym *symbols.Symbol) string {
	var b strings.Builder
	if sym.Modifiers&ast.PropOptional != 0 {
		b.WriteString("optional ")
	}
	if sym.Modifiers&ast.PropOut != 0 {
		b.WriteString("out ")
	}
	if sym.Modifiers&ast.PropCoerce != 0 {
		b.WriteString("coerce ")
	}
	b.WriteString(typedName(file, doc, sym))
	if text := exprText(file, doc, sym.Value); text != "" {
		b.WriteString(" = ")
		b.WriteString(text)
	}
	return b.String()
}

// typedName renders "Type Name" with an optional fixed array dimension.
func typedName(file *source.File, doc *symbols.Document, sym *symbols.Symbol) string {
	out := sym.Name.String()
	if label := typeLabel(file, doc, sym.TypeExpr); label != "" {
		out = label + " " + out
	}
	if text := exprText(file, doc, sym.ArrayDim); text != "" {
		out += "[" + text + "]"
	}
	return out
}

// typeLabel slices the type reference as written in the source.
func typeLabel(file *source.File, doc *symbols.Document, id ast.TypeID) string {
	if file == nil || !id.IsValid() {
		return ""
	}
	node := doc.Ast.Types.Get(id)
	if node == nil {
		return ""
	}
	return sliceSpan(file, node.Span)
}

func exprText(file *source.File, doc *symbols.Document, id ast.ExprID) string {
	if file == nil || !id.IsValid() {
		return ""
	}
	expr := doc.Ast.Exprs.Get(id)
	if expr == nil {
		return ""
	}
	return sliceSpan(file, expr.Span)
}

func sliceSpan(file *source.File, span source.Span) string {
	if span.Empty() || span.End > uint32(len(file.Content)) {
		return ""
	}
	return strings.TrimSpace(string(file.Content[span.Start:span.End]))
}

func definedIn(fs *source.FileSet, sym *symbols.Symbol) string {
	span := sym.NameSpan
	if span.Empty() {
		span = sym.Span
	}
	if !fs.Has(span.File) {
		return ""
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("Defined in %s:%d", fs.Get(span.File).Path, start.Line)
}
