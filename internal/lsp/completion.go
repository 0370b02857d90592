package lsp

import (
	"encoding/json"
	"sort"

	"uscript/internal/names"
	"uscript/internal/source"
	"uscript/internal/symbols"
	"uscript/internal/token"
)

const (
	completionItemKindMethod     = 2
	completionItemKindField      = 5
	completionItemKindVariable   = 6
	completionItemKindClass      = 7
	completionItemKindModule     = 9
	completionItemKindKeyword    = 14
	completionItemKindEnum       = 13
	completionItemKindEnumMember = 20
	completionItemKindConstant   = 21
	completionItemKindStruct     = 22
)

var contextKeywords = []string{
	"assert", "break", "case", "class", "const", "continue", "default",
	"defaultproperties", "delegate", "do", "else", "enum", "event",
	"extends", "false", "final", "for", "foreach", "function", "goto",
	"if", "ignores", "local", "native", "new", "none", "optional", "out",
	"replication", "return", "self", "simulated", "state", "static",
	"struct", "super", "switch", "true", "until", "var", "while",
}

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	entry := s.entryFor(params.TextDocument.URI)
	if entry == nil {
		return s.sendResponse(msg.ID, completionList{IsIncomplete: false, Items: nil})
	}
	result := buildCompletion(s.fs, entry, params.Position)
	return s.sendResponse(msg.ID, result)
}

func buildCompletion(fs *source.FileSet, entry *docEntry, pos position) completionList {
	if entry.file == nil || entry.doc == nil {
		return completionList{IsIncomplete: false, Items: nil}
	}
	offset := offsetForPositionInFile(entry.file, pos)

	var items []completionItem
	if dotStart, ok := dotTriggerAt(entry, offset); ok {
		if target, found := memberTargetAt(entry, dotStart); found {
			items = memberItems(fs, symbols.ContainerOf(target))
		}
	} else {
		items = generalItems(fs, entry, offset)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return completionList{IsIncomplete: false, Items: items}
}

// dotTriggerAt reports the start offset of the dot the cursor completes
// after: either directly behind the cursor or behind the identifier being
// typed.
func dotTriggerAt(entry *docEntry, offset uint32) (uint32, bool) {
	tokens := entry.doc.Tokens
	idx := tokenBefore(tokens, offset)
	if idx < 0 {
		return 0, false
	}
	tok := tokens[idx]
	if tok.Kind == token.Dot && tok.Span.End <= offset {
		return tok.Span.Start, true
	}
	if tok.Kind == token.Ident && offset > 0 && tok.Span.Contains(offset-1) && idx > 0 &&
		tokens[idx-1].Kind == token.Dot {
		return tokens[idx-1].Span.Start, true
	}
	return 0, false
}

// memberTargetAt finds the resolved expression the dot applies to: the
// reference whose span ends closest before the dot.
func memberTargetAt(entry *docEntry, dotStart uint32) (symbols.Ref, bool) {
	doc := entry.doc
	var (
		best    symbols.Ref
		bestEnd uint32
		found   bool
	)
	for id, ref := range doc.ExprRefs {
		expr := doc.Ast.Exprs.Get(id)
		if expr == nil || !ref.Valid() {
			continue
		}
		end := expr.Span.End
		if end > dotStart {
			continue
		}
		if !found || end > bestEnd {
			best, bestEnd, found = ref, end, true
		}
	}
	return best, found
}

// memberItems lists the members of a container and everything it inherits.
func memberItems(fs *source.FileSet, container symbols.Ref) []completionItem {
	var items []completionItem
	seenNames := make(map[names.Name]bool)
	seenDocs := make(map[*symbols.Document]bool)
	for container.Valid() {
		doc := container.Doc
		sym := doc.Symbol(container.Sym)
		for _, childID := range doc.Children(container.Sym) {
			child := doc.Symbol(childID)
			if !child.Name.IsValid() || seenNames[child.Name] {
				continue
			}
			switch child.Kind {
			case symbols.KindReplication, symbols.KindDefaults,
				symbols.KindObject, symbols.KindLabel:
				continue
			}
			seenNames[child.Name] = true
			items = append(items, itemFor(fs, symbols.MakeRef(doc, childID)))
		}
		switch sym.Kind {
		case symbols.KindClass:
			if seenDocs[doc] {
				return items
			}
			seenDocs[doc] = true
			container = doc.SuperRef()
		case symbols.KindStruct:
			container = sym.Super
		default:
			return items
		}
	}
	return items
}

// generalItems lists what a bare identifier can resolve to at the offset:
// enclosing scope members, inherited class members, workspace classes, and
// context keywords.
func generalItems(fs *source.FileSet, entry *docEntry, offset uint32) []completionItem {
	doc := entry.doc
	var items []completionItem
	seen := make(map[names.Name]bool)

	add := func(ref symbols.Ref) {
		sym := ref.Deref()
		if sym == nil || !sym.Name.IsValid() || seen[sym.Name] {
			return
		}
		switch sym.Kind {
		case symbols.KindReplication, symbols.KindDefaults, symbols.KindLabel:
			return
		}
		seen[sym.Name] = true
		items = append(items, itemFor(fs, ref))
	}

	// Innermost scope outward, so a local shadows the class member.
	for scope := doc.SymbolAt(offset); scope.IsValid(); scope = doc.Symbol(scope).Outer {
		for _, childID := range doc.Children(scope) {
			add(symbols.MakeRef(doc, childID))
		}
	}
	for _, item := range memberItems(fs, doc.SuperRef()) {
		name := names.ToName(item.Label)
		if seen[name] {
			continue
		}
		seen[name] = true
		items = append(items, item)
	}
	if reg := doc.Registry(); reg != nil {
		for _, other := range reg.Documents() {
			add(symbols.MakeRef(other, other.Class))
		}
	}
	for _, kw := range contextKeywords {
		items = append(items, completionItem{
			Label: kw,
			Kind:  completionItemKindKeyword,
		})
	}
	return items
}

func itemFor(fs *source.FileSet, ref symbols.Ref) completionItem {
	sym := ref.Deref()
	kind := completionItemKindVariable
	switch sym.Kind {
	case symbols.KindClass:
		kind = completionItemKindClass
	case symbols.KindStruct:
		kind = completionItemKindStruct
	case symbols.KindEnum:
		kind = completionItemKindEnum
	case symbols.KindEnumMember:
		kind = completionItemKindEnumMember
	case symbols.KindConst:
		kind = completionItemKindConstant
	case symbols.KindMethod:
		kind = completionItemKindMethod
	case symbols.KindProperty:
		kind = completionItemKindField
	case symbols.KindState:
		kind = completionItemKindModule
	}
	return completionItem{
		Label:         sym.Name.String(),
		Kind:          kind,
		Detail:        formatSignature(fs, ref),
		Documentation: sym.Doc,
	}
}
