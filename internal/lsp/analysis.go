package lsp

import (
	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/lexer"
	"uscript/internal/parser"
	"uscript/internal/sema"
	"uscript/internal/source"
	"uscript/internal/symbols"
	"uscript/internal/token"
)

// docEntry is the analysis snapshot of one open document: the latest
// overlay text plus the pipeline state built from it. Queries read the
// snapshot; edits mark it dirty and the next diagnostics run replaces it.
type docEntry struct {
	uri     string
	path    string
	text    string
	version int
	dirty   bool

	file *source.File
	doc  *symbols.Document
	bag  *diag.Bag
}

// rebuild re-runs lex, parse, and symbol build for the entry and registers
// the fresh document. Indexing is deferred until every dirty document has
// been rebuilt so cross-document lookups see current declarations.
func (e *docEntry) rebuild(fs *source.FileSet, reg *symbols.Registry, maxDiagnostics int) {
	fileID := fs.AddVirtual(e.path, []byte(e.text))
	e.file = fs.Get(fileID)
	e.bag = diag.NewBag(maxDiagnostics)
	reporter := diag.BagReporter{Bag: e.bag}

	tokens := lexer.Scan(e.file, reporter)
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(tokens, builder, parser.Options{Reporter: reporter})

	doc := symbols.NewDocument(e.path, fileID, builder, tokens, res.File, reporter)
	doc.Build()
	reg.Add(doc)
	e.doc = doc
	e.dirty = false
}

// analyze runs the index and diagnostics passes, appending to the bag the
// rebuild produced.
func (e *docEntry) analyze(opts sema.Options) {
	if e.doc == nil {
		return
	}
	e.doc.Index()
	sema.Analyze(e.doc, diag.BagReporter{Bag: e.bag}, opts)
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

// publishList renders the entry's bag as wire diagnostics.
func (e *docEntry) publishList(limit int) []lspDiagnostic {
	if e.bag == nil || e.file == nil {
		return nil
	}
	e.bag.Sort()
	e.bag.Dedup()
	items := e.bag.Items()
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]lspDiagnostic, 0, len(items))
	for _, d := range items {
		out = append(out, lspDiagnostic{
			Range:    rangeForSpan(e.file, d.Primary),
			Severity: lspSeverity(d.Severity),
			Code:     d.Code.String(),
			Source:   "uscript",
			Message:  d.Message,
		})
	}
	return out
}

// referenceAt finds the resolved reference whose name covers the offset,
// preferring the tightest span. Both expression and type references count.
func (e *docEntry) referenceAt(offset uint32) (symbols.Ref, source.Span, bool) {
	doc := e.doc
	if doc == nil {
		return symbols.Ref{}, source.Span{}, false
	}
	var (
		best     symbols.Ref
		bestSpan source.Span
		found    bool
	)
	consider := func(ref symbols.Ref, span source.Span) {
		if !ref.Valid() || span.Empty() || !span.Contains(offset) {
			return
		}
		if found && span.Len() >= bestSpan.Len() {
			return
		}
		best, bestSpan, found = ref, span, true
	}
	for id, ref := range doc.ExprRefs {
		expr := doc.Ast.Exprs.Get(id)
		if expr == nil {
			continue
		}
		span := expr.Span
		switch expr.Kind {
		case ast.ExprIdent, ast.ExprMember, ast.ExprSuper:
			if !expr.Name.Span.Empty() {
				span = expr.Name.Span
			}
		case ast.ExprCall, ast.ExprElement:
			// The callee or target carries its own entry.
			continue
		}
		consider(ref, span)
	}
	for id, ref := range doc.TypeRefs {
		node := doc.Ast.Types.Get(id)
		if node == nil {
			continue
		}
		span := node.Span
		if !node.Name.Span.Empty() {
			span = node.Name.Span
		}
		consider(ref, span)
	}
	return best, bestSpan, found
}

// declarationAt falls back to the enclosing declaration's own symbol when
// the offset touches its name.
func (e *docEntry) declarationAt(offset uint32) (symbols.Ref, source.Span, bool) {
	if e.doc == nil {
		return symbols.Ref{}, source.Span{}, false
	}
	id := e.doc.SymbolAt(offset)
	sym := e.doc.Symbol(id)
	if sym == nil || !sym.NameSpan.Contains(offset) {
		return symbols.Ref{}, source.Span{}, false
	}
	return symbols.MakeRef(e.doc, id), sym.NameSpan, true
}

// tokenBefore returns the index of the last token starting before the
// offset, or -1 when the offset precedes all tokens.
func tokenBefore(tokens []token.Token, offset uint32) int {
	best := -1
	for i := range tokens {
		if tokens[i].Kind == token.EOF || tokens[i].Synthetic {
			continue
		}
		if tokens[i].Span.Start < offset {
			best = i
		} else {
			break
		}
	}
	return best
}
