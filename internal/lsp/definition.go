package lsp

import (
	"encoding/json"

	"uscript/internal/source"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params definitionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	entry := s.entryFor(params.TextDocument.URI)
	if entry == nil {
		return s.sendResponse(msg.ID, []location{})
	}
	result := buildDefinition(s.fs, entry, params.Position)
	return s.sendResponse(msg.ID, result)
}

func buildDefinition(fs *source.FileSet, entry *docEntry, pos position) []location {
	if entry.file == nil || entry.doc == nil {
		return nil
	}
	offset := offsetForPositionInFile(entry.file, pos)
	ref, _, ok := entry.referenceAt(offset)
	if !ok {
		ref, _, ok = entry.declarationAt(offset)
	}
	if !ok {
		return nil
	}
	sym := ref.Deref()
	if sym == nil {
		return nil
	}
	span := sym.NameSpan
	if span.Empty() {
		span = sym.Span
	}
	if !fs.Has(span.File) {
		return nil
	}
	defFile := fs.Get(span.File)
	if defFile == nil {
		return nil
	}
	loc := location{
		URI:   pathToURI(defFile.Path),
		Range: rangeForSpan(defFile, span),
	}
	return []location{loc}
}
