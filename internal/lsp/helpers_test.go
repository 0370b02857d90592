package lsp

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	server := NewServer(bytes.NewReader(nil), &out, ServerOptions{
		Debounce: time.Hour,
	})
	return server, &out
}

func openDoc(t *testing.T, s *Server, dir, name, text string) string {
	t.Helper()
	uri := pathToURI(filepath.Join(dir, name))
	params := didOpenTextDocumentParams{
		TextDocument: textDocumentItem{
			URI:     uri,
			Version: 1,
			Text:    text,
		},
	}
	payload, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal didOpen: %v", err)
	}
	if err := s.handleDidOpen(&rpcMessage{Method: "textDocument/didOpen", Params: payload}); err != nil {
		t.Fatalf("didOpen: %v", err)
	}
	return uri
}

// positionAt locates the first occurrence of marker and returns the LSP
// position of its first character plus the given rune delta.
func positionAt(t *testing.T, text, marker string, delta int) position {
	t.Helper()
	idx := strings.Index(text, marker)
	if idx < 0 {
		t.Fatalf("marker %q not in text", marker)
	}
	idx += delta
	line, character := 0, 0
	for i := 0; i < idx; i++ {
		if text[i] == '\n' {
			line++
			character = 0
			continue
		}
		character++
	}
	return position{Line: line, Character: character}
}
