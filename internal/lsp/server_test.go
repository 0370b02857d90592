package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
)

func TestPublishDiagnostics(t *testing.T) {
	server, out := newTestServer(t)
	dir := t.TempDir()
	uri := openDoc(t, server, dir, "Pawn.uc", "class Pawn extends Object\n")

	server.mu.Lock()
	if server.debounceTimer != nil {
		server.debounceTimer.Stop()
	}
	server.mu.Unlock()

	server.runDiagnostics()

	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	payload, err := readMessage(reader)
	if err != nil {
		t.Fatalf("read publish: %v", err)
	}
	var msg rpcMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode publish: %v", err)
	}
	if msg.Method != "textDocument/publishDiagnostics" {
		t.Fatalf("expected publishDiagnostics, got %q", msg.Method)
	}
	var params publishDiagnosticsParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.URI != uri {
		t.Fatalf("expected uri %q, got %q", uri, params.URI)
	}
	if len(params.Diagnostics) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
	found := false
	for _, d := range params.Diagnostics {
		if d.Code == "US2002" {
			found = true
			if d.Severity != 1 {
				t.Fatalf("missing semicolon severity = %d", d.Severity)
			}
			if d.Source != "uscript" {
				t.Fatalf("diagnostic source = %q", d.Source)
			}
		}
	}
	if !found {
		t.Fatalf("missing semicolon not published: %+v", params.Diagnostics)
	}
}

func TestDidChangeClearsFixedDiagnostics(t *testing.T) {
	server, out := newTestServer(t)
	dir := t.TempDir()
	uri := openDoc(t, server, dir, "Pawn.uc", "class Pawn extends Object\n")
	server.runDiagnostics()
	out.Reset()

	change := didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{
			{Text: "class Pawn extends Object;\n"},
		},
	}
	payload, _ := json.Marshal(change)
	if err := server.handleDidChange(&rpcMessage{Method: "textDocument/didChange", Params: payload}); err != nil {
		t.Fatalf("didChange: %v", err)
	}
	server.mu.Lock()
	if server.debounceTimer != nil {
		server.debounceTimer.Stop()
	}
	server.mu.Unlock()
	server.runDiagnostics()

	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	payloadOut, err := readMessage(reader)
	if err != nil {
		t.Fatalf("read publish: %v", err)
	}
	var msg rpcMessage
	if err := json.Unmarshal(payloadOut, &msg); err != nil {
		t.Fatalf("decode publish: %v", err)
	}
	var params publishDiagnosticsParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if len(params.Diagnostics) != 0 {
		t.Fatalf("expected clean publish after fix, got %+v", params.Diagnostics)
	}
}

func TestURIRoundTrip(t *testing.T) {
	path := "/tmp/workspace/Pawn.uc"
	uri := pathToURI(path)
	if got := uriToPath(uri); got != path {
		t.Fatalf("round trip = %q, want %q", got, path)
	}
	if canonicalURI(uri) != uri {
		t.Fatalf("canonical changed an already-canonical uri")
	}
}
