package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"uscript/internal/sema"
	"uscript/internal/source"
	"uscript/internal/symbols"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce       time.Duration
	Analysis       sema.Options
	MaxDiagnostics int
}

// Server handles stdio JSON-RPC for the uscript language server. One
// registry backs all open documents; edits rebuild whole documents and
// stale references across documents resolve to nothing until the next run.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu            sync.Mutex
	entries       map[string]*docEntry // by canonical URI
	published     map[string]struct{}
	workspaceRoot string

	shutdownRequested bool
	debounce          time.Duration
	debounceTimer     *time.Timer

	fs             *source.FileSet
	reg            *symbols.Registry
	analysis       sema.Options
	maxDiagnostics int
	baseCtx        context.Context
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	return &Server{
		in:             bufio.NewReader(in),
		out:            bufio.NewWriter(out),
		entries:        make(map[string]*docEntry),
		published:      make(map[string]struct{}),
		debounce:       debounce,
		fs:             source.NewFileSet(),
		reg:            symbols.NewRegistry(),
		analysis:       opts.Analysis,
		maxDiagnostics: maxDiagnostics,
	}
}

// Run serves LSP requests until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			CompletionProvider: &completionOptions{
				TriggerCharacters: []string{"."},
			},
		},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.entries[uri] = &docEntry{
		uri:     uri,
		path:    uriToPath(uri),
		text:    params.TextDocument.Text,
		version: params.TextDocument.Version,
		dirty:   true,
	}
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if entry, ok := s.entries[uri]; ok {
		entry.text = applyChanges(entry.text, params.ContentChanges)
		entry.version = params.TextDocument.Version
		entry.dirty = true
	}
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if entry, ok := s.entries[uri]; ok {
		if params.Text != nil {
			entry.text = *params.Text
		}
		entry.dirty = true
	}
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	// The document stays registered: its class is still part of the
	// workspace even when no editor shows it.
	delete(s.entries, uri)
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return nil
}

func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, s.runDiagnostics)
}

// runDiagnostics rebuilds dirty documents, re-indexes and analyzes every
// open document, then publishes per-document diagnostics. All open
// documents rerun because resolution caches do not invalidate transitively
// across a rebuild.
func (s *Server) runDiagnostics() {
	s.mu.Lock()
	anyDirty := false
	for _, entry := range s.entries {
		if entry.dirty {
			anyDirty = true
			break
		}
	}
	if anyDirty {
		s.rebuildAllLocked()
	}
	type publish struct {
		uri  string
		list []lspDiagnostic
	}
	out := make([]publish, 0, len(s.entries))
	for uri, entry := range s.entries {
		out = append(out, publish{uri: uri, list: entry.publishList(s.maxDiagnostics)})
		s.published[uri] = struct{}{}
	}
	s.mu.Unlock()

	for _, p := range out {
		if err := s.sendPublish(p.uri, p.list); err != nil {
			s.logf("failed to publish diagnostics: %v", err)
		}
	}
}

// entryFor fetches the snapshot for a request URI, rebuilding inline when
// the snapshot is stale so positional queries see current text.
func (s *Server) entryFor(uri string) *docEntry {
	uri = canonicalURI(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[uri]
	if !ok {
		return nil
	}
	if entry.dirty || entry.doc == nil {
		s.rebuildAllLocked()
	}
	return entry
}

// rebuildAllLocked reruns the whole pipeline for every open document.
// Editing one document can shift resolution in any other, so a partial
// rebuild would leave stale references behind.
func (s *Server) rebuildAllLocked() {
	for _, entry := range s.entries {
		entry.rebuild(s.fs, s.reg, s.maxDiagnostics)
	}
	for _, entry := range s.entries {
		entry.analyze(s.analysis)
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}
