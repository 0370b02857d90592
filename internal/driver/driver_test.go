package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"uscript/internal/diag"
	"uscript/internal/token"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeScript(t, dir, "Actor.uc", "class Actor extends Object;\nvar int Health;\n")
	writeScript(t, dir, "Broken.uc", "class Broken extends Object\n")
	writeScript(t, dir, "notes.txt", "not a script\n")
	return dir
}

func TestListScriptFiles(t *testing.T) {
	dir := testWorkspace(t)
	files, err := ListScriptFiles(dir)
	if err != nil {
		t.Fatalf("ListScriptFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("file count = %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "Actor.uc" || filepath.Base(files[1]) != "Broken.uc" {
		t.Fatalf("unexpected order: %v", files)
	}

	single, err := ListScriptFiles(files[0])
	if err != nil {
		t.Fatalf("single file: %v", err)
	}
	if len(single) != 1 || single[0] != files[0] {
		t.Fatalf("single file list = %v", single)
	}
}

func TestAnalyzeWorkspace(t *testing.T) {
	dir := testWorkspace(t)
	result, err := AnalyzeWorkspace(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("AnalyzeWorkspace: %v", err)
	}
	if result.FromCache {
		t.Fatalf("first run claimed a cache hit")
	}
	if len(result.Docs) != 2 {
		t.Fatalf("doc count = %d", len(result.Docs))
	}
	if !result.Bag.HasErrors() {
		t.Fatalf("missing semicolon not reported")
	}
	found := false
	for _, d := range result.Bag.Items() {
		if d.Code == diag.SynExpectSemicolon {
			found = true
			if !result.FileSet.Has(d.Primary.File) {
				t.Fatalf("diagnostic span outside the file set")
			}
		}
	}
	if !found {
		t.Fatalf("expected %s in %v", diag.SynExpectSemicolon, result.Bag.Items())
	}
}

func TestAnalyzeWorkspaceEmptyDir(t *testing.T) {
	result, err := AnalyzeWorkspace(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("AnalyzeWorkspace: %v", err)
	}
	if result.Bag.Len() != 0 || len(result.Files) != 0 {
		t.Fatalf("empty workspace produced output: %+v", result)
	}
}

func TestAnalyzeWorkspaceEvents(t *testing.T) {
	dir := testWorkspace(t)
	events := make(chan Event, 64)
	collected := make([]Event, 0, 64)
	done := make(chan struct{})
	go func() {
		for ev := range events {
			collected = append(collected, ev)
		}
		close(done)
	}()

	if _, err := AnalyzeWorkspace(context.Background(), dir, Options{Events: events}); err != nil {
		t.Fatalf("AnalyzeWorkspace: %v", err)
	}
	<-done

	final := make(map[string]Status)
	for _, ev := range collected {
		if ev.Stage == StageAnalyze && (ev.Status == StatusDone || ev.Status == StatusError) {
			final[filepath.Base(ev.File)] = ev.Status
		}
	}
	if final["Actor.uc"] != StatusDone {
		t.Fatalf("Actor.uc final status = %d", final["Actor.uc"])
	}
	if final["Broken.uc"] != StatusError {
		t.Fatalf("Broken.uc final status = %d", final["Broken.uc"])
	}
}

func TestTokenize(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "Actor.uc", "class Actor;\n")
	tokens, bag, fs, err := Tokenize(path, 10)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", bag.Items())
	}
	if fs.Len() != 1 {
		t.Fatalf("file set size = %d", fs.Len())
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		t.Fatalf("token stream not EOF-terminated")
	}
	if tokens[0].Kind != token.KwClass {
		t.Fatalf("first token = %v", tokens[0].Kind)
	}
}

func TestTokenizeMissingFile(t *testing.T) {
	if _, _, _, err := Tokenize(filepath.Join(t.TempDir(), "nope.uc"), 10); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
