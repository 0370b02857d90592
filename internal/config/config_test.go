package config

import (
	"os"
	"path/filepath"
	"testing"

	"uscript/internal/sema"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "Engine"

[analysis]
check_types = false
generation = 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Package.Name != "Engine" {
		t.Fatalf("name = %q", cfg.Package.Name)
	}
	if cfg.Analysis.CheckTypes {
		t.Fatalf("check_types should be false")
	}
	if cfg.Analysis.Generation != sema.Gen2 {
		t.Fatalf("generation = %d", cfg.Analysis.Generation)
	}
}

func TestLoadDefaultsForOmittedKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `[package]
name = "Core"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Analysis.CheckTypes {
		t.Fatalf("check_types should default to true")
	}
	if cfg.Analysis.Generation != sema.Gen3 {
		t.Fatalf("generation should default to %d, got %d", sema.Gen3, cfg.Analysis.Generation)
	}
}

func TestLoadRejectsBadGeneration(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `[analysis]
generation = 7
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for generation 7")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `[analysis]
check_tyeps = true
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for misspelled key")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeManifest(t, root, "[package]\nname = \"Game\"\n")
	nested := filepath.Join(root, "Classes", "Weapons")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, ok, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !ok {
		t.Fatalf("manifest not found from nested dir")
	}
	if got != want {
		t.Fatalf("Find = %q, want %q", got, want)
	}
}

func TestForDirWithoutManifest(t *testing.T) {
	// Use a temp dir on its own so a manifest in a parent cannot interfere
	// unless the machine running the test has one above TMPDIR.
	cfg, err := ForDir(t.TempDir())
	if err != nil {
		t.Fatalf("ForDir: %v", err)
	}
	opts := cfg.SemaOptions()
	if opts.Generation != sema.Gen3 {
		t.Fatalf("default generation = %d", opts.Generation)
	}
}
