// Package config loads the uscript.toml workspace manifest. The manifest
// is optional; a workspace without one gets the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"uscript/internal/sema"
)

// ManifestName is the workspace manifest file name.
const ManifestName = "uscript.toml"

// Config is the parsed workspace manifest.
type Config struct {
	Package  Package  `toml:"package"`
	Analysis Analysis `toml:"analysis"`
}

// Package names the workspace.
type Package struct {
	Name string `toml:"name"`
}

// Analysis selects which diagnostic groups run.
type Analysis struct {
	// CheckTypes enables unresolved-type diagnostics across the workspace.
	CheckTypes bool `toml:"check_types"`
	// Generation is the language revision, 2 or 3.
	Generation int `toml:"generation"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		Analysis: Analysis{
			CheckTypes: true,
			Generation: sema.Gen3,
		},
	}
}

// Load parses a manifest file. Sections the file omits keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("analysis", "generation") {
		switch cfg.Analysis.Generation {
		case sema.Gen2, sema.Gen3:
		default:
			return Config{}, fmt.Errorf("%s: invalid [analysis].generation %d: must be 2 or 3", path, cfg.Analysis.Generation)
		}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Find searches startDir and its parents for a manifest. The second result
// reports whether one was found.
func Find(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, err
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// ForDir loads the manifest governing dir, or the defaults if none exists.
func ForDir(dir string) (Config, error) {
	path, ok, err := Find(dir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// SemaOptions maps the analysis section onto analyzer options.
func (c Config) SemaOptions() sema.Options {
	return sema.Options{
		CheckTypes: c.Analysis.CheckTypes,
		Generation: c.Analysis.Generation,
	}
}
