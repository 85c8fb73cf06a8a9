package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/golangsnmp/mibtree"
	"github.com/golangsnmp/mibtree/cmd/internal/cliutil"
	"github.com/golangsnmp/mibtree/internal/resolver"
)

const configFileName = "mibtree.toml"

// fileConfig is the layout of mibtree.toml. Fields left out of the file
// keep the values defaultConfig sets.
type fileConfig struct {
	Sources sourcesConfig `toml:"sources"`
	Resolve resolveConfig `toml:"resolve"`
	Store   storeConfig   `toml:"store"`
	Output  outputConfig  `toml:"output"`

	// path is the file the config was read from, empty for defaults.
	path string
}

type sourcesConfig struct {
	Paths      []string `toml:"paths"`
	System     bool     `toml:"system"`
	Extensions []string `toml:"extensions"`
	Jobs       int      `toml:"jobs"`
}

type resolveConfig struct {
	RescueRounds    int      `toml:"rescue_rounds"`
	MaxAttempts     int      `toml:"max_attempts"`
	AmbientFallback bool     `toml:"ambient_fallback"`
	Duplicates      string   `toml:"duplicates"`
	ExcludeMissing  bool     `toml:"exclude_missing"`
	Ignore          []string `toml:"ignore"`
}

type storeConfig struct {
	Dir string `toml:"dir"`
}

type outputConfig struct {
	Color  string `toml:"color"`
	Format string `toml:"format"`
}

func defaultConfig() fileConfig {
	return fileConfig{
		Resolve: resolveConfig{
			RescueRounds:    resolver.DefaultRescueRounds,
			MaxAttempts:     mibtree.DefaultMaxAttempts,
			AmbientFallback: true,
			Duplicates:      mibtree.FirstWins.String(),
		},
		Output: outputConfig{
			Color:  "auto",
			Format: cliutil.FormatText,
		},
	}
}

// findConfig walks up from startDir looking for mibtree.toml.
func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// loadConfig reads explicit, or the nearest mibtree.toml when explicit is
// empty. A missing discovered file yields the defaults; a missing
// explicit file is an error.
func loadConfig(explicit string) (fileConfig, error) {
	cfg := defaultConfig()
	path := explicit
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil || !ok {
			return cfg, err
		}
		path = found
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fileConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if _, err := resolver.ParseDuplicatePolicy(cfg.Resolve.Duplicates); err != nil {
		return fileConfig{}, fmt.Errorf("%s: [resolve].duplicates: %w", path, err)
	}
	if _, err := cliutil.ParseFormat(cfg.Output.Format); err != nil {
		return fileConfig{}, fmt.Errorf("%s: [output].format: %w", path, err)
	}

	// Relative source and store paths are relative to the config file.
	root := filepath.Dir(path)
	for i, p := range cfg.Sources.Paths {
		cfg.Sources.Paths[i] = relativeTo(root, p)
	}
	if cfg.Store.Dir != "" {
		cfg.Store.Dir = relativeTo(root, cfg.Store.Dir)
	}
	cfg.path = path
	return cfg, nil
}

func relativeTo(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
