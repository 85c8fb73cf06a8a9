// Package mibtree extracts OID declarations from SNMP MIB modules and
// resolves them into one forest of named OID nodes.
//
// Extraction is tolerant: malformed fragments are skipped and recorded
// as diagnostics on the record. Resolution links every declaration under
// its parent, retries forward references for a bounded number of rescue
// rounds, computes absolute OIDs and reports conflicting redefinitions
// across files that share a module name.
//
//	res, err := mibtree.Load(ctx, mibtree.DirTree("/usr/share/snmp/mibs"),
//	    mibtree.WithLogger(slog.Default()))
//	if errors.Is(err, mibtree.ErrUnresolved) {
//	    // res.Diagnostics explains which nodes did not link
//	}
package mibtree

import (
	"errors"
	"log/slog"
	"runtime"

	"github.com/golangsnmp/mibtree/internal/resolver"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// ErrNoSources is returned when Load is called with no source or the
// source lists no files.
var ErrNoSources = errors.New("no MIB sources provided")

// ErrUnresolved matches every resolution failure caused by nodes whose
// parent could not be found.
var ErrUnresolved = mib.ErrUnresolved

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (tokens, link attempts, walk steps).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = types.LevelTrace

// DefaultMaxAttempts bounds ResolveExcluding.
const DefaultMaxAttempts = 10

// Record is the unresolved content of one module from one file.
type Record = mib.Record

// Forest is the resolved OID tree.
type Forest = mib.Forest

// Node is one resolved point in the forest.
type Node = mib.Node

// Conflict is one declaration defined differently by two files.
type Conflict = mib.Conflict

// Diagnostic is an extraction or resolution finding.
type Diagnostic = mib.Diagnostic

// Cycle is a set of nodes whose parent chain loops.
type Cycle = mib.Cycle

// DuplicatePolicy decides between repeated (module, name) declarations.
type DuplicatePolicy = resolver.DuplicatePolicy

const (
	// FirstWins keeps the first declaration; later ones fill empty fields.
	FirstWins = resolver.FirstWins
	// LastWins replaces earlier declarations with later ones.
	LastWins = resolver.LastWins
)

// Option configures extraction, resolution and loading.
type Option func(*config)

type config struct {
	logger          *slog.Logger
	maxRescueRounds int
	maxAttempts     int
	duplicates      DuplicatePolicy
	noAmbient       bool
	jobs            int
	extensions      []string
	noHeuristic     bool
}

func newConfig(opts []Option) config {
	cfg := config{
		maxRescueRounds: resolver.DefaultRescueRounds,
		maxAttempts:     DefaultMaxAttempts,
		duplicates:      FirstWins,
		jobs:            runtime.NumCPU(),
		extensions:      DefaultExtensions,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c *config) resolverConfig() resolver.Config {
	return resolver.Config{
		MaxRescueRounds: c.maxRescueRounds,
		Duplicates:      c.duplicates,
		AmbientFallback: !c.noAmbient,
	}
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMaxRescueRounds bounds the retry rounds for forward references.
// Zero disables rescue; negative values are ignored.
func WithMaxRescueRounds(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxRescueRounds = n
		}
	}
}

// WithMaxAttempts bounds the resolve attempts of ResolveExcluding.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithDuplicatePolicy sets how repeated declarations are merged.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(c *config) { c.duplicates = p }
}

// WithoutAmbientFallback stops a parent name from resolving to a node
// in a module that was neither the declaring module nor imported.
func WithoutAmbientFallback() Option {
	return func(c *config) { c.noAmbient = true }
}

// WithJobs bounds the number of files extracted in parallel.
func WithJobs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.jobs = n
		}
	}
}

// WithExtensions sets the file extensions Load accepts. The empty string
// matches files with no extension.
func WithExtensions(exts ...string) Option {
	return func(c *config) { c.extensions = exts }
}

// WithNoHeuristic makes Load extract every listed file, not only those
// that look like module source.
func WithNoHeuristic() Option {
	return func(c *config) { c.noHeuristic = true }
}
