package mibtree

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/golangsnmp/mibtree/internal/fixpoint"
	"github.com/golangsnmp/mibtree/internal/resolver"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// Result is the outcome of a resolution. On failure Forest is nil and
// Diagnostics explain which nodes did not link.
type Result struct {
	Forest      *Forest
	Conflicts   []Conflict
	Cycles      []Cycle
	Diagnostics []Diagnostic
	// Phase is the terminal phase of the last run, "done" or "failed".
	Phase string
	// RescueRounds is the number of rescue rounds of the last run.
	RescueRounds int
	// Unresolved counts the nodes the last run could not place.
	Unresolved int
	// Excluded lists the records ResolveExcluding left out, in the order
	// they were dropped.
	Excluded []Exclusion
	// Attempts is the number of resolution runs.
	Attempts int
}

// Exclusion is a record left out because it imports from missing
// modules.
type Exclusion struct {
	Module  string   `json:"module" yaml:"module"`
	File    string   `json:"file" yaml:"file"`
	Missing []string `json:"missing" yaml:"missing"`
}

// OK reports whether the run produced a forest.
func (r *Result) OK() bool {
	return r != nil && r.Forest != nil
}

// Resolve resolves records into one forest. Records are not modified.
//
// On failure the error is a *mib.MissingDependenciesError or a
// *mib.UnresolvedOrphansError, both matching ErrUnresolved, and the
// Result still carries the diagnostics.
func Resolve(records []Record, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	return resolveOnce(records, &cfg)
}

func resolveOnce(records []Record, cfg *config) (*Result, error) {
	res, err := resolver.Resolve(records, cfg.resolverConfig(), types.Component(cfg.logger, "resolver"))
	return &Result{
		Forest:       res.Forest,
		Conflicts:    res.Conflicts,
		Cycles:       res.Cycles,
		Diagnostics:  res.Diagnostics,
		Phase:        res.Phase.String(),
		RescueRounds: res.RescueRounds,
		Unresolved:   res.Unresolved,
		Attempts:     1,
	}, err
}

// ResolveExcluding resolves records, and when the run fails on missing
// dependencies, drops every record importing from a missing module and
// tries again. It stops on success, on a failure no exclusion can fix,
// or after WithMaxAttempts runs. The returned error is that of the last
// run.
func ResolveExcluding(records []Record, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	logger := types.Logger{L: cfg.logger}

	current := records
	var (
		res      *Result
		err      error
		excluded []Exclusion
	)
	// One more than the record count so the first attempt always runs.
	iter, _ := fixpoint.Run(cfg.maxAttempts, len(current)+1, func(attempt int) (fixpoint.Status, error) {
		res, err = resolveOnce(current, &cfg)
		var missing *mib.MissingDependenciesError
		if !errors.As(err, &missing) {
			return fixpoint.Status{Done: true}, nil
		}
		kept, dropped := excludeImporters(current, missing.Modules)
		if len(dropped) == 0 {
			return fixpoint.Status{Done: true}, nil
		}
		excluded = append(excluded, dropped...)
		logger.Log(slog.LevelInfo, "excluding records with missing dependencies",
			slog.Int("attempt", attempt),
			slog.Any("missing", missing.Modules),
			slog.Int("excluded", len(dropped)))
		current = kept
		return fixpoint.Status{Pending: len(current)}, nil
	})

	if !iter.Done {
		logger.Log(slog.LevelWarn, "exclusion retry cap reached", slog.Int("attempts", iter.Rounds))
	}
	res.Attempts = iter.Rounds
	res.Excluded = excluded
	return res, err
}

// excludeImporters splits records into those that import nothing from
// missing and those that do.
func excludeImporters(records []Record, missing []string) ([]Record, []Exclusion) {
	var kept []Record
	var dropped []Exclusion
	for i := range records {
		rec := &records[i]
		var hit []string
		for _, from := range rec.ImportsFrom() {
			if slices.Contains(missing, from) {
				hit = append(hit, from)
			}
		}
		if len(hit) == 0 {
			kept = append(kept, *rec)
			continue
		}
		dropped = append(dropped, Exclusion{Module: rec.Name, File: rec.SourceFile, Missing: hit})
	}
	return kept, dropped
}

// Conflicts compares records that share a module name without resolving
// them. Conflict OIDs are left empty.
func Conflicts(records []Record) []Conflict {
	return resolver.DetectConflicts(records, nil)
}
