// Package resolver turns extracted module records into one OID forest.
//
// # Resolution Passes
//
// A run executes the following passes in order:
//
//  1. Registration: seed the baseline and index every declaration by
//     (module, name) and by bare name
//  2. Linking: attach each node under the node its parent name refers
//     to, then retry the leftovers for a bounded number of rescue rounds;
//     nodes whose parent chain reaches a root are anchored
//  3. Addresses: walk from every root and compute each node's OID
//  4. Conflicts: compare declarations of records sharing a module name
//
// Nodes that never link fail the run with a typed error naming missing
// modules when imports explain them. Parent loops are reported as cycles
// and left out of the forest without failing the run.
//
// # Usage
//
//	res, err := resolver.Resolve(records, resolver.DefaultConfig(), logger)
package resolver

import (
	"log/slog"

	"github.com/golangsnmp/mibtree/mib"
)

// DefaultRescueRounds bounds the rescue rounds after the linking pass.
const DefaultRescueRounds = 3

// Config controls a resolution run.
type Config struct {
	// MaxRescueRounds bounds the rescue rounds after the first linking
	// pass. Zero disables rescue.
	MaxRescueRounds int
	// Duplicates decides between repeated (module, name) declarations.
	Duplicates DuplicatePolicy
	// AmbientFallback lets a parent name resolve to the only node of that
	// name anywhere when no other rule finds it.
	AmbientFallback bool
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxRescueRounds: DefaultRescueRounds,
		Duplicates:      FirstWins,
		AmbientFallback: true,
	}
}

// Result is the outcome of a run. On failure Forest and Conflicts are
// nil and the diagnostics explain which nodes did not resolve.
type Result struct {
	Forest      *mib.Forest
	Conflicts   []mib.Conflict
	Cycles      []mib.Cycle
	Diagnostics []mib.Diagnostic
	// Phase is the terminal phase, PhaseDone or PhaseFailed.
	Phase Phase
	// RescueRounds is the number of rescue rounds that ran.
	RescueRounds int
	// Unresolved counts the nodes whose parent could not be found. Nodes
	// below them are not counted.
	Unresolved int
}

// Resolve resolves records into a forest. Records are read, not
// modified. If logger is nil, logging is disabled (zero overhead).
//
// The returned error is a *mib.MissingDependenciesError or a
// *mib.UnresolvedOrphansError; the Result is non-nil either way.
func Resolve(records []mib.Record, cfg Config, logger *slog.Logger) (*Result, error) {
	ctx := newResolutionContext(records, cfg, logger)
	return ctx.run()
}

func (c *ResolutionContext) run() (*Result, error) {
	res := &Result{}

	c.enter(PhaseRegistering)
	registerRecords(c)
	c.Log(slog.LevelDebug, "phase complete", slog.String("phase", "register"),
		slog.Int("records", len(c.Records)),
		slog.Int("nodes", len(c.Nodes)))

	c.enter(PhaseLinking)
	pending, rounds := c.linkNodes()
	res.RescueRounds = rounds

	split := c.settle(pending)
	res.Cycles = c.detachedCycles(split.detached)

	if split.failed() > 0 {
		c.enter(PhaseUnresolved)
		c.enter(PhaseDiagnosing)
		err := c.diagnose(split)
		c.enter(PhaseFailed)
		res.Phase = PhaseFailed
		res.Unresolved = split.failed()
		res.Diagnostics = c.diagnostics
		return res, err
	}

	c.enter(PhaseResolved)
	c.enter(PhaseComputingAddresses)
	roots, cycles := c.computeAddresses()
	res.Cycles = append(res.Cycles, cycles...)
	res.Forest = mib.NewForest(roots)

	c.enter(PhaseDetectingConflicts)
	res.Conflicts = DetectConflicts(c.Records, c.oidOf)

	c.enter(PhaseDone)
	res.Phase = PhaseDone
	res.Diagnostics = c.diagnostics

	if len(res.Cycles) > 0 {
		c.Log(slog.LevelWarn, "cycles left out of forest", slog.Int("count", len(res.Cycles)))
	}
	c.Log(slog.LevelInfo, "resolution complete",
		slog.Int("records", len(c.Records)),
		slog.Int("nodes", res.Forest.Len()),
		slog.Int("rescue_rounds", res.RescueRounds),
		slog.Int("conflicts", len(res.Conflicts)))
	return res, nil
}

// enter moves the run to phase p.
func (c *ResolutionContext) enter(p Phase) {
	from := c.phase
	if from != p && !from.CanTransition(p) {
		c.Log(slog.LevelWarn, "unexpected phase transition",
			slog.String("from", from.String()),
			slog.String("to", p.String()))
	}
	c.phase = p
	c.Log(slog.LevelDebug, "phase", slog.String("from", from.String()), slog.String("to", p.String()))
}

func (c *ResolutionContext) oidOf(module, name string) string {
	n, ok := c.Node(module, name)
	if !ok || n.OID == nil {
		return ""
	}
	return n.OID.String()
}
