package resolver

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/golangsnmp/mibtree/internal/baseline"
	"github.com/golangsnmp/mibtree/internal/fixpoint"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// lookupStep names the rule that found a parent.
type lookupStep int

const (
	stepNone lookupStep = iota
	stepSameModule
	stepImport
	stepBaseline
	stepAmbient
)

func (s lookupStep) String() string {
	switch s {
	case stepSameModule:
		return "same-module"
	case stepImport:
		return "import"
	case stepBaseline:
		return "baseline"
	case stepAmbient:
		return "ambient"
	default:
		return "none"
	}
}

// lookupParent finds the node n.ParentName refers to. The rules are
// tried in order and the first that names an existing node wins:
//
//  1. (n.Module, parent)
//  2. (import source, parent) when n.Module imports parent
//  3. the seed node named parent
//  4. the only node anywhere named parent, if ambient fallback is on
//
// The returned node may not be anchored yet. ambiguous is set when rule 4
// was reached and found more than one candidate.
func (c *ResolutionContext) lookupParent(n *WorkingNode) (parent *WorkingNode, step lookupStep, ambiguous int) {
	name := n.ParentName
	if p, ok := c.Node(n.Module, name); ok {
		return p, stepSameModule, 0
	}
	if from, ok := c.ImportSource(n.Module, name); ok {
		if p, ok := c.Node(from, name); ok {
			return p, stepImport, 0
		}
	}
	if p, ok := c.Baseline[name]; ok {
		return p, stepBaseline, 0
	}
	if !c.config.AmbientFallback {
		return nil, stepNone, 0
	}
	switch candidates := c.ByName[name]; len(candidates) {
	case 0:
		return nil, stepNone, 0
	case 1:
		return candidates[0], stepAmbient, 0
	default:
		return nil, stepNone, len(candidates)
	}
}

// tryLink links n under the node its parent name refers to, anchored or
// not. It reports whether n is linked.
func (c *ResolutionContext) tryLink(n *WorkingNode) bool {
	if n.linked {
		return true
	}
	if n.ParentName == "" {
		c.anchorAtRoot(n)
		return true
	}
	parent, step, _ := c.lookupParent(n)
	if parent == nil {
		return false
	}
	parent.addChild(n)
	n.linked = true
	if c.TraceEnabled() {
		c.Trace("linked",
			slog.String("node", n.Key().String()),
			slog.String("parent", parent.Key().String()),
			slog.String("rule", step.String()))
	}
	return true
}

// anchorAtRoot places a declaration with no parent name. The value is an
// absolute OID: it goes under the deepest seed node that prefixes it, or
// becomes an extra root when no seed does. An extra root at the OID of an
// earlier one is kept and reported.
func (c *ResolutionContext) anchorAtRoot(n *WorkingNode) {
	n.linked = true
	for i := len(n.Suffix) - 1; i > 0; i-- {
		entry, ok := baseline.LookupOID(n.Suffix[:i])
		if !ok {
			continue
		}
		n.ParentName = entry.Name
		n.Suffix = append([]uint32(nil), n.Suffix[i:]...)
		c.Baseline[entry.Name].addChild(n)
		return
	}
	n.anchored = true
	for _, r := range c.extraRoots {
		if slices.Equal(r.Suffix, n.Suffix) {
			c.emit(mib.SeverityWarning, types.DiagDuplicateDeclaration, n,
				fmt.Sprintf("%s is placed at %s, already taken by %s", n.Key(), mib.Oid(n.Suffix), r.Key()))
			break
		}
	}
	c.extraRoots = append(c.extraRoots, n)
}

// linkNodes is pass 2: one linking pass over every node in input order,
// followed by up to MaxRescueRounds rescue rounds over whatever is still
// unlinked. Registration is complete before linking starts, so input
// order never decides whether a node links. It returns the nodes whose
// parent was not found and the number of rescue rounds run.
func (c *ResolutionContext) linkNodes() ([]*WorkingNode, int) {
	pending := c.linkRound(c.Nodes)
	c.Log(slog.LevelDebug, "linking pass complete",
		slog.Int("nodes", len(c.Nodes)),
		slog.Int("unresolved", len(pending)))

	res, _ := fixpoint.Run(c.config.MaxRescueRounds, len(pending), func(round int) (fixpoint.Status, error) {
		c.enter(PhaseRescuePending)
		c.enter(PhaseLinking)
		pending = c.linkRound(pending)
		c.Log(slog.LevelDebug, "rescue round",
			slog.Int("round", round),
			slog.Int("unresolved", len(pending)))
		return fixpoint.Status{Done: len(pending) == 0, Pending: len(pending)}, nil
	})
	return pending, res.Rounds
}

// linkRound tries to link each node in order and returns those that
// did not link.
func (c *ResolutionContext) linkRound(nodes []*WorkingNode) []*WorkingNode {
	var still []*WorkingNode
	for _, n := range nodes {
		if !c.tryLink(n) {
			still = append(still, n)
		}
	}
	return still
}
