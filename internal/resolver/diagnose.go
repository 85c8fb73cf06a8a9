package resolver

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/golangsnmp/mibtree/internal/baseline"
	"github.com/golangsnmp/mibtree/internal/graph"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// unresolvedSplit partitions the nodes that did not end up anchored.
type unresolvedSplit struct {
	// orphans have a parent name that matches no node.
	orphans []*WorkingNode
	// blocked found their parent but hang, directly or not, below an
	// orphan.
	blocked []*WorkingNode
	// detached hang below or inside a parent loop.
	detached []*WorkingNode
}

// failed counts the nodes whose own parent could not be found.
func (s unresolvedSplit) failed() int {
	return len(s.orphans)
}

// placement is where a linked node's parent chain ends.
type placement int

const (
	placeUnknown placement = iota
	placeAnchored
	placeBlocked
	placeDetached
)

// settle follows every linked node's parent chain and marks the node
// anchored when the chain reaches a root. Nodes on a chain ending at an
// orphan are blocked; a chain that comes back to itself is detached,
// along with every node hanging below it. orphans are the nodes left
// unlinked after rescue.
func (c *ResolutionContext) settle(orphans []*WorkingNode) unresolvedSplit {
	split := unresolvedSplit{orphans: orphans}
	place := make(map[*WorkingNode]placement, len(c.Nodes))
	onPath := make(map[*WorkingNode]bool)

	for _, n := range c.Nodes {
		if !n.linked || place[n] != placeUnknown {
			continue
		}
		var path []*WorkingNode
		end := placeUnknown
		for cur := n; end == placeUnknown; cur = cur.Parent {
			switch {
			case cur.anchored:
				end = placeAnchored
			case place[cur] != placeUnknown:
				end = place[cur]
			case !cur.linked:
				end = placeBlocked
			case onPath[cur]:
				end = placeDetached
			default:
				onPath[cur] = true
				path = append(path, cur)
			}
		}
		for _, p := range path {
			place[p] = end
			delete(onPath, p)
			if end == placeAnchored {
				p.anchored = true
			}
		}
	}

	for _, n := range c.Nodes {
		switch place[n] {
		case placeBlocked:
			split.blocked = append(split.blocked, n)
		case placeDetached:
			split.detached = append(split.detached, n)
		}
	}
	return split
}

// detachedCycles names the parent loops among detached nodes. Every
// detached node is linked to its parent so the loops show up as strongly
// connected components of the parent graph.
func (c *ResolutionContext) detachedCycles(detached []*WorkingNode) []mib.Cycle {
	if len(detached) == 0 {
		return nil
	}
	g := graph.New(len(detached))
	for _, n := range detached {
		g.AddEdge(n.Key(), n.Parent.Key())
	}

	var cycles []mib.Cycle
	inCycle := make(map[graph.Symbol]bool)
	for _, scc := range g.FindCycles() {
		members := make([]string, len(scc))
		for i, sym := range scc {
			members[i] = sym.String()
			inCycle[sym] = true
		}
		cycles = append(cycles, mib.Cycle{Members: members})
		first := c.ByKey[scc[0]]
		c.emit(mib.SeverityWarning, types.DiagCycle, first,
			fmt.Sprintf("parent chain loops: %s", strings.Join(members, " -> ")))
	}

	for _, n := range detached {
		if inCycle[n.Key()] {
			continue
		}
		c.emit(mib.SeverityWarning, types.DiagCycle, n,
			fmt.Sprintf("%s is left out: its parent chain enters a loop", n.Key()))
	}
	return cycles
}

// diagnose builds the failure for orphaned nodes. Orphans whose parent
// is imported from a module outside the working set name that module as
// missing. Imports from SMI base modules never count as missing, since
// the seed table stands in for them.
func (c *ResolutionContext) diagnose(split unresolvedSplit) error {
	missing := make(map[string]bool)
	var orphans []string

	for _, n := range split.orphans {
		orphans = append(orphans, fmt.Sprintf("%s -> %s", n.Key(), n.ParentName))

		from, imported := c.ImportSource(n.Module, n.ParentName)
		switch {
		case imported && !c.Modules[from] && !baseline.IsBaseModule(from):
			missing[from] = true
			c.emit(mib.SeverityError, types.DiagOrphan, n,
				fmt.Sprintf("%s: parent %s is imported from %s, which is not loaded", n.Name, n.ParentName, from))
		case imported:
			c.emit(mib.SeverityError, types.DiagImportSymbolMissing, n,
				fmt.Sprintf("%s: parent %s is imported from %s, which does not declare it", n.Name, n.ParentName, from))
		default:
			if _, _, candidates := c.lookupParent(n); candidates > 1 {
				c.emit(mib.SeverityError, types.DiagAmbiguousParent, n,
					fmt.Sprintf("%s: parent %s is declared by %d modules and not imported", n.Name, n.ParentName, candidates))
				continue
			}
			c.emit(mib.SeverityError, types.DiagOrphan, n,
				fmt.Sprintf("%s: parent %s is not declared anywhere", n.Name, n.ParentName))
		}
	}

	c.Log(slog.LevelWarn, "unresolved nodes",
		slog.Int("orphans", len(split.orphans)),
		slog.Int("blocked", len(split.blocked)),
		slog.Int("missing_modules", len(missing)))

	if len(missing) > 0 {
		modules := make([]string, 0, len(missing))
		for m := range missing {
			modules = append(modules, m)
		}
		slices.Sort(modules)
		return &mib.MissingDependenciesError{Modules: modules, Unresolved: split.failed()}
	}
	slices.Sort(orphans)
	return &mib.UnresolvedOrphansError{Unresolved: split.failed(), Orphans: orphans}
}
