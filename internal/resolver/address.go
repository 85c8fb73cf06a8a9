package resolver

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// ancestry is the chain of nodes above the one being visited. Each
// branch of the walk extends its parent's chain without modifying it,
// so siblings never see each other's visits.
type ancestry struct {
	node *WorkingNode
	up   *ancestry
}

func (a *ancestry) contains(n *WorkingNode) bool {
	for ; a != nil; a = a.up {
		if a.node == n {
			return true
		}
	}
	return false
}

// membersFrom returns the chain from n down to the innermost node, in
// parent-to-child order.
func (a *ancestry) membersFrom(n *WorkingNode) []string {
	var out []string
	for ; a != nil; a = a.up {
		out = append(out, a.node.Key().String())
		if a.node == n {
			break
		}
	}
	slices.Reverse(out)
	return out
}

// computeAddresses is pass 3: a depth-first walk from every root that
// sets each node's OID to its parent's OID followed by its suffix and
// builds the output forest. A node met again on its own branch is
// skipped and reported as a cycle.
func (c *ResolutionContext) computeAddresses() ([]mib.Node, []mib.Cycle) {
	var cycles []mib.Cycle

	var walk func(n *WorkingNode, oid mib.Oid, parentOID string, up *ancestry) mib.Node
	walk = func(n *WorkingNode, oid mib.Oid, parentOID string, up *ancestry) mib.Node {
		n.OID = oid
		out := outputNode(n, parentOID)
		here := &ancestry{node: n, up: up}

		children := slices.Clone(n.Children)
		slices.SortFunc(children, compareSiblings)
		if len(children) > 0 {
			out.Children = make([]mib.Node, 0, len(children))
		}
		for _, child := range children {
			if here.contains(child) {
				cycles = append(cycles, mib.Cycle{
					Members: here.membersFrom(child),
					Via:     out.OID,
				})
				c.emit(mib.SeverityWarning, types.DiagCycle, child,
					"parent chain loops back to "+child.Key().String()+" below "+out.OID)
				continue
			}
			out.Children = append(out.Children, walk(child, oid.Child(child.Suffix...), out.OID, here))
		}
		return out
	}

	roots := make([]mib.Node, 0, len(c.Roots)+len(c.extraRoots))
	for _, r := range c.Roots {
		roots = append(roots, walk(r, r.OID, "", nil))
	}
	extra := slices.Clone(c.extraRoots)
	slices.SortFunc(extra, compareSiblings)
	for _, r := range extra {
		roots = append(roots, walk(r, mib.Oid(r.Suffix), "", nil))
	}

	if c.Enabled(slog.LevelDebug) {
		c.Log(slog.LevelDebug, "addresses computed",
			slog.Int("roots", len(roots)),
			slog.Int("cycles", len(cycles)))
	}
	return roots, cycles
}

// compareSiblings orders children by suffix, then name, then module,
// so the output does not depend on input order.
func compareSiblings(a, b *WorkingNode) int {
	if c := slices.Compare(a.Suffix, b.Suffix); c != 0 {
		return c
	}
	return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Module, b.Module))
}

func outputNode(n *WorkingNode, parentOID string) mib.Node {
	return mib.Node{
		Name:        n.Name,
		OID:         n.OID.String(),
		ParentOID:   parentOID,
		Kind:        n.Kind,
		Syntax:      n.Syntax,
		Access:      n.Access,
		Status:      n.Status,
		Description: n.Description,
		Module:      n.Module,
		SourceFile:  n.SourceFile,
	}
}
