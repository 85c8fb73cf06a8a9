package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/mibtree/mib"
)

func seededContext(t *testing.T) *ResolutionContext {
	t.Helper()
	ctx := newResolutionContext(nil, DefaultConfig(), nil)
	seedBaseline(ctx)
	return ctx
}

func manualNode(module, name string, arcs ...uint32) *WorkingNode {
	return &WorkingNode{Module: module, Name: name, Suffix: arcs, Kind: mib.KindIdentifier, anchored: true}
}

func TestComputeAddressesLoopBelowRoot(t *testing.T) {
	ctx := seededContext(t)
	ent := ctx.Baseline["enterprises"]

	x := manualNode("T-MIB", "x", 1)
	y := manualNode("T-MIB", "y", 2)
	sibling := manualNode("T-MIB", "sibling", 3)
	ent.addChild(x)
	ent.addChild(sibling)
	x.addChild(y)
	y.Children = append(y.Children, x)

	roots, cycles := ctx.computeAddresses()
	forest := mib.NewForest(roots)

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"T-MIB::x", "T-MIB::y"}, cycles[0].Members)
	assert.Equal(t, "1.3.6.1.4.1.1.2", cycles[0].Via)

	n, ok := forest.Lookup("1.3.6.1.4.1.1.2")
	require.True(t, ok)
	assert.Equal(t, "y", n.Name)
	assert.Empty(t, n.Children, "the loop edge is dropped")

	n, ok = forest.Lookup("1.3.6.1.4.1.3")
	require.True(t, ok)
	assert.Equal(t, "sibling", n.Name)
	assert.Len(t, ctx.Diagnostics(), 1)
}

func TestComputeAddressesBranchesDoNotShareVisits(t *testing.T) {
	ctx := seededContext(t)

	// The same node below two branches is a revisit across branches, not
	// a loop.
	shared := manualNode("T-MIB", "shared", 7)
	ctx.Baseline["enterprises"].addChild(shared)
	ctx.Baseline["experimental"].Children = append(ctx.Baseline["experimental"].Children, shared)

	roots, cycles := ctx.computeAddresses()
	assert.Empty(t, cycles)

	forest := mib.NewForest(roots)
	assert.Len(t, forest.Find("shared"), 2)
	_, ok := forest.Lookup("1.3.6.1.3.7")
	assert.True(t, ok)
	_, ok = forest.Lookup("1.3.6.1.4.1.7")
	assert.True(t, ok)
}

func TestComputeAddressesSetsWorkingOIDs(t *testing.T) {
	ctx := seededContext(t)
	n := manualNode("T-MIB", "jump", 30065, 3011, 7124, 3282)
	ctx.Baseline["enterprises"].addChild(n)

	ctx.computeAddresses()
	assert.Equal(t, mib.Oid{1, 3, 6, 1, 4, 1, 30065, 3011, 7124, 3282}, n.OID)
	assert.Equal(t, "1.3.6.1.4.1.30065.3011.7124.3282", n.OID.String())
}

func TestAncestry(t *testing.T) {
	a := manualNode("M", "a")
	b := manualNode("M", "b")
	c := manualNode("M", "c")

	var root *ancestry
	assert.False(t, root.contains(a))

	chain := &ancestry{node: c, up: &ancestry{node: b, up: &ancestry{node: a}}}
	assert.True(t, chain.contains(a))
	assert.Equal(t, []string{"M::b", "M::c"}, chain.membersFrom(b))
	assert.Equal(t, []string{"M::a", "M::b", "M::c"}, chain.membersFrom(a))

	branch := &ancestry{node: b, up: &ancestry{node: a}}
	assert.False(t, branch.contains(c), "extending one branch does not affect another")
}

func TestCompareSiblings(t *testing.T) {
	tests := []struct {
		a, b *WorkingNode
		want int
	}{
		{manualNode("M", "x", 1), manualNode("M", "x", 2), -1},
		{manualNode("M", "x", 2), manualNode("M", "x", 2, 1), -1},
		{manualNode("M", "b", 2), manualNode("M", "a", 2), 1},
		{manualNode("A", "x", 2), manualNode("B", "x", 2), -1},
		{manualNode("M", "x", 9), manualNode("M", "x", 10), -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareSiblings(tt.a, tt.b), "%s vs %s", tt.a.Key(), tt.b.Key())
	}
}
