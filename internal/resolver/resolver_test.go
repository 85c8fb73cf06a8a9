package resolver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/mibtree/internal/baseline"
	"github.com/golangsnmp/mibtree/internal/extract"
	"github.com/golangsnmp/mibtree/internal/testutil"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// records extracts one record per source, named f0.mib, f1.mib, ...
func records(t *testing.T, sources ...fmt.Stringer) []mib.Record {
	t.Helper()
	out := make([]mib.Record, 0, len(sources))
	for i, src := range sources {
		rec := extract.Extract([]byte(src.String()), fmt.Sprintf("f%d.mib", i), nil)
		require.Empty(t, rec.Diagnostics, "fixture %d should extract cleanly", i)
		out = append(out, rec)
	}
	return out
}

func mustResolve(t *testing.T, recs []mib.Record) *Result {
	t.Helper()
	return mustResolveWith(t, recs, DefaultConfig())
}

func mustResolveWith(t *testing.T, recs []mib.Record, cfg Config) *Result {
	t.Helper()
	res, err := Resolve(recs, cfg, nil)
	require.NoError(t, err)
	require.Equal(t, PhaseDone, res.Phase)
	return res
}

func diagCodes(res *Result) []string {
	var codes []string
	for _, d := range res.Diagnostics {
		codes = append(codes, d.Code)
	}
	return codes
}

func moduleA() *testutil.ModuleBuilder {
	return testutil.Module("A-MIB").
		Import("SNMPv2-SMI", "enterprises").
		Identifier("aRoot", "enterprises", 1).
		Identifier("aLeaf", "aRoot", 2)
}

func moduleB() *testutil.ModuleBuilder {
	return testutil.Module("B-MIB").
		Import("A-MIB", "aRoot").
		Identifier("bNode", "aRoot", 3).
		ObjectType(testutil.ObjectTypeDef{
			Name:   "bLeaf",
			Syntax: "Integer32",
			Access: "read-only",
			Status: "current",
			Parent: "bNode",
			Arcs:   []uint32{1},
		})
}

func TestResolveBaselineOnly(t *testing.T) {
	res := mustResolve(t, nil)

	assert.Equal(t, baseline.Len(), res.Forest.Len())
	require.Len(t, res.Forest.Roots, 3)
	assert.Equal(t, "ccitt", res.Forest.Roots[0].Name)
	assert.Equal(t, "iso", res.Forest.Roots[1].Name)
	assert.Equal(t, "joint-iso-ccitt", res.Forest.Roots[2].Name)
	assert.Empty(t, res.Diagnostics)
	assert.Empty(t, res.Conflicts)
	assert.Empty(t, res.Cycles)

	for _, e := range baseline.Entries() {
		n, ok := res.Forest.Lookup(e.OID.String())
		require.True(t, ok, "seed %s missing", e.Name)
		assert.Equal(t, e.Name, n.Name)
		assert.Equal(t, mib.KindBaseline, n.Kind)
		assert.Empty(t, n.Module)
		if e.Parent != "" {
			assert.Equal(t, e.OID.Parent().String(), n.ParentOID)
		}
	}
}

func TestResolveOrderIndependence(t *testing.T) {
	ab := mustResolve(t, records(t, moduleA(), moduleB()))
	ba := mustResolve(t, records(t, moduleB(), moduleA()))

	// Source file names follow input position, so compare without them.
	strip := func(f *mib.Forest) []string {
		var out []string
		for n := range f.All() {
			out = append(out, fmt.Sprintf("%s %s %s %s %s", n.OID, n.ParentOID, n.QualifiedName(), n.Kind, n.Syntax))
		}
		return out
	}
	assert.Equal(t, strip(ab.Forest), strip(ba.Forest))
	assert.Equal(t, 0, ab.RescueRounds)
	assert.Equal(t, 0, ba.RescueRounds)

	leaf, ok := ab.Forest.Lookup("1.3.6.1.4.1.1.3.1")
	require.True(t, ok)
	assert.Equal(t, "bLeaf", leaf.Name)
	assert.Equal(t, "B-MIB", leaf.Module)
	assert.Equal(t, "1.3.6.1.4.1.1.3", leaf.ParentOID)
	assert.Equal(t, mib.KindObjectType, leaf.Kind)
	assert.Equal(t, "read-only", leaf.Access)
}

func TestResolveMultiSuffix(t *testing.T) {
	res := mustResolve(t, records(t, testutil.Module("JUMP-MIB").
		Identifier("deep", "enterprises", 30065, 3011, 7124, 3282).
		Identifier("deeper", "deep", 1)))

	n, ok := res.Forest.Lookup("1.3.6.1.4.1.30065.3011.7124.3282")
	require.True(t, ok)
	assert.Equal(t, "deep", n.Name)
	assert.Equal(t, "1.3.6.1.4.1", n.ParentOID)

	n, ok = res.Forest.Lookup("1.3.6.1.4.1.30065.3011.7124.3282.1")
	require.True(t, ok)
	assert.Equal(t, "deeper", n.Name)

	_, ok = res.Forest.Lookup("1.3.6.1.4.1.30065")
	assert.False(t, ok, "no nodes are invented for skipped levels")
}

func TestResolveMissingDependency(t *testing.T) {
	recs := records(t, testutil.Module("USER-MIB").
		Import("SOURCE-MIB", "system").
		ObjectType(testutil.ObjectTypeDef{
			Name:   "sysThing",
			Syntax: "DisplayString",
			Access: "read-only",
			Status: "current",
			Parent: "system",
			Arcs:   []uint32{1},
		}))

	res, err := Resolve(recs, DefaultConfig(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mib.ErrUnresolved))

	var missing *mib.MissingDependenciesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"SOURCE-MIB"}, missing.Modules)
	assert.Equal(t, 1, missing.Unresolved)
	assert.Equal(t, "Missing MIB dependencies: SOURCE-MIB. Orphaned nodes: 1", err.Error())

	require.NotNil(t, res)
	assert.Equal(t, PhaseFailed, res.Phase)
	assert.Nil(t, res.Forest)
	assert.Equal(t, 1, res.Unresolved)
	assert.Contains(t, diagCodes(res), types.DiagOrphan)
}

func TestResolveMissingDependenciesSortedAndCounted(t *testing.T) {
	recs := records(t,
		testutil.Module("USER-MIB").
			Import("Z-MIB", "zRoot").
			Import("M-MIB", "mRoot").
			Identifier("u1", "zRoot", 1).
			Identifier("u2", "mRoot", 1).
			Identifier("u3", "zRoot", 2).
			Identifier("u4", "u3", 1))

	_, err := Resolve(recs, DefaultConfig(), nil)
	var missing *mib.MissingDependenciesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"M-MIB", "Z-MIB"}, missing.Modules)
	assert.Equal(t, 3, missing.Unresolved, "u4 found its parent and is not counted")
}

func TestResolveMissingDependencyCountsOnlyOrphans(t *testing.T) {
	recs := records(t, testutil.Module("USER-MIB").
		Import("SOURCE-MIB", "system").
		Identifier("z", "y", 1).
		Identifier("y", "x", 1).
		Identifier("x", "system", 1))

	res, err := Resolve(recs, DefaultConfig(), nil)
	var missing *mib.MissingDependenciesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"SOURCE-MIB"}, missing.Modules)
	assert.Equal(t, 1, missing.Unresolved)
	assert.Equal(t, "Missing MIB dependencies: SOURCE-MIB. Orphaned nodes: 1", err.Error())
	assert.Equal(t, 1, res.Unresolved)
	assert.Empty(t, res.Cycles)
}

func TestResolveRescueConvergence(t *testing.T) {
	c := testutil.Module("C-MIB").
		Import("B-MIB", "bNode").
		Identifier("cNode", "bNode", 9)

	tests := []struct {
		name   string
		order  []fmt.Stringer
		rounds int
	}{
		{"dependency order", []fmt.Stringer{moduleA(), moduleB(), c}, 0},
		{"child before parent", []fmt.Stringer{moduleB(), moduleA()}, 0},
		{"fully reversed", []fmt.Stringer{c, moduleB(), moduleA()}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustResolve(t, records(t, tt.order...))
			assert.Equal(t, tt.rounds, res.RescueRounds)
			assert.LessOrEqual(t, res.RescueRounds, DefaultRescueRounds)
			_, ok := res.Forest.FindInModule("B-MIB", "bLeaf")
			assert.True(t, ok)
		})
	}
}

// reverseChain declares n<depth> down to n1 under enterprises, each
// child before its parent.
func reverseChain(depth int) *testutil.ModuleBuilder {
	b := testutil.Module("R-MIB")
	for i := depth; i > 1; i-- {
		b.Identifier(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i-1), 1)
	}
	return b.Identifier("n1", "enterprises", 7)
}

func TestResolveDeepReverseChain(t *testing.T) {
	for _, rounds := range []int{DefaultRescueRounds, 0} {
		t.Run(fmt.Sprintf("rescue=%d", rounds), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxRescueRounds = rounds

			res, err := Resolve(records(t, reverseChain(6)), cfg, nil)
			require.NoError(t, err)
			assert.Equal(t, 0, res.RescueRounds)

			n, ok := res.Forest.FindInModule("R-MIB", "n6")
			require.True(t, ok)
			assert.Equal(t, "1.3.6.1.4.1.7.1.1.1.1.1", n.OID)
			assert.Equal(t, "1.3.6.1.4.1.7.1.1.1.1", n.ParentOID)
		})
	}
}

func TestResolveRescueRoundCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRescueRounds = 0

	res := mustResolveWith(t, records(t, moduleB(), moduleA()), cfg)
	assert.Equal(t, 0, res.RescueRounds)

	res, err := Resolve(records(t, testutil.Module("T-MIB").Identifier("lost", "nowhere", 1)), cfg, nil)
	var orphans *mib.UnresolvedOrphansError
	require.ErrorAs(t, err, &orphans)
	assert.Equal(t, []string{"T-MIB::lost -> nowhere"}, orphans.Orphans)
	assert.Equal(t, 0, res.RescueRounds)
}

func TestResolveStopsWhenNoProgress(t *testing.T) {
	recs := records(t, testutil.Module("T-MIB").Identifier("lost", "nowhere", 1))
	res, err := Resolve(recs, DefaultConfig(), nil)

	var orphans *mib.UnresolvedOrphansError
	require.True(t, errors.As(err, &orphans))
	assert.Equal(t, 1, orphans.Unresolved)
	assert.Equal(t, "Unresolved nodes: 1 (T-MIB::lost -> nowhere)", err.Error())
	assert.Equal(t, 1, res.RescueRounds, "the first rescue round makes no progress")
}

func TestResolveImportSymbolMissing(t *testing.T) {
	recs := records(t,
		testutil.Module("PRESENT-MIB").Identifier("present", "enterprises", 4),
		testutil.Module("USER-MIB").
			Import("PRESENT-MIB", "absent").
			Identifier("child", "absent", 1))

	res, err := Resolve(recs, DefaultConfig(), nil)
	var orphans *mib.UnresolvedOrphansError
	require.True(t, errors.As(err, &orphans), "a present module is never missing")
	assert.Equal(t, []string{types.DiagImportSymbolMissing}, diagCodes(res))
}

func TestResolveBaseModuleImportsNeverMissing(t *testing.T) {
	recs := records(t, testutil.Module("USER-MIB").
		Import("SNMPv2-SMI", "system").
		Identifier("child", "system", 1))

	res, err := Resolve(recs, DefaultConfig(), nil)
	var orphans *mib.UnresolvedOrphansError
	require.True(t, errors.As(err, &orphans))
	assert.Equal(t, []string{types.DiagImportSymbolMissing}, diagCodes(res))
}

func TestResolveAmbientFallback(t *testing.T) {
	vendor := testutil.Module("VENDOR-MIB").Identifier("vendor", "enterprises", 77)
	user := testutil.Module("USER-MIB").Identifier("product", "vendor", 1)

	res := mustResolve(t, records(t, vendor, user))
	n, ok := res.Forest.FindInModule("USER-MIB", "product")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1.4.1.77.1", n.OID)

	cfg := DefaultConfig()
	cfg.AmbientFallback = false
	_, err := Resolve(records(t, vendor, user), cfg, nil)
	assert.ErrorIs(t, err, mib.ErrUnresolved)
}

func TestResolveAmbiguousAmbientParent(t *testing.T) {
	one := testutil.Module("ONE-MIB").Identifier("shared", "enterprises", 1)
	two := testutil.Module("TWO-MIB").Identifier("shared", "enterprises", 2)

	res, err := Resolve(records(t, one, two,
		testutil.Module("USER-MIB").Identifier("child", "shared", 1)), DefaultConfig(), nil)
	assert.ErrorIs(t, err, mib.ErrUnresolved)
	assert.Equal(t, []string{types.DiagAmbiguousParent}, diagCodes(res))

	res = mustResolve(t, records(t, one, two,
		testutil.Module("USER-MIB").Import("TWO-MIB", "shared").Identifier("child", "shared", 1)))
	n, ok := res.Forest.FindInModule("USER-MIB", "child")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1.4.1.2.1", n.OID)
}

func TestResolveSameModuleBeatsImport(t *testing.T) {
	res := mustResolve(t, records(t,
		testutil.Module("OTHER-MIB").Identifier("node", "enterprises", 1),
		testutil.Module("SELF-MIB").
			Import("OTHER-MIB", "node").
			Identifier("node", "enterprises", 2).
			Identifier("child", "node", 1)))

	n, ok := res.Forest.FindInModule("SELF-MIB", "child")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1.4.1.2.1", n.OID)
}

func TestResolveCycleSafety(t *testing.T) {
	recs := records(t, testutil.Module("LOOP-MIB").
		Identifier("a", "b", 1).
		Identifier("b", "a", 1).
		Identifier("self", "self", 2).
		Identifier("below", "a", 5).
		Identifier("fine", "enterprises", 9).
		Identifier("fineChild", "fine", 1))

	res := mustResolve(t, recs)

	require.Len(t, res.Cycles, 2)
	assert.Equal(t, []string{"LOOP-MIB::a", "LOOP-MIB::b"}, res.Cycles[0].Members)
	assert.Equal(t, []string{"LOOP-MIB::self"}, res.Cycles[1].Members)
	assert.Empty(t, res.Cycles[0].Via)

	for _, name := range []string{"a", "b", "self", "below"} {
		_, ok := res.Forest.FindInModule("LOOP-MIB", name)
		assert.False(t, ok, "%s should be left out", name)
	}
	n, ok := res.Forest.FindInModule("LOOP-MIB", "fineChild")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1.4.1.9.1", n.OID)

	assert.Equal(t, []string{types.DiagCycle, types.DiagCycle, types.DiagCycle}, diagCodes(res))
}

func TestResolveLoopBesideReverseChain(t *testing.T) {
	loop := reverseChain(5).
		Identifier("hang", "l1", 4).
		Identifier("l1", "l2", 1).
		Identifier("l2", "l1", 2)

	res := mustResolve(t, records(t, loop))

	require.Len(t, res.Cycles, 1)
	assert.Equal(t, []string{"R-MIB::l1", "R-MIB::l2"}, res.Cycles[0].Members)
	for _, name := range []string{"hang", "l1", "l2"} {
		_, ok := res.Forest.FindInModule("R-MIB", name)
		assert.False(t, ok, "%s should be left out", name)
	}
	_, ok := res.Forest.FindInModule("R-MIB", "n5")
	assert.True(t, ok)
	assert.Equal(t, baseline.Len()+5, res.Forest.Len())
	assert.Equal(t, []string{types.DiagCycle, types.DiagCycle}, diagCodes(res))
}

func conflictFixture(description string) *testutil.ModuleBuilder {
	return testutil.Module("X-MIB").
		Identifier("xRoot", "enterprises", 5).
		ObjectType(testutil.ObjectTypeDef{
			Name:        "xValue",
			Syntax:      "Integer32",
			Access:      "read-only",
			Status:      "current",
			Description: description,
			Parent:      "xRoot",
			Arcs:        []uint32{1},
		})
}

func TestResolveConflictFieldReporting(t *testing.T) {
	res := mustResolve(t, records(t, conflictFixture("Old text."), conflictFixture("New text.")))

	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, "X-MIB", c.Module)
	assert.Equal(t, "xValue", c.Name)
	assert.Equal(t, "1.3.6.1.4.1.5.1", c.OID)
	assert.Equal(t, "f0.mib", c.FileA)
	assert.Equal(t, "f1.mib", c.FileB)
	assert.Equal(t, []mib.FieldDiff{{Field: "description", A: "Old text.", B: "New text."}}, c.Fields)

	res = mustResolve(t, records(t, conflictFixture("Same."), conflictFixture("Same.")))
	assert.Empty(t, res.Conflicts)
	assert.Empty(t, res.Diagnostics, "identical restatements are not duplicates worth reporting")
}

func TestResolveIdempotent(t *testing.T) {
	recs := records(t, moduleB(), moduleA(), conflictFixture("one"), conflictFixture("two"))
	before := fmt.Sprintf("%+v", recs)

	first := mustResolve(t, recs)
	second := mustResolve(t, recs)

	assert.Equal(t, first.Forest.Roots, second.Forest.Roots)
	assert.Equal(t, first.Conflicts, second.Conflicts)
	assert.Equal(t, before, fmt.Sprintf("%+v", recs), "records are not modified")
}

func TestResolveBaselineRestatement(t *testing.T) {
	smi := testutil.Module("SNMPv2-SMI").
		Identifier("org", "iso", 3).
		Identifier("dod", "org", 6).
		Identifier("enterprises", "private", 1).
		Raw("zeroDotZero OBJECT IDENTIFIER ::= { 0 0 }").
		Raw(`mib-2 OBJECT-IDENTITY
    STATUS current
    DESCRIPTION "The MIB module for managing TCP/IP-based internets."
    ::= { mgmt 1 }`)

	res := mustResolve(t, records(t, smi))
	assert.Equal(t, baseline.Len(), res.Forest.Len())
	assert.Empty(t, res.Diagnostics)

	n, ok := res.Forest.Lookup("1.3.6.1.2.1")
	require.True(t, ok)
	assert.Equal(t, "mib-2", n.Name)
	assert.Equal(t, mib.KindBaseline, n.Kind)
	assert.Equal(t, "current", n.Status)
	assert.Equal(t, "The MIB module for managing TCP/IP-based internets.", n.Description)
}

func TestResolveBaselineRedefinition(t *testing.T) {
	res := mustResolve(t, records(t, testutil.Module("ODD-MIB").
		Identifier("enterprises", "experimental", 99).
		Identifier("oddChild", "enterprises", 1)))

	assert.Equal(t, []string{types.DiagBaselineRedefinition}, diagCodes(res))

	seed, ok := res.Forest.Lookup("1.3.6.1.4.1")
	require.True(t, ok)
	assert.Equal(t, mib.KindBaseline, seed.Kind)

	odd, ok := res.Forest.FindInModule("ODD-MIB", "enterprises")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1.3.99", odd.OID)

	child, ok := res.Forest.FindInModule("ODD-MIB", "oddChild")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1.3.99.1", child.OID, "same-module lookup comes before the seed")
}

func TestResolveDuplicatePolicy(t *testing.T) {
	first := testutil.Module("DUP-MIB").
		ObjectType(testutil.ObjectTypeDef{Name: "x", Syntax: "Integer32", Parent: "enterprises", Arcs: []uint32{1}})
	second := testutil.Module("DUP-MIB").
		ObjectType(testutil.ObjectTypeDef{Name: "x", Syntax: "Integer32", Status: "current", Parent: "enterprises", Arcs: []uint32{2}})

	tests := []struct {
		policy DuplicatePolicy
		oid    string
		status string
		file   string
	}{
		{FirstWins, "1.3.6.1.4.1.1", "current", "f0.mib"},
		{LastWins, "1.3.6.1.4.1.2", "current", "f1.mib"},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Duplicates = tt.policy
			res, err := Resolve(records(t, first, second), cfg, nil)
			require.NoError(t, err)

			n, ok := res.Forest.FindInModule("DUP-MIB", "x")
			require.True(t, ok)
			assert.Equal(t, tt.oid, n.OID)
			assert.Equal(t, tt.status, n.Status, "first-wins fills empty fields")
			assert.Equal(t, tt.file, n.SourceFile)
			assert.Len(t, res.Forest.Find("x"), 1)
			assert.Equal(t, []string{types.DiagDuplicateDeclaration}, diagCodes(res))
		})
	}
}

func TestResolveRootAnchored(t *testing.T) {
	res := mustResolve(t, records(t, testutil.Module("ABS-MIB").
		Raw("absolute OBJECT IDENTIFIER ::= { 1 3 6 1 4 1 4242 }").
		Raw("elsewhere OBJECT IDENTIFIER ::= { 5 7 }").
		Identifier("under", "elsewhere", 1)))

	n, ok := res.Forest.Lookup("1.3.6.1.4.1.4242")
	require.True(t, ok)
	assert.Equal(t, "absolute", n.Name)
	assert.Equal(t, "1.3.6.1.4.1", n.ParentOID)

	require.Len(t, res.Forest.Roots, 4)
	extra := res.Forest.Roots[3]
	assert.Equal(t, "elsewhere", extra.Name)
	assert.Equal(t, "5.7", extra.OID)
	assert.Empty(t, extra.ParentOID)

	n, ok = res.Forest.Lookup("5.7.1")
	require.True(t, ok)
	assert.Equal(t, "under", n.Name)
}

func TestResolveRootAnchoredSameOID(t *testing.T) {
	res := mustResolve(t, records(t, testutil.Module("ABS-MIB").
		Raw("first OBJECT IDENTIFIER ::= { 5 7 }").
		Raw("second OBJECT IDENTIFIER ::= { 5 7 }")))

	assert.Equal(t, []string{types.DiagDuplicateDeclaration}, diagCodes(res))
	assert.Contains(t, res.Diagnostics[0].Message, "ABS-MIB::second is placed at 5.7, already taken by ABS-MIB::first")

	require.Len(t, res.Forest.Roots, 5)
	n, ok := res.Forest.Lookup("5.7")
	require.True(t, ok)
	assert.Equal(t, "first", n.Name)
}

func TestResolveTrapType(t *testing.T) {
	res := mustResolve(t, records(t, testutil.Module("TRAP-MIB").
		Identifier("acme", "enterprises", 3).
		Raw(`acmeReboot TRAP-TYPE
    ENTERPRISE acme
    DESCRIPTION "Rebooted."
    ::= 4`)))

	n, ok := res.Forest.Lookup("1.3.6.1.4.1.3.0.4")
	require.True(t, ok)
	assert.Equal(t, "acmeReboot", n.Name)
	assert.Equal(t, mib.KindNotification, n.Kind)
}

func TestResolveSiblingOrder(t *testing.T) {
	res := mustResolve(t, records(t, testutil.Module("ORD-MIB").
		Identifier("c", "enterprises", 10).
		Identifier("a", "enterprises", 2).
		Identifier("b", "enterprises", 2, 1)))

	ent, ok := res.Forest.Lookup("1.3.6.1.4.1")
	require.True(t, ok)
	var names []string
	for _, c := range ent.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}
