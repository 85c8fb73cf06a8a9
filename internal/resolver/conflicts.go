package resolver

import (
	"cmp"
	"slices"
	"strings"

	"github.com/golangsnmp/mibtree/mib"
)

// conflictField is one compared declaration field.
type conflictField struct {
	name string
	get  func(d *mib.Declaration) string
}

// conflictFields is the full compared field set, in report order.
var conflictFields = []conflictField{
	{"kind", func(d *mib.Declaration) string {
		if d.Kind == mib.KindUnknown {
			return ""
		}
		return d.Kind.String()
	}},
	{"syntax", func(d *mib.Declaration) string { return d.Syntax }},
	{"access", func(d *mib.Declaration) string { return d.Access }},
	{"status", func(d *mib.Declaration) string { return d.Status }},
	{"description", func(d *mib.Declaration) string { return strings.Join(strings.Fields(d.Description), " ") }},
}

// OIDLookup returns the resolved OID of a module's declaration, or ""
// if it has none.
type OIDLookup func(module, name string) string

// DetectConflicts compares records that share a module name. For every
// pair of such records, each declaration both define is compared field
// by field; a field differs when both sides are non-empty and unequal.
// Reference-only declarations (plain identifiers, module identities and
// object identities) are skipped. Records are paired in source file
// order so the result is stable. oid may be nil.
func DetectConflicts(records []mib.Record, oid OIDLookup) []mib.Conflict {
	groups := make(map[string][]*mib.Record)
	var names []string
	for i := range records {
		rec := &records[i]
		if _, ok := groups[rec.Name]; !ok {
			names = append(names, rec.Name)
		}
		groups[rec.Name] = append(groups[rec.Name], rec)
	}
	slices.Sort(names)

	var out []mib.Conflict
	for _, name := range names {
		group := groups[name]
		if len(group) < 2 {
			continue
		}
		slices.SortStableFunc(group, func(a, b *mib.Record) int {
			return cmp.Compare(a.SourceFile, b.SourceFile)
		})
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				out = append(out, compareRecords(group[i], group[j], oid)...)
			}
		}
	}
	return out
}

func compareRecords(a, b *mib.Record, oid OIDLookup) []mib.Conflict {
	var out []mib.Conflict
	for i := range a.Declarations {
		da := &a.Declarations[i]
		db, ok := b.Declaration(da.Name)
		if !ok || da.Kind.IsReferenceOnly() || db.Kind.IsReferenceOnly() {
			continue
		}
		diffs := diffDeclarations(da, &db)
		if len(diffs) == 0 {
			continue
		}
		c := mib.Conflict{
			Module: a.Name,
			Name:   da.Name,
			FileA:  a.SourceFile,
			FileB:  b.SourceFile,
			Fields: diffs,
		}
		if oid != nil {
			c.OID = oid(a.Name, da.Name)
		}
		out = append(out, c)
	}
	return out
}

func diffDeclarations(a, b *mib.Declaration) []mib.FieldDiff {
	var diffs []mib.FieldDiff
	for _, f := range conflictFields {
		va, vb := f.get(a), f.get(b)
		if va == "" || vb == "" || va == vb {
			continue
		}
		diffs = append(diffs, mib.FieldDiff{Field: f.name, A: va, B: vb})
	}
	return diffs
}
