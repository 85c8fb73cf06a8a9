// Package baseline holds the well-known OID roots every resolved tree
// anchors to, and the names of the SMI base modules that define them.
package baseline

import (
	"slices"

	"github.com/golangsnmp/mibtree/mib"
)

// Entry is one seed node: a name with a fixed OID. Parent is empty for
// the three top-level arcs.
type Entry struct {
	Name   string
	Parent string
	OID    mib.Oid
}

// Arc returns the entry's last arc, its suffix under Parent.
func (e Entry) Arc() uint32 {
	return e.OID.LastArc()
}

// Parents always precede their children.
var entries = []Entry{
	{"ccitt", "", mib.Oid{0}},
	{"iso", "", mib.Oid{1}},
	{"joint-iso-ccitt", "", mib.Oid{2}},
	{"zeroDotZero", "ccitt", mib.Oid{0, 0}},
	{"org", "iso", mib.Oid{1, 3}},
	{"dod", "org", mib.Oid{1, 3, 6}},
	{"internet", "dod", mib.Oid{1, 3, 6, 1}},
	{"directory", "internet", mib.Oid{1, 3, 6, 1, 1}},
	{"mgmt", "internet", mib.Oid{1, 3, 6, 1, 2}},
	{"mib-2", "mgmt", mib.Oid{1, 3, 6, 1, 2, 1}},
	{"transmission", "mib-2", mib.Oid{1, 3, 6, 1, 2, 1, 10}},
	{"snmp", "mib-2", mib.Oid{1, 3, 6, 1, 2, 1, 11}},
	{"experimental", "internet", mib.Oid{1, 3, 6, 1, 3}},
	{"private", "internet", mib.Oid{1, 3, 6, 1, 4}},
	{"enterprises", "private", mib.Oid{1, 3, 6, 1, 4, 1}},
	{"security", "internet", mib.Oid{1, 3, 6, 1, 5}},
	{"snmpV2", "internet", mib.Oid{1, 3, 6, 1, 6}},
	{"snmpDomains", "snmpV2", mib.Oid{1, 3, 6, 1, 6, 1}},
	{"snmpProxys", "snmpV2", mib.Oid{1, 3, 6, 1, 6, 2}},
	{"snmpModules", "snmpV2", mib.Oid{1, 3, 6, 1, 6, 3}},
}

var byName = func() map[string]int {
	m := make(map[string]int, len(entries))
	for i, e := range entries {
		m[e.Name] = i
	}
	return m
}()

// Entries returns a copy of the seed table, parents first.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Name: e.Name, Parent: e.Parent, OID: slices.Clone(e.OID)}
	}
	return out
}

// Lookup returns the seed entry with the given name.
func Lookup(name string) (Entry, bool) {
	i, ok := byName[name]
	if !ok {
		return Entry{}, false
	}
	e := entries[i]
	e.OID = slices.Clone(e.OID)
	return e, true
}

// LookupOID returns the seed entry at the given OID.
func LookupOID(oid mib.Oid) (Entry, bool) {
	for _, e := range entries {
		if e.OID.Equal(oid) {
			return Lookup(e.Name)
		}
	}
	return Entry{}, false
}

// Len returns the number of seed entries.
func Len() int {
	return len(entries)
}

// Order matches the SMI base module definitions: SMIv2 first, then SMIv1.
var baseModuleNames = []string{
	"SNMPv2-SMI",
	"SNMPv2-TC",
	"SNMPv2-CONF",
	"RFC1155-SMI",
	"RFC1065-SMI",
	"RFC-1212",
	"RFC-1215",
}

// IsBaseModule reports whether name is an SMI base module. Base modules
// only define the seed OIDs, types and MACROs, so imports from them never
// count as missing dependencies.
func IsBaseModule(name string) bool {
	return slices.Contains(baseModuleNames, name)
}

// BaseModules returns the names of the SMI base modules.
func BaseModules() []string {
	return slices.Clone(baseModuleNames)
}
