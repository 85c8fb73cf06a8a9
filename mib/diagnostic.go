package mib

import "fmt"

// Diagnostic represents an issue found during extraction or resolution.
// Diagnostics never stop a run; failures are reported as errors.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity" msgpack:"severity"`
	Code     string   `json:"code" yaml:"code" msgpack:"code"` // e.g., "malformed-oid", "baseline-redefinition"
	Message  string   `json:"message" yaml:"message" msgpack:"message"`
	Module   string   `json:"module,omitempty" yaml:"module,omitempty" msgpack:"module,omitempty"`
	File     string   `json:"file,omitempty" yaml:"file,omitempty" msgpack:"file,omitempty"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty" msgpack:"line,omitempty"` // 1-based, 0 if not applicable
}

func (d Diagnostic) String() string {
	loc := d.Module
	if d.File != "" {
		loc = d.File
	}
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
	}
	if loc == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s [%s] %s", loc, d.Severity, d.Code, d.Message)
}

// Cycle describes nodes whose parent chain loops back on itself. Nodes
// in a cycle are left out of the forest.
type Cycle struct {
	// Members lists the nodes as "MODULE::name", in chain order.
	Members []string `json:"members" yaml:"members" msgpack:"members"`
	// Via is the OID of the node the loop was entered from, empty for
	// cycles not reachable from any root.
	Via string `json:"via,omitempty" yaml:"via,omitempty" msgpack:"via,omitempty"`
}
