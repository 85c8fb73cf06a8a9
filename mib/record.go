package mib

import "slices"

// Record is the unresolved content of one module as extracted from one
// source file. Several records may share a module name.
type Record struct {
	Name       string `json:"name" yaml:"name" msgpack:"name"`
	SourceFile string `json:"source_file,omitempty" yaml:"source_file,omitempty" msgpack:"source_file,omitempty"`
	// Imports maps each imported symbol to the module it comes from.
	Imports      map[string]string `json:"imports,omitempty" yaml:"imports,omitempty" msgpack:"imports,omitempty"`
	Declarations []Declaration     `json:"declarations,omitempty" yaml:"declarations,omitempty" msgpack:"declarations,omitempty"`
	Types        []TypeAlias       `json:"types,omitempty" yaml:"types,omitempty" msgpack:"types,omitempty"`
	Diagnostics  []Diagnostic      `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
}

// Declaration returns the first declaration with the given name.
func (r *Record) Declaration(name string) (Declaration, bool) {
	for _, d := range r.Declarations {
		if d.Name == name {
			return d, true
		}
	}
	return Declaration{}, false
}

// ImportsFrom returns the sorted set of modules this record imports from.
func (r *Record) ImportsFrom() []string {
	seen := make(map[string]struct{}, len(r.Imports))
	var out []string
	for _, mod := range r.Imports {
		if _, ok := seen[mod]; ok {
			continue
		}
		seen[mod] = struct{}{}
		out = append(out, mod)
	}
	slices.Sort(out)
	return out
}

// Declaration is one named node asserted by a module, anchored to a
// parent name plus a relative suffix. Nothing here is resolved.
type Declaration struct {
	Name string `json:"name" yaml:"name" msgpack:"name"`
	// Parent is the unresolved parent name. Empty when the value is
	// anchored at the top of the tree, e.g. "{ 1 3 }".
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty" msgpack:"parent,omitempty"`
	// Suffix holds one arc, or several for a multi-level jump.
	Suffix      []uint32 `json:"suffix" yaml:"suffix,flow" msgpack:"suffix"`
	Kind        Kind     `json:"kind" yaml:"kind" msgpack:"kind"`
	Syntax      string   `json:"syntax,omitempty" yaml:"syntax,omitempty" msgpack:"syntax,omitempty"`
	Access      string   `json:"access,omitempty" yaml:"access,omitempty" msgpack:"access,omitempty"`
	Status      string   `json:"status,omitempty" yaml:"status,omitempty" msgpack:"status,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	Line        int      `json:"line,omitempty" yaml:"line,omitempty" msgpack:"line,omitempty"`
}

// TypeAlias is a named syntax definition (type assignment or
// TEXTUAL-CONVENTION) with optional enumerations or range constraints.
type TypeAlias struct {
	Name              string        `json:"name" yaml:"name" msgpack:"name"`
	Syntax            string        `json:"syntax" yaml:"syntax" msgpack:"syntax"`
	Enums             []NamedNumber `json:"enums,omitempty" yaml:"enums,omitempty" msgpack:"enums,omitempty"`
	Ranges            []Range       `json:"ranges,omitempty" yaml:"ranges,omitempty" msgpack:"ranges,omitempty"`
	DisplayHint       string        `json:"display_hint,omitempty" yaml:"display_hint,omitempty" msgpack:"display_hint,omitempty"`
	Status            string        `json:"status,omitempty" yaml:"status,omitempty" msgpack:"status,omitempty"`
	Description       string        `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	TextualConvention bool          `json:"textual_convention,omitempty" yaml:"textual_convention,omitempty" msgpack:"textual_convention,omitempty"`
}

// NamedNumber is a label(value) pair from an enumeration or BITS list.
type NamedNumber struct {
	Name  string `json:"name" yaml:"name" msgpack:"name"`
	Value int64  `json:"value" yaml:"value" msgpack:"value"`
}

// Range is a value or size constraint. Min == Max for a single value.
type Range struct {
	Min  int64 `json:"min" yaml:"min" msgpack:"min"`
	Max  int64 `json:"max" yaml:"max" msgpack:"max"`
	Size bool  `json:"size,omitempty" yaml:"size,omitempty" msgpack:"size,omitempty"`
}
