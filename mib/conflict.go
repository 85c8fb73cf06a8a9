package mib

// Conflict reports a declaration that two source files define
// differently under the same module name.
type Conflict struct {
	Module string      `json:"module" yaml:"module" msgpack:"module"`
	Name   string      `json:"name" yaml:"name" msgpack:"name"`
	OID    string      `json:"oid,omitempty" yaml:"oid,omitempty" msgpack:"oid,omitempty"`
	FileA  string      `json:"file_a" yaml:"file_a" msgpack:"file_a"`
	FileB  string      `json:"file_b" yaml:"file_b" msgpack:"file_b"`
	Fields []FieldDiff `json:"fields" yaml:"fields" msgpack:"fields"`
}

// FieldDiff is one differing field of a Conflict.
type FieldDiff struct {
	Field string `json:"field" yaml:"field" msgpack:"field"`
	A     string `json:"a" yaml:"a" msgpack:"a"`
	B     string `json:"b" yaml:"b" msgpack:"b"`
}
