// Package testutil builds synthetic MIB module text for tests.
package testutil

import (
	"fmt"
	"strings"
)

// ModuleBuilder assembles SMIv2 module text for tests. Declarations are
// emitted in the order they are added.
type ModuleBuilder struct {
	name    string
	imports []importGroup
	body    []string
}

type importGroup struct {
	from    string
	symbols []string
}

// ObjectTypeDef describes an OBJECT-TYPE declaration for ModuleBuilder.
// Empty clause fields are omitted from the generated text.
type ObjectTypeDef struct {
	Name        string
	Syntax      string
	Access      string
	Status      string
	Description string
	Parent      string
	Arcs        []uint32
}

// Module starts a builder for a module with the given name.
func Module(name string) *ModuleBuilder {
	return &ModuleBuilder{name: name}
}

// Import adds an import clause. Repeated calls with the same source
// module extend the same group.
func (b *ModuleBuilder) Import(from string, symbols ...string) *ModuleBuilder {
	for i := range b.imports {
		if b.imports[i].from == from {
			b.imports[i].symbols = append(b.imports[i].symbols, symbols...)
			return b
		}
	}
	b.imports = append(b.imports, importGroup{from: from, symbols: symbols})
	return b
}

// Identifier adds "name OBJECT IDENTIFIER ::= { parent arcs... }".
func (b *ModuleBuilder) Identifier(name, parent string, arcs ...uint32) *ModuleBuilder {
	b.body = append(b.body, fmt.Sprintf("%s OBJECT IDENTIFIER ::= %s", name, oidValue(parent, arcs)))
	return b
}

// ModuleIdentity adds a minimal MODULE-IDENTITY declaration.
func (b *ModuleBuilder) ModuleIdentity(name, parent string, arcs ...uint32) *ModuleBuilder {
	b.body = append(b.body, fmt.Sprintf(`%s MODULE-IDENTITY
    LAST-UPDATED "202401010000Z"
    ORGANIZATION "test"
    CONTACT-INFO "test"
    DESCRIPTION "test module"
    ::= %s`, name, oidValue(parent, arcs)))
	return b
}

// ObjectType adds an OBJECT-TYPE declaration.
func (b *ModuleBuilder) ObjectType(def ObjectTypeDef) *ModuleBuilder {
	var sb strings.Builder
	sb.WriteString(def.Name)
	sb.WriteString(" OBJECT-TYPE\n")
	if def.Syntax != "" {
		fmt.Fprintf(&sb, "    SYNTAX %s\n", def.Syntax)
	}
	if def.Access != "" {
		fmt.Fprintf(&sb, "    MAX-ACCESS %s\n", def.Access)
	}
	if def.Status != "" {
		fmt.Fprintf(&sb, "    STATUS %s\n", def.Status)
	}
	if def.Description != "" {
		fmt.Fprintf(&sb, "    DESCRIPTION %q\n", def.Description)
	}
	sb.WriteString("    ::= ")
	sb.WriteString(oidValue(def.Parent, def.Arcs))
	b.body = append(b.body, sb.String())
	return b
}

// Notification adds a NOTIFICATION-TYPE declaration.
func (b *ModuleBuilder) Notification(name, parent string, arcs ...uint32) *ModuleBuilder {
	b.body = append(b.body, fmt.Sprintf(`%s NOTIFICATION-TYPE
    STATUS current
    DESCRIPTION "test notification"
    ::= %s`, name, oidValue(parent, arcs)))
	return b
}

// Raw appends text to the module body verbatim.
func (b *ModuleBuilder) Raw(text string) *ModuleBuilder {
	b.body = append(b.body, text)
	return b
}

// String renders the module text.
func (b *ModuleBuilder) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s DEFINITIONS ::= BEGIN\n\n", b.name)
	if len(b.imports) > 0 {
		sb.WriteString("IMPORTS\n")
		for _, g := range b.imports {
			fmt.Fprintf(&sb, "    %s\n        FROM %s\n", strings.Join(g.symbols, ", "), g.from)
		}
		sb.WriteString(";\n\n")
	}
	for _, decl := range b.body {
		sb.WriteString(decl)
		sb.WriteString("\n\n")
	}
	sb.WriteString("END\n")
	return sb.String()
}

// Bytes renders the module text as bytes.
func (b *ModuleBuilder) Bytes() []byte {
	return []byte(b.String())
}

func oidValue(parent string, arcs []uint32) string {
	parts := make([]string, 0, len(arcs)+1)
	if parent != "" {
		parts = append(parts, parent)
	}
	for _, a := range arcs {
		parts = append(parts, fmt.Sprint(a))
	}
	return "{ " + strings.Join(parts, " ") + " }"
}
