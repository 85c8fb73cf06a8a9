package mib

import (
	"iter"
	"strings"
)

// Node is one resolved point in the OID tree. Nodes are plain values:
// the parent is referenced by OID string and children are held inline,
// so a Node carries no link back into resolution state.
type Node struct {
	Name        string `json:"name" yaml:"name" msgpack:"name"`
	OID         string `json:"oid" yaml:"oid" msgpack:"oid"`
	ParentOID   string `json:"parent_oid,omitempty" yaml:"parent_oid,omitempty" msgpack:"parent_oid,omitempty"`
	Kind        Kind   `json:"kind" yaml:"kind" msgpack:"kind"`
	Syntax      string `json:"syntax,omitempty" yaml:"syntax,omitempty" msgpack:"syntax,omitempty"`
	Access      string `json:"access,omitempty" yaml:"access,omitempty" msgpack:"access,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty" msgpack:"status,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	Module      string `json:"module,omitempty" yaml:"module,omitempty" msgpack:"module,omitempty"`
	SourceFile  string `json:"source_file,omitempty" yaml:"source_file,omitempty" msgpack:"source_file,omitempty"`
	Children    []Node `json:"children,omitempty" yaml:"children,omitempty" msgpack:"children,omitempty"`
}

// Arcs parses the node's OID. It returns nil for a malformed OID.
func (n *Node) Arcs() Oid {
	oid, err := ParseOID(n.OID)
	if err != nil {
		return nil
	}
	return oid
}

// QualifiedName returns "MODULE::name", or the bare name for baseline nodes.
func (n *Node) QualifiedName() string {
	if n.Module == "" {
		return n.Name
	}
	return n.Module + "::" + n.Name
}

// Subtree returns an iterator over this node and all its descendants, depth-first.
func (n *Node) Subtree() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.yieldAll(yield)
	}
}

func (n *Node) yieldAll(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].yieldAll(yield) {
			return false
		}
	}
	return true
}

func (n *Node) String() string {
	return n.Name + "(" + n.OID + ")"
}

// Forest is the resolved OID tree: one or more roots with an index by
// OID and by name. Build it with NewForest; the index refers into Roots
// so Roots must not be modified afterwards.
type Forest struct {
	Roots  []Node
	byOID  map[string]*Node
	byName map[string][]*Node
	size   int
}

// NewForest indexes the given roots.
func NewForest(roots []Node) *Forest {
	f := &Forest{
		Roots:  roots,
		byOID:  make(map[string]*Node),
		byName: make(map[string][]*Node),
	}
	for n := range f.All() {
		f.size++
		if _, dup := f.byOID[n.OID]; !dup {
			f.byOID[n.OID] = n
		}
		f.byName[n.Name] = append(f.byName[n.Name], n)
	}
	return f
}

// Len returns the number of nodes in the forest.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return f.size
}

// All returns an iterator over every node, roots first, depth-first.
func (f *Forest) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if f == nil {
			return
		}
		for i := range f.Roots {
			if !f.Roots[i].yieldAll(yield) {
				return
			}
		}
	}
}

// Lookup returns the node at the given dotted OID.
func (f *Forest) Lookup(oid string) (*Node, bool) {
	if f == nil {
		return nil, false
	}
	n, ok := f.byOID[strings.TrimPrefix(oid, ".")]
	return n, ok
}

// LongestPrefix returns the deepest node whose OID is a prefix of oid,
// or nil if no root matches.
func (f *Forest) LongestPrefix(oid Oid) *Node {
	for i := len(oid); i > 0; i-- {
		if n, ok := f.Lookup(oid[:i].String()); ok {
			return n
		}
	}
	return nil
}

// Find returns every node with the given name, in forest order.
func (f *Forest) Find(name string) []*Node {
	if f == nil {
		return nil
	}
	return f.byName[name]
}

// FindInModule returns the node declared as name by module.
func (f *Forest) FindInModule(module, name string) (*Node, bool) {
	for _, n := range f.Find(name) {
		if n.Module == module {
			return n, true
		}
	}
	return nil, false
}

// Walk visits nodes depth-first. fn receives the node and its depth
// (roots are depth 0); returning false skips the node's children.
func (f *Forest) Walk(fn func(n *Node, depth int) bool) {
	if f == nil {
		return
	}
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for i := range n.Children {
			walk(&n.Children[i], depth+1)
		}
	}
	for i := range f.Roots {
		walk(&f.Roots[i], 0)
	}
}
