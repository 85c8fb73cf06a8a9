// Package graph provides a directed graph over module symbols with
// strongly connected component detection.
package graph

import (
	"cmp"
	"slices"
)

// Symbol uniquely identifies a declaration in a module.
type Symbol struct {
	Module string
	Name   string
}

func (s Symbol) String() string {
	if s.Module == "" {
		return s.Name
	}
	return s.Module + "::" + s.Name
}

// Compare orders symbols by module, then name.
func (s Symbol) Compare(other Symbol) int {
	if c := cmp.Compare(s.Module, other.Module); c != 0 {
		return c
	}
	return cmp.Compare(s.Name, other.Name)
}

// Graph is a directed graph of symbols with forward edges.
type Graph struct {
	nodes map[Symbol]struct{}
	edges map[Symbol][]Symbol
}

// New returns a graph with no nodes or edges, sized for about n nodes.
func New(n int) *Graph {
	return &Graph{
		nodes: make(map[Symbol]struct{}, n),
		edges: make(map[Symbol][]Symbol, n),
	}
}

// AddNode registers a symbol. Duplicate calls are no-ops.
func (g *Graph) AddNode(sym Symbol) {
	g.nodes[sym] = struct{}{}
}

// AddEdge records an edge from "from" to "to". Missing nodes are
// created implicitly. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to Symbol) {
	g.nodes[from] = struct{}{}
	g.nodes[to] = struct{}{}

	if slices.Contains(g.edges[from], to) {
		return
	}
	g.edges[from] = append(g.edges[from], to)
}

// Dependencies returns the targets of sym's forward edges.
func (g *Graph) Dependencies(sym Symbol) []Symbol {
	return g.edges[sym]
}

// HasNode reports whether the symbol exists in the graph.
func (g *Graph) HasNode(sym Symbol) bool {
	_, ok := g.nodes[sym]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) sortedNodes() []Symbol {
	sorted := make([]Symbol, 0, len(g.nodes))
	for sym := range g.nodes {
		sorted = append(sorted, sym)
	}
	slices.SortFunc(sorted, Symbol.Compare)
	return sorted
}
