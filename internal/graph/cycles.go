package graph

import "slices"

// FindCycles returns every strongly connected component with more than
// one node, plus single nodes with a self-loop, found via Tarjan's
// algorithm. Components are rotated to start at their smallest symbol
// and follow edge order from there when the component is a simple loop.
// The result is sorted by first symbol, so it does not depend on map
// iteration order.
func (g *Graph) FindCycles() [][]Symbol {
	var (
		index    int
		stack    []Symbol
		onStack  = make(map[Symbol]bool)
		indices  = make(map[Symbol]int)
		lowlinks = make(map[Symbol]int)
		sccs     [][]Symbol
	)

	var strongConnect func(sym Symbol)
	strongConnect = func(sym Symbol) {
		indices[sym] = index
		lowlinks[sym] = index
		index++
		stack = append(stack, sym)
		onStack[sym] = true

		for _, dep := range g.edges[sym] {
			if _, visited := indices[dep]; !visited {
				strongConnect(dep)
				lowlinks[sym] = min(lowlinks[sym], lowlinks[dep])
			} else if onStack[dep] {
				lowlinks[sym] = min(lowlinks[sym], indices[dep])
			}
		}

		if lowlinks[sym] == indices[sym] {
			var scc []Symbol
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == sym {
					break
				}
			}
			if len(scc) > 1 || slices.Contains(g.edges[scc[0]], scc[0]) {
				sccs = append(sccs, g.chainOrder(scc))
			}
		}
	}

	for _, sym := range g.sortedNodes() {
		if _, visited := indices[sym]; !visited {
			strongConnect(sym)
		}
	}

	slices.SortFunc(sccs, func(a, b []Symbol) int {
		return a[0].Compare(b[0])
	})
	return sccs
}

// chainOrder starts the component at its smallest symbol and follows
// edges that stay inside the component, appending any members the walk
// did not reach in sorted order.
func (g *Graph) chainOrder(scc []Symbol) []Symbol {
	members := make(map[Symbol]bool, len(scc))
	for _, s := range scc {
		members[s] = true
	}
	sorted := slices.Clone(scc)
	slices.SortFunc(sorted, Symbol.Compare)

	out := make([]Symbol, 0, len(scc))
	seen := make(map[Symbol]bool, len(scc))
	cur := sorted[0]
	for !seen[cur] {
		seen[cur] = true
		out = append(out, cur)
		next, ok := Symbol{}, false
		for _, dep := range g.edges[cur] {
			if members[dep] && !seen[dep] {
				next, ok = dep, true
				break
			}
		}
		if !ok {
			break
		}
		cur = next
	}
	for _, s := range sorted {
		if !seen[s] {
			out = append(out, s)
		}
	}
	return out
}

// HasCycles reports whether the graph contains any cycles.
func (g *Graph) HasCycles() bool {
	return len(g.FindCycles()) > 0
}
