package resolver

import (
	"log/slog"

	"github.com/golangsnmp/mibtree/internal/graph"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// WorkingNode is the mutable, run-local form of a declaration. Parent and
// Children are set while linking; OID is set by address computation.
type WorkingNode struct {
	Module      string
	Name        string
	ParentName  string
	Suffix      []uint32
	Kind        mib.Kind
	Syntax      string
	Access      string
	Status      string
	Description string
	SourceFile  string
	Line        int

	Parent   *WorkingNode
	Children []*WorkingNode
	OID      mib.Oid

	// linked is set once Parent is found, or the node is placed by its
	// absolute value. anchored is set once the parent chain is known to
	// reach a root.
	linked   bool
	anchored bool
	baseline bool
}

// Key returns the node's (module, name) identity.
func (n *WorkingNode) Key() graph.Symbol {
	return graph.Symbol{Module: n.Module, Name: n.Name}
}

// Anchored reports whether the node is linked into a rooted chain.
func (n *WorkingNode) Anchored() bool {
	return n.anchored
}

// IsBaseline reports whether the node is a seed entry.
func (n *WorkingNode) IsBaseline() bool {
	return n.baseline
}

// addChild links child under n. Linking the same child twice is a no-op.
func (n *WorkingNode) addChild(child *WorkingNode) {
	for _, c := range n.Children {
		if c == child {
			return
		}
	}
	n.Children = append(n.Children, child)
	child.Parent = n
}

// ResolutionContext holds the indexes of one resolution run. The indexes
// are filled by registration and only read afterwards; link state lives
// on the nodes themselves.
type ResolutionContext struct {
	Records []mib.Record

	// Nodes holds every registered declaration in input order. Baseline
	// nodes are not included.
	Nodes []*WorkingNode

	// Baseline maps seed names to their nodes.
	Baseline map[string]*WorkingNode

	// Roots are the top-level seed nodes, in seed order.
	Roots []*WorkingNode

	// ByKey maps (module, name) to the registered node.
	ByKey map[graph.Symbol]*WorkingNode

	// ByName maps a bare name to every module's node of that name.
	ByName map[string][]*WorkingNode

	// Imports maps module -> symbol -> source module. When several
	// records share a module name the first binding of a symbol wins.
	Imports map[string]map[string]string

	// Modules is the set of module names present in the working set.
	Modules map[string]bool

	// extraRoots are root-anchored declarations outside every seed arc.
	extraRoots []*WorkingNode

	config      Config
	phase       Phase
	diagnostics []mib.Diagnostic

	types.Logger
}

func newResolutionContext(records []mib.Record, cfg Config, logger *slog.Logger) *ResolutionContext {
	decls := 0
	for i := range records {
		decls += len(records[i].Declarations)
	}
	return &ResolutionContext{
		Records:  records,
		Nodes:    make([]*WorkingNode, 0, decls),
		Baseline: make(map[string]*WorkingNode),
		ByKey:    make(map[graph.Symbol]*WorkingNode, decls),
		ByName:   make(map[string][]*WorkingNode, decls),
		Imports:  make(map[string]map[string]string, len(records)),
		Modules:  make(map[string]bool, len(records)),
		config:   cfg,
		Logger:   types.Logger{L: logger},
	}
}

// Node returns the node registered as (module, name).
func (c *ResolutionContext) Node(module, name string) (*WorkingNode, bool) {
	n, ok := c.ByKey[graph.Symbol{Module: module, Name: name}]
	return n, ok
}

// ImportSource returns the module that module imports symbol from.
func (c *ResolutionContext) ImportSource(module, symbol string) (string, bool) {
	from, ok := c.Imports[module][symbol]
	return from, ok
}

// Diagnostics returns the diagnostics emitted so far.
func (c *ResolutionContext) Diagnostics() []mib.Diagnostic {
	return c.diagnostics
}

func (c *ResolutionContext) emit(sev mib.Severity, code string, n *WorkingNode, msg string) {
	d := mib.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
	}
	if n != nil {
		d.Module = n.Module
		d.File = n.SourceFile
		d.Line = n.Line
	}
	c.diagnostics = append(c.diagnostics, d)
	if c.TraceEnabled() {
		c.Trace("resolver diagnostic",
			slog.String("code", code),
			slog.String("module", d.Module),
			slog.String("message", msg))
	}
}
