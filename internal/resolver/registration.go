package resolver

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/golangsnmp/mibtree/internal/baseline"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// DuplicatePolicy decides what happens when a (module, name) pair is
// declared more than once in the working set.
type DuplicatePolicy int

const (
	// FirstWins keeps the first declaration; later ones only fill fields
	// the first left empty.
	FirstWins DuplicatePolicy = iota
	// LastWins replaces the earlier declaration with the later one.
	LastWins
)

func (p DuplicatePolicy) String() string {
	switch p {
	case FirstWins:
		return "first-wins"
	case LastWins:
		return "last-wins"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy parses "first-wins" or "last-wins".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "first-wins", "first":
		return FirstWins, nil
	case "last-wins", "last":
		return LastWins, nil
	}
	return FirstWins, fmt.Errorf("unknown duplicate policy %q", s)
}

// BaselineMatch classifies a declaration that reuses a seed name.
type BaselineMatch int

const (
	// BaselineNone means the name is not a seed name.
	BaselineNone BaselineMatch = iota
	// RestatementExact means the declaration places the seed name at its
	// seed OID. It is merged into the seed node.
	RestatementExact
	// RedefinitionReported means the declaration places a seed name
	// somewhere else. It is registered as an ordinary module node and a
	// baseline-redefinition diagnostic is emitted.
	RedefinitionReported
)

func (m BaselineMatch) String() string {
	switch m {
	case BaselineNone:
		return "none"
	case RestatementExact:
		return "restatement-exact"
	case RedefinitionReported:
		return "redefinition-reported"
	default:
		return fmt.Sprintf("BaselineMatch(%d)", int(m))
	}
}

// seedBaseline builds the seed forest, pre-linked and addressed.
func seedBaseline(ctx *ResolutionContext) {
	for _, e := range baseline.Entries() {
		n := &WorkingNode{
			Name:       e.Name,
			ParentName: e.Parent,
			Suffix:     []uint32{e.Arc()},
			Kind:       mib.KindBaseline,
			OID:        e.OID,
			anchored:   true,
			baseline:   true,
		}
		ctx.Baseline[e.Name] = n
		if e.Parent == "" {
			ctx.Roots = append(ctx.Roots, n)
			continue
		}
		ctx.Baseline[e.Parent].addChild(n)
	}
	if ctx.TraceEnabled() {
		ctx.Trace("seeded baseline", slog.Int("count", len(ctx.Baseline)))
	}
}

// classifyBaseline reports how decl relates to the seed table.
func classifyBaseline(decl *mib.Declaration) BaselineMatch {
	entry, ok := baseline.Lookup(decl.Name)
	if !ok {
		return BaselineNone
	}
	var at mib.Oid
	switch {
	case decl.Parent == "":
		at = mib.Oid(decl.Suffix)
	default:
		parent, ok := baseline.Lookup(decl.Parent)
		if !ok {
			return RedefinitionReported
		}
		at = parent.OID.Child(decl.Suffix...)
	}
	if at.Equal(entry.OID) {
		return RestatementExact
	}
	return RedefinitionReported
}

// registerRecords is pass 1: it seeds the baseline, then indexes every
// declaration under (module, name) and bare name and stores each
// module's import bindings. It cannot fail.
func registerRecords(ctx *ResolutionContext) {
	seedBaseline(ctx)

	for ri := range ctx.Records {
		rec := &ctx.Records[ri]
		ctx.Modules[rec.Name] = true
		registerImports(ctx, rec)

		for di := range rec.Declarations {
			decl := &rec.Declarations[di]
			n := newWorkingNode(rec, decl)
			switch classifyBaseline(decl) {
			case RestatementExact:
				enrich(ctx.Baseline[decl.Name], n)
				if ctx.TraceEnabled() {
					ctx.Trace("baseline restatement",
						slog.String("module", rec.Name),
						slog.String("name", decl.Name))
				}
				continue
			case RedefinitionReported:
				entry, _ := baseline.Lookup(decl.Name)
				ctx.emit(mib.SeverityWarning, types.DiagBaselineRedefinition, n,
					fmt.Sprintf("%s is placed at { %s }, not at its well-known OID %s",
						decl.Name, formatPosition(n), entry.OID))
			}
			registerNode(ctx, n)
		}

		if ctx.TraceEnabled() {
			ctx.Trace("registered module",
				slog.String("name", rec.Name),
				slog.String("file", rec.SourceFile),
				slog.Int("declarations", len(rec.Declarations)))
		}
	}
}

func registerImports(ctx *ResolutionContext, rec *mib.Record) {
	if len(rec.Imports) == 0 {
		return
	}
	imports := ctx.Imports[rec.Name]
	if imports == nil {
		imports = make(map[string]string, len(rec.Imports))
		ctx.Imports[rec.Name] = imports
	}
	for sym, from := range rec.Imports {
		if _, ok := imports[sym]; !ok {
			imports[sym] = from
		}
	}
}

func registerNode(ctx *ResolutionContext, n *WorkingNode) {
	key := n.Key()

	prev, dup := ctx.ByKey[key]
	if !dup {
		ctx.ByKey[key] = n
		ctx.ByName[n.Name] = append(ctx.ByName[n.Name], n)
		ctx.Nodes = append(ctx.Nodes, n)
		return
	}

	if prev.ParentName != n.ParentName || !slices.Equal(prev.Suffix, n.Suffix) {
		ctx.emit(mib.SeverityWarning, types.DiagDuplicateDeclaration, n,
			fmt.Sprintf("%s declared again at { %s } (first at %s:%d), keeping %s",
				key, formatPosition(n), prev.SourceFile, prev.Line, ctx.config.Duplicates))
	}
	switch ctx.config.Duplicates {
	case LastWins:
		prev.ParentName = n.ParentName
		prev.Suffix = n.Suffix
		prev.Kind = n.Kind
		prev.Syntax = n.Syntax
		prev.Access = n.Access
		prev.Status = n.Status
		prev.Description = n.Description
		prev.SourceFile = n.SourceFile
		prev.Line = n.Line
	default:
		fillEmpty(prev, n)
	}
}

func newWorkingNode(rec *mib.Record, decl *mib.Declaration) *WorkingNode {
	return &WorkingNode{
		Module:      rec.Name,
		Name:        decl.Name,
		ParentName:  decl.Parent,
		Suffix:      slices.Clone(decl.Suffix),
		Kind:        decl.Kind,
		Syntax:      decl.Syntax,
		Access:      decl.Access,
		Status:      decl.Status,
		Description: decl.Description,
		SourceFile:  rec.SourceFile,
		Line:        decl.Line,
	}
}

// enrich copies descriptive text from a restatement into a seed node
// that lacks it. The seed keeps its kind and position.
func enrich(seed, restated *WorkingNode) {
	kind := seed.Kind
	fillEmpty(seed, restated)
	seed.Kind = kind
}

func fillEmpty(dst, src *WorkingNode) {
	if dst.Kind == mib.KindUnknown {
		dst.Kind = src.Kind
	}
	if dst.Syntax == "" {
		dst.Syntax = src.Syntax
	}
	if dst.Access == "" {
		dst.Access = src.Access
	}
	if dst.Status == "" {
		dst.Status = src.Status
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
}

func formatPosition(n *WorkingNode) string {
	s := n.ParentName
	for _, arc := range n.Suffix {
		if s != "" {
			s += " "
		}
		s += fmt.Sprint(arc)
	}
	return s
}
