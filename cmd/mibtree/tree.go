package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/golangsnmp/mibtree/cmd/internal/cliutil"
	"github.com/golangsnmp/mibtree/mib"
)

var enumeratorStyle = lipgloss.NewStyle().Faint(true).MarginRight(1)

func (a *app) treeCommand() *cobra.Command {
	var (
		root     string
		maxDepth int
		format   string
	)
	cmd := &cobra.Command{
		Use:   "tree [PATH...]",
		Short: "Print the resolved OID tree",
		Example: `  mibtree tree ./mibs
  mibtree tree --root 1.3.6.1.2.1.2 --max-depth 2 ./mibs
  mibtree tree --root IF-MIB::ifTable -o json ./mibs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxDepth < 0 {
				return fmt.Errorf("--max-depth must not be negative")
			}
			if !cmd.Flags().Changed("output") {
				format = a.cfg.Output.Format
			}
			f, err := cliutil.ParseFormat(format)
			if err != nil {
				return err
			}
			_, res, err := a.load(cmd, args)
			if err != nil {
				return err
			}

			roots := res.Forest.Roots
			if root != "" {
				nodes, exact := lookup(res.Forest, root)
				if len(nodes) == 0 || !exact {
					return fmt.Errorf("not found: %s", root)
				}
				roots = []mib.Node{*nodes[0]}
			}

			w := cmd.OutOrStdout()
			if f != cliutil.FormatText {
				return cliutil.Encode(w, f, trimDepth(roots, 0, maxDepth))
			}
			fmt.Fprintln(w, renderForest(roots, maxDepth))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&root, "root", "", "start at this OID, name or MODULE::name")
	flags.IntVar(&maxDepth, "max-depth", 0, "limit depth below the start (0 = unlimited)")
	flags.StringVarP(&format, "output", "o", cliutil.FormatText, "output format (text|json|yaml)")
	return cmd
}

// renderForest draws roots as one lipgloss tree. Several roots hang off
// an unlabeled top.
func renderForest(roots []mib.Node, maxDepth int) string {
	if len(roots) == 1 {
		return buildTree(&roots[0], 0, maxDepth).String()
	}
	t := styled(tree.New())
	for i := range roots {
		t.Child(buildTree(&roots[i], 0, maxDepth))
	}
	return t.String()
}

func buildTree(n *mib.Node, depth, maxDepth int) *tree.Tree {
	t := styled(tree.Root(nodeLabel(n)))
	if maxDepth > 0 && depth >= maxDepth {
		if len(n.Children) > 0 {
			t.Child(cliutil.DefaultPalette.Faint.Sprintf("(%d more)", len(n.Children)))
		}
		return t
	}
	for i := range n.Children {
		c := &n.Children[i]
		if len(c.Children) == 0 {
			t.Child(nodeLabel(c))
			continue
		}
		t.Child(buildTree(c, depth+1, maxDepth))
	}
	return t
}

func styled(t *tree.Tree) *tree.Tree {
	return t.Enumerator(tree.RoundedEnumerator).EnumeratorStyle(enumeratorStyle)
}

func nodeLabel(n *mib.Node) string {
	p := &cliutil.DefaultPalette
	arcs := n.Arcs()
	if len(arcs) == 0 {
		return fmt.Sprintf("%s  %s", p.Name.Sprint(n.Name), p.OID.Sprint(n.OID))
	}
	label := fmt.Sprintf("%s(%d)  %s", p.Name.Sprint(n.Name), arcs.LastArc(), p.OID.Sprint(n.OID))
	if n.Module != "" {
		label += "  " + p.Faint.Sprint(n.Module)
	}
	return label
}

// trimDepth copies nodes with children below maxDepth removed.
func trimDepth(nodes []mib.Node, depth, maxDepth int) []mib.Node {
	if maxDepth == 0 {
		return nodes
	}
	out := make([]mib.Node, len(nodes))
	for i, n := range nodes {
		if depth >= maxDepth {
			n.Children = nil
		} else {
			n.Children = trimDepth(n.Children, depth+1, maxDepth)
		}
		out[i] = n
	}
	return out
}
