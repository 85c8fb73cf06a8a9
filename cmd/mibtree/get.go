package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/mibtree/cmd/internal/cliutil"
	"github.com/golangsnmp/mibtree/mib"
)

func (a *app) getCommand() *cobra.Command {
	var (
		format string
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "get QUERY [PATH...]",
		Short: "Look up a node by name, OID or MODULE::name",
		Long: `Get resolves the modules under the given paths and prints the nodes
matching the query.

Query formats:
  Numeric OID:     1.3.6.1.2.1.2.2.1.1
  Name:            ifIndex
  Qualified:       IF-MIB::ifIndex`,
		Example: `  mibtree get ifIndex ./mibs
  mibtree get -o json IF-MIB::ifTable ./mibs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				format = a.cfg.Output.Format
			}
			f, err := cliutil.ParseFormat(format)
			if err != nil {
				return err
			}
			_, res, err := a.load(cmd, args[1:])
			if err != nil {
				return err
			}

			nodes, exact := lookup(res.Forest, args[0])
			if len(nodes) == 0 {
				return fmt.Errorf("not found: %s", args[0])
			}
			w := cmd.OutOrStdout()
			if f != cliutil.FormatText {
				out := make([]mib.Node, len(nodes))
				for i, n := range nodes {
					out[i] = *n
					out[i].Children = nil
				}
				return cliutil.Encode(w, f, out)
			}
			descLimit := 200
			if full {
				descLimit = 0
			}
			if !exact {
				fmt.Fprintf(w, "%s\n", cliutil.DefaultPalette.Faint.Sprintf("no node at %s, showing the nearest ancestor", args[0]))
			}
			for i, n := range nodes {
				if i > 0 {
					fmt.Fprintln(w)
				}
				printNode(w, n, descLimit)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", cliutil.FormatText, "output format (text|json|yaml)")
	cmd.Flags().BoolVar(&full, "full", false, "show full descriptions (no truncation)")
	return cmd
}

// lookup resolves a query to nodes. A numeric OID with no node of its
// own falls back to its deepest known ancestor and reports exact false.
func lookup(f *mib.Forest, query string) ([]*mib.Node, bool) {
	if modName, name, ok := strings.Cut(query, "::"); ok {
		if n, found := f.FindInModule(modName, name); found {
			return []*mib.Node{n}, true
		}
		return nil, true
	}

	q := strings.TrimPrefix(query, ".")
	if q != "" && q[0] >= '0' && q[0] <= '9' {
		oid, err := mib.ParseOID(q)
		if err != nil || len(oid) == 0 {
			return nil, true
		}
		if n, ok := f.Lookup(oid.String()); ok {
			return []*mib.Node{n}, true
		}
		if n := f.LongestPrefix(oid); n != nil {
			return []*mib.Node{n}, false
		}
		return nil, true
	}
	return f.Find(query), true
}

func printNode(w io.Writer, n *mib.Node, descLimit int) {
	p := &cliutil.DefaultPalette
	fmt.Fprintf(w, "%s  %s  %s\n", p.Name.Sprint(n.Name), n.QualifiedName(), p.OID.Sprint(n.OID))
	fmt.Fprintf(w, "  kind:   %s\n", n.Kind)
	if n.Syntax != "" {
		fmt.Fprintf(w, "  syntax: %s\n", n.Syntax)
	}
	if n.Access != "" {
		fmt.Fprintf(w, "  access: %s\n", n.Access)
	}
	if n.Status != "" {
		fmt.Fprintf(w, "  status: %s\n", n.Status)
	}
	if n.ParentOID != "" {
		fmt.Fprintf(w, "  parent: %s\n", n.ParentOID)
	}
	if n.SourceFile != "" {
		fmt.Fprintf(w, "  file:   %s\n", n.SourceFile)
	}
	if len(n.Children) > 0 {
		fmt.Fprintf(w, "  children: %d\n", len(n.Children))
	}
	if n.Description != "" {
		fmt.Fprintf(w, "  descr:  %s\n", normalizeDescription(n.Description, descLimit))
	}
}

func normalizeDescription(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
