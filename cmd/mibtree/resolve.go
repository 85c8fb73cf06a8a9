package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/mibtree"
	"github.com/golangsnmp/mibtree/cmd/internal/cliutil"
	"github.com/golangsnmp/mibtree/mib"
)

// report is the data form of a resolve run.
type report struct {
	Records      int                 `json:"records" yaml:"records"`
	Nodes        int                 `json:"nodes" yaml:"nodes"`
	Phase        string              `json:"phase" yaml:"phase"`
	RescueRounds int                 `json:"rescue_rounds" yaml:"rescue_rounds"`
	Attempts     int                 `json:"attempts" yaml:"attempts"`
	Unresolved   int                 `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Error        string              `json:"error,omitempty" yaml:"error,omitempty"`
	Excluded     []mibtree.Exclusion `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Cycles       []mib.Cycle         `json:"cycles,omitempty" yaml:"cycles,omitempty"`
	Conflicts    []mib.Conflict      `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Diagnostics  []mib.Diagnostic    `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Forest       []mib.Node          `json:"forest,omitempty" yaml:"forest,omitempty"`
}

func (a *app) resolveCommand() *cobra.Command {
	var (
		format         string
		excludeMissing bool
		ignore         []string
		withForest     bool
	)
	cmd := &cobra.Command{
		Use:   "resolve [PATH...]",
		Short: "Resolve MIB modules and report the outcome",
		Long: `Resolve loads every module under the given paths, links the declarations
into one OID tree and reports diagnostics, conflicts and cycles. The
command exits with status 2 when nodes stay unresolved.`,
		Example: `  mibtree resolve ./mibs
  mibtree resolve --exclude-missing -o yaml ./mibs
  mibtree resolve --ignore 'baseline-*' ./mibs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("exclude-missing") {
				a.cfg.Resolve.ExcludeMissing = excludeMissing
			}
			if !cmd.Flags().Changed("output") {
				format = a.cfg.Output.Format
			}
			f, err := cliutil.ParseFormat(format)
			if err != nil {
				return err
			}

			records, res, resolveErr := a.load(cmd, args)
			if res == nil {
				return resolveErr
			}
			diags := visibleDiagnostics(append(recordDiagnostics(records), res.Diagnostics...),
				append(append([]string(nil), a.cfg.Resolve.Ignore...), ignore...))

			w := cmd.OutOrStdout()
			if f == cliutil.FormatText {
				printReport(w, len(records), res, diags, resolveErr)
				return resolveErr
			}
			rep := report{
				Records:      len(records),
				Nodes:        res.Forest.Len(),
				Phase:        res.Phase,
				RescueRounds: res.RescueRounds,
				Attempts:     res.Attempts,
				Unresolved:   res.Unresolved,
				Excluded:     res.Excluded,
				Cycles:       res.Cycles,
				Conflicts:    res.Conflicts,
				Diagnostics:  diags,
			}
			if resolveErr != nil {
				rep.Error = resolveErr.Error()
			}
			if withForest && res.OK() {
				rep.Forest = res.Forest.Roots
			}
			if err := cliutil.Encode(w, f, rep); err != nil {
				return err
			}
			return resolveErr
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&format, "output", "o", cliutil.FormatText, "output format (text|json|yaml)")
	flags.BoolVar(&excludeMissing, "exclude-missing", false, "retry without modules that import from missing modules")
	flags.StringSliceVar(&ignore, "ignore", nil, "hide diagnostics whose code matches (glob, repeatable)")
	flags.BoolVar(&withForest, "forest", false, "include the resolved forest in json/yaml output")
	return cmd
}

func printReport(w io.Writer, records int, res *mibtree.Result, diags []mib.Diagnostic, resolveErr error) {
	p := &cliutil.DefaultPalette
	if resolveErr == nil {
		fmt.Fprintf(w, "%s %d nodes from %d records", p.OK.Sprint("resolved"), res.Forest.Len(), records)
	} else {
		fmt.Fprintf(w, "%s %d unresolved from %d records", p.Error.Sprint("failed"), res.Unresolved, records)
	}
	fmt.Fprintf(w, " (%d rescue rounds", res.RescueRounds)
	if res.Attempts > 1 {
		fmt.Fprintf(w, ", %d attempts", res.Attempts)
	}
	fmt.Fprintln(w, ")")

	if len(res.Excluded) > 0 {
		fmt.Fprintf(w, "\n%s\n", p.Name.Sprint("Excluded:"))
		for _, e := range res.Excluded {
			fmt.Fprintf(w, "  %s  %s  missing %s\n", e.Module, p.Faint.Sprint(e.File), strings.Join(e.Missing, ", "))
		}
	}
	if len(diags) > 0 {
		fmt.Fprintf(w, "\n%s\n", p.Name.Sprint("Diagnostics:"))
		for _, d := range diags {
			printDiagnostic(w, d)
		}
	}
	if len(res.Cycles) > 0 {
		fmt.Fprintf(w, "\n%s\n", p.Name.Sprint("Cycles:"))
		for _, c := range res.Cycles {
			fmt.Fprintf(w, "  %s", strings.Join(c.Members, " -> "))
			if c.Via != "" {
				fmt.Fprintf(w, "  %s", p.Faint.Sprintf("via %s", c.Via))
			}
			fmt.Fprintln(w)
		}
	}
	if len(res.Conflicts) > 0 {
		fmt.Fprintf(w, "\n%s\n", p.Name.Sprint("Conflicts:"))
		printConflicts(w, res.Conflicts)
	}
}

func printDiagnostic(w io.Writer, d mib.Diagnostic) {
	p := &cliutil.DefaultPalette
	loc := d.Module
	if d.File != "" {
		loc = d.File
	}
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
	}
	sev := p.Severity(d.Severity.String()).Sprint(d.Severity.String())
	if loc == "" {
		fmt.Fprintf(w, "  %s [%s] %s\n", sev, d.Code, d.Message)
		return
	}
	fmt.Fprintf(w, "  %s: %s [%s] %s\n", p.Faint.Sprint(loc), sev, d.Code, d.Message)
}

func printConflicts(w io.Writer, conflicts []mib.Conflict) {
	p := &cliutil.DefaultPalette
	for _, c := range conflicts {
		fmt.Fprintf(w, "  %s", p.Name.Sprintf("%s::%s", c.Module, c.Name))
		if c.OID != "" {
			fmt.Fprintf(w, "  %s", p.OID.Sprint(c.OID))
		}
		fmt.Fprintf(w, "\n    %s vs %s\n", c.FileA, c.FileB)
		for _, d := range c.Fields {
			fmt.Fprintf(w, "    %s: %q %s %q\n", p.Warning.Sprint(d.Field), d.A, p.Faint.Sprint("!="), d.B)
		}
	}
}

func (a *app) conflictsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "conflicts [PATH...]",
		Short: "List declarations that differ between files of the same module",
		Long: `Conflicts extracts every module under the given paths and compares
records that share a module name, without resolving them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				format = a.cfg.Output.Format
			}
			f, err := cliutil.ParseFormat(format)
			if err != nil {
				return err
			}
			records, err := a.loadRecords(cmd, args)
			if err != nil {
				return err
			}
			conflicts := mibtree.Conflicts(records)

			w := cmd.OutOrStdout()
			if f != cliutil.FormatText {
				if conflicts == nil {
					conflicts = []mib.Conflict{}
				}
				return cliutil.Encode(w, f, conflicts)
			}
			if len(conflicts) == 0 {
				fmt.Fprintln(w, "no conflicts")
				return nil
			}
			printConflicts(w, conflicts)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", cliutil.FormatText, "output format (text|json|yaml)")
	return cmd
}
