package main

import (
	"github.com/spf13/cobra"

	"github.com/golangsnmp/mibtree"
	"github.com/golangsnmp/mibtree/cmd/internal/cliutil"
)

func (a *app) extractCommand() *cobra.Command {
	var (
		format     string
		outputFile string
	)
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract the unresolved records of MIB files",
		Long: `Extract prints one record per module found in the given files: the
imports, the declarations with their parent names and arcs, and the
diagnostics for fragments that were skipped. Nothing is resolved.`,
		Example: `  mibtree extract IF-MIB.txt
  mibtree extract -o yaml -f records.yaml mibs/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := cliutil.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == cliutil.FormatText {
				f = cliutil.FormatJSON
			}
			records, err := mibtree.ExtractFiles(cmd.Context(), args, a.options()...)
			if err != nil {
				return err
			}
			if records == nil {
				records = []mibtree.Record{}
			}

			if outputFile == "" {
				return cliutil.Encode(cmd.OutOrStdout(), f, records)
			}
			out, done, err := cliutil.GetOutput(outputFile)
			if err != nil {
				return err
			}
			defer done()
			return cliutil.Encode(out, f, records)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", cliutil.FormatJSON, "output format (json|yaml)")
	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "write to this file instead of stdout")
	return cmd
}
