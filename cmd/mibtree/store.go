package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/mibtree"
	"github.com/golangsnmp/mibtree/cmd/internal/cliutil"
	"github.com/golangsnmp/mibtree/internal/store"
	"github.com/golangsnmp/mibtree/mib"
)

// storedFile is the listing form of one stored source.
type storedFile struct {
	Name        string   `json:"name" yaml:"name"`
	Digest      string   `json:"digest" yaml:"digest"`
	Resolved    bool     `json:"resolved" yaml:"resolved"`
	Modules     []string `json:"modules,omitempty" yaml:"modules,omitempty"`
	Diagnostics int      `json:"diagnostics" yaml:"diagnostics"`
	Conflicts   int      `json:"conflicts" yaml:"conflicts"`
	Error       string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func (a *app) storeCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep MIB sources and their last resolution on disk",
		Long: `The store holds MIB source files by name together with what the last
"store resolve" learned about each of them. Sources are only rewritten
when their content changes.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "store-dir", "", "store directory (default: [store].dir or the user data dir)")

	open := func() (*store.DiskStore, error) {
		d := dir
		if d == "" {
			d = a.cfg.Store.Dir
		}
		if d == "" {
			var err error
			if d, err = store.DefaultDir("mibtree"); err != nil {
				return nil, err
			}
		}
		return store.OpenDisk(d, a.logger())
	}

	cmd.AddCommand(
		a.storeAddCommand(open),
		a.storeListCommand(open),
		a.storeShowCommand(open),
		a.storeRemoveCommand(open),
		a.storeResolveCommand(open),
		a.storeGetCommand(open),
	)
	return cmd
}

type opener func() (*store.DiskStore, error)

func (a *app) storeAddCommand(open opener) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add FILE...",
		Short: "Add or update source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != "" && len(args) > 1 {
				return errors.New("--name needs exactly one file")
			}
			s, err := open()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				stored := name
				if stored == "" {
					stored = filepath.Base(path)
				}
				changed, err := store.SaveSource(s, stored, string(data))
				if err != nil {
					return fmt.Errorf("store %s: %w", stored, err)
				}
				state := cliutil.DefaultPalette.Faint.Sprint("unchanged")
				if changed {
					state = cliutil.DefaultPalette.OK.Sprint("stored")
				}
				fmt.Fprintf(w, "%s  %s\n", state, stored)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "store the file under this name")
	return cmd
}

func (a *app) storeListCommand(open opener) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("output") {
				format = a.cfg.Output.Format
			}
			f, err := cliutil.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := open()
			if err != nil {
				return err
			}
			sources, err := store.Sources(s)
			if err != nil {
				return err
			}

			files := make([]storedFile, 0, len(sources))
			for _, src := range sources {
				file := storedFile{Name: src.Name, Digest: src.Digest}
				meta, err := store.LoadFileMeta(s, src.Name)
				switch {
				case err == nil && meta.Digest == src.Digest:
					file.Resolved = true
					file.Modules = meta.Modules
					file.Diagnostics = len(meta.Diagnostics)
					file.Conflicts = len(meta.Conflicts)
					file.Error = meta.Error
				case err != nil && !errors.Is(err, store.ErrNotFound):
					return err
				}
				files = append(files, file)
			}

			w := cmd.OutOrStdout()
			if f != cliutil.FormatText {
				return cliutil.Encode(w, f, files)
			}
			p := &cliutil.DefaultPalette
			for _, file := range files {
				fmt.Fprintf(w, "%s  %s", p.Name.Sprint(file.Name), p.Faint.Sprint(file.Digest))
				if !file.Resolved {
					fmt.Fprintf(w, "  %s\n", p.Warning.Sprint("not resolved"))
					continue
				}
				fmt.Fprintf(w, "  %v  %d diagnostics  %d conflicts", file.Modules, file.Diagnostics, file.Conflicts)
				if file.Error != "" {
					fmt.Fprintf(w, "  %s", p.Error.Sprint(file.Error))
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", cliutil.FormatText, "output format (text|json|yaml)")
	return cmd
}

func (a *app) storeShowCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a stored source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			src, err := store.LoadSource(s, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), src.Text)
			return err
		},
	}
}

func (a *app) storeRemoveCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME...",
		Short: "Remove stored sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			names, err := store.SourceNames(s)
			if err != nil {
				return err
			}
			for _, name := range args {
				if !slices.Contains(names, name) {
					return fmt.Errorf("%s: %w", name, store.ErrNotFound)
				}
				if err := store.RemoveSource(s, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed  %s\n", name)
			}
			return nil
		},
	}
}

func (a *app) storeResolveCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the stored sources and save the outcome",
		Long: `Resolve extracts every stored source, resolves the records and saves
the forest together with per-file modules, diagnostics and conflicts.
A failed run removes the saved forest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			sources, err := store.Sources(s)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return mibtree.ErrNoSources
			}

			opts := a.options()
			var records []mibtree.Record
			for _, src := range sources {
				records = append(records, mibtree.ExtractAll(src.Name, []byte(src.Text), opts...)...)
			}
			res, resolveErr := a.resolve(records)

			if err := store.SaveForest(s, res.Forest); err != nil {
				return err
			}
			for _, src := range sources {
				meta := fileMeta(src, records, res, resolveErr)
				if err := store.SaveFileMeta(s, meta); err != nil {
					return err
				}
			}

			diags := visibleDiagnostics(append(recordDiagnostics(records), res.Diagnostics...), a.cfg.Resolve.Ignore)
			printReport(cmd.OutOrStdout(), len(records), res, diags, resolveErr)
			return unresolved(resolveErr)
		},
	}
}

// fileMeta gathers what a run says about one stored source.
func fileMeta(src store.Source, records []mibtree.Record, res *mibtree.Result, resolveErr error) *store.FileMeta {
	meta := &store.FileMeta{Name: src.Name, Digest: src.Digest}
	for _, r := range records {
		if r.SourceFile != src.Name {
			continue
		}
		meta.Modules = append(meta.Modules, r.Name)
		meta.Diagnostics = append(meta.Diagnostics, r.Diagnostics...)
	}
	for _, d := range res.Diagnostics {
		if d.File == src.Name {
			meta.Diagnostics = append(meta.Diagnostics, d)
		}
	}
	for _, c := range res.Conflicts {
		if c.FileA == src.Name || c.FileB == src.Name {
			meta.Conflicts = append(meta.Conflicts, c)
		}
	}
	for _, e := range res.Excluded {
		if e.File == src.Name {
			meta.Error = fmt.Sprintf("excluded: imports from missing %v", e.Missing)
		}
	}
	if meta.Error == "" && resolveErr != nil {
		meta.Error = resolveErr.Error()
	}
	return meta
}

func (a *app) storeGetCommand(open opener) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get QUERY",
		Short: "Look up a node in the saved forest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				format = a.cfg.Output.Format
			}
			f, err := cliutil.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := open()
			if err != nil {
				return err
			}
			forest, err := store.LoadForest(s)
			if errors.Is(err, store.ErrNotFound) {
				return errors.New("no saved forest; run \"mibtree store resolve\" first")
			}
			if err != nil {
				return err
			}
			nodes, exact := lookup(forest, args[0])
			if len(nodes) == 0 || !exact {
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
			for i, n := range nodes {
				if i > 0 {
					fmt.Fprintln(w)
				}
				printNode(w, n, 200)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", cliutil.FormatText, "output format (text|json|yaml)")
	return cmd
}
