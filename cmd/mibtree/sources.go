package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/mibtree"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// source combines positional arguments, --path flags, configured paths
// and, when enabled, the system MIB directories. Directories are walked
// recursively; plain files are read as given.
func (a *app) source(args []string) (mibtree.Source, error) {
	var (
		sources []mibtree.Source
		files   []string
	)
	all := append(append(append([]string(nil), args...), a.paths...), a.cfg.Sources.Paths...)
	for _, p := range all {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access path %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		src, err := mibtree.DirTree(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(files) > 0 {
		sources = append(sources, mibtree.Files(files...))
	}
	if a.cfg.Sources.System {
		if src, err := mibtree.SystemSource(a.logger()); err == nil {
			sources = append(sources, src)
		}
	}
	switch len(sources) {
	case 0:
		return nil, mibtree.ErrNoSources
	case 1:
		return sources[0], nil
	}
	return mibtree.Multi(sources...), nil
}

// loadRecords extracts every module the sources hold.
func (a *app) loadRecords(cmd *cobra.Command, args []string) ([]mibtree.Record, error) {
	src, err := a.source(args)
	if err != nil {
		return nil, err
	}
	return mibtree.LoadRecords(cmd.Context(), src, a.options()...)
}

// resolve resolves records, retrying without records that import from
// missing modules when the config asks for it.
func (a *app) resolve(records []mibtree.Record) (*mibtree.Result, error) {
	if a.cfg.Resolve.ExcludeMissing {
		return mibtree.ResolveExcluding(records, a.options()...)
	}
	return mibtree.Resolve(records, a.options()...)
}

// load loads and resolves in one step. A resolution failure still returns
// the result, with the error marked for exit code 2.
func (a *app) load(cmd *cobra.Command, args []string) ([]mibtree.Record, *mibtree.Result, error) {
	records, err := a.loadRecords(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	res, err := a.resolve(records)
	return records, res, unresolved(err)
}

func unresolved(err error) error {
	if err != nil && errors.Is(err, mibtree.ErrUnresolved) {
		return &exitCodeError{code: exitUnresolved, err: err}
	}
	return err
}

// visibleDiagnostics drops diagnostics whose code matches one of the
// ignore globs.
func visibleDiagnostics(diags []mib.Diagnostic, ignore []string) []mib.Diagnostic {
	if len(ignore) == 0 {
		return diags
	}
	var out []mib.Diagnostic
	for _, d := range diags {
		hidden := false
		for _, pattern := range ignore {
			if types.MatchGlob(pattern, d.Code) {
				hidden = true
				break
			}
		}
		if !hidden {
			out = append(out, d)
		}
	}
	return out
}

// recordDiagnostics collects the extraction diagnostics of every record.
func recordDiagnostics(records []mibtree.Record) []mib.Diagnostic {
	var out []mib.Diagnostic
	for _, r := range records {
		out = append(out, r.Diagnostics...)
	}
	return out
}
