// Command mibtree extracts, resolves and inspects SNMP MIB modules.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/mibtree"
	"github.com/golangsnmp/mibtree/cmd/internal/cliutil"
	"github.com/golangsnmp/mibtree/internal/resolver"
)

// Exit codes.
const (
	exitOK         = 0 // success
	exitError      = 1 // usage error, I/O failure
	exitUnresolved = 2 // resolution failed on unresolved nodes
)

// exitCodeError carries a non-default exit code out of a command.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

// app holds the global flags and the config they override.
type app struct {
	configPath string
	paths      []string
	system     bool
	verbose    int
	color      string

	cfg fileConfig
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	a := &app{}
	root := a.rootCommand()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitOK
	}
	cliutil.PrintError("%v", err)
	var coded *exitCodeError
	if errors.As(err, &coded) {
		return coded.code
	}
	return exitError
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mibtree",
		Short: "Resolve SNMP MIB modules into one OID tree",
		Long: `mibtree extracts OID declarations from MIB module files, links them
under their parents across modules and prints the resolved tree, the
modules that are missing, and declarations that differ between files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: nearest "+configFileName+")")
	pf.StringArrayVarP(&a.paths, "path", "p", nil, "add a MIB directory or file (repeatable)")
	pf.BoolVar(&a.system, "system", false, "also search net-snmp and libsmi MIB directories")
	pf.CountVarP(&a.verbose, "verbose", "v", "debug logging (-vv for trace)")
	pf.StringVar(&a.color, "color", "auto", "colorize output (auto|on|off)")

	root.AddCommand(
		a.extractCommand(),
		a.resolveCommand(),
		a.treeCommand(),
		a.getCommand(),
		a.conflictsCommand(),
		a.storeCommand(),
		a.pathsCommand(),
		versionCommand(),
	)
	return root
}

// setup loads the config file and applies global flags over it.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("color") {
		cfg.Output.Color = a.color
	}
	if flags.Changed("system") {
		cfg.Sources.System = a.system
	}
	a.cfg = cfg

	on, err := cliutil.UseColor(cfg.Output.Color, os.Stdout)
	if err != nil {
		return err
	}
	cliutil.SetColor(on)
	return nil
}

func (a *app) logger() *slog.Logger {
	if a.verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if a.verbose >= 2 {
		level = mibtree.LevelTrace
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// options translates the config into library options.
func (a *app) options() []mibtree.Option {
	r := a.cfg.Resolve
	opts := []mibtree.Option{
		mibtree.WithLogger(a.logger()),
		mibtree.WithMaxRescueRounds(r.RescueRounds),
		mibtree.WithMaxAttempts(r.MaxAttempts),
	}
	if p, err := resolver.ParseDuplicatePolicy(r.Duplicates); err == nil {
		opts = append(opts, mibtree.WithDuplicatePolicy(p))
	}
	if !r.AmbientFallback {
		opts = append(opts, mibtree.WithoutAmbientFallback())
	}
	if a.cfg.Sources.Jobs > 0 {
		opts = append(opts, mibtree.WithJobs(a.cfg.Sources.Jobs))
	}
	if len(a.cfg.Sources.Extensions) > 0 {
		opts = append(opts, mibtree.WithExtensions(a.cfg.Sources.Extensions...))
	}
	return opts
}

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mibtree %s\n", version())
		},
	}
}
