package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/mibtree"
)

func (a *app) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show MIB search paths",
		Long: `Paths shows the directories that would be searched. When --path or
[sources].paths are set, those are shown. Otherwise the net-snmp and
libsmi configured directories are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := append(append([]string(nil), a.paths...), a.cfg.Sources.Paths...)
			if len(paths) == 0 || a.cfg.Sources.System {
				paths = append(paths, mibtree.SystemDirs(a.logger())...)
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no search paths found")
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
