package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qgraph/internal/ir"
	"qgraph/internal/irfile"
)

var dumpMethod string

func init() {
	dumpCmd.Flags().StringVar(&dumpMethod, "method", "", "print only this method")
}

var dumpCmd = &cobra.Command{
	Use:   "dump IN",
	Short: "Print the graphs of a module file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mod, hdr, err := irfile.Load(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return err
		}
		if !quiet && (hdr.Producer != "" || hdr.RunID != "") {
			fmt.Fprintf(out, "# producer: %s run: %s\n", hdr.Producer, hdr.RunID)
		}
		if dumpMethod == "" {
			return ir.DumpModule(out, mod)
		}
		m := mod.Method(dumpMethod)
		if m == nil {
			return fmt.Errorf("%s: no method %q", args[0], dumpMethod)
		}
		return ir.Dump(out, m.Graph)
	},
}
