package main

import (
	"errors"

	"github.com/spf13/cobra"

	"qgraph/internal/driver"
	"qgraph/internal/irfile"
)

var validateCmd = &cobra.Command{
	Use:   "validate IN",
	Short: "Check the structural invariants of every graph in a module file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRunEnv(cmd)
		if err != nil {
			return err
		}
		// Load already validates; a file that fails here never reaches
		// the driver.
		mod, _, err := irfile.Load(args[0])
		if err != nil {
			return err
		}
		res, err := env.runPass("validate "+args[0], mod, []string{"check"}, func(opts driver.Options) (*driver.Result, error) {
			return driver.Check(cmd.Context(), mod, opts)
		})
		if err != nil {
			return err
		}
		if err := env.report(cmd, res); err != nil {
			return err
		}
		if err := env.exportMetrics("check", res); err != nil {
			return err
		}
		if res.Bag.HasErrors() {
			return errors.New("validation failed")
		}
		env.status(cmd.ErrOrStderr(), "%d method(s) ok", len(res.Methods))
		return nil
	},
}
