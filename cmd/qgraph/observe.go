package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qgraph/internal/driver"
	"qgraph/internal/irfile"
	"qgraph/internal/version"
)

var observeOutput string

func init() {
	observeCmd.Flags().StringVarP(&observeOutput, "output", "o", "", "output module file (default: IN with .observed before the extension)")
}

var observeCmd = &cobra.Command{
	Use:   "observe IN",
	Short: "Insert observer calls for calibration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRunEnv(cmd)
		if err != nil {
			return err
		}
		obs, err := env.cfg.templates()
		if err != nil {
			return err
		}
		mod, _, err := irfile.Load(args[0])
		if err != nil {
			return err
		}

		res, err := env.runPass("observe "+args[0], mod, []string{"observe", "validate"}, func(opts driver.Options) (*driver.Result, error) {
			return driver.Observe(cmd.Context(), mod, obs, opts)
		})
		if err != nil {
			return err
		}

		out := observeOutput
		if out == "" {
			out = derivedOutputPath(args[0], "observed")
		}
		if err := irfile.Save(out, mod, irfile.Header{Producer: version.Producer(), RunID: res.RunID}); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		if err := env.report(cmd, res); err != nil {
			return err
		}
		if err := env.exportMetrics("observe", res); err != nil {
			return err
		}
		for _, m := range res.Methods {
			env.status(cmd.ErrOrStderr(), "%s: %s", m.Method, m.Note)
		}
		env.status(cmd.ErrOrStderr(), "wrote %s", out)
		return nil
	},
}
