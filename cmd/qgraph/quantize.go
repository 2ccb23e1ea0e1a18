package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"qgraph/internal/calib"
	"qgraph/internal/driver"
	"qgraph/internal/irfile"
	"qgraph/internal/version"
)

var (
	quantizeOutput         string
	quantizeCalib          string
	quantizeKeepUnresolved bool
)

func init() {
	quantizeCmd.Flags().StringVarP(&quantizeOutput, "output", "o", "", "output module file (default: IN with .quant before the extension)")
	quantizeCmd.Flags().StringVar(&quantizeCalib, "calib", "", "calibration dictionary (.json, .yaml, .toml or .qgc)")
	quantizeCmd.Flags().BoolVar(&quantizeKeepUnresolved, "keep-unresolved", false, "keep observers that have no calibration entry")
}

var quantizeCmd = &cobra.Command{
	Use:   "quantize IN --calib DICT",
	Short: "Replace observers with quantize/dequantize pairs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if quantizeCalib == "" {
			return errors.New("--calib is required")
		}
		env, err := newRunEnv(cmd)
		if err != nil {
			return err
		}
		dict, err := calib.Load(quantizeCalib)
		if err != nil {
			return err
		}
		mod, _, err := irfile.Load(args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("keep-unresolved") {
			env.cfg.Quantize.KeepUnresolvedObservers = quantizeKeepUnresolved
		}
		res, err := env.runPass("quantize "+args[0], mod, []string{"quantize", "validate"}, func(opts driver.Options) (*driver.Result, error) {
			return driver.Quantize(cmd.Context(), mod, dict, opts)
		})
		if err != nil {
			return err
		}

		out := quantizeOutput
		if out == "" {
			out = derivedOutputPath(args[0], "quant")
		}
		if err := irfile.Save(out, mod, irfile.Header{Producer: version.Producer(), RunID: res.RunID}); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		if err := env.report(cmd, res); err != nil {
			return err
		}
		if err := env.exportMetrics("quantize", res); err != nil {
			return err
		}
		for _, m := range res.Methods {
			env.status(cmd.ErrOrStderr(), "%s: %s", m.Method, m.Note)
		}
		env.status(cmd.ErrOrStderr(), "wrote %s", out)
		return nil
	},
}
