package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qgraph/internal/quant"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the operator overloads eligible for quantization",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, sig := range quant.QuantizableSignatures() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), sig); err != nil {
				return err
			}
		}
		return nil
	},
}
