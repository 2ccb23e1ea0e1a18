package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"qgraph/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "qgraph",
	Short: "Quantization rewriting for computation graphs",
	Long: `qgraph instruments computation graphs with observers and, once a
calibration run has produced per-value parameters, rewrites them into
quantize/dequantize form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		profileCleanup = stopProfiling
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
}

// traceCleanup flushes the tracer; it runs after Execute whether the
// command failed or not.
var traceCleanup = func(bool) {}

var profileCleanup = func() {}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(quantizeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(opsCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.String("ui", "auto", "progress display (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.String("diag-format", "pretty", "diagnostics output format (pretty|json|sarif)")
	flags.String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.Int("jobs", 0, "methods processed in parallel (0 = GOMAXPROCS)")
	flags.String("metrics", "", "write pass metrics in Prometheus text format to this file")
	flags.String("config", "", "path to qgraph.toml (default: search upwards from the working directory)")
	flags.String("trace", "", "trace output file (\"-\" for stderr, .ndjson for JSON lines)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug); overrides [trace].level")
	flags.String("trace-mode", "ring", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")
	flags.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
	flags.StringSlice("trace-method", nil, "trace only these methods (repeatable)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	err := rootCmd.Execute()
	traceCleanup(err != nil)
	profileCleanup()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
