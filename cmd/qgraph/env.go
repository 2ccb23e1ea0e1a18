package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"qgraph/internal/diag"
	"qgraph/internal/diagfmt"
	"qgraph/internal/driver"
	"qgraph/internal/metrics"
	"qgraph/internal/observ"
	"qgraph/internal/version"
)

// runEnv collects what every module command reads from the global flags.
type runEnv struct {
	cfg      projectConfig
	color    bool
	quiet    bool
	timer    *observ.Timer
	maxDiags int
	jobs     int
	tui      bool
	format   diagfmt.Format
	minSev   diag.Severity
	args     []string

	metricsPath string
	showTimings bool
}

func newRunEnv(cmd *cobra.Command) (*runEnv, error) {
	flags := cmd.Root().PersistentFlags()
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	var useColor bool
	switch colorFlag {
	case "on":
		useColor = true
	case "off":
	case "auto":
		useColor = isTerminal(os.Stderr)
	default:
		return nil, fmt.Errorf("invalid --color %q (expected auto|on|off)", colorFlag)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, err
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, err
	}
	maxDiags, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return nil, err
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return nil, err
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return nil, err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}
	formatFlag, err := flags.GetString("diag-format")
	if err != nil {
		return nil, err
	}
	format, err := diagfmt.ParseFormat(formatFlag)
	if err != nil {
		return nil, err
	}
	sevFlag, err := flags.GetString("min-severity")
	if err != nil {
		return nil, err
	}
	minSev, err := diag.ParseSeverity(sevFlag)
	if err != nil {
		return nil, err
	}
	if quiet {
		minSev = max(minSev, diag.SevWarning)
	}
	metricsPath, err := flags.GetString("metrics")
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	env := &runEnv{
		cfg:      cfg,
		color:    useColor,
		quiet:    quiet,
		maxDiags: maxDiags,
		jobs:     jobs,
		tui:      shouldUseTUI(mode, quiet),
		format:   format,
		minSev:   minSev,
		args:     os.Args[1:],

		metricsPath: metricsPath,
		showTimings: timings,
	}
	if timings || metricsPath != "" {
		env.timer = observ.NewTimer()
	}
	return env, nil
}

func (e *runEnv) driverOptions() driver.Options {
	return driver.Options{
		Jobs:                    e.jobs,
		MaxDiagnostics:          e.maxDiags,
		KeepUnresolvedObservers: e.cfg.Quantize.KeepUnresolvedObservers,
		Timer:                   e.timer,
	}
}

// report writes the diagnostics of res. Text goes to stderr together with
// the timing table; JSON and SARIF go to stdout. Diagnostics below
// --min-severity are dropped; --quiet raises the bound to warnings.
func (e *runEnv) report(cmd *cobra.Command, res *driver.Result) error {
	switch e.format {
	case diagfmt.FormatJSON:
		if err := diagfmt.JSON(cmd.OutOrStdout(), res.Bag, diagfmt.JSONOpts{IncludeNotes: true, MinSeverity: e.minSev}); err != nil {
			return err
		}
	case diagfmt.FormatSARIF:
		meta := diagfmt.SarifRunMeta{
			ToolName:       "qgraph",
			ToolVersion:    version.Version,
			RunID:          res.RunID,
			InvocationArgs: e.args,
			MinSeverity:    e.minSev,
		}
		if err := diagfmt.Sarif(cmd.OutOrStdout(), res.Bag, meta); err != nil {
			return err
		}
	default:
		opts := diag.FormatOptions{Color: e.color, Notes: true, MinSeverity: e.minSev}
		if err := diag.Render(cmd.ErrOrStderr(), res.Bag, opts); err != nil {
			return err
		}
	}
	if e.showTimings {
		if _, err := io.WriteString(cmd.ErrOrStderr(), e.timer.Summary()); err != nil {
			return err
		}
	}
	return nil
}

// exportMetrics writes the pass statistics of res to --metrics, if set.
func (e *runEnv) exportMetrics(pass string, res *driver.Result) error {
	if e.metricsPath == "" {
		return nil
	}
	rec := metrics.NewRecorder()
	rec.Record(pass, res)
	rec.RecordTimings(e.timer)
	if err := rec.WriteFile(e.metricsPath); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// status prints a one-line summary unless --quiet is set.
func (e *runEnv) status(w io.Writer, format string, args ...any) {
	if e.quiet {
		return
	}
	c := color.New(color.FgGreen, color.Bold)
	if e.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	fmt.Fprintf(w, "%s %s\n", c.Sprint("qgraph:"), fmt.Sprintf(format, args...))
}
