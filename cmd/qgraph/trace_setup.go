package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qgraph/internal/trace"
)

// setupTracing reads the trace flags, falling back to [trace] in the
// project config for the level, and attaches the tracer to the command
// context. In ring mode the returned cleanup dumps the buffer to stderr
// when the command failed.
func setupTracing(cmd *cobra.Command) (func(failed bool), error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	methods, err := flags.GetStringSlice("trace-method")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-method flag: %w", err)
	}

	if !flags.Changed("trace-level") {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		levelStr = cfg.Trace.Level
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}

	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	// An explicit output without a mode choice means the user wants to
	// see the stream.
	if traceOutput != "" && !flags.Changed("trace-mode") {
		mode = trace.ModeBoth
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
		Methods:    methods,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	heartbeat := trace.StartHeartbeat(tracer, heartbeatInterval)

	return func(failed bool) {
		heartbeat.Stop()
		if failed && mode == trace.ModeRing {
			if ok, err := trace.DumpRing(tracer, os.Stderr, trace.FormatText); ok && err == nil {
				fmt.Fprintln(os.Stderr, "trace: ring buffer dumped above")
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	}, nil
}
