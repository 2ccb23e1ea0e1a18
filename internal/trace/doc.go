// Package trace provides the tracing subsystem used as qgraph's log.
//
// Passes and the driver report what they are doing as spans and point
// events; when tracing is off every call collapses into the Nop tracer.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	qgraph quantize --trace=- --trace-level=detail model.qgm --calib calib.json
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when a run fails
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-method events
//   - LevelDebug: everything, including one event per inserted node
//
// # Scopes
//
//   - ScopeDriver: CLI command and module-wide work
//   - ScopePass: one pass invocation (observe, quantize, validate)
//   - ScopeGraph: per-method work inside a pass
//   - ScopeNode: individual graph edits
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "quantize", parentID)
//	defer span.End("")
package trace
