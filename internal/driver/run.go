package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"qgraph/internal/diag"
	"qgraph/internal/ir"
	"qgraph/internal/observ"
	"qgraph/internal/trace"
)

const defaultMaxDiagnostics = 1000

// Options configure a driver run.
type Options struct {
	// Jobs bounds the number of methods processed concurrently.
	// Zero means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps each bag. Zero selects a default.
	MaxDiagnostics int
	// KeepUnresolvedObservers is forwarded to the quantize pass.
	KeepUnresolvedObservers bool
	// Timer, if set, records one phase per method and pass.
	Timer *observ.Timer
	// OnPhase, if set, is called at phase boundaries. It may be called
	// from several goroutines at once.
	OnPhase PhaseObserver
	// RunID tags trace spans and saved files. Generated when empty.
	RunID string
}

// Counts holds named per-method tallies of a pass, keyed by the Count*
// constants.
type Counts map[string]int

// MethodResult is the per-method outcome of a run.
type MethodResult struct {
	Method string
	Bag    *diag.Bag
	// Note is a one-line summary suitable for timing tables.
	Note   string
	Counts Counts
}

// Result is the outcome of a run over a module.
type Result struct {
	RunID   string
	Methods []MethodResult
	// Bag holds every diagnostic of the run, sorted.
	Bag *diag.Bag
}

// methodFunc runs one pass over m, the i-th method, and reports into bag.
type methodFunc func(ctx context.Context, i int, m *ir.Method, bag *diag.Bag) (note string, err error)

// stage names a pass and says whether it mutates graphs. Mutated graphs
// are validated afterwards.
type stage struct {
	name    string
	mutates bool
}

// forEachMethod runs fn over every method of mod in parallel. Each graph
// is owned by exactly one goroutine. Results keep method order.
func forEachMethod(ctx context.Context, mod *ir.Module, st stage, opts Options, fn methodFunc) (*Result, error) {
	pass := st.name
	if mod == nil {
		return nil, fmt.Errorf("%s: nil module", pass)
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.BeginFrom(ctx, trace.ScopeDriver, pass)
	span.WithExtra("run_id", runID).WithExtra("methods", strconv.Itoa(len(mod.Methods)))
	defer span.End("")

	results := make([]MethodResult, len(mod.Methods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(mod.Methods))))

	for i, m := range mod.Methods {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if m == nil || m.Graph == nil {
				return fmt.Errorf("%s: method %d has no graph", pass, i)
			}

			bag := diag.NewBag(opts.MaxDiagnostics)
			results[i] = MethodResult{Method: m.Name, Bag: bag}

			note, err := timed(opts, pass, m.Name, func() (string, error) {
				return fn(trace.WithMethod(gctx, m.Name), i, m, bag)
			})
			if err != nil {
				return fmt.Errorf("%s: method %q: %w", pass, m.Name, err)
			}
			results[i].Note = note
			if !st.mutates {
				return nil
			}

			if _, err := timed(opts, "validate", m.Name, func() (string, error) {
				return "", ir.Validate(m.Graph)
			}); err != nil {
				return fmt.Errorf("%s: method %q: graph invalid after pass:\n%w", pass, m.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{RunID: runID, Methods: results, Bag: diag.NewBag(opts.MaxDiagnostics)}
	for _, mr := range results {
		res.Bag.Merge(mr.Bag)
	}
	res.Bag.Sort()
	return res, nil
}

// timed wraps fn with timer and phase-observer bookkeeping.
func timed(opts Options, phase, method string, fn func() (string, error)) (string, error) {
	idx := -1
	if opts.Timer != nil {
		idx = opts.Timer.Begin(phase, method)
	}
	notify(opts.OnPhase, PhaseEvent{Name: phase, Method: method, Status: PhaseStart})
	note, err := fn()
	if opts.Timer != nil {
		opts.Timer.End(idx, note)
	}
	notify(opts.OnPhase, PhaseEvent{Name: phase, Method: method, Status: PhaseEnd, Err: err})
	return note, err
}
