package quant

import (
	"context"
	"fmt"
	"strconv"

	"qgraph/internal/diag"
	"qgraph/internal/ir"
	"qgraph/internal/trace"
)

const (
	// QuantSuffix names the output of an inserted quantize_linear node.
	QuantSuffix = ".quant"
	// DequantSuffix names the output of an inserted dequantize node.
	DequantSuffix = ".dequant"
)

// Options tune InsertQuantDequant.
type Options struct {
	// KeepUnresolvedObservers leaves observers whose name has no entry in
	// the dictionary in the graph, where they are classified like any
	// other node. By default they are removed and reported.
	KeepUnresolvedObservers bool
	// Reporter receives diagnostics. Nil drops them.
	Reporter diag.Reporter
	// Method names the graph in diagnostic locations.
	Method string
}

// Pair describes one inserted quantize/dequantize pair.
type Pair struct {
	Value    *ir.Value // the calibrated value
	Consumer *ir.Node  // input pairs only: the quantizable consumer
	Quant    *ir.Node
	Dequant  *ir.Node
}

// Result reports what InsertQuantDequant did.
type Result struct {
	Bound map[ir.ValueID]QParams
	// Matched lists the dictionary keys that named an observer, in
	// traversal order.
	Matched          []string
	RemovedObservers int
	OutputPairs      []Pair
	InputPairs       []Pair
}

type edge struct {
	value    *ir.Value
	consumer *ir.Node
	offset   int
}

type rewriter struct {
	g    *ir.Graph
	dict Dict
	opts Options

	bound   map[*ir.Value]QParams
	matched []string
	outputs []*ir.Value
	seen    map[*ir.Value]bool
	inputs  []edge

	// observers scheduled for removal, in discovery order
	doomed []*ir.Node
	// output of a doomed observer -> the value it observes
	alias map[*ir.Value]*ir.Value
}

// InsertQuantDequant consumes the observers left by InsertObservers and
// rewrites calibrated values into quantize/dequantize pairs.
//
// A single traversal binds observers to dictionary entries and classifies
// tensor edges. A value produced by a quantizable node gets one pair right
// after its producer and all its uses are redirected to the dequantized
// value. A value produced elsewhere but consumed by a quantizable node
// gets a pair right before that consumer, for that edge only. Values
// without calibration data are left alone.
func InsertQuantDequant(ctx context.Context, g *ir.Graph, dict Dict, opts Options) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrPrecondition)
	}
	for name, p := range dict {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: calibration entry %q: %w", ErrPrecondition, name, err)
		}
	}

	ctx, span := trace.BeginFrom(ctx, trace.ScopePass, "quantize")
	r := &rewriter{
		g:     g,
		dict:  dict,
		opts:  opts,
		bound: make(map[*ir.Value]QParams),
		seen:  make(map[*ir.Value]bool),
		alias: make(map[*ir.Value]*ir.Value),
	}
	ir.WalkBlocks(g.Block(), r.visit, r.leave)

	res := &Result{Bound: make(map[ir.ValueID]QParams, len(r.bound))}
	for v, p := range r.bound {
		res.Bound[v.ID()] = p
	}
	res.Matched = r.matched
	res.RemovedObservers = r.removeObservers()

	for _, v := range r.outputs {
		p, ok := r.bound[v]
		if !ok {
			r.uncalibrated(v)
			continue
		}
		q, dq := r.wrapOutput(v, p)
		res.OutputPairs = append(res.OutputPairs, Pair{Value: v, Quant: q, Dequant: dq})
		trace.PointFrom(ctx, trace.ScopeNode, "qdq", v.Name())
	}
	for _, e := range r.inputs {
		p, ok := r.bound[e.value]
		if !ok {
			r.uncalibrated(e.value)
			continue
		}
		q, dq := r.wrapInput(e, p)
		res.InputPairs = append(res.InputPairs, Pair{Value: e.value, Consumer: e.consumer, Quant: q, Dequant: dq})
		trace.PointFrom(ctx, trace.ScopeNode, "qdq", e.value.Name()+" -> "+string(e.consumer.Kind()))
	}

	span.WithExtra("method", opts.Method).
		WithExtra("bound", strconv.Itoa(len(res.Bound))).
		WithExtra("pairs", strconv.Itoa(len(res.OutputPairs)+len(res.InputPairs))).
		End("")
	return res, nil
}

func (r *rewriter) visit(n *ir.Node) {
	if r.bind(n) {
		return
	}
	for i, in := range n.Inputs() {
		v := r.resolve(in)
		if !v.Type().IsTensor() {
			continue
		}
		if IsQuantizable(v.Node()) {
			r.addOutput(v)
		} else if IsQuantizable(n) {
			r.inputs = append(r.inputs, edge{value: v, consumer: n, offset: i})
		}
	}
}

func (r *rewriter) leave(b *ir.Block) {
	for _, out := range b.Outputs() {
		v := r.resolve(out)
		if v.Type().IsTensor() && IsQuantizable(v.Node()) {
			r.addOutput(v)
		}
	}
}

func (r *rewriter) addOutput(v *ir.Value) {
	if r.seen[v] {
		return
	}
	r.seen[v] = true
	r.outputs = append(r.outputs, v)
}

// resolve maps the output of an observer scheduled for removal back to the
// observed value; that is what the consumer will read once it is gone.
func (r *rewriter) resolve(v *ir.Value) *ir.Value {
	for {
		to, ok := r.alias[v]
		if !ok {
			return v
		}
		v = to
	}
}

// bind reports whether n is an observer that will be removed. Observers
// with a dictionary entry record it for the observed value.
func (r *rewriter) bind(n *ir.Node) bool {
	name, ok := observerName(n)
	if !ok {
		return false
	}
	observed := r.resolve(n.Input(0))
	p, found := r.dict.Lookup(name)
	switch {
	case found:
		r.bound[observed] = p
		r.matched = append(r.matched, name)
	case r.opts.KeepUnresolvedObservers:
		r.report(diag.SevInfo, diag.QntObserverKept, observed,
			fmt.Sprintf("observer for %q kept: no calibration entry", name))
		return false
	default:
		r.report(diag.SevWarning, diag.QntUnresolvedObserver, observed,
			fmt.Sprintf("observer for %q has no calibration entry and was removed", name))
	}
	r.doomed = append(r.doomed, n)
	for _, out := range n.Outputs() {
		r.alias[out] = observed
	}
	return true
}

// observerName recognizes an opaque call whose second input is a string
// constant and returns that string.
func observerName(n *ir.Node) (string, bool) {
	if n.Kind() != ir.PrimCallExtern || len(n.Inputs()) < 2 {
		return "", false
	}
	def := n.Input(1).Node()
	if def == nil || def.Kind() != ir.PrimConstant {
		return "", false
	}
	c, ok := def.Attr("value")
	if !ok || c.Kind != ir.ConstString {
		return "", false
	}
	return c.StringValue, true
}

// removeObservers destroys the doomed observers and their name constants.
// Remaining uses of an observer output are redirected to the observed value
// first.
func (r *rewriter) removeObservers() int {
	for _, n := range r.doomed {
		observed := r.resolve(n.Input(0))
		for _, out := range n.Outputs() {
			if !out.HasUses() {
				continue
			}
			r.report(diag.SevInfo, diag.QntObserverOutputUsed, observed,
				fmt.Sprintf("%d use(s) of %s redirected to %s", len(out.Uses()), out.Name(), observed.Name()))
			out.ReplaceAllUsesWith(observed)
		}
		nameConst := n.Input(1).Node()
		n.Destroy()
		if len(nameConst.Outputs()) == 1 && !nameConst.Output().HasUses() {
			nameConst.Destroy()
		}
	}
	return len(r.doomed)
}

func (r *rewriter) uncalibrated(v *ir.Value) {
	r.report(diag.SevInfo, diag.QntUncalibratedValue, v,
		fmt.Sprintf("%s feeds a quantizable operator but has no calibration entry", v.Name()))
}

func (r *rewriter) report(sev diag.Severity, code diag.Code, v *ir.Value, msg string) {
	if r.opts.Reporter == nil {
		return
	}
	loc := diag.Location{Method: r.opts.Method, Value: v.Name()}
	if def := v.Node(); def != nil {
		loc.Node = string(def.Kind())
	}
	r.opts.Reporter.Report(code, sev, loc, msg, nil)
}

// newPair creates the unattached quantize/dequantize nodes for v.
func (r *rewriter) newPair(v *ir.Value, scope string) (q, dq *ir.Node) {
	q = r.g.Create(ir.AtenQuantizeLinear, 1)
	q.Output().SetType(ir.TypeTensor).SetName(v.Name() + QuantSuffix)
	q.SetScope(scope)
	dq = r.g.Create(ir.AtenDequantize, 1)
	dq.Output().SetType(ir.TypeTensor).SetName(v.Name() + DequantSuffix)
	dq.SetScope(scope)
	return q, dq
}

// wire connects q(v, scale, zero_point) -> dq. The parameter constants go
// right before q.
func (r *rewriter) wire(v *ir.Value, q, dq *ir.Node, p QParams) {
	q.AddInput(v)
	q.AddInput(r.g.InsertConstant(ir.Before(q), ir.FloatConst(p.Scale)))
	q.AddInput(r.g.InsertConstant(ir.Before(q), ir.IntConst(int64(p.ZeroPoint))))
	dq.AddInput(q.Output())
}

func (r *rewriter) wrapOutput(v *ir.Value, p QParams) (q, dq *ir.Node) {
	def := v.Node()
	q, dq = r.newPair(v, def.Scope())
	q.InsertAfter(def)
	dq.InsertAfter(q)
	v.ReplaceAllUsesWith(dq.Output())
	r.wire(v, q, dq, p)
	return q, dq
}

func (r *rewriter) wrapInput(e edge, p QParams) (q, dq *ir.Node) {
	q, dq = r.newPair(e.value, e.consumer.Scope())
	dq.InsertBefore(e.consumer)
	q.InsertBefore(dq)
	e.consumer.ReplaceInputAt(e.offset, dq.Output())
	r.wire(e.value, q, dq, p)
	return q, dq
}
