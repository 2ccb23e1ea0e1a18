package quant

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"qgraph/internal/ir"
	"qgraph/internal/trace"
)

// ObservedSuffix is appended to a value name to name its observer output.
const ObservedSuffix = ".observed"

// ObserverKind selects which template instruments a value.
type ObserverKind uint8

const (
	// ObserveActivation covers external data inputs and computed values.
	ObserveActivation ObserverKind = iota
	// ObserveParam covers module parameters.
	ObserveParam
)

func (k ObserverKind) String() string {
	switch k {
	case ObserveActivation:
		return "activation"
	case ObserveParam:
		return "param"
	default:
		return "ObserverKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseObserverKind accepts "activation", "param" and "parameter".
func ParseObserverKind(s string) (ObserverKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "activation":
		return ObserveActivation, nil
	case "param", "parameter":
		return ObserveParam, nil
	}
	return 0, fmt.Errorf("unknown observer kind %q (expected activation|param)", s)
}

// Observers maps each kind to a template node. A template may live in any
// graph; it is cloned, never moved. A missing kind disables that part of
// the instrumentation.
type Observers map[ObserverKind]*ir.Node

// ObserveStats summarizes an InsertObservers run.
type ObserveStats struct {
	Params      int // observers on parameter inputs
	Activations int // observers on data inputs and computed values
	NonTensor   int // collected values skipped for not being tensors
}

// Total is the number of inserted observers.
func (s ObserveStats) Total() int { return s.Params + s.Activations }

// InsertObservers instruments m's graph with observer calls.
//
// Graph inputs are observed first: the trailing m.ParamCount inputs with
// the param template, the others with the activation template. The
// observers go in front of the first node of the root block. Then, if an
// activation template is present, every tensor output of every node
// except constants and opaque calls gets an observer right after its
// producer.
//
// Each observer is a clone of its template taking (value, name) where
// name is a string constant holding the value's unique name. Existing
// uses of observed values are not touched.
func InsertObservers(ctx context.Context, m *ir.Method, obs Observers) (ObserveStats, error) {
	var stats ObserveStats
	if m == nil {
		return stats, fmt.Errorf("%w: nil method", ErrPrecondition)
	}
	g := m.Graph
	if g == nil {
		return stats, fmt.Errorf("%w: method %q has no graph", ErrPrecondition, m.Name)
	}
	for kind, tmpl := range obs {
		if tmpl == nil || tmpl.Graph() == nil || tmpl.Destroyed() {
			return stats, fmt.Errorf("%w: %s observer template is not a live node", ErrPrecondition, kind)
		}
		// InsertQuantDequant only recognizes opaque calls as observers.
		if tmpl.Kind() != ir.PrimCallExtern {
			return stats, fmt.Errorf("%w: %s observer template is %s, want %s",
				ErrPrecondition, kind, tmpl.Kind(), ir.PrimCallExtern)
		}
	}
	inputs := g.Inputs()
	boundary := len(inputs) - m.ParamCount
	if boundary < 0 || m.ParamCount < 0 {
		return stats, fmt.Errorf("%w: method %q declares %d parameters but has %d inputs",
			ErrPrecondition, m.Name, m.ParamCount, len(inputs))
	}

	ctx, span := trace.BeginFrom(ctx, trace.ScopePass, "observe")
	defer func() {
		span.WithExtra("method", m.Name).
			WithExtra("params", strconv.Itoa(stats.Params)).
			WithExtra("activations", strconv.Itoa(stats.Activations)).
			End("")
	}()

	act := obs[ObserveActivation]
	param := obs[ObserveParam]

	first := g.Block().First()
	for idx, v := range inputs {
		tmpl, counter := act, &stats.Activations
		if idx >= boundary {
			tmpl, counter = param, &stats.Params
		}
		if tmpl == nil || !v.Type().IsTensor() {
			continue
		}
		o := observe(g, v, tmpl, first, false)
		*counter++
		trace.PointFrom(ctx, trace.ScopeNode, "observer", o.Output().Name())
	}

	if act == nil {
		return stats, nil
	}

	var pending []*ir.Value
	ir.Walk(g.Block(), func(n *ir.Node) {
		if !outputsObservable(n) {
			return
		}
		pending = append(pending, n.Outputs()...)
	})
	for _, v := range pending {
		if !v.Type().IsTensor() {
			stats.NonTensor++
			continue
		}
		o := observe(g, v, act, v.Node(), true)
		stats.Activations++
		trace.PointFrom(ctx, trace.ScopeNode, "observer", o.Output().Name())
	}
	return stats, nil
}

func outputsObservable(n *ir.Node) bool {
	k := n.Kind()
	return k != ir.PrimConstant && k != ir.PrimCallExtern
}

// observe clones tmpl next to anchor, feeding it v and a name constant
// placed before anchor. A nil anchor appends both to the root block. The
// observer takes the scope of the anchor.
func observe(g *ir.Graph, v *ir.Value, tmpl *ir.Node, anchor *ir.Node, after bool) *ir.Node {
	nameAt, at := ir.AtEnd(g.Block()), ir.AtEnd(g.Block())
	scope := ""
	if anchor != nil {
		nameAt, at = ir.Before(anchor), ir.Before(anchor)
		if after {
			at = ir.After(anchor)
		}
		scope = anchor.Scope()
	}
	name := g.InsertConstant(nameAt, ir.StringConst(v.Name()))

	o := g.CreateClone(tmpl)
	o.SetScope(scope)
	o.InsertAt(at)
	o.AddOutput(v.Type()).SetName(v.Name() + ObservedSuffix)
	o.AddInput(v)
	o.AddInput(name)
	return o
}
