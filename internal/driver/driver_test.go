package driver

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"qgraph/internal/diag"
	"qgraph/internal/ir"
	"qgraph/internal/observ"
	"qgraph/internal/quant"
	"qgraph/internal/trace"
)

const reluSig = "aten::relu(Tensor self) -> Tensor"

// reluMethod builds name(x) = relu(x) with value names prefixed by name.
func reluMethod(t *testing.T, name string) *ir.Method {
	t.Helper()
	g := ir.NewGraph()
	x := g.AddInput(name+".x", ir.TypeTensor)
	g.AddInput(name+".n", ir.TypeInt)
	n, err := g.CreateSchema(reluSig, 1)
	if err != nil {
		t.Fatal(err)
	}
	n.AppendTo(g.Block())
	n.AddInput(x)
	n.Output().SetType(ir.TypeTensor).SetName(name + ".y")
	g.RegisterOutput(n.Output())
	return &ir.Method{Name: name, Graph: g}
}

func module(t *testing.T, names ...string) *ir.Module {
	mod := &ir.Module{}
	for _, name := range names {
		mod.Methods = append(mod.Methods, reluMethod(t, name))
	}
	return mod
}

func activationOnly() quant.Observers {
	tg := ir.NewGraph()
	return quant.Observers{quant.ObserveActivation: tg.Create(ir.PrimCallExtern, 0)}
}

func codes(b *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range b.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestObserveThenQuantize(t *testing.T) {
	mod := module(t, "forward", "backward", "init")
	timer := observ.NewTimer()
	var mu sync.Mutex
	var events []PhaseEvent
	opts := Options{
		Jobs:  2,
		Timer: timer,
		OnPhase: func(ev PhaseEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	}

	ring := trace.NewRingTracer(256, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)

	obsRes, err := Observe(ctx, mod, activationOnly(), opts)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if obsRes.RunID == "" {
		t.Fatalf("run ID not generated")
	}
	if len(obsRes.Methods) != 3 || obsRes.Methods[1].Method != "backward" {
		t.Fatalf("results out of order: %+v", obsRes.Methods)
	}
	// Only the param template is missing; the int input %n is skipped
	// silently because inputs are filtered before collection.
	if diff := cmp.Diff([]diag.Code{diag.ObsTemplateMissing}, codes(obsRes.Bag)); diff != "" {
		t.Errorf("observe diagnostics (-want +got):\n%s", diff)
	}

	dict := quant.Dict{
		"forward.x":  {Kind: "quint8", Scale: 0.5},
		"forward.y":  {Kind: "quint8", Scale: 0.5},
		"backward.x": {Kind: "quint8", Scale: 0.5},
		"stale":      {Kind: "quint8", Scale: 0.5},
	}
	qRes, err := Quantize(ctx, mod, dict, Options{Jobs: 2, Timer: timer, RunID: "fixed"})
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if qRes.RunID != "fixed" {
		t.Fatalf("run ID = %q", qRes.RunID)
	}
	if !strings.HasPrefix(qRes.Methods[0].Note, "2 pairs") {
		t.Fatalf("forward note = %q", qRes.Methods[0].Note)
	}
	wantObserve := Counts{CountActivationObservers: 2, CountParamObservers: 0, CountNonTensorSkipped: 0}
	if diff := cmp.Diff(wantObserve, obsRes.Methods[0].Counts); diff != "" {
		t.Errorf("observe counts (-want +got):\n%s", diff)
	}
	wantQuant := Counts{CountPairs: 2, CountObserversRemoved: 2, CountBound: 2}
	if diff := cmp.Diff(wantQuant, qRes.Methods[0].Counts); diff != "" {
		t.Errorf("quantize counts (-want +got):\n%s", diff)
	}

	var unused, unresolved []string
	for _, d := range qRes.Bag.Items() {
		switch d.Code {
		case diag.CalUnusedEntry:
			unused = append(unused, d.Loc.Value)
		case diag.QntUnresolvedObserver:
			unresolved = append(unresolved, d.Loc.Value)
		}
	}
	if diff := cmp.Diff([]string{"stale"}, unused); diff != "" {
		t.Errorf("unused entries (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"backward.y", "init.x", "init.y"}, unresolved); diff != "" {
		t.Errorf("unresolved observers (-want +got):\n%s", diff)
	}

	fwd := mod.Methods[0].Graph
	if got := fwd.Outputs()[0].Name(); got != "forward.y.dequant" {
		t.Errorf("forward output = %q", got)
	}

	if got := len(timer.Report().Phases); got != 12 {
		t.Errorf("expected 12 timed phases (2 passes x 3 methods x pass+validate), got %d", got)
	}
	if len(events) != 12 {
		t.Errorf("expected start and end for 6 observe phases, got %d events", len(events))
	}

	spans := 0
	passMethods := map[string]bool{}
	for _, ev := range ring.Snapshot() {
		if ev.Scope == trace.ScopePass && ev.Kind == trace.KindSpanBegin {
			passMethods[ev.Method] = true
		}
		if ev.Scope == trace.ScopeDriver && ev.Kind == trace.KindSpanEnd {
			spans++
			if ev.Extra["run_id"] == "" {
				t.Errorf("driver span without run_id")
			}
		}
	}
	if spans != 2 {
		t.Errorf("expected 2 driver spans, got %d", spans)
	}
	if diff := cmp.Diff(map[string]bool{"forward": true, "backward": true, "init": true}, passMethods); diff != "" {
		t.Errorf("pass spans not tagged with their method (-want +got):\n%s", diff)
	}
}

func TestQuantizePropagatesPreconditionErrors(t *testing.T) {
	mod := module(t, "forward")
	_, err := Quantize(context.Background(), mod, quant.Dict{"forward.x": {Scale: -1}}, Options{})
	if err == nil || !strings.Contains(err.Error(), `quantize: method "forward"`) {
		t.Fatalf("expected wrapped precondition error, got %v", err)
	}
}

func TestCheckReportsInvalidGraphs(t *testing.T) {
	mod := module(t, "ok", "broken")
	// A detached live node makes the graph invalid.
	mod.Methods[1].Graph.Create("test::orphan", 0)

	res, err := Check(context.Background(), mod, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Bag.HasErrors() || res.Bag.Items()[0].Loc.Method != "broken" {
		t.Fatalf("expected an error for method broken, got %+v", res.Bag.Items())
	}
	if res.Methods[0].Note != "ok" || res.Methods[1].Note != "invalid" {
		t.Fatalf("notes = %q, %q", res.Methods[0].Note, res.Methods[1].Note)
	}
}

func TestNilModule(t *testing.T) {
	if _, err := Check(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected error for nil module")
	}
}
