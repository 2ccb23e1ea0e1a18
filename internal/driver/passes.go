package driver

import (
	"context"
	"fmt"
	"sort"

	"qgraph/internal/diag"
	"qgraph/internal/ir"
	"qgraph/internal/quant"
)

// Keys of MethodResult.Counts.
const (
	CountActivationObservers = "observers_activation"
	CountParamObservers      = "observers_param"
	CountNonTensorSkipped    = "nontensor_skipped"
	CountPairs               = "qdq_pairs"
	CountObserversRemoved    = "observers_removed"
	CountBound               = "values_bound"
)

func methodSlots[T any](mod *ir.Module) []T {
	if mod == nil {
		return nil
	}
	return make([]T, len(mod.Methods))
}

func attachCounts(res *Result, counts []Counts) {
	for i := range res.Methods {
		res.Methods[i].Counts = counts[i]
	}
}

// Observe instruments every method of mod with observers cloned from obs.
func Observe(ctx context.Context, mod *ir.Module, obs quant.Observers, opts Options) (*Result, error) {
	counts := methodSlots[Counts](mod)
	res, err := forEachMethod(ctx, mod, stage{"observe", true}, opts, func(ctx context.Context, i int, m *ir.Method, bag *diag.Bag) (string, error) {
		stats, err := quant.InsertObservers(ctx, m, obs)
		if err != nil {
			return "", err
		}
		counts[i] = Counts{
			CountActivationObservers: stats.Activations,
			CountParamObservers:      stats.Params,
			CountNonTensorSkipped:    stats.NonTensor,
		}
		if stats.NonTensor > 0 {
			bag.Add(diag.New(diag.SevInfo, diag.ObsNonTensorSkipped, diag.Location{Method: m.Name},
				fmt.Sprintf("%d non-tensor value(s) left unobserved", stats.NonTensor)))
		}
		return fmt.Sprintf("%d observers (%d params)", stats.Total(), stats.Params), nil
	})
	if err != nil {
		return nil, err
	}
	attachCounts(res, counts)
	for _, kind := range []quant.ObserverKind{quant.ObserveActivation, quant.ObserveParam} {
		if obs[kind] == nil {
			res.Bag.Add(diag.New(diag.SevWarning, diag.ObsTemplateMissing, diag.Location{},
				fmt.Sprintf("no %s observer template; %s values are not instrumented", kind, kind)))
		}
	}
	res.Bag.Sort()
	return res, nil
}

// Quantize rewrites every method of mod using the calibration dictionary.
// Dictionary entries that matched no observer in any method are reported.
func Quantize(ctx context.Context, mod *ir.Module, dict quant.Dict, opts Options) (*Result, error) {
	matched := methodSlots[[]string](mod)
	counts := methodSlots[Counts](mod)

	res, err := forEachMethod(ctx, mod, stage{"quantize", true}, opts, func(ctx context.Context, i int, m *ir.Method, bag *diag.Bag) (string, error) {
		rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
		qr, err := quant.InsertQuantDequant(ctx, m.Graph, dict, quant.Options{
			KeepUnresolvedObservers: opts.KeepUnresolvedObservers,
			Reporter:                rep,
			Method:                  m.Name,
		})
		if err != nil {
			return "", err
		}
		matched[i] = qr.Matched
		counts[i] = Counts{
			CountPairs:            len(qr.OutputPairs) + len(qr.InputPairs),
			CountObserversRemoved: qr.RemovedObservers,
			CountBound:            len(qr.Bound),
		}
		note := fmt.Sprintf("%d pairs, %d observers removed",
			len(qr.OutputPairs)+len(qr.InputPairs), qr.RemovedObservers)
		if n := rep.Suppressed(); n > 0 {
			note += fmt.Sprintf(", %d duplicate diagnostics", n)
		}
		return note, nil
	})
	if err != nil {
		return nil, err
	}
	attachCounts(res, counts)

	used := make(map[string]bool)
	for _, names := range matched {
		for _, name := range names {
			used[name] = true
		}
	}
	var unused []string
	for name := range dict {
		if !used[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		res.Bag.Add(diag.New(diag.SevWarning, diag.CalUnusedEntry, diag.Location{Value: name},
			"calibration entry matches no observer"))
	}
	res.Bag.Sort()
	return res, nil
}

// Check validates every method without changing it.
func Check(ctx context.Context, mod *ir.Module, opts Options) (*Result, error) {
	return forEachMethod(ctx, mod, stage{"check", false}, opts, func(_ context.Context, _ int, m *ir.Method, bag *diag.Bag) (string, error) {
		if err := ir.Validate(m.Graph); err != nil {
			bag.Add(diag.New(diag.SevError, diag.IRInvalid, diag.Location{Method: m.Name}, err.Error()))
			return "invalid", nil
		}
		return "ok", nil
	})
}
