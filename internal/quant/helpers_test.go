package quant_test

import (
	"testing"

	"qgraph/internal/ir"
)

const (
	conv2dSig = "aten::conv2d(Tensor input, Tensor weight, Tensor? bias=None, int[2] stride=1, " +
		"int[2] padding=0, int[2] dilation=1, int groups=1) -> Tensor"
	reluSig = "aten::relu(Tensor self) -> Tensor"
)

// op creates a node for sig with one tensor output named out, appends it to
// b and wires args.
func op(t *testing.T, g *ir.Graph, b *ir.Block, sig, out string, args ...*ir.Value) *ir.Node {
	t.Helper()
	n, err := g.CreateSchema(sig, 1)
	if err != nil {
		t.Fatalf("CreateSchema(%q): %v", sig, err)
	}
	n.AppendTo(b)
	for _, a := range args {
		n.AddInput(a)
	}
	n.Output().SetType(ir.TypeTensor).SetName(out)
	return n
}

// convRelu builds
//
//	graph(%x, %w):
//	  %c = aten::conv2d(%x, %w)
//	  %y = aten::relu(%c)
//	  return (%y)
//
// with %w as the single module parameter.
func convRelu(t *testing.T) *ir.Method {
	t.Helper()
	g := ir.NewGraph()
	x := g.AddInput("x", ir.TypeTensor)
	w := g.AddInput("w", ir.TypeTensor)
	conv := op(t, g, g.Block(), conv2dSig, "c", x, w)
	relu := op(t, g, g.Block(), reluSig, "y", conv.Output())
	g.RegisterOutput(relu.Output())
	return &ir.Method{Name: "forward", Graph: g, ParamCount: 1}
}

// templates returns observer templates living in their own graph.
func templates() (act, param *ir.Node) {
	tg := ir.NewGraph()
	act = tg.Create(ir.PrimCallExtern, 0).SetAttr("fn", ir.StringConst("observe_activation"))
	param = tg.Create(ir.PrimCallExtern, 0).SetAttr("fn", ir.StringConst("observe_param"))
	return act, param
}

func kinds(b *ir.Block) []string {
	var out []string
	for _, n := range b.Nodes() {
		out = append(out, string(n.Kind()))
	}
	return out
}

func names(vals []*ir.Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Name()
	}
	return out
}

func mustValidate(t *testing.T, g *ir.Graph) {
	t.Helper()
	if err := ir.Validate(g); err != nil {
		t.Fatalf("graph invalid after pass:\n%v", err)
	}
}
