package quant_test

import (
	"strings"
	"testing"

	"qgraph/internal/ir"
	"qgraph/internal/quant"
)

func TestIsQuantizable(t *testing.T) {
	g := ir.NewGraph()
	mk := func(sig string) *ir.Node {
		n, err := g.CreateSchema(sig, 1)
		if err != nil {
			t.Fatalf("CreateSchema(%q): %v", sig, err)
		}
		return n
	}

	tests := []struct {
		name string
		node *ir.Node
		want bool
	}{
		{"conv2d", mk(conv2dSig), true},
		{"relu", mk(reluSig), true},
		{"relu reformatted", mk("aten::relu( Tensor   self )->Tensor"), true},
		{"convolution", mk("aten::_convolution(Tensor input, Tensor weight, Tensor? bias, int[] stride, " +
			"int[] padding, int[] dilation, bool transposed, int[] output_padding, int groups, " +
			"bool benchmark, bool deterministic, bool cudnn_enabled) -> Tensor"), true},
		{"other relu overload", mk("aten::relu_(Tensor(a!) self) -> Tensor(a!)"), false},
		{"conv2d prefix only", mk("aten::conv2d(Tensor input, Tensor weight) -> Tensor"), false},
		{"kind without schema", g.Create("aten::relu", 1), false},
		{"unrelated", mk("aten::add(Tensor self, Tensor other, Scalar alpha=1) -> Tensor"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := quant.IsQuantizable(tt.node); got != tt.want {
			t.Errorf("%s: IsQuantizable = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestQuantizableSignatures(t *testing.T) {
	sigs := quant.QuantizableSignatures()
	if len(sigs) != 3 {
		t.Fatalf("expected 3 signatures, got %d", len(sigs))
	}
	for i := 1; i < len(sigs); i++ {
		if sigs[i-1] > sigs[i] {
			t.Fatalf("signatures not sorted: %q", sigs)
		}
	}
	sigs[0] = "mutated"
	if strings.HasPrefix(quant.QuantizableSignatures()[0], "mutated") {
		t.Fatalf("QuantizableSignatures must return a copy")
	}
}
