package quant

import "qgraph/internal/ir"

// quantizable is the fixed lookup of operator signatures eligible for
// quantization. Matching is exact after whitespace canonicalization.
var quantizable = ir.MustOperatorSet(
	"aten::conv2d(Tensor input, Tensor weight, Tensor? bias=None, int[2] stride=1, "+
		"int[2] padding=0, int[2] dilation=1, int groups=1) -> Tensor",
	"aten::relu(Tensor self) -> Tensor",
	"aten::_convolution(Tensor input, Tensor weight, Tensor? bias, int[] stride, "+
		"int[] padding, int[] dilation, bool transposed, int[] output_padding, "+
		"int groups, bool benchmark, bool deterministic, bool cudnn_enabled) -> Tensor",
)

// IsQuantizable reports whether n is one of the supported operators.
// A nil node (the producer of a graph input) is not quantizable.
func IsQuantizable(n *ir.Node) bool {
	return quantizable.Contains(n)
}

// QuantizableSignatures returns the supported signatures, sorted.
func QuantizableSignatures() []string {
	return quantizable.Signatures()
}
