package quant

import (
	"fmt"

	"qgraph/internal/ir"
)

// PropagateQuantInfo will push quantization parameters through
// shape-preserving operators. Not implemented.
func PropagateQuantInfo(g *ir.Graph) error {
	return fmt.Errorf("PropagateQuantInfo: %w", ErrNotImplemented)
}

// QuantLinting will check a rewritten graph for inconsistent pairs.
// Not implemented.
func QuantLinting(g *ir.Graph) error {
	return fmt.Errorf("QuantLinting: %w", ErrNotImplemented)
}

// FoldQuantNodesIntoInputsOutputs will fold boundary pairs into the
// graph's inputs and outputs. Not implemented.
func FoldQuantNodesIntoInputsOutputs(g *ir.Graph) error {
	return fmt.Errorf("FoldQuantNodesIntoInputsOutputs: %w", ErrNotImplemented)
}
