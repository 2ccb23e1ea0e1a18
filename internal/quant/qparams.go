package quant

import (
	"fmt"
	"math"
)

// QParams are the calibrated quantization parameters of one value.
type QParams struct {
	Kind      string  // target dtype, e.g. "quint8"
	Scale     float64 // > 0
	ZeroPoint int32
}

// Validate checks that p can be materialized as quantize_linear inputs.
func (p QParams) Validate() error {
	if math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) {
		return fmt.Errorf("scale %v is not finite", p.Scale)
	}
	if p.Scale <= 0 {
		return fmt.Errorf("scale %v must be positive", p.Scale)
	}
	return nil
}

// Dict maps observed value names to their calibrated parameters.
type Dict map[string]QParams

// Lookup returns the parameters recorded for name.
func (d Dict) Lookup(name string) (QParams, bool) {
	p, ok := d[name]
	return p, ok
}
