// Package quant rewrites method graphs for post-training quantization.
//
// The work happens in two stages. InsertObservers instruments a
// full-precision graph with observer calls, one per tensor value, each
// tagged with the value's name. After an external calibration run has
// turned those observations into a Dict, InsertQuantDequant removes the
// observers and wraps calibrated values flowing into or out of
// quantizable operators with aten::quantize_linear / aten::dequantize
// pairs.
package quant
