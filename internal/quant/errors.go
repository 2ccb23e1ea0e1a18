package quant

import "errors"

var (
	// ErrPrecondition marks a pass invoked with unusable arguments. The
	// graph is left untouched.
	ErrPrecondition = errors.New("quant: precondition failed")

	// ErrNotImplemented is returned by the reserved passes.
	ErrNotImplemented = errors.New("quant: pass not implemented")
)
