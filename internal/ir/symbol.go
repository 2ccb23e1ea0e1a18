package ir

import "strings"

// Symbol is a qualified operator name such as "aten::conv2d".
type Symbol string

const (
	// PrimConstant produces a single constant value held in its "value" attribute.
	PrimConstant Symbol = "prim::Constant"
	// PrimCallExtern is an opaque call into the host runtime.
	// Observers are cloned from templates of this kind.
	PrimCallExtern Symbol = "prim::CallExtern"
	PrimIf         Symbol = "prim::If"
	PrimLoop       Symbol = "prim::Loop"

	AtenQuantizeLinear Symbol = "aten::quantize_linear"
	AtenDequantize     Symbol = "aten::dequantize"
)

// Namespace returns the part before "::", or "" for unqualified symbols.
func (s Symbol) Namespace() string {
	ns, _, ok := strings.Cut(string(s), "::")
	if !ok {
		return ""
	}
	return ns
}

// Name returns the unqualified operator name.
func (s Symbol) Name() string {
	_, name, ok := strings.Cut(string(s), "::")
	if !ok {
		return string(s)
	}
	return name
}

// Valid reports whether s has the form "ns::name" with both parts non-empty.
func (s Symbol) Valid() bool {
	ns, name, ok := strings.Cut(string(s), "::")
	return ok && ns != "" && name != "" && !strings.ContainsAny(name, " ():")
}
