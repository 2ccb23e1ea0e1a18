package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
	methodKey struct{}
)

// FromContext returns the Tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx. A nil tracer is stored as Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// WithMethod tags events started under ctx with the method name.
func WithMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, methodKey{}, method)
}

// WithSpan records s as the parent for events started under ctx.
func WithSpan(ctx context.Context, s *Span) context.Context {
	if s == nil || s.ID() == 0 {
		return ctx
	}
	return context.WithValue(ctx, spanKey{}, s.ID())
}

// OriginFrom returns the parent span and method recorded in ctx.
func OriginFrom(ctx context.Context) Origin {
	if ctx == nil {
		return Origin{}
	}
	id, _ := ctx.Value(spanKey{}).(uint64)
	m, _ := ctx.Value(methodKey{}).(string)
	return Origin{Parent: id, Method: m}
}

// BeginFrom starts a span on the context tracer at the context origin and
// returns a derived context carrying the new span.
func BeginFrom(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := Begin(FromContext(ctx), scope, name, OriginFrom(ctx))
	return WithSpan(ctx, s), s
}

// PointFrom emits an instant event on the context tracer at the context
// origin.
func PointFrom(ctx context.Context, scope Scope, name, detail string) {
	Point(FromContext(ctx), scope, name, detail, OriginFrom(ctx))
}
