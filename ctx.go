package chainverify

import "context"

type CtxKey uint8

const (
	CtxTrace CtxKey = iota
)

// ContextWithTrace attaches a new trace to ctx, unless it already carries one.
func ContextWithTrace(ctx context.Context) (context.Context, *Trace) {
	if trace := TraceFromContext(ctx); trace != nil {
		return ctx, trace
	}
	trace := NewTrace()
	return context.WithValue(ctx, CtxTrace, trace), trace
}

func TraceFromContext(ctx context.Context) *Trace {
	trace, _ := ctx.Value(CtxTrace).(*Trace)
	return trace
}
