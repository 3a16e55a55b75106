package llm

import "context"

// Hook observes every Generate call. Implementations must not panic and must
// not retain the instruction beyond the call.
type Hook interface {
	Before(ctx context.Context, phase, instruction string)
	After(ctx context.Context, phase, raw string, err error)
}

type ctxKeyHook struct{}
type ctxKeyPhase struct{}

// ContextWithHook attaches a Hook picked up by the WithHooks middleware.
func ContextWithHook(ctx context.Context, h Hook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, h)
}

// WithPhase tags the context with a phase label used in logs and hooks.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// HookFrom returns the hook stored in the context.
func HookFrom(ctx context.Context) Hook {
	if h, ok := ctx.Value(ctxKeyHook{}).(Hook); ok {
		return h
	}
	return nil
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyPhase{}).(string); ok && s != "" {
		return s
	}
	return "unknown"
}
