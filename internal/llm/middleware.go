package llm

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"sanogenic/internal/credential"
	"sanogenic/internal/prompt"
)

// Middleware decorates a Client with a cross-cutting concern. None of the
// middlewares here retry: a call through any chain reaches the provider at
// most once.
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit throttles outgoing calls to rps with the given burst. If rps <= 0,
// it is a pass-through. A call whose context expires before a token frees up
// never reaches next.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		if rps <= 0 {
			return next
		}
		if burst <= 0 {
			burst = 1
		}
		return &rateLimited{next: next, rl: rate.NewLimiter(rate.Limit(rps), burst)}
	}
}

type rateLimited struct {
	next Client
	rl   *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }

func (c *rateLimited) Generate(ctx context.Context, cred credential.Credential, instruction string, schema prompt.Schema) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", Classify(err)
	}
	return c.next.Generate(ctx, cred, instruction, schema)
}

// -------- Logging & Hooks --------

// WithLogging logs request size, latency and classified errors. The key is
// logged masked. A nil logger uses slog.Default().
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *slog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, cred credential.Credential, instruction string, schema prompt.Schema) (string, error) {
	phase := PhaseFrom(ctx)
	start := time.Now()
	l.log.DebugContext(ctx, "llm request",
		"client", l.next.Name(),
		"phase", phase,
		"schema", schema.Name,
		"bytes", len(instruction),
		"key", cred.Mask(),
	)
	raw, err := l.next.Generate(ctx, cred, instruction, schema)
	if err != nil {
		kind := TransportUnknown
		if te := Classify(err); te != nil {
			kind = te.Kind
		}
		l.log.WarnContext(ctx, "llm error",
			"client", l.next.Name(),
			"phase", phase,
			"kind", string(kind),
			"elapsed", time.Since(start),
			"err", err,
		)
		return raw, err
	}
	l.log.InfoContext(ctx, "llm response",
		"client", l.next.Name(),
		"phase", phase,
		"bytes", len(raw),
		"elapsed", time.Since(start),
	)
	return raw, nil
}

// WithHooks calls HookFrom(ctx).Before/After around Generate. If no hook is
// present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next Client) Client {
		return &hooked{next: next}
	}
}

type hooked struct{ next Client }

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }

func (h *hooked) Generate(ctx context.Context, cred credential.Credential, instruction string, schema prompt.Schema) (string, error) {
	hook := HookFrom(ctx)
	if hook != nil {
		hook.Before(ctx, PhaseFrom(ctx), instruction)
	}
	raw, err := h.next.Generate(ctx, cred, instruction, schema)
	if hook != nil {
		hook.After(ctx, PhaseFrom(ctx), raw, err)
	}
	return raw, err
}
