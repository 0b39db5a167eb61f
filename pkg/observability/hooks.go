package observability

import (
	"context"
	"log/slog"
	"time"
)

// RenderEvent describes one completed render.
type RenderEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Entity     string        `json:"entity"`
	Collection bool          `json:"collection"`
	Format     string        `json:"format,omitempty"`
	Duration   time.Duration `json:"duration"`
	RequestID  string        `json:"request_id,omitempty"`
	Err        error         `json:"-"`
}

// Outcome is "ok" or "error".
func (e *RenderEvent) Outcome() string {
	if e.Err != nil {
		return "error"
	}
	return "ok"
}

// Hooks defines callbacks for render observability. Nil callbacks are skipped.
type Hooks struct {
	OnRender func(context.Context, *RenderEvent)
	OnError  func(context.Context, *RenderEvent)
}

// Emit calls OnRender, then OnError when the render failed.
func (h Hooks) Emit(ctx context.Context, e *RenderEvent) {
	if h.OnRender != nil {
		h.OnRender(ctx, e)
	}
	if e.Err != nil && h.OnError != nil {
		h.OnError(ctx, e)
	}
}

// Combine chains hooks in order.
func Combine(hooks ...Hooks) Hooks {
	return Hooks{
		OnRender: func(ctx context.Context, e *RenderEvent) {
			for _, h := range hooks {
				if h.OnRender != nil {
					h.OnRender(ctx, e)
				}
			}
		},
		OnError: func(ctx context.Context, e *RenderEvent) {
			for _, h := range hooks {
				if h.OnError != nil {
					h.OnError(ctx, e)
				}
			}
		},
	}
}

// LogHooks logs successful renders at Debug and failures at Warn.
func LogHooks(logger *slog.Logger) Hooks {
	return Hooks{
		OnRender: func(ctx context.Context, e *RenderEvent) {
			if e.Err != nil {
				return
			}
			logger.DebugContext(ctx, "render",
				"entity", e.Entity,
				"collection", e.Collection,
				"duration", e.Duration,
				"request_id", e.RequestID,
			)
		},
		OnError: func(ctx context.Context, e *RenderEvent) {
			logger.WarnContext(ctx, "render failed",
				"entity", e.Entity,
				"request_id", e.RequestID,
				"err", e.Err,
			)
		},
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request ID to ctx. Render events carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
