package vitrine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/aretw0/vitrine/internal/logging"
	"github.com/aretw0/vitrine/pkg/declare"
	"github.com/aretw0/vitrine/pkg/encoding"
	"github.com/aretw0/vitrine/pkg/entity"
	"github.com/aretw0/vitrine/pkg/observability"
	"github.com/aretw0/vitrine/pkg/redact"
	"github.com/aretw0/vitrine/pkg/registry"
)

// Engine is the high-level entry point for the vitrine library.
// It ties a registry of entities to declaration loading, observability hooks
// and wire encoding.
type Engine struct {
	registry *registry.Registry
	loader   *declare.Loader
	hooks    observability.Hooks
	redactor *redact.Redactor
	logger   *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRegistry uses an existing registry instead of a fresh one.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks called after every render.
func WithHooks(hooks observability.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRedactor masks matching keys in every Render and Encode result.
func WithRedactor(r *redact.Redactor) Option {
	return func(e *Engine) {
		e.redactor = r
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.registry == nil {
		eng.registry = registry.NewRegistry()
	}
	// Ensure logger is initialized so entities never log to a nil logger.
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	eng.loader = declare.NewLoader(eng.registry, declare.WithLogger(eng.logger))
	return eng
}

// Registry returns the underlying entity registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Loader returns the declaration loader bound to the registry.
func (e *Engine) Loader() *declare.Loader {
	return e.loader
}

// Register adds entities built in Go code.
func (e *Engine) Register(entities ...*entity.Entity) {
	for _, ent := range entities {
		e.registry.Register(ent)
	}
}

// LoadDeclarations reads declaration files or directories and returns the
// declared entity names.
func (e *Engine) LoadDeclarations(paths ...string) ([]string, error) {
	var names []string
	for _, p := range paths {
		loaded, err := e.loader.LoadPath(p)
		if err != nil {
			return names, err
		}
		names = append(names, loaded...)
	}
	e.logger.Info("declarations loaded", "entities", len(names))
	return names, nil
}

// Validate builds every registered entity and reports all configuration errors.
func (e *Engine) Validate() error {
	return e.registry.LoadAll()
}

// Entities lists the registered entity names, sorted.
func (e *Engine) Entities() []string {
	return e.registry.Names()
}

// Documentation returns the documentation map of an entity.
func (e *Engine) Documentation(name string) (*entity.Map, error) {
	ent, err := e.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return ent.Documentation()
}

// Render presents input with the named entity and returns plain data: the
// serializable option is always set.
func (e *Engine) Render(ctx context.Context, name string, input any, opts entity.Options) (any, error) {
	return e.render(ctx, name, input, opts, "")
}

// Encode renders input and marshals it in format (json, yaml, xml or cbor).
// It returns the payload and its content type.
func (e *Engine) Encode(ctx context.Context, name string, input any, opts entity.Options, format string, pretty bool) ([]byte, string, error) {
	codec, err := encoding.Lookup(format, pretty)
	if err != nil {
		return nil, "", err
	}
	if xc, ok := codec.(encoding.XMLCodec); ok && xc.Root == "" {
		xc.Root = name
		codec = xc
	}
	out, err := e.render(ctx, name, input, opts, format)
	if err != nil {
		return nil, "", err
	}
	data, err := codec.Marshal(out)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return data, codec.ContentType(), nil
}

func (e *Engine) render(ctx context.Context, name string, input any, opts entity.Options, format string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	render := opts.Clone()
	render["serializable"] = true

	start := time.Now()
	out, err := e.registry.Represent(name, input, render)
	event := &observability.RenderEvent{
		Timestamp:  start,
		Entity:     name,
		Collection: isCollection(input),
		Format:     format,
		Duration:   time.Since(start),
		RequestID:  observability.RequestID(ctx),
		Err:        err,
	}
	e.hooks.Emit(ctx, event)

	if err != nil {
		if !errors.Is(err, registry.ErrEntityNotFound) {
			e.logger.Warn("render failed", "entity", name, "err", err)
		}
		return nil, err
	}
	return e.redactor.Apply(out), nil
}

func isCollection(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Len() > 0
}
