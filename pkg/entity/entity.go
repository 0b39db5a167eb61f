package entity

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/vitrine/internal/logging"
	"github.com/aretw0/vitrine/pkg/resolve"
)

// Entity is the declaration of one presentable type. The declaration runs
// once, lazily, the first time the entity is used.
type Entity struct {
	name    string
	declare func(*Builder)
	members any
	chain   resolve.Chain
	logger  *slog.Logger

	once    sync.Once
	loadErr error
	mu      sync.Mutex
	current atomic.Pointer[tree]

	docsMu sync.Mutex
	docs   *docsMemo
}

type docsMemo struct {
	tree    *tree
	version uint64
	docs    *Map
}

// EntityOption configures an Entity.
type EntityOption func(*Entity)

// WithMembers supplies a value whose fields and methods exposures may read
// as if they were attributes of the input. Methods may take (), (obj) or
// (obj, opts) and return a value, optionally followed by an error.
func WithMembers(v any) EntityOption {
	return func(e *Entity) {
		e.members = v
	}
}

// WithChain replaces the attribute resolution chain.
func WithChain(c resolve.Chain) EntityOption {
	return func(e *Entity) {
		e.chain = c
	}
}

// WithLogger sets a custom structured logger for the entity.
func WithLogger(logger *slog.Logger) EntityOption {
	return func(e *Entity) {
		e.logger = logger
	}
}

// New creates an entity. declare may be nil for entities populated later
// through Declare.
func New(name string, declare func(b *Builder), opts ...EntityOption) *Entity {
	e := &Entity{
		name:    name,
		declare: declare,
		chain:   resolve.DefaultChain(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the entity name.
func (e *Entity) Name() string {
	return e.name
}

// Load builds the declaration if needed and returns its configuration error.
func (e *Entity) Load() error {
	_, err := e.load()
	return err
}

func (e *Entity) load() (*tree, error) {
	e.once.Do(func() {
		t := newTree()
		if e.declare != nil {
			b := newBuilder(e.name, t)
			e.declare(b)
			e.loadErr = b.err
		}
		e.current.Store(t)
		if e.loadErr != nil {
			e.logger.Error("entity declaration failed", "entity", e.name, "error", e.loadErr)
			return
		}
		e.logger.Debug("entity declared", "entity", e.name, "exposures", len(t.exposures))
	})
	return e.current.Load(), e.loadErr
}

// Declare runs another declaration phase on the entity. The new tree only
// replaces the current one when fn declares without error.
func (e *Entity) Declare(fn func(b *Builder)) error {
	if _, err := e.load(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.current.Load().clone()
	b := newBuilder(e.name, t)
	fn(b)
	if b.err != nil {
		return b.err
	}
	e.current.Store(t)
	return nil
}

// Exposures returns the root exposures in declaration order.
func (e *Entity) Exposures() ([]*Exposure, error) {
	t, err := e.load()
	if err != nil {
		return nil, err
	}
	return append([]*Exposure(nil), t.exposures...), nil
}

// Documentation maps output keys of root exposures to their documentation
// blobs. The result is memoized until the declaration or the key
// transformer changes.
func (e *Entity) Documentation() (*Map, error) {
	t, err := e.load()
	if err != nil {
		return nil, err
	}
	version := keyTransformerVersion()

	e.docsMu.Lock()
	defer e.docsMu.Unlock()
	if e.docs != nil && e.docs.tree == t && e.docs.version == version {
		return copyMap(e.docs.docs), nil
	}

	docs := NewMap()
	for _, x := range t.exposures {
		if !truthy(x.opts.documentation) {
			continue
		}
		key := x.name
		switch as := x.opts.as.(type) {
		case KeyFunc:
			return nil, &TypeError{Message: "`documentation` does not support `as` option as a function"}
		case string:
			if as != "" {
				key = as
			}
		}
		docs.Set(transformKey(key), x.opts.documentation)
	}
	e.docs = &docsMemo{tree: t, version: version, docs: docs}
	return copyMap(docs), nil
}
