package resolve

import (
	"log/slog"
	"sync/atomic"

	"github.com/aretw0/vitrine/internal/logging"
)

// Input is one attribute lookup.
type Input struct {
	// Value is the object being rendered.
	Value any
	// Name is the attribute to read.
	Name string
	// Safe turns a missing attribute into nil.
	Safe bool
	// Members holds the declaring entity's own fields and methods, if any.
	Members any
	// Options are the render options, handed to member methods that accept them.
	Options map[string]any
}

// Strategy answers a lookup or passes it on.
// handled=false means the next strategy is tried.
type Strategy interface {
	TryResolve(in Input) (value any, handled bool, err error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(in Input) (any, bool, error)

// TryResolve calls f.
func (f StrategyFunc) TryResolve(in Input) (any, bool, error) {
	return f(in)
}

// Chain is an ordered list of strategies; the first that handles a lookup wins.
type Chain []Strategy

// DefaultChain is the resolution order used by entities.
func DefaultChain() Chain {
	return Chain{
		MappingStrategy{},
		MembersStrategy{},
		AdapterStrategy{},
		ObjectStrategy{},
	}
}

// Resolve runs the chain.
func (c Chain) Resolve(in Input) (any, error) {
	for _, s := range c {
		v, ok, err := s.TryResolve(in)
		if err != nil {
			return nil, err
		}
		if ok {
			return v, nil
		}
	}
	return Missing(in.Name, in.Value, in.Safe)
}

// Resolve runs the default chain.
func Resolve(in Input) (any, error) {
	return defaultChain.Resolve(in)
}

var defaultChain = DefaultChain()

var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	pkgLogger.Store(logging.NewNop())
}

// SetLogger sets the logger used for adapter registration and safe misses.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.NewNop()
	}
	pkgLogger.Store(l)
}

func logger() *slog.Logger {
	return pkgLogger.Load()
}
