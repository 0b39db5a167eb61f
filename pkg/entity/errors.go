package entity

import (
	"errors"
	"fmt"

	"github.com/aretw0/vitrine/pkg/resolve"
)

var (
	// ErrInvalidOption reports an unknown option, an invalid option value or
	// a forbidden option combination.
	ErrInvalidOption = errors.New("invalid option")

	// ErrNestedExposure reports a tree mutation attempted inside a nested scope.
	ErrNestedExposure = errors.New("nested exposure")

	// ErrInvalidType reports a value of the wrong shape at render time.
	ErrInvalidType = errors.New("invalid type")

	// ErrMissingAttribute reports an attribute no resolution strategy could read.
	ErrMissingAttribute = resolve.ErrMissingAttribute
)

// MissingAttributeError is returned for non-safe exposures whose attribute is absent.
type MissingAttributeError = resolve.MissingAttributeError

// ConfigError is a declaration-time failure.
type ConfigError struct {
	Kind    error
	Entity  string
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Entity == "" {
		return e.Message
	}
	return fmt.Sprintf("entity %q: %s", e.Entity, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Kind
}

// TypeError is a render-time shape failure. Path is the attribute path of
// the offending exposure.
type TypeError struct {
	Path    []string
	Message string
}

func (e *TypeError) Error() string {
	return e.Message
}

func (e *TypeError) Unwrap() error {
	return ErrInvalidType
}

func invalidOption(format string, args ...any) *ConfigError {
	return &ConfigError{Kind: ErrInvalidOption, Message: fmt.Sprintf(format, args...)}
}
