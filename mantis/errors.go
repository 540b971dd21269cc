package mantis

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes spec.md §7 enumerates, mirrored on
// the teacher's renderer/errors.go ("var Err... = errors.New(...)").
var (
	ErrInvalidInput       = errors.New("mantis: invalid input")
	ErrTessellatorFailure = errors.New("mantis: tessellator failure")
	ErrEmptyStructure     = errors.New("mantis: query against an empty structure")
)

// InvalidInputError wraps ErrInvalidInput with the offending detail, the
// way the teacher's scene/reader/wavefront.go wraps parse errors with
// context via fmt.Errorf("...: %w", ...) rather than a bare sentinel.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("mantis: invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func invalidInput(format string, args ...interface{}) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// TessellatorError wraps a failure surfaced from the §6.2 tessellator
// interface, propagated unchanged per spec.md §7.
type TessellatorError struct {
	Err error
}

func (e *TessellatorError) Error() string {
	return fmt.Sprintf("mantis: tessellator failure: %v", e.Err)
}

func (e *TessellatorError) Unwrap() error { return ErrTessellatorFailure }
