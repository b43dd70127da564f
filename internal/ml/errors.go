package ml

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a generation failed.
type ErrorKind string

const (
	KindTransportFailure ErrorKind = "TransportFailure"
	KindEmptyResponse    ErrorKind = "EmptyResponse"
	KindSchemaMismatch   ErrorKind = "SchemaMismatch"
	KindTimeout          ErrorKind = "Timeout"
	KindCanceled         ErrorKind = "Canceled"
)

// GenerationError is returned by every Model for a failed generation.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation failed: %s", e.Kind)
	}
	return fmt.Sprintf("generation failed: %s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel values below by kind, so callers can write
// errors.Is(err, ml.ErrSchemaMismatch).
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	return ok && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrTransportFailure = &GenerationError{Kind: KindTransportFailure}
	ErrEmptyResponse    = &GenerationError{Kind: KindEmptyResponse}
	ErrSchemaMismatch   = &GenerationError{Kind: KindSchemaMismatch}
	ErrTimeout          = &GenerationError{Kind: KindTimeout}
	ErrCanceled         = &GenerationError{Kind: KindCanceled}
)

func newError(kind ErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

func schemaMismatch(format string, args ...any) *GenerationError {
	return newError(KindSchemaMismatch, fmt.Errorf(format, args...))
}

// KindOf returns the kind of a generation error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}
