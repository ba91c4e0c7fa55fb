package engine

import (
	"errors"
	"fmt"
)

// Kind classifies a failure reported to callers.
type Kind string

const (
	KindValidation Kind = "validation_failure"
	KindUpstream   Kind = "upstream_failure"
)

// Sentinels for errors.Is checks.
var (
	ErrValidation = errors.New("validation failure")
	ErrUpstream   = errors.New("upstream failure")
)

// Error is the structured error value returned to REST and MCP callers.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		if e.Op != "" {
			return e.Op
		}
		return string(e.Kind)
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against ErrValidation / ErrUpstream.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrUpstream:
		return e.Kind == KindUpstream
	}
	return false
}

// Validationf builds a validation failure. Validation failures are raised
// before any external call is made.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

// Upstream wraps a collaborator failure that is fatal to the request.
func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

// KindOf returns the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
