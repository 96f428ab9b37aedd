// Package errors provides kind-tagged errors for the configuration tool.
//
// Every failure the CLI can report falls into one of a handful of kinds. The
// kind decides whether an invocation aborts before touching the kernel
// (parse, usage, conflict), is reported and skipped (operation), or is
// reported as a missing collaborator (unavailable).
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindParse is malformed user input: an address, mask or number.
	KindParse
	// KindUsage is an unknown keyword or a missing argument.
	KindUsage
	// KindConflict is a duplicate or contradicting option.
	KindConflict
	// KindOperation is a failed kernel request.
	KindOperation
	// KindUnavailable means a delegated service could not be reached.
	KindUnavailable
	KindNotFound
	KindUnsupported
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindUsage:
		return "usage"
	case KindConflict:
		return "conflict"
	case KindOperation:
		return "operation"
	case KindUnavailable:
		return "unavailable"
	case KindNotFound:
		return "not_found"
	case KindUnsupported:
		return "unsupported"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this kind abort the whole invocation.
func (k Kind) Fatal() bool {
	switch k {
	case KindParse, KindUsage, KindConflict, KindNotFound, KindUnsupported:
		return true
	}
	return false
}

// Error is a structured error carrying a Kind.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
	Attributes map[string]any
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates an error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{
		Kind:    kind,
		Message: msg,
	}
}

// Errorf creates an error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a kind and message to err. A nil err stays nil.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:       kind,
		Message:    msg,
		Underlying: err,
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		Underlying: err,
	}
}

// Attr attaches a key/value pair to err, promoting plain errors to KindUnknown.
func Attr(err error, key string, val any) error {
	if err == nil {
		return nil
	}

	var e *Error
	if !errors.As(err, &e) {
		e = &Error{
			Kind:       KindUnknown,
			Message:    err.Error(),
			Underlying: err,
		}
	}

	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	e.Attributes[key] = val
	return e
}

// GetKind returns the kind of the outermost *Error in the chain.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HasKind reports whether any *Error in the chain carries kind.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Underlying
	}
	return false
}

// GetAttributes collects attributes along the chain; outer values win.
func GetAttributes(err error) map[string]any {
	attrs := make(map[string]any)
	var e *Error

	tempErr := err
	for tempErr != nil {
		if !errors.As(tempErr, &e) {
			break
		}
		for k, v := range e.Attributes {
			if _, ok := attrs[k]; !ok {
				attrs[k] = v
			}
		}
		tempErr = e.Underlying
	}

	return attrs
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join is errors.Join, re-exported so callers need only this package.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
