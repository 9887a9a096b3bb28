// Package result provides the three-armed Result type used throughout the
// engine for recoverable failure: Success, Error, and Partial (a
// best-effort value carried alongside a warning message).
package result

import (
	"fmt"
	"strings"
)

// Kind identifies which of the three arms a Result occupies.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
	KindPartial
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Result is a sum of Success(A), Error(message), or Partial(A, message).
// The zero value is not meaningful; construct with Success, Error, or
// Partial.
type Result[A any] struct {
	kind    Kind
	value   A
	message string
}

// Success builds a well-formed result carrying value.
func Success[A any](value A) Result[A] {
	return Result[A]{kind: KindSuccess, value: value}
}

// Error builds a result carrying only a diagnostic message.
func Error[A any](message string) Result[A] {
	return Result[A]{kind: KindError, message: message}
}

// Errorf builds an Error result from a format string.
func Errorf[A any](format string, args ...any) Result[A] {
	return Error[A](sprintf(format, args...))
}

// Partial builds a best-effort result: a value plus a warning message.
func Partial[A any](value A, message string) Result[A] {
	return Result[A]{kind: KindPartial, value: value, message: message}
}

// IsSuccess reports whether r is the Success arm.
func (r Result[A]) IsSuccess() bool { return r.kind == KindSuccess }

// IsError reports whether r is the Error arm.
func (r Result[A]) IsError() bool { return r.kind == KindError }

// IsPartial reports whether r is the Partial arm.
func (r Result[A]) IsPartial() bool { return r.kind == KindPartial }

// Kind returns which arm r occupies.
func (r Result[A]) Kind() Kind { return r.kind }

// Message returns the diagnostic message; empty for Success.
func (r Result[A]) Message() string { return r.message }

// Value returns the carried value and whether one is present (Success or
// Partial). For Error it returns the zero value and false.
func (r Result[A]) Value() (A, bool) {
	if r.kind == KindError {
		var zero A
		return zero, false
	}
	return r.value, true
}

// ValueOrZero returns the carried value if present, the zero value
// otherwise. Useful when the caller has already branched on Kind.
func (r Result[A]) ValueOrZero() A {
	return r.value
}

// Get returns the value for Success or Partial, and panics for Error.
// Use only where the arm has already been established as not Error.
func (r Result[A]) Get() A {
	if r.kind == KindError {
		panic("result: Get called on Error result: " + r.message)
	}
	return r.value
}

// ToPartial converts any arm to Partial, retaining the last-known good
// value. Error results have no value to retain; callers must supply a
// fallback.
func (r Result[A]) ToPartial(fallback A) Result[A] {
	switch r.kind {
	case KindSuccess:
		return Partial(r.value, "")
	case KindPartial:
		return r
	default:
		return Partial(fallback, r.message)
	}
}

// CombinePartial merges two partial/error messages, concatenating
// non-empty ones with "; ".
func CombinePartial[A any](value A, messages ...string) Result[A] {
	var nonEmpty []string
	for _, m := range messages {
		if m != "" {
			nonEmpty = append(nonEmpty, m)
		}
	}
	if len(nonEmpty) == 0 {
		return Success(value)
	}
	return Partial(value, strings.Join(nonEmpty, "; "))
}

// Map transforms the carried value with f, preserving Kind. Error is
// unaffected (there is no value to transform).
func Map[A, B any](r Result[A], f func(A) B) Result[B] {
	switch r.kind {
	case KindSuccess:
		return Success(f(r.value))
	case KindPartial:
		return Partial(f(r.value), r.message)
	default:
		return Error[B](r.message)
	}
}

// FlatMap sequences r into f, which may itself fail. A Partial input
// whose continuation succeeds remains Partial with the original message
// preserved (error accumulation on the partial arm, per the contract in
// spec.md §3).
func FlatMap[A, B any](r Result[A], f func(A) Result[B]) Result[B] {
	switch r.kind {
	case KindError:
		return Error[B](r.message)
	case KindSuccess:
		return f(r.value)
	default: // Partial
		next := f(r.value)
		switch next.kind {
		case KindError:
			return Partial(next.value, joinMessages(r.message, next.message))
		case KindPartial:
			return Partial(next.value, joinMessages(r.message, next.message))
		default: // next Success: downgrade to Partial, keep the accumulated warning
			return Partial(next.value, r.message)
		}
	}
}

// MapError transforms the message of an Error or Partial result,
// leaving Success untouched.
func MapError[A any](r Result[A], f func(string) string) Result[A] {
	switch r.kind {
	case KindError:
		return Error[A](f(r.message))
	case KindPartial:
		return Partial(r.value, f(r.message))
	default:
		return r
	}
}

func joinMessages(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "; " + b
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
