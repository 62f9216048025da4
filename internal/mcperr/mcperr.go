// Package mcperr implements the systems server's distinguished error kinds
// (spec §7): not a type hierarchy, a closed set of nine kinds used
// uniformly by every library layer, caught exactly once at the tool
// handler boundary and converted into the {success, error, isError} shape.
package mcperr

import (
	"fmt"
)

// Kind is one of the nine distinguished error kinds. Kinds are not a type
// hierarchy: callers compare Kind values, never type-switch on *Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindNotInitialized
	KindNotFound
	KindCreation
	KindConnection
	KindSession
	KindUnsupported
	KindClient
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNotInitialized:
		return "not-initialized"
	case KindNotFound:
		return "not-found"
	case KindCreation:
		return "creation"
	case KindConnection:
		return "connection"
	case KindSession:
		return "session"
	case KindUnsupported:
		return "unsupported"
	case KindClient:
		return "client"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the systems server's uniform error value: a kind, a message,
// an optional cause, and context for diagnostics (not redacted here and
// not included in Error()).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a distinguished error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a distinguished error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new distinguished error of the given kind.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Wrapf attaches a cause with a formatted message.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithContext returns e with a context key/value attached, used for
// diagnostics that must be redacted before reaching a log or tool result.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is reports whether err is a distinguished error of kind k.
func Is(err error, k Kind) bool {
	var de *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			de = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return de != nil && de.Kind == k
}

// ToolResult converts any error - distinguished or not - into the uniform
// {success:false, error, isError:true} shape required at every tool
// handler boundary (spec §4.7, §7). It is the one conversion point where
// an exception/error becomes user-facing data.
func ToolResult(err error) map[string]interface{} {
	if err == nil {
		return map[string]interface{}{"success": true}
	}
	return map[string]interface{}{
		"success": false,
		"error":   err.Error(),
		"isError": true,
	}
}

// Success wraps a result payload's fields into a successful tool response.
func Success(fields map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	return out
}
