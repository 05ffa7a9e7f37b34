// Package errors provides codegraph's typed error taxonomy (spec.md §7): a
// stable error code attached to every failure the graph builder and sparse
// index can produce, wrapping an underlying cause for %w-style unwrapping.
package errors

import "fmt"

// ErrorCode is a stable, machine-checkable failure category.
type ErrorCode string

const (
	// CodeIO indicates a filesystem or I/O failure: unreadable repo root,
	// permission denied, disk full while persisting the index.
	CodeIO ErrorCode = "IO"
	// CodeParse indicates a source file could not be parsed even by the
	// fallback scanner (spec.md §4.2 "no-op degradation only as a last
	// resort").
	CodeParse ErrorCode = "PARSE"
	// CodeResolution indicates an import or behavior edge could not be
	// resolved to a graph node after all build-time resolution rounds.
	CodeResolution ErrorCode = "RESOLUTION"
	// CodeSchemaCorruption indicates an on-disk index segment failed its
	// integrity check on load (spec.md §4.6 "reload after rebuild").
	CodeSchemaCorruption ErrorCode = "SCHEMA_CORRUPTION"
	// CodeQuery indicates a search query itself was malformed or could not
	// be executed against the index.
	CodeQuery ErrorCode = "QUERY"
	// CodeReranker indicates the optional reranking hook failed or timed
	// out; callers should fall back to the unreranked result set.
	CodeReranker ErrorCode = "RERANKER"
	// CodeInvalidParameter indicates a CLI argument or flag failed
	// validation before any work began.
	CodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
)

// Error is a codegraph error carrying a stable code and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	cause   error
}

// New creates an Error with no underlying cause.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error that preserves cause in its Unwrap chain.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf extracts the ErrorCode from err if it (or something in its Unwrap
// chain) is an *Error; ok is false otherwise.
func CodeOf(err error) (code ErrorCode, ok bool) {
	for err != nil {
		if e, isErr := err.(*Error); isErr {
			return e.Code, true
		}
		unwrapper, canUnwrap := err.(interface{ Unwrap() error })
		if !canUnwrap {
			break
		}
		err = unwrapper.Unwrap()
	}
	return "", false
}

// IOError wraps an I/O failure.
func IOError(message string, cause error) *Error {
	return Wrap(CodeIO, message, cause)
}

// ParseError wraps a source-parsing failure.
func ParseError(path string, cause error) *Error {
	return Wrap(CodeParse, fmt.Sprintf("failed to parse %s", path), cause)
}

// ResolutionError reports an unresolved import or behavior reference.
func ResolutionError(message string) *Error {
	return New(CodeResolution, message)
}

// SchemaCorruptionError wraps an index integrity-check failure.
func SchemaCorruptionError(message string, cause error) *Error {
	return Wrap(CodeSchemaCorruption, message, cause)
}

// QueryError wraps a malformed or failed search query.
func QueryError(message string, cause error) *Error {
	return Wrap(CodeQuery, message, cause)
}

// RerankerError wraps a reranker failure or timeout.
func RerankerError(message string, cause error) *Error {
	return Wrap(CodeReranker, message, cause)
}

// InvalidParameterError reports a missing or invalid CLI parameter.
func InvalidParameterError(paramName, reason string) *Error {
	msg := fmt.Sprintf("missing or invalid '%s' parameter", paramName)
	if reason != "" {
		msg = fmt.Sprintf("invalid '%s' parameter: %s", paramName, reason)
	}
	return New(CodeInvalidParameter, msg)
}
