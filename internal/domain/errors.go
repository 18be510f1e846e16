// Package domain defines the mapping model: datasets, header mappings,
// lookup tables, rules, the value resolver, and the errors they raise.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ParseError indicates a spreadsheet or payload could not be decoded.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse: %v", e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NetworkError reports a non-2xx response from the persistence API.
type NetworkError struct {
	Method   string
	Endpoint string
	Status   int
	Message  string
}

func (e *NetworkError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Endpoint, e.Status, e.Message)
}

// DuplicateLookupError is returned when a lookup table is already attached
// to the owner header.
type DuplicateLookupError struct {
	Owner string
}

func (e *DuplicateLookupError) Error() string {
	return fmt.Sprintf("lookup table already registered for header %q", e.Owner)
}

// InvalidRowFormatError is returned when a lookup row is neither a record
// nor a legacy "k=v; k=v" string.
type InvalidRowFormatError struct {
	Index int
	Kind  string
}

func (e *InvalidRowFormatError) Error() string {
	return fmt.Sprintf("invalid row format at index %d: got %s", e.Index, e.Kind)
}

// VersionConflictError is returned when a conditional write carries a stale
// version. Callers re-fetch and retry.
type VersionConflictError struct {
	Key      string
	Expected string
	Actual   string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on %q: expected %q, current %q", e.Key, e.Expected, e.Actual)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// WarningKind classifies a non-fatal signal.
type WarningKind string

// Warning kinds.
const (
	WarnUnknownHeader WarningKind = "unknown_header"
	WarnNoMatch       WarningKind = "no_match"
)

// Warning is a non-fatal condition surfaced alongside a result. It is logged,
// never returned as an error.
type Warning struct {
	Kind    WarningKind
	Header  string
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// UnknownHeaderWarning builds the warning for a header absent from a dataset.
func UnknownHeaderWarning(header string) *Warning {
	return &Warning{Kind: WarnUnknownHeader, Header: header, Message: fmt.Sprintf("unknown header %q", header)}
}

// NoMatchWarning builds the warning for a header the resolver found no value for.
func NoMatchWarning(header string) *Warning {
	return &Warning{Kind: WarnNoMatch, Header: header, Message: fmt.Sprintf("no match found for %q", header)}
}
