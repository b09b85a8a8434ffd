// Package apierror provides the typed error taxonomy shared by services and the
// standardized error envelopes returned to clients. All errors returned to clients
// go through this package to ensure consistency and to prevent leaking internal
// details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an outcome so the caller can decide how to present it.
type Kind int

const (
	KindValidation Kind = iota + 1 // malformed or missing input
	KindNotFound                   // referenced recipe/ingredient/lot does not exist
	KindIntegrity                  // structural invariant violated or entity in use
	KindConflict                   // stale version presented by the caller
	KindStorage                    // unexpected failure from the store
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindIntegrity:
		return "integrity"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// detalleStorage is the only text a caller ever sees for a storage failure.
const detalleStorage = "operación fallida"

// Error is the typed outcome returned by the services.
// Error() only returns Detail; the storage cause stays reachable through Unwrap
// for logging but never reaches the client envelope.
type Error struct {
	Kind   Kind
	Detail string
	Fields map[string]string
	IDs    []string
	cause  error
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.cause }

// Is matches kind sentinels such as ErrIntegrity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Detail == "" && t.Kind == e.Kind
}

// WithField attaches a per-field message and returns the same error.
func (e *Error) WithField(field, msg string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
	return e
}

// Envelope returns the JSON body for this error.
func (e *Error) Envelope() any {
	if len(e.Fields) > 0 {
		return &ValidationError{Detail: e.Detail, Fields: e.Fields}
	}
	return &APIError{Detail: e.Detail, IDs: e.IDs}
}

// Kind sentinels, usable with errors.Is.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrIntegrity  = &Error{Kind: KindIntegrity}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrStorage    = &Error{Kind: KindStorage}
)

func Validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func NotFound(detail string) *Error { return &Error{Kind: KindNotFound, Detail: detail} }

// Integrity reports a structural violation; ids name the offending entities.
func Integrity(detail string, ids ...string) *Error {
	return &Error{Kind: KindIntegrity, Detail: detail, IDs: ids}
}

func Conflict(detail string) *Error { return &Error{Kind: KindConflict, Detail: detail} }

// Storage wraps an unexpected store failure behind an opaque detail.
func Storage(cause error) *Error {
	return &Error{Kind: KindStorage, Detail: detalleStorage, cause: cause}
}

// KindOf returns the kind of err, or KindStorage for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// HTTPStatus maps an error kind to the response status code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindIntegrity, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string   `json:"detail"`
	IDs    []string `json:"ids,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
