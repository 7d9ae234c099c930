package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error independently of the transport.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindLocked
	KindUnavailable
)

// Stable machine-readable codes returned next to the message.
const (
	CodeValidation         = "validation_error"
	CodeInvalidID          = "invalid_id"
	CodeMissingToken       = "missing_token"
	CodeInvalidToken       = "invalid_token"
	CodeInvalidIDToken     = "invalid_id_token"
	CodeTokenExpired       = "token_expired"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeDuplicateEmail     = "duplicate_email"
	CodeInvalidCredentials = "invalid_credentials"
	CodeAccountLocked      = "account_locked"
	CodeInternal           = "internal_error"
	CodeUnavailable        = "unavailable"
)

// ForbiddenMessage is the only message ever used for authorization denials.
const ForbiddenMessage = "Access denied. Insufficient permissions."

// Error is the error type returned by the service layer.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	return StatusOf(e.Kind, e.Code)
}

// StatusOf maps a kind (and, for auth errors, a code) to an HTTP status.
// Invalid tokens are 403 while missing or expired tokens are 401.
func StatusOf(kind Kind, code string) int {
	switch kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		if code == CodeInvalidToken {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case KindForbidden, KindLocked:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: msg}
}

func InvalidID(msg string) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidID, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: ForbiddenMessage}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func Unauthorized(code, msg string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: msg}
}

// InvalidCredentials is a failed password check. It maps to 400 like other bad input.
func InvalidCredentials(msg string) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidCredentials, Message: msg}
}

func Locked(msg string) *Error {
	return &Error{Kind: KindLocked, Code: CodeAccountLocked, Message: msg}
}

func Unavailable(msg string) *Error {
	return &Error{Kind: KindUnavailable, Code: CodeUnavailable, Message: msg}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "Internal server error.", Err: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
