// Package domainerrors defines the coded error type returned by domain
// services. Conventionally imported as dErrors.
//
// Services translate store-level sentinel errors into coded errors at the
// boundary; transport translates codes into HTTP statuses. Internal error
// text never crosses the transport boundary, only the code does.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and caller branching.
type Code string

const (
	// CodeInvalidCredentials covers every credential failure uniformly:
	// unknown identifier, wrong secret, unknown access code. Callers must
	// not be able to distinguish the causes.
	CodeInvalidCredentials Code = "invalid_credentials"

	// CodeNotEligible means the credential was correct but the account's
	// subscription status blocks login.
	CodeNotEligible Code = "account_not_eligible"

	// CodeSessionNotFound covers absent, expired, and revoked sessions
	// uniformly.
	CodeSessionNotFound Code = "session_not_found"

	// CodeTargetNotFound means a delegation was issued against a tenant
	// that does not exist.
	CodeTargetNotFound Code = "target_not_found"

	// CodeGrantExhausted covers delegation grants that are expired or
	// fully consumed.
	CodeGrantExhausted Code = "grant_exhausted"

	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeForbidden    Code = "forbidden"

	// CodeInternal is the single normalization for backing-store faults.
	// Detail is logged server-side, never echoed to callers.
	CodeInternal Code = "internal"
)

// DomainError carries a code for transport mapping plus an internal message.
type DomainError struct {
	Code    Code
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.cause }

// New creates a coded domain error.
func New(code Code, message string) error {
	return &DomainError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/As.
func Wrap(err error, code Code, message string) error {
	return &DomainError{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors so unclassified faults fail closed.
func CodeOf(err error) Code {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code onto the HTTP status the transport layer writes.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidCredentials, CodeSessionNotFound, CodeGrantExhausted:
		return http.StatusUnauthorized
	case CodeNotEligible, CodeForbidden:
		return http.StatusForbidden
	case CodeTargetNotFound:
		return http.StatusNotFound
	case CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
