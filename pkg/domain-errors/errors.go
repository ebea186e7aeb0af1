// Package domainerrors provides coded errors for the workflow engine.
//
// Services return these so transport layers can translate failures into
// HTTP statuses without string matching, and so tests can assert on the
// failure class rather than the message. Stores return pkg/platform/sentinel
// errors; services translate them into coded errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation marks missing or malformed required input.
	CodeValidation Code = "validation_failed"
	// CodeInvalidTransition marks a state-machine violation: the requested
	// next status is not reachable from the current one.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeMissingReason marks a decision transition attempted without its
	// required reason notes.
	CodeMissingReason Code = "missing_reason"
	// CodeMissingField marks a transition whose required companion datum
	// (e.g. a renewal's new expiry date) is absent.
	CodeMissingField Code = "missing_field"
	// CodeIneligibleState marks a precondition failure on a different field
	// than the one being transitioned, e.g. a license status blocking an
	// otherwise well-formed renewal call.
	CodeIneligibleState Code = "ineligible_state"
	// CodeLicenseSuspended is the cross-workflow specialization of
	// CodeIneligibleState: renewal mutations rejected while a suspension
	// is in force.
	CodeLicenseSuspended Code = "license_suspended"
	// CodeRenewalNotActive marks renewal data updates attempted before a
	// renewal cycle has been initiated.
	CodeRenewalNotActive Code = "renewal_not_active"

	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeBadRequest Code = "bad_request"
	CodeInternal   Code = "internal_error"
	CodeTimeout    Code = "timeout"
)

// Error is a coded domain error. Construct with New or Wrap.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// Is is an alias for HasCode, matching call-site reading "dErrors.Is(err, code)".
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost coded message, or the raw error text for
// uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// ToHTTPStatus maps a code to its transport status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest, CodeMissingReason, CodeMissingField:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeIneligibleState, CodeLicenseSuspended,
		CodeRenewalNotActive, CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
