// Package errors provides coded domain errors shared across modules.
//
// Services wrap failures with a stable machine-readable code so handlers,
// audit sinks, and tests can branch on cause without string matching.
// Construct with New at the failure site, or Wrap when propagating an
// underlying error that should stay inspectable via errors.Is/As.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. The set is closed: downstream consumers
// assert on exact codes, so adding a code is an API change.
type Code string

const (
	// Generic codes.
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"

	// Oracle submission rejections. Always fatal to the individual call;
	// the submitter must correct and resubmit.
	CodeInvalidSignature    Code = "invalid_signature"
	CodeDuplicateSubmission Code = "duplicate_submission"
	CodeUntrustedSubmitter  Code = "untrusted_submitter"

	// Administrative misuse.
	CodeInsufficientStake Code = "insufficient_stake"
	CodeAlreadyRegistered Code = "already_registered"
	CodeFutureTimestamp   Code = "future_timestamp"

	// A mutating call re-entered a component that was mid-update.
	CodeReentrantCall Code = "reentrant_call"
)

// Error is a coded error. Message is safe to surface to callers; wrapped
// errors may carry internal detail and are only exposed through Unwrap.
type Error struct {
	Code    Code
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports code equality so errors.Is works across wrapping layers.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err returns
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in domain logic.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is re-exports errors.Is for call sites that alias this package.
func Is(err, target error) bool { return errors.Is(err, target) }
