// Package domainerrors provides coded errors for the service's domain layer.
//
// Services and models return these so handlers can translate failures into
// stable wire codes and HTTP statuses without string matching. Infrastructure
// layers return pkg/platform/sentinel errors instead; services translate at
// the boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure. Codes are part of the public API:
// callers match on them exactly, so existing values must never change.
type Code string

// Generic codes shared across modules.
const (
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"
	CodeUnavailable        Code = "unavailable"
)

// Registry codes. These are the stable error surface of the alias registry:
// every registry operation failure carries exactly one of them, verbatim.
const (
	CodeEmptyAddress            Code = "EmptyAddress"
	CodeAlreadyInitialized      Code = "AlreadyInitialized"
	CodeSuffixAlreadyRegistered Code = "SuffixAlreadyRegistered"
	CodeUnknownProjectSuffix    Code = "UnknownProjectSuffix"
	CodeAliasAlreadyRegistered  Code = "AliasAlreadyRegistered"
	CodeRegistryUnauthorized    Code = "Unauthorized"
	CodeAliasNotFound           Code = "AliasNotFound"
	CodeInvalidSuffix           Code = "InvalidSuffix"
	CodeInvalidUsername         Code = "InvalidUsername"
	CodeUnknownChainType        Code = "UnknownChainType"
)

// Error is a domain error with a stable code and a human-readable message.
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

func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a domain error with the given code.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As inspection.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or any error in its chain) carries code.
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

// Is is shorthand for HasCode, reading naturally in test assertions.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// GetCode returns the outermost domain error code in the chain, or
// CodeInternal when err carries no code.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// statusByCode maps every known code to its HTTP status.
var statusByCode = map[Code]int{
	CodeInvalidInput:       http.StatusBadRequest,
	CodeValidation:         http.StatusBadRequest,
	CodeBadRequest:         http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeInvariantViolation: http.StatusUnprocessableEntity,
	CodeInternal:           http.StatusInternalServerError,
	CodeUnavailable:        http.StatusServiceUnavailable,

	CodeEmptyAddress:            http.StatusBadRequest,
	CodeAlreadyInitialized:      http.StatusConflict,
	CodeSuffixAlreadyRegistered: http.StatusConflict,
	CodeUnknownProjectSuffix:    http.StatusNotFound,
	CodeAliasAlreadyRegistered:  http.StatusConflict,
	CodeRegistryUnauthorized:    http.StatusForbidden,
	CodeAliasNotFound:           http.StatusNotFound,
	CodeInvalidSuffix:           http.StatusBadRequest,
	CodeInvalidUsername:         http.StatusBadRequest,
	CodeUnknownChainType:        http.StatusBadRequest,
}

// ToHTTPStatus maps a code to its HTTP status, defaulting to 500 for
// unknown codes so nothing leaks as an accidental success.
func ToHTTPStatus(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
