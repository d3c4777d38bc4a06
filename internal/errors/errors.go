package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error type mapped to process exit codes.
type Code int

const (
	CodeSuccess     Code = 0
	CodeInternal    Code = 1
	CodeUsage       Code = 2
	CodeAuth        Code = 10
	CodeRateLimited Code = 11
	CodeUnavailable Code = 12
	CodeUnsupported Code = 13
	CodeBlocked     Code = 16

	// Rejections produced while resolving a command.
	CodeUnsupportedChain Code = 20
	CodeUnsupportedToken Code = 21
	CodeInvalidAddress   Code = 22
	CodeMissingParameter Code = 23
	CodeFeeEstimation    Code = 24
	CodeUnknownCommand   Code = 25
)

// Error is a typed error that carries a stable error code. Options lists the
// valid alternatives when the error rejects a user supplied value.
type Error struct {
	Code    Code
	Message string
	Options []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Reject builds a validation error that names the accepted values.
func Reject(code Code, message string, options []string) *Error {
	return &Error{Code: code, Message: message, Options: append([]string(nil), options...)}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	cErr, ok := As(err)
	return ok && cErr.Code == code
}

func ExitCode(err error) int {
	if err == nil {
		return int(CodeSuccess)
	}
	if cliErr, ok := As(err); ok {
		return int(cliErr.Code)
	}
	return int(CodeInternal)
}

// Kind returns the snake_case name used in envelopes and replies.
func Kind(code Code) string {
	switch code {
	case CodeSuccess:
		return "ok"
	case CodeUsage:
		return "usage_error"
	case CodeAuth:
		return "auth_error"
	case CodeRateLimited:
		return "rate_limited"
	case CodeUnavailable:
		return "unavailable"
	case CodeUnsupported:
		return "unsupported"
	case CodeBlocked:
		return "command_blocked"
	case CodeUnsupportedChain:
		return "unsupported_chain"
	case CodeUnsupportedToken:
		return "unsupported_token"
	case CodeInvalidAddress:
		return "invalid_address"
	case CodeMissingParameter:
		return "missing_parameter"
	case CodeFeeEstimation:
		return "fee_estimation_failed"
	case CodeUnknownCommand:
		return "unknown_command"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps a code onto the status reported to transports. Validation
// failures are 400, fee estimation and internal failures are 500.
func HTTPStatus(code Code) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeUsage, CodeUnsupportedChain, CodeUnsupportedToken, CodeInvalidAddress, CodeMissingParameter, CodeUnknownCommand:
		return http.StatusBadRequest
	case CodeBlocked, CodeAuth:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUnsupported:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
