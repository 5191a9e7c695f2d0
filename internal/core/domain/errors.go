package domain

import "errors"

// ErrorCode classifies a UserError.
type ErrorCode string

const (
	CodeNotFound           ErrorCode = "not_found"
	CodeAlreadyExists      ErrorCode = "already_exists"
	CodeNotAuthenticated   ErrorCode = "not_authenticated"
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
	CodeInvalidInput       ErrorCode = "invalid_input"
	CodeForbidden          ErrorCode = "forbidden"
	CodeUnavailable        ErrorCode = "unavailable"
	CodeInternal           ErrorCode = "internal"
)

// UserError is the only error type that leaves a façade. Message is short
// and safe to show to an end user.
type UserError struct {
	Code    ErrorCode
	Message string
}

func (e *UserError) Error() string { return e.Message }

// Is matches any UserError with the same code, so callers can compare
// against the sentinels below regardless of message.
func (e *UserError) Is(target error) bool {
	var t *UserError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrNotFound           = &UserError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists      = &UserError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrNotAuthenticated   = &UserError{Code: CodeNotAuthenticated, Message: "not signed in"}
	ErrInvalidCredentials = &UserError{Code: CodeInvalidCredentials, Message: "invalid email or password"}
	ErrInvalidInput       = &UserError{Code: CodeInvalidInput, Message: "invalid input"}
	ErrForbidden          = &UserError{Code: CodeForbidden, Message: "access forbidden"}
	ErrUnavailable        = &UserError{Code: CodeUnavailable, Message: "service temporarily unavailable"}
	ErrInternal           = &UserError{Code: CodeInternal, Message: "something went wrong, try again"}
)

// NewUserError builds a UserError with a custom message.
func NewUserError(code ErrorCode, msg string) *UserError {
	return &UserError{Code: code, Message: msg}
}

// AsUserError returns err as a UserError, collapsing anything else into
// ErrInternal. A nil err yields nil.
func AsUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return ErrInternal
}
