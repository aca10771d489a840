package common

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeDuplicateName     Code = "DUPLICATE_NAME"
	CodeInUse             Code = "IN_USE"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeRateLimit         Code = "RATE_LIMITED"
	CodeBackend           Code = "BACKEND_ERROR"
	CodeInternal          Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeValidation:        http.StatusBadRequest,
	CodeNotFound:          http.StatusNotFound,
	CodeInsufficientStock: http.StatusConflict,
	CodeDuplicateName:     http.StatusConflict,
	CodeInUse:             http.StatusConflict,
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeForbidden:         http.StatusForbidden,
	CodeRateLimit:         http.StatusTooManyRequests,
	CodeBackend:           http.StatusInternalServerError,
	CodeInternal:          http.StatusInternalServerError,
}

// HTTPStatus maps a code to its response status.
func HTTPStatus(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a domain failure a caller can branch on by Code.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if stdErrors.As(target, &t) {
		return t.Code == e.Code && t.Message == ""
	}
	return false
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

// Sentinels for errors.Is; they carry no message.
var (
	ErrValidation        = &Error{Code: CodeValidation}
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrInsufficientStock = &Error{Code: CodeInsufficientStock}
	ErrDuplicateName     = &Error{Code: CodeDuplicateName}
	ErrInUse             = &Error{Code: CodeInUse}
	ErrUnauthorized      = &Error{Code: CodeUnauthorized}
	ErrForbidden         = &Error{Code: CodeForbidden}
	ErrRateLimited       = &Error{Code: CodeRateLimit}
)

func ValidationError(field, message string) *Error {
	return NewError(CodeValidation, message).WithDetail(field, message)
}

func NotFound(resource string) *Error {
	return NewError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InsufficientStock(requested, available int) *Error {
	return NewError(CodeInsufficientStock, "insufficient stock").
		WithDetail("requested", fmt.Sprint(requested)).
		WithDetail("available", fmt.Sprint(available))
}

func DuplicateName(resource, name string) *Error {
	return NewError(CodeDuplicateName, fmt.Sprintf("%s %q already exists", resource, name))
}

func InUse(resource string, references int) *Error {
	return NewError(CodeInUse, fmt.Sprintf("%s is still referenced", resource)).
		WithDetail("references", fmt.Sprint(references))
}

// AsError extracts an *Error from err's chain.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
