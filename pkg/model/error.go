package model

import (
	"fmt"
	"net/http"
)

type ErrorWithCode interface {
	Error() string
	Code() string
}

// Error is the error type returned by every Base and Drive call. Errors are
// matched by code, so errors.Is(err, ErrNotFound) holds for any not-found
// error regardless of its message or status.
type Error struct {
	ErrCode string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) Code() string {
	return e.ErrCode
}

// Fmt creates a new error from the base error template with provided arguments
func (e Error) Fmt(args ...any) Error {
	return Error{
		ErrCode: e.ErrCode,
		Message: fmt.Sprintf(e.Message, args...),
		Status:  e.Status,
	}
}

// WithStatus returns a copy of e carrying the HTTP status that produced it.
func (e Error) WithStatus(status int) Error {
	e.Status = status
	return e
}

func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}
	return t.ErrCode == e.ErrCode
}

func NewError(code, message string) Error {
	return Error{
		ErrCode: code,
		Message: message,
	}
}

var (
	ErrValidation       = NewError("validation", "Validation error: %s")
	ErrBadRequest       = NewError("request.bad", "Bad request: %s").WithStatus(http.StatusBadRequest)
	ErrNotFound         = NewError("resource.not_found", "Resource not found: %s").WithStatus(http.StatusNotFound)
	ErrKeyConflict      = NewError("key.conflict", "Key already exists: %s").WithStatus(http.StatusConflict)
	ErrPayloadTooLarge  = NewError("payload.too_large", "Payload exceeds the size limit: %s").WithStatus(http.StatusRequestEntityTooLarge)
	ErrUnexpectedStatus = NewError("request.failed", "Request failed with status %d: %s")
	ErrUploadFailed     = NewError("upload.failed", "Upload of %q failed: %s")
)
