package apperror

import (
	"fmt"
	"net/http"
)

// AppError is an expected, caller-facing failure. Anything that is not an
// AppError is treated as an infrastructure failure.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches on Code so sentinels work with errors.Is even after
// WithMessage produced a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy carrying a more specific message.
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	return &AppError{Code: e.Code, Message: fmt.Sprintf(format, args...), Status: e.Status}
}

const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeDuplicateSession    = "DUPLICATE_SESSION"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeLocationNotFound    = "LOCATION_NOT_FOUND"
	CodeOutOfRange          = "OUT_OF_RANGE"
	CodeNotFoundOrForbidden = "NOT_FOUND"
	CodeEmptyBatch          = "EMPTY_BATCH"
	CodeDuplicateRecord     = "DUPLICATE_RECORD"
	CodeInvalidRecord       = "INVALID_RECORD"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL_ERROR"
)

var (
	ErrDuplicateSession = &AppError{
		Code:    CodeDuplicateSession,
		Message: "Already checked in today",
		Status:  http.StatusBadRequest,
	}
	ErrSessionNotFound = &AppError{
		Code:    CodeSessionNotFound,
		Message: "Active attendance record not found",
		Status:  http.StatusNotFound,
	}
	ErrLocationNotFound = &AppError{
		Code:    CodeLocationNotFound,
		Message: "Location not found",
		Status:  http.StatusNotFound,
	}
	ErrOutOfRange = &AppError{
		Code:    CodeOutOfRange,
		Message: "You are not within the allowed location radius",
		Status:  http.StatusBadRequest,
	}
	// ErrNotFoundOrForbidden is returned both for missing records and for
	// records the requester may not see.
	ErrNotFoundOrForbidden = &AppError{
		Code:    CodeNotFoundOrForbidden,
		Message: "Attendance record not found",
		Status:  http.StatusNotFound,
	}
	ErrEmptyBatch = &AppError{
		Code:    CodeEmptyBatch,
		Message: "Records array is required",
		Status:  http.StatusBadRequest,
	}
	ErrDuplicateRecord = &AppError{
		Code:    CodeDuplicateRecord,
		Message: "Duplicate record",
		Status:  http.StatusConflict,
	}
	ErrInvalidRecord = &AppError{
		Code:    CodeInvalidRecord,
		Message: "Invalid record",
		Status:  http.StatusUnprocessableEntity,
	}
)

func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Status: http.StatusBadRequest}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

// Internal is what the caller sees for any infrastructure failure; detail
// stays in the server log.
func Internal() *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Status: http.StatusInternalServerError}
}
