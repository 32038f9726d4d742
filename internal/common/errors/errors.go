// Package errors provides standardized error handling for the activities API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeActivityNotFound    ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeParticipantNotFound ErrorCode = "PARTICIPANT_NOT_FOUND"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"

	ErrCodeRegistryStoreFailed    ErrorCode = "REGISTRY_STORE_FAILED"
	ErrCodeSeedInvalid            ErrorCode = "SEED_INVALID"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewActivityNotFoundError is returned when a mutation names an unknown activity.
func NewActivityNotFoundError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("no activity named %q", activity),
		Metadata:  map[string]interface{}{"activity": activity},
		Timestamp: time.Now().UTC(),
	}
}

// NewParticipantNotFoundError is returned when withdrawing an email that is not enrolled.
func NewParticipantNotFoundError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParticipantNotFound,
		Message:   "Participant not found",
		Details:   fmt.Sprintf("%s is not signed up for %s", email, activity),
		Metadata:  map[string]interface{}{"activity": activity, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   details,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryStoreFailedError wraps a roster backend failure. The mutation was rolled back.
func NewRegistryStoreFailedError(activity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryStoreFailed,
		Message:   "Roster could not be saved",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"activity": activity},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSeedInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSeedInvalid,
		Message:   "Seed data is invalid",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("Notification via %s failed", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// HTTPStatusMapping maps error codes to the status returned to clients.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeActivityNotFound:    http.StatusNotFound,
	ErrCodeParticipantNotFound: http.StatusNotFound,
	ErrCodeValidationFailed:    http.StatusUnprocessableEntity,
	ErrCodeRegistryStoreFailed: http.StatusInternalServerError,
	ErrCodeSeedInvalid:         http.StatusInternalServerError,
}

// HTTPStatus returns the response status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Normalize converts any error into a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HasCode reports whether err is, or wraps, a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasSuffix(codeStr, "_NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
