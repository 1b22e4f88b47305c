// Package apperr defines the typed errors surfaced by the webhook and sync services.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeProviderUnsupported = "WEBHOOK_PROVIDER_UNSUPPORTED"
	CodeTopicUnsupported    = "WEBHOOK_TOPIC_UNSUPPORTED"
	CodeSignatureInvalid    = "WEBHOOK_SIGNATURE_INVALID"
	CodeReplayDetected      = "WEBHOOK_REPLAY_DETECTED"
	CodePayloadInvalid      = "WEBHOOK_PAYLOAD_INVALID"
	CodePayloadTooLarge     = "WEBHOOK_PAYLOAD_TOO_LARGE"
	CodeSyncJobNotFound     = "SYNC_JOB_NOT_FOUND"
	CodeSyncJobInactive     = "SYNC_JOB_INACTIVE"
	CodeSyncJobActive       = "SYNC_JOB_ACTIVE"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

var (
	// ErrProviderUnsupported indicates an unknown provider path segment.
	ErrProviderUnsupported = New(CodeProviderUnsupported, http.StatusBadRequest, "webhook provider is not supported")
	// ErrTopicUnsupported indicates an unknown commerce topic path segment.
	ErrTopicUnsupported = New(CodeTopicUnsupported, http.StatusBadRequest, "webhook topic is not supported")
	// ErrSignatureInvalid indicates a missing or mismatching signature header.
	ErrSignatureInvalid = New(CodeSignatureInvalid, http.StatusUnauthorized, "webhook signature is invalid")
	// ErrReplayDetected indicates a delivery already seen within the replay window.
	ErrReplayDetected = New(CodeReplayDetected, http.StatusConflict, "webhook delivery was already received")
	// ErrPayloadInvalid indicates an authenticated delivery whose body is not valid JSON.
	ErrPayloadInvalid = New(CodePayloadInvalid, http.StatusBadRequest, "webhook payload is not valid JSON")
	// ErrPayloadTooLarge indicates a body above the configured limit.
	ErrPayloadTooLarge = New(CodePayloadTooLarge, http.StatusRequestEntityTooLarge, "webhook payload is too large")
	// ErrSyncJobNotFound indicates an unknown sync job id.
	ErrSyncJobNotFound = New(CodeSyncJobNotFound, http.StatusNotFound, "sync job not found")
	// ErrSyncJobInactive indicates a run request for a paused job.
	ErrSyncJobInactive = New(CodeSyncJobInactive, http.StatusConflict, "sync job is not active")
	// ErrSyncJobActive indicates a resume request for a job that is already active.
	ErrSyncJobActive = New(CodeSyncJobActive, http.StatusConflict, "sync job is already active")
	// ErrValidation indicates malformed request input.
	ErrValidation = New(CodeValidationFailed, http.StatusBadRequest, "request validation failed")
	// ErrRateLimited indicates the caller exceeded the request rate limit.
	ErrRateLimited = New(CodeRateLimited, http.StatusTooManyRequests, "too many requests")
	// ErrNotFound indicates an unknown route.
	ErrNotFound = New(CodeNotFound, http.StatusNotFound, "resource not found")
)

// Error is a domain error with an HTTP status and a stable code.
type Error struct {
	Code    string
	Status  int
	Message string
	Details any
	// Exposed errors carry a message safe to return to callers.
	Exposed bool
	cause   error
}

// New builds an exposed domain error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Exposed: true}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by code so copies with details still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// WithDetails returns a copy carrying caller-visible details.
func (e *Error) WithDetails(details any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// WithMessage returns a copy with a more specific message.
func (e *Error) WithMessage(message string) *Error {
	clone := *e
	clone.Message = message
	return &clone
}

// Wrap returns a copy recording cause for logs.
func (e *Error) Wrap(cause error) *Error {
	clone := *e
	clone.cause = cause
	return &clone
}

// Internal builds a masked error for unexpected failures.
func Internal(cause error) *Error {
	return &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		cause:   cause,
	}
}

// From classifies err. Unknown errors become masked internal errors.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Internal(err)
}
