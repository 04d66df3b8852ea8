// Package errors provides standardized error handling for the review console.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFetchFailed            ErrorCode = "FETCH_FAILED"
	ErrCodeApplicationNotFound    ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeTransitionFailed       ErrorCode = "TRANSITION_FAILED"
	ErrCodeTransitionInFlight     ErrorCode = "TRANSITION_IN_FLIGHT"
	ErrCodeActionNotPermitted     ErrorCode = "ACTION_NOT_PERMITTED"
	ErrCodeNoApplicationLoaded    ErrorCode = "NO_APPLICATION_LOADED"
	ErrCodeStaleResponse          ErrorCode = "STALE_RESPONSE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeAuditWriteFailed       ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeListFetchFailed        ErrorCode = "LIST_FETCH_FAILED"
)

// StandardError represents a structured application error. Message is safe to
// show to the operator; Details carries transport-level diagnostics for logs.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the standardized code from an error, UNKNOWN_ERROR when the
// error did not originate here.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFetchFailedError creates a retryable load error. The message is the
// blocking "unable to load" text shown to the operator; raw transport detail
// stays in Details.
func NewFetchFailedError(applicationID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchFailed,
		Message:   "Unable to load application details",
		Details:   fmt.Sprintf("applicationId: %s, error: %s", applicationID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotFoundError creates a non-retryable missing-record error.
func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransitionFailedError creates a retryable status-change error. The view
// stays in its pre-transition state when this is returned.
func NewTransitionFailedError(applicationID, action string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransitionFailed,
		Message:   "Failed to update status",
		Details:   fmt.Sprintf("applicationId: %s, action: %s, error: %s", applicationID, action, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransitionInFlightError rejects a second submission while one is still
// pending. Non-retryable by design: no queuing, no cancellation.
func NewTransitionInFlightError(inFlight string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransitionInFlight,
		Message:   "Another action is already in progress",
		Details:   fmt.Sprintf("inFlightAction: %s", inFlight),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActionNotPermittedError flags an action outside the permitted set for
// the current status and risk tier.
func NewActionNotPermittedError(action, status, tier string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionNotPermitted,
		Message:   fmt.Sprintf("Action %q is not permitted in the current state", action),
		Details:   fmt.Sprintf("status: %s, riskTier: %s", status, tier),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoApplicationLoadedError flags an action submitted before a successful
// load.
func NewNoApplicationLoadedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoApplicationLoaded,
		Message:   "No application is loaded",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStaleResponseError marks a response that arrived after the operator
// moved to a different application. The result is discarded, never applied.
func NewStaleResponseError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStaleResponse,
		Message:   "Response discarded, view has changed",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable side-effect error. It
// never affects status or permitted actions.
func NewNotificationSendFailedError(applicationID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send meeting notification",
		Details:   fmt.Sprintf("applicationId: %s, error: %s", applicationID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable request validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable decision-history error.
func NewAuditWriteFailedError(applicationID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Failed to record review decision",
		Details:   fmt.Sprintf("applicationId: %s, error: %s", applicationID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewListFetchFailedError creates a retryable applications-list error.
func NewListFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeListFetchFailed,
		Message:   "Unable to load applications from the server",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
