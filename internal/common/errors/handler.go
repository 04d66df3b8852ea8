// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler maps StandardErrors onto HTTP responses with standardized
// logging. Only Message and Code cross the API boundary; Details stay in the
// logs.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// httpStatus maps standardized codes to HTTP statuses.
var httpStatus = map[ErrorCode]int{
	ErrCodeFetchFailed:            http.StatusBadGateway,
	ErrCodeApplicationNotFound:    http.StatusNotFound,
	ErrCodeTransitionFailed:       http.StatusBadGateway,
	ErrCodeTransitionInFlight:     http.StatusConflict,
	ErrCodeActionNotPermitted:     http.StatusConflict,
	ErrCodeNoApplicationLoaded:    http.StatusConflict,
	ErrCodeStaleResponse:          http.StatusConflict,
	ErrCodeNotificationSendFailed: http.StatusBadGateway,
	ErrCodeValidationFailed:       http.StatusBadRequest,
	ErrCodeAuditWriteFailed:       http.StatusInternalServerError,
	ErrCodeListFetchFailed:        http.StatusBadGateway,
}

// HandleHTTPError writes the error response and logs it.
func (h *ErrorHandler) HandleHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.normalizeError(err)

	status, ok := httpStatus[stdErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	h.logger.Error("Request failed", map[string]interface{}{
		"method":    r.Method,
		"path":      r.URL.Path,
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
		"status":    status,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":      string(stdErr.Code),
			"message":   stdErr.Message,
			"retryable": stdErr.Retryable,
		},
	})
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
