// Package errors carries the dashboard's coded errors and the JSON envelope
// the HTTP layer writes them in.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type ErrorCode string

const (
	CodeInternal    ErrorCode = "INTERNAL_ERROR"
	CodeValidation  ErrorCode = "VALIDATION_ERROR"
	CodeNotFound    ErrorCode = "NOT_FOUND"
	CodeBadRequest  ErrorCode = "BAD_REQUEST"
	CodeRateLimit   ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeDataUnavail ErrorCode = "DATA_UNAVAILABLE"
)

var statusByCode = map[ErrorCode]int{
	CodeValidation:  http.StatusBadRequest,
	CodeBadRequest:  http.StatusBadRequest,
	CodeNotFound:    http.StatusNotFound,
	CodeRateLimit:   http.StatusTooManyRequests,
	CodeDataUnavail: http.StatusServiceUnavailable,
}

// DataUnavailableMessage is shown to operators whenever the input datasets
// cannot be read.
const DataUnavailableMessage = "Make sure the order dataset and the customer segmentation dataset exist at the configured paths and are valid CSV files, then restart the dashboard."

type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Wrap builds an AppError for code around cause, which may be nil.
func Wrap(cause error, code ErrorCode, message string) *AppError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
		Timestamp:  time.Now().UTC(),
	}
}

func New(code ErrorCode, message string) *AppError { return Wrap(nil, code, message) }

func Internal(message string) *AppError { return New(CodeInternal, message) }
func InternalWrap(err error, message string) *AppError { return Wrap(err, CodeInternal, message) }
func Validation(message string) *AppError { return New(CodeValidation, message) }
func NotFound(message string) *AppError { return New(CodeNotFound, message) }
func RateLimit(message string) *AppError { return New(CodeRateLimit, message) }

func BadRequestWrap(err error, message string) *AppError {
	return Wrap(err, CodeBadRequest, message)
}

// DataUnavailable reports a missing, malformed, or unparseable input dataset.
// Details always carry the operator instructions.
func DataUnavailable(err error, message string) *AppError {
	appErr := Wrap(err, CodeDataUnavail, message)
	appErr.Details = DataUnavailableMessage
	return appErr
}

// IsDataUnavailable reports whether err, or anything it wraps, is a
// DataUnavailable error.
func IsDataUnavailable(err error) bool {
	return HasCode(err, CodeDataUnavail)
}

func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

type SuccessResponse struct {
	Data    any  `json:"data"`
	Success bool `json:"success"`
}

// WriteError writes err in the error envelope. Errors that are not AppErrors
// are reported as internal without exposing their text. The caller's error is
// never modified.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	var resp AppError
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		resp = *appErr
	} else {
		resp = *InternalWrap(err, "An unexpected error occurred")
	}
	resp.RequestID = requestID

	level := slog.LevelWarn
	if resp.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, "request failed",
		"error_code", resp.Code,
		"error_message", resp.Message,
		"status_code", resp.StatusCode,
		"request_id", requestID,
		"cause", resp.Cause,
	)

	if encErr := writeJSON(w, resp.StatusCode, ErrorResponse{Error: &resp}); encErr != nil {
		logger.Error("encode error response", "error", encErr, "request_id", requestID)
	}
}

func WriteSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, SuccessResponse{Data: data, Success: true})
}

func WriteSuccessWithHeaders(w http.ResponseWriter, data any, headers map[string]string) {
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	WriteSuccess(w, data)
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
