package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type ErrorCode string

const (
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeBadRequest   ErrorCode = "BAD_REQUEST"
	CodeRateLimit    ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeExportFailed ErrorCode = "EXPORT_FAILED"
)

// AppError is the single error shape crossing component boundaries. Every
// recoverable condition is converted into one at the boundary of the
// component that detects it; nothing terminates the process.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode(code),
		Timestamp:  time.Now().UTC(),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	e := New(code, message)
	e.Cause = err
	return e
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func RateLimit(message string) *AppError {
	return New(CodeRateLimit, message)
}

// ExportFailed wraps a serialization failure of the download artifacts.
func ExportFailed(err error) *AppError {
	return Wrap(err, CodeExportFailed, "failed to serialize the filtered dataset")
}

func statusCode(code ErrorCode) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

type SuccessResponse struct {
	Data    any  `json:"data"`
	Success bool `json:"success"`
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = Internal("An unexpected error occurred")
		appErr.Cause = err
	}
	appErr.RequestID = requestID

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	if encodeErr := json.NewEncoder(w).Encode(ErrorResponse{Error: appErr}); encodeErr != nil {
		logger.Error("failed to encode error response",
			"encode_error", encodeErr,
			"original_error", err,
			"request_id", requestID,
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	level := slog.LevelError
	if appErr.StatusCode < 500 {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "request failed",
		"error_code", appErr.Code,
		"status_code", appErr.StatusCode,
		"request_id", requestID,
		"cause", appErr.Cause,
	)
}

func WriteSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(SuccessResponse{Data: data, Success: true})
}

func WriteSuccessWithHeaders(w http.ResponseWriter, data any, headers map[string]string) {
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	WriteSuccess(w, data)
}
