package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried by the client.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the HTTP status code to answer with.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// ObjectNotFound is returned when a key or folder is absent from the bucket.
func ObjectNotFound(path string) *AppError {
	return &AppError{
		Code: ErrCodeObjectNotFound, Message: fmt.Sprintf("File or folder not found: %s", path),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"path": path},
	}
}

// CredentialsUnavailable is returned when the storage provider has no usable credentials.
func CredentialsUnavailable(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCredentialsUnavailable, Message: "AWS credentials not available",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// ProviderError wraps a storage provider failure. The provider message is
// surfaced to the client.
func ProviderError(cause error) *AppError {
	msg := "storage provider error"
	if cause != nil {
		msg = fmt.Sprintf("AWS Error: %v", cause)
	}
	return &AppError{
		Code: ErrCodeProviderError, Message: msg,
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
	}
}

// MetaParseError is returned when an inline JSON object cannot be read or decoded.
func MetaParseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeMetaParseError, Message: fmt.Sprintf("Error reading meta.json: %v", cause),
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// RateLimited creates a new AppError for too many requests.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests. Please wait a moment and try again.",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// InvalidInput creates a new AppError for an invalid request parameter.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
