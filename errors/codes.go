package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors
const (
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client exceeded its request budget.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Object storage errors
const (
	// ErrCodeObjectNotFound indicates the requested key or prefix does not exist.
	ErrCodeObjectNotFound ErrorCode = "OBJECT_NOT_FOUND"
	// ErrCodeCredentialsUnavailable indicates the provider credentials are missing or rejected.
	ErrCodeCredentialsUnavailable ErrorCode = "CREDENTIALS_UNAVAILABLE"
	// ErrCodeProviderError indicates any other failure reported by the storage provider.
	ErrCodeProviderError ErrorCode = "PROVIDER_ERROR"
	// ErrCodeMetaParseError indicates an inline JSON object could not be read or parsed.
	ErrCodeMetaParseError ErrorCode = "META_PARSE_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates a request parameter is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Provider errors are reported as retryable hints only; the gateway itself
// never retries.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:       true,
	ErrCodeRateLimited:   true,
	ErrCodeProviderError: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
