// Package errors defines the gateway's error taxonomy. Every failure that
// reaches an HTTP client is an *AppError carrying a machine-readable code,
// the HTTP status to answer with and a retryable hint.
package errors
