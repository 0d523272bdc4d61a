// Package errors provides unified error handling for livefeed services.
// It implements structured error types with machine-readable codes, HTTP
// status mapping, and retryable detection.
package errors
