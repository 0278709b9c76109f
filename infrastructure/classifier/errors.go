package classifier

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the classifier client and providers.
var (
	// ErrEmptyAPIKey indicates that an API key was required but not provided.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")
	// ErrInvalidLabelSet indicates a label set too small to classify over.
	ErrInvalidLabelSet = errors.New("invalid label set")
	// ErrEmptyResponse indicates that the provider returned an empty response.
	ErrEmptyResponse = errors.New("empty response from API")
	// ErrNoResponseChoice indicates a response with no valid choices.
	ErrNoResponseChoice = errors.New("no response choices returned")
	// ErrBatchSizeMismatch indicates a provider returned a prediction count
	// different from the input batch size.
	ErrBatchSizeMismatch = errors.New("prediction count does not match batch size")
	// ErrUnrecognizedLabel indicates a provider response that could not be
	// mapped onto the configured label set.
	ErrUnrecognizedLabel = errors.New("response does not match any configured label")
	// ErrInputTooLong indicates the provider rejected an input for
	// exceeding its length limit. The evaluator treats this as a
	// per-sample skip, never as a fatal run error.
	ErrInputTooLong = errors.New("input exceeds provider length limit")
)

// ErrorType represents the category of an error returned by a provider.
// It classifies errors for standardized handling such as retryability.
type ErrorType int

const (
	// ErrorTypeUnknown indicates an error of an undetermined category.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuthentication indicates an authentication problem.
	ErrorTypeAuthentication
	// ErrorTypeRateLimit indicates that a rate limit has been exceeded.
	ErrorTypeRateLimit
	// ErrorTypeBadRequest indicates a malformed request or invalid
	// parameters, including over-length inputs.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates a missing resource such as a model.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a problem on the provider's end.
	ErrorTypeServerError
	// ErrorTypeNetwork indicates a client-side network problem.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates that the request timed out.
	ErrorTypeTimeout
)

// ProviderError normalizes provider-specific errors into a common format
// with a classified type and relevant metadata.
type ProviderError struct {
	// Type classifies the error into a standard category.
	Type ErrorType
	// Provider identifies the provider that produced the error.
	Provider string
	// StatusCode holds the HTTP status code, if applicable.
	StatusCode int
	// Message contains the user-facing message from the provider.
	Message string
	// WrappedError holds the original underlying error.
	WrappedError error
}

// Error returns a string representation of the ProviderError.
func (e *ProviderError) Error() string {
	base := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if s := e.typeString(); s != "" {
		base += fmt.Sprintf(" [%s]", s)
	}
	if e.Message != "" {
		base += ": " + e.Message
	}
	if e.WrappedError != nil {
		base += fmt.Sprintf(": %v", e.WrappedError)
	}
	return base
}

// Unwrap returns the underlying wrapped error for errors.Is/As inspection.
func (e *ProviderError) Unwrap() error { return e.WrappedError }

// IsRetryable reports whether a request failing with this error should be
// retried. Transient issues (rate limits, server errors, network problems)
// are retryable; bad requests such as over-length inputs are not.
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeNetwork, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

func (e *ProviderError) typeString() string {
	switch e.Type {
	case ErrorTypeAuthentication:
		return "authentication"
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeBadRequest:
		return "bad_request"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeServerError:
		return "server_error"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return ""
	}
}

// NewProviderError builds a standardized error from a provider response.
func NewProviderError(provider string, errType ErrorType, statusCode int, message string, wrapped error) *ProviderError {
	return &ProviderError{
		Type:         errType,
		Provider:     provider,
		StatusCode:   statusCode,
		Message:      message,
		WrappedError: wrapped,
	}
}

// ErrorClassifier standardizes provider-specific errors into ProviderError
// instances using context such as HTTP status codes.
type ErrorClassifier struct {
	// Provider is the provider name this classifier works for.
	Provider string
}

// ClassifyHTTPError creates a ProviderError from an HTTP status code.
func (ec *ErrorClassifier) ClassifyHTTPError(statusCode int, message string, err error) *ProviderError {
	var errType ErrorType
	switch statusCode {
	case 401, 403:
		errType = ErrorTypeAuthentication
		message = fmt.Sprintf("%s authentication failed", ec.Provider)
	case 429:
		errType = ErrorTypeRateLimit
		message = fmt.Sprintf("%s rate limit exceeded", ec.Provider)
	case 400, 413:
		errType = ErrorTypeBadRequest
	case 404:
		errType = ErrorTypeNotFound
	case 500, 502, 503, 504:
		errType = ErrorTypeServerError
	default:
		switch {
		case statusCode >= 400 && statusCode < 500:
			errType = ErrorTypeBadRequest
		case statusCode >= 500:
			errType = ErrorTypeServerError
		default:
			errType = ErrorTypeUnknown
		}
	}
	return NewProviderError(ec.Provider, errType, statusCode, message, err)
}

// ClassifyContextError creates a ProviderError from a context error such as
// context.DeadlineExceeded or context.Canceled.
func (ec *ErrorClassifier) ClassifyContextError(err error) *ProviderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(ec.Provider, ErrorTypeTimeout, 0, "context deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return NewProviderError(ec.Provider, ErrorTypeNetwork, 0, "request canceled", err)
	default:
		return NewProviderError(ec.Provider, ErrorTypeUnknown, 0, "", err)
	}
}

// IsSkippable reports whether an error represents a per-sample condition
// (over-length input, content rejection) that should skip the sample
// rather than abort the evaluation run.
func IsSkippable(err error) bool {
	if errors.Is(err, ErrInputTooLong) || errors.Is(err, ErrUnrecognizedLabel) {
		return true
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeBadRequest || provErr.Type == ErrorTypeTimeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}
