// Package errors contains the service error type shared by all HTTP surfaces
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryDataError The client sent invalid data: malformed JSON body,
	// malformed hash or address, missing required field.
	CategoryDataError Category = iota
	// CategoryResourceNotFound The requested resource does not exist. A
	// status query for an unknown transfer identifier lands here so callers
	// can tell "never existed / state lost" apart from transient failures.
	CategoryResourceNotFound
	// CategoryDependencyFailure An upstream chain RPC is failing: endpoint
	// unreachable, transaction not found, confirmation timeout.
	CategoryDependencyFailure
	// CategoryConfigMismatch A topic-matched log failed to decode, the
	// expected event is absent from the receipt, or the decoded destination
	// chain id disagrees with configuration. These almost always indicate a
	// contract or configuration bug rather than a transient fault.
	CategoryConfigMismatch
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	case CategoryConfigMismatch:
		return "CategoryConfigMismatch"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError is the error type surfaced to HTTP clients. Message is always
// written to the response; Debug carries diagnostic context (receipt log
// summaries, expected vs. actual address and topic) for operator debugging.
type ServiceError struct {
	Category Category
	Message  string
	Debug    map[string]any
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	case CategoryConfigMismatch:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// BadRequestError returns an error with category DataError.
// The message provided is returned to the caller.
func BadRequestError(err error, message string) error {
	if err == nil {
		err = errors.New("bad request: " + message)
	}
	return &ServiceError{
		Category: CategoryDataError,
		Message:  message,
		Err:      err,
	}
}

// ResourceNotFoundError returns an error with category ResourceNotFound
func ResourceNotFoundError(err error, message string) error {
	if err == nil {
		err = errors.New("resource not found: " + message)
	}
	return &ServiceError{
		Category: CategoryResourceNotFound,
		Message:  message,
		Err:      err,
	}
}

// DependencyFailureError returns an error with category DependencyFailure
func DependencyFailureError(err error, message string) error {
	if err == nil {
		err = errors.New("dependency failure: " + message)
	}
	return &ServiceError{
		Category: CategoryDependencyFailure,
		Message:  message,
		Err:      err,
	}
}

// ConfigMismatchError returns an error with category ConfigMismatch carrying
// a diagnostic payload that is echoed back to the caller
func ConfigMismatchError(err error, message string, debug map[string]any) error {
	if err == nil {
		err = errors.New("config mismatch: " + message)
	}
	return &ServiceError{
		Category: CategoryConfigMismatch,
		Message:  message,
		Debug:    debug,
		Err:      err,
	}
}

// GeneralError returns a general service error. The message sent to the
// caller is "internal server error"; the wrapped error goes to the logs.
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "internal server error",
		Err:      err,
	}
}
