package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"
	ErrorTypeTimeout  ErrorType = "TIMEOUT"
)

// Error codes for the engine's recoverable error kinds. All of these are
// reported to the caller as structured errors; none are fatal to a process.
const (
	CodeProcessNotFound     = "PROCESS_NOT_FOUND"
	CodeVersionNotFound     = "VERSION_NOT_FOUND"
	CodeNodeNotFound        = "NODE_NOT_FOUND"
	CodeEdgeNotFound        = "EDGE_NOT_FOUND"
	CodeFindingNotFound     = "FINDING_NOT_FOUND"
	CodeNodeInUse           = "NODE_IN_USE"
	CodeProcessArchived     = "PROCESS_ARCHIVED"
	CodeInvalidEdgeEndpoint = "INVALID_EDGE_ENDPOINT"
	CodeInvalidResolution   = "INVALID_RESOLUTION"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation string) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    fmt.Sprintf("operation '%s' timed out", operation),
		HTTPStatus: http.StatusRequestTimeout,
	}
}

// Engine-specific constructors

// NewProcessNotFoundError reports an unknown process id
func NewProcessNotFoundError(processID string) *AppError {
	return NewNotFoundError("process").
		WithCode(CodeProcessNotFound).
		WithDetails(map[string]interface{}{"process_id": processID})
}

// NewVersionNotFoundError reports an out-of-range version number
func NewVersionNotFoundError(version int) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("graph version %d not found", version),
		Code:       CodeVersionNotFound,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewNodeNotFoundError reports an unknown node id
func NewNodeNotFoundError(nodeID string) *AppError {
	return NewNotFoundError("node").
		WithCode(CodeNodeNotFound).
		WithDetails(map[string]interface{}{"node_id": nodeID})
}

// NewFindingNotFoundError reports an unknown risk finding id
func NewFindingNotFoundError(findingID string) *AppError {
	return NewNotFoundError("risk finding").
		WithCode(CodeFindingNotFound).
		WithDetails(map[string]interface{}{"finding_id": findingID})
}

// NewNodeInUseError reports a node removal blocked by incident edges
func NewNodeInUseError(nodeID string, edgeCount int) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    fmt.Sprintf("node is still referenced by %d edge(s)", edgeCount),
		Code:       CodeNodeInUse,
		Details:    map[string]interface{}{"node_id": nodeID, "edge_count": edgeCount},
		HTTPStatus: http.StatusConflict,
	}
}

// NewInvalidEdgeEndpointError reports an edge candidate whose endpoint could
// not be resolved to a node in the live graph
func NewInvalidEdgeEndpointError(reference string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    fmt.Sprintf("edge endpoint %q does not resolve to a known node", reference),
		Code:       CodeInvalidEdgeEndpoint,
		Details:    map[string]interface{}{"reference": reference},
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidResolutionError reports a resolve call with empty notes
func NewInvalidResolutionError() *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    "resolution notes cannot be empty",
		Code:       CodeInvalidResolution,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsCode checks if an error carries a specific error code
func IsCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
