// Package errors provides structured error handling for the application.
// Every client-visible failure is an AppError; the HTTP layer renders only
// its Message, the rest is for logs.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorCode represents an error code
type ErrorCode string

// Error codes. Codes never leave the process; clients only see messages.
const (
	// Client errors (4xx)
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	CodeDuplicateIdentity  ErrorCode = "DUPLICATE_IDENTITY"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeMissingToken       ErrorCode = "MISSING_TOKEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeInvalidResetToken  ErrorCode = "INVALID_RESET_TOKEN"
	CodeForbiddenRole      ErrorCode = "FORBIDDEN_ROLE"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"
	CodeStorageError  ErrorCode = "STORAGE_ERROR"
)

// Messages shared with clients
const (
	MsgDuplicateIdentity  = "Username or email already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgMissingToken       = "No token provided"
	MsgInvalidToken       = "Invalid token"
	MsgInvalidResetToken  = "Invalid or expired token"
	MsgForbiddenRole      = "Admin access required"
	MsgInternal           = "Internal Server Error"
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status code for the error
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed, CodeDuplicateIdentity, CodeInvalidResetToken:
		return http.StatusBadRequest
	case CodeInvalidCredentials, CodeMissingToken, CodeInvalidToken:
		return http.StatusUnauthorized
	case CodeForbiddenRole:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error; the message is shown to the client.
func NewValidationError(message string) *AppError {
	return NewAppError(CodeValidationFailed, message, "")
}

// NewDuplicateIdentityError is returned when a username or email is taken
func NewDuplicateIdentityError() *AppError {
	return NewAppError(CodeDuplicateIdentity, MsgDuplicateIdentity, "")
}

// NewInvalidCredentialsError is returned for any failed login. It does not
// reveal whether the account exists.
func NewInvalidCredentialsError() *AppError {
	return NewAppError(CodeInvalidCredentials, MsgInvalidCredentials, "")
}

// NewMissingTokenError creates an error for requests without a bearer token
func NewMissingTokenError() *AppError {
	return NewAppError(CodeMissingToken, MsgMissingToken, "")
}

// NewInvalidTokenError creates an error for tokens that fail verification
func NewInvalidTokenError(cause error) *AppError {
	return NewAppError(CodeInvalidToken, MsgInvalidToken, "").WithCause(cause)
}

// NewInvalidResetTokenError creates an error for unusable password reset tokens
func NewInvalidResetTokenError(cause error) *AppError {
	return NewAppError(CodeInvalidResetToken, MsgInvalidResetToken, "").WithCause(cause)
}

// NewForbiddenRoleError creates an error for callers lacking the admin role
func NewForbiddenRoleError() *AppError {
	return NewAppError(CodeForbiddenRole, MsgForbiddenRole, "")
}

// NewForbiddenError creates a forbidden error with a custom message
func NewForbiddenError(message string) *AppError {
	return NewAppError(CodeForbiddenRole, message, "")
}

// NewNotFoundError creates a not found error for the named resource
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s%s not found", strings.ToUpper(resource[:1]), resource[1:])
	}
	return NewAppError(CodeNotFound, message, "").WithMetadata("resource", resource)
}

// NewTooManyRequestsError creates a rate limit error
func NewTooManyRequestsError() *AppError {
	return NewAppError(CodeTooManyRequests, "Too many requests", "")
}

// NewInternalError creates an internal server error
func NewInternalError(details string) *AppError {
	return NewAppError(CodeInternal, MsgInternal, details)
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		MsgInternal,
		fmt.Sprintf("failed to %s", operation),
	).WithCause(cause)
}

// NewStorageError creates an image storage error
func NewStorageError(operation string, cause error) *AppError {
	return NewAppError(
		CodeStorageError,
		MsgInternal,
		fmt.Sprintf("failed to %s", operation),
	).WithCause(cause)
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, details string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(details).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// Response is the body of every error response
type Response struct {
	Message string `json:"message"`
}

// ToResponse converts an error into the client-visible body. Errors that are
// not AppErrors never leak their text.
func ToResponse(err error) (int, Response) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode(), Response{Message: appErr.Message}
	}
	return http.StatusInternalServerError, Response{Message: MsgInternal}
}
