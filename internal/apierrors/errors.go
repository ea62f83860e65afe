// Package apierrors defines caller-facing errors together with the HTTP
// status they are reported with.
package apierrors

import (
	"fmt"
	"net/http"
)

// APIError is an error that is safe to show to the API caller.
type APIError struct {
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewErrValidation reports missing or malformed input.
func NewErrValidation(message string) *APIError {
	return &APIError{Code: http.StatusBadRequest, Message: message}
}

// NewErrEmailIsTaken reports a signup with an already registered email.
func NewErrEmailIsTaken(email string) *APIError {
	return &APIError{
		Code:    http.StatusBadRequest,
		Message: "Email already exists",
		Err:     fmt.Errorf("email %q is already taken", email),
	}
}

// NewErrInvalidCredentials reports a failed login. It never says whether
// the email is registered.
func NewErrInvalidCredentials() *APIError {
	return &APIError{Code: http.StatusUnauthorized, Message: "Invalid credentials"}
}

func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{Code: http.StatusUnauthorized, Message: "Authorization token is required"}
}

func NewErrInvalidAuthorizationToken() *APIError {
	return &APIError{Code: http.StatusUnauthorized, Message: "Invalid or expired token"}
}

// NewErrTaskNotFound reports a task that does not exist or is not owned by
// the caller. Both cases look the same.
func NewErrTaskNotFound(taskID any) *APIError {
	return &APIError{
		Code:    http.StatusNotFound,
		Message: "Task not found",
		Err:     fmt.Errorf("task %v not found", taskID),
	}
}

// NewErrInternalServerError wraps an unexpected failure. The cause message
// is echoed to the caller.
func NewErrInternalServerError(err error) *APIError {
	msg := "internal server error"
	if err != nil {
		msg = err.Error()
	}
	return &APIError{Code: http.StatusInternalServerError, Message: msg, Err: err}
}
