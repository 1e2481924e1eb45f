package model

import "net/http"

// APIError is the unified error shape surfaced to clients. Every handler
// converts it to a JSON body {"error": message} with the carried status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

// NewConflictError reports a uniqueness violation, e.g. a taken email.
// Conflicts surface as 400; existing clients key off that status.
func NewConflictError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

// NewAuthError reports bad credentials or a bad/missing/expired token.
func NewAuthError(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message}
}

// NewAuthzError reports an authenticated caller with insufficient
// role or ownership.
func NewAuthzError(message string) *APIError {
	return &APIError{Status: http.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message}
}

// NewServerError wraps store or filesystem failures with a generic message.
func NewServerError(message string) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Message: message}
}
