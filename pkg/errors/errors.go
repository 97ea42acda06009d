package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorType represents the classification of a failure
type ErrorType string

const (
	// ErrorTypeNetwork indicates the backend could not be reached (includes timeouts)
	ErrorTypeNetwork ErrorType = "NETWORK_UNREACHABLE"

	// ErrorTypeHTTP indicates the backend answered with a non-2xx status
	ErrorTypeHTTP ErrorType = "HTTP"

	// ErrorTypeMalformed indicates a response payload missing expected fields
	ErrorTypeMalformed ErrorType = "MALFORMED_RESPONSE"

	// ErrorTypeValidation indicates a client-side form validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeUnauthorized indicates an authenticated call was rejected with 401
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeForbidden indicates the session lacks the role for an action
	ErrorTypeForbidden ErrorType = "FORBIDDEN"

	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Status  int
	Field   string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new network-unreachable error
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeNetwork,
		Message: message,
		Err:     err,
	}
}

// NewHTTPError creates an error for a non-2xx response
func NewHTTPError(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Type:    ErrorTypeHTTP,
		Message: message,
		Status:  status,
	}
}

// NewMalformedResponseError creates a new malformed response error
func NewMalformedResponseError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeMalformed,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a new validation error for a form field
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Field:   field,
		Message: message,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = http.StatusText(http.StatusUnauthorized)
	}
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	var fieldErrs ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		return ErrorTypeValidation
	}
	return ErrorTypeInternal
}

// Is reports whether err is an AppError of the given type.
func Is(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// IsUnauthorized reports whether err is an UNAUTHORIZED AppError.
func IsUnauthorized(err error) bool {
	return Is(err, ErrorTypeUnauthorized)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}

// UserMessage renders the single user-visible message for a failed action.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fieldErrs ValidationErrors
	if stderrors.As(err, &fieldErrs) && !fieldErrs.Empty() {
		return fieldErrs.Fields()[0].Message
	}
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return "Something went wrong. Please try again."
	}
	switch appErr.Type {
	case ErrorTypeNetwork:
		return "Network error. Please check your connection and try again."
	case ErrorTypeMalformed:
		return "The server sent an unexpected response. Please try again later."
	case ErrorTypeUnauthorized:
		return "Your session has expired. Please log in again."
	default:
		return appErr.Message
	}
}

// ValidationErrors collects per-field validation messages of a form.
type ValidationErrors map[string]string

// Add records a message for field, keeping the first message per field.
func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

// Empty reports whether no field failed validation.
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// Err returns nil when there are no failures, otherwise the failures as an error.
func (v ValidationErrors) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// Error implements the error interface with fields in a stable order
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v[field]))
	}
	return "VALIDATION: " + strings.Join(parts, "; ")
}

// Fields returns the failures as AppErrors ordered by field name.
func (v ValidationErrors) Fields() []*AppError {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]*AppError, 0, len(fields))
	for _, field := range fields {
		out = append(out, NewValidationError(field, v[field]))
	}
	return out
}
