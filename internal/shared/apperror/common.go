package apperror

import "net/http"

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"Internal server error",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidToken = New(
		CodeInvalidToken,
		"Invalid token",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = New(
		CodeTokenExpired,
		"Token has expired",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	// ErrStorageConflict is returned when a unique key race still reaches the
	// database. Callers may retry the same request.
	ErrStorageConflict = New(
		CodeStorageConflict,
		"Record was modified concurrently, please retry",
		http.StatusConflict,
	)
)

// RequiredField builds a MISSING_FIELD error for the given field label.
func RequiredField(field string) *AppError {
	return New(CodeMissingField, field+" is required", http.StatusBadRequest)
}

// InvalidField builds an INVALID_INPUT error for the given field label.
func InvalidField(field string) *AppError {
	return New(CodeInvalidInput, field+" is invalid", http.StatusBadRequest)
}
