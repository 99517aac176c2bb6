package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the transport view of an error.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP maps any error into an HTTPError. Errors that are not AppErrors are
// reported as INTERNAL_ERROR without leaking their text.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return HTTPError{
			Status:  status,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  ErrInternal.HTTPStatus,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}
}
