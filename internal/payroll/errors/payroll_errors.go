package payrollerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrInvalidPayrollID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeInvalidInput,
		"invalid month, expected a month name or 1-12",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"invalid year",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"salary component values cannot be negative",
		http.StatusBadRequest,
	)
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll not found",
		http.StatusNotFound,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"not authorized to access this payroll record",
		http.StatusForbidden,
	)
)
