package leaveerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidRange,
		"end_date must not be before start_date",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be one of PAID_TIME_OFF, SICK, UNPAID",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of PENDING, APPROVED, REJECTED",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrAlreadyProcessed = apperror.New(
		apperror.CodeAlreadyProcessed,
		"leave request has already been processed",
		http.StatusConflict,
	)
	ErrMissingComment = apperror.New(
		apperror.CodeMissingComment,
		"comment is required to reject a leave request",
		http.StatusBadRequest,
	)
	ErrNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"leave request is not approved",
		http.StatusConflict,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"you do not have permission to access this leave request",
		http.StatusForbidden,
	)
	ErrBackfillIncomplete = apperror.New(
		apperror.CodeBackfillIncomplete,
		"leave approved but attendance backfill did not complete",
		http.StatusInternalServerError,
	)
)
