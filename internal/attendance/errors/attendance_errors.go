package attendanceerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeAlreadyCheckedIn,
		"already checked in today",
		http.StatusConflict,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeAlreadyCheckedOut,
		"already checked out today",
		http.StatusConflict,
	)
	ErrNotCheckedIn = apperror.New(
		apperror.CodeNotCheckedIn,
		"please check in first",
		http.StatusConflict,
	)
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance record not found",
		http.StatusNotFound,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of PRESENT, ABSENT, HALF_DAY, LEAVE",
		http.StatusBadRequest,
	)
	ErrInvalidAttendanceID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid attendance id",
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
		"from must not be after to",
		http.StatusBadRequest,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"only admin or hr can change attendance status",
		http.StatusForbidden,
	)
)
