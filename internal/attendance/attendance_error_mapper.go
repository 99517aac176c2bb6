package attendance

import (
	"errors"
	"strings"

	attendanceerrors "go-workforce/internal/attendance/errors"
	"go-workforce/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueEmployeeDay = "uq_attendance_employee_day"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrAttendanceNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.ErrStorageConflict.WithCause(err)
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, uniqueEmployeeDay) {
		return apperror.ErrStorageConflict.WithCause(err)
	}

	return err
}
