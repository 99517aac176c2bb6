package payroll

import (
	"errors"

	payrollerrors "go-workforce/internal/payroll/errors"
	"go-workforce/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollerrors.ErrPayrollNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.ErrStorageConflict.WithCause(err)
	}

	return err
}
