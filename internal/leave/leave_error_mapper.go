package leave

import (
	"errors"

	leaveerrors "go-workforce/internal/leave/errors"
	"go-workforce/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.ErrStorageConflict.WithCause(err)
	}

	return err
}
