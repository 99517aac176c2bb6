package leave_test

import (
	"context"
	"testing"
	"time"

	"go-workforce/internal/leave"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (leave.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)
	return leave.NewRepository(db), mock
}

var leaveColumns = []string{"id", "employee_id", "leave_type", "start_date", "end_date", "total_days", "reason", "status"}

func TestLeaveRepository_Review(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	reviewer := uuid.New()
	comment := "ok"

	newReviewed := func() *leave.Leave {
		return &leave.Leave{
			ID:              uuid.New(),
			Status:          leave.StatusApproved,
			ReviewedBy:      &reviewer,
			ReviewerComment: &comment,
			ReviewedAt:      &now,
			UpdatedAt:       now,
		}
	}

	t.Run("pending row is updated", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		l := newReviewed()

		mock.ExpectExec(`UPDATE leaves SET status = \$1, reviewed_by = \$2, reviewer_comment = \$3, reviewed_at = \$4, updated_at = \$5 WHERE id = \$6 AND status = 'PENDING'`).
			WithArgs(leave.StatusApproved, &reviewer, &comment, &now, now, l.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Review(ctx, l)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already reviewed row is left alone", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectExec(`UPDATE leaves SET status`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Review(ctx, newReviewed())

		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLeaveRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()
		employeeID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "leaves" WHERE id = \$1 ORDER BY "leaves"."id" LIMIT \$2`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows(leaveColumns).
				AddRow(id.String(), employeeID.String(), leave.TypeSick, day(2026, 3, 10), day(2026, 3, 11), 2, "flu", leave.StatusPending))

		got, err := repo.FindByID(ctx, id)

		assert.NoError(t, err)
		assert.Equal(t, employeeID, got.EmployeeID)
		assert.Equal(t, 2, got.TotalDays)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectQuery(`SELECT \* FROM "leaves"`).
			WillReturnRows(sqlmock.NewRows(leaveColumns))

		got, err := repo.FindByID(ctx, uuid.New())

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Nil(t, got)
	})
}

func TestLeaveRepository_FindAll(t *testing.T) {
	ctx := context.Background()

	t.Run("scoped and filtered", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		employeeID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "leaves" WHERE employee_id = \$1 AND status = \$2 ORDER BY start_date DESC,created_at DESC`).
			WithArgs(employeeID, leave.StatusPending).
			WillReturnRows(sqlmock.NewRows(leaveColumns).
				AddRow(uuid.New().String(), employeeID.String(), leave.TypeUnpaid, day(2026, 4, 1), day(2026, 4, 1), 1, "errand", leave.StatusPending))

		got, err := repo.FindAll(ctx, leave.ListFilter{EmployeeID: &employeeID, Status: leave.StatusPending})

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unscoped", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectQuery(`SELECT \* FROM "leaves" ORDER BY start_date DESC,created_at DESC`).
			WillReturnRows(sqlmock.NewRows(leaveColumns))

		got, err := repo.FindAll(ctx, leave.ListFilter{})

		assert.NoError(t, err)
		assert.Empty(t, got)
	})
}
