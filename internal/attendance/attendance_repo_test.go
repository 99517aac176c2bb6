package attendance_test

import (
	"context"
	"testing"
	"time"

	"go-workforce/internal/attendance"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (attendance.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)
	return attendance.NewRepository(db), mock
}

var attendanceColumns = []string{"id", "employee_id", "attendance_date", "check_in_at", "status", "status_source", "working_hours"}

func TestAttendanceRepository_UpsertCheckIn(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	newRow := func() *attendance.Attendance {
		return &attendance.Attendance{
			ID:             uuid.New(),
			EmployeeID:     uuid.New(),
			AttendanceDate: day(2026, 3, 10),
			CheckIn:        attendance.Stamp{At: ptr(now)},
			Status:         attendance.StatusPresent,
			StatusSource:   attendance.SourceDerived,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	t.Run("inserted or filled", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		row := newRow()

		mock.ExpectQuery(`INSERT INTO attendances .* ON CONFLICT \(employee_id, attendance_date\) DO UPDATE SET .* WHERE attendances.check_in_at IS NULL RETURNING \*`).
			WithArgs(
				row.ID, row.EmployeeID, row.AttendanceDate,
				now, nil, nil, nil,
				attendance.StatusPresent, attendance.SourceDerived, now, now,
				true, true,
			).
			WillReturnRows(sqlmock.NewRows(attendanceColumns).
				AddRow(row.ID.String(), row.EmployeeID.String(), row.AttendanceDate, now, attendance.StatusPresent, attendance.SourceDerived, 0))

		ok, err := repo.UpsertCheckIn(ctx, row, true)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, attendance.StatusPresent, row.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing leave row keeps leave when not clearing", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		row := newRow()
		existingID := uuid.New()

		mock.ExpectQuery(`INSERT INTO attendances`).
			WithArgs(
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				false, false,
			).
			WillReturnRows(sqlmock.NewRows(attendanceColumns).
				AddRow(existingID.String(), row.EmployeeID.String(), row.AttendanceDate, now, attendance.StatusLeave, attendance.SourceLeave, 0))

		ok, err := repo.UpsertCheckIn(ctx, row, false)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, existingID, row.ID)
		assert.Equal(t, attendance.StatusLeave, row.Status)
		assert.Equal(t, attendance.SourceLeave, row.StatusSource)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already checked in returns no row", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectQuery(`INSERT INTO attendances`).
			WillReturnRows(sqlmock.NewRows(attendanceColumns))

		ok, err := repo.UpsertCheckIn(ctx, newRow(), true)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAttendanceRepository_CompleteCheckOut(t *testing.T) {
	ctx := context.Background()
	in := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	row := &attendance.Attendance{
		ID:           uuid.New(),
		CheckIn:      attendance.Stamp{At: ptr(in)},
		CheckOut:     attendance.Stamp{At: ptr(out)},
		WorkingHours: 2,
		UpdatedAt:    out,
	}

	t.Run("updated", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectExec(`UPDATE attendances SET check_out_at = \$1.* WHERE id = \$8 AND check_in_at IS NOT NULL AND check_out_at IS NULL`).
			WithArgs(out, nil, nil, nil, 2.0, attendance.StatusHalfDay, out, row.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.CompleteCheckOut(ctx, row)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already checked out", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectExec(`UPDATE attendances SET check_out_at`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.CompleteCheckOut(ctx, row)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAttendanceRepository_UpsertLeaveDay(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("marked", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectExec(`INSERT INTO attendances .* VALUES \(\$1, \$2, \$3, 'LEAVE', 'LEAVE', 0, \$4, \$5\) ON CONFLICT`).
			WithArgs(sqlmock.AnyArg(), employeeID, day(2026, 3, 12), at, at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		changed, err := repo.UpsertLeaveDay(ctx, employeeID, day(2026, 3, 12), at)

		assert.NoError(t, err)
		assert.True(t, changed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already leave", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectExec(`INSERT INTO attendances`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		changed, err := repo.UpsertLeaveDay(ctx, employeeID, day(2026, 3, 12), at)

		assert.NoError(t, err)
		assert.False(t, changed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAttendanceRepository_UpdateStatus(t *testing.T) {
	repo, mock := setupRepoTest(t)
	id := uuid.New()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE attendances SET status = \$1, status_source = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(attendance.StatusAbsent, attendance.SourceOverride, at, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateStatus(context.Background(), id, attendance.StatusAbsent, attendance.SourceOverride, at)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_FindByEmployeeAndDate(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("found", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "attendances" WHERE employee_id = \$1 AND attendance_date = \$2 LIMIT \$3`).
			WithArgs(employeeID, day(2026, 3, 10), 1).
			WillReturnRows(sqlmock.NewRows(attendanceColumns).
				AddRow(id.String(), employeeID.String(), day(2026, 3, 10), nil, attendance.StatusLeave, attendance.SourceLeave, 0))

		row, err := repo.FindByEmployeeAndDate(ctx, employeeID, day(2026, 3, 10))

		assert.NoError(t, err)
		assert.Equal(t, id, row.ID)
		assert.False(t, row.CheckIn.Set())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectQuery(`SELECT \* FROM "attendances"`).
			WillReturnRows(sqlmock.NewRows(attendanceColumns))

		_, err := repo.FindByEmployeeAndDate(ctx, employeeID, day(2026, 3, 10))

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAttendanceRepository_FindAll(t *testing.T) {
	repo, mock := setupRepoTest(t)
	employeeID := uuid.New()
	from, to := day(2026, 3, 1), day(2026, 3, 31)

	mock.ExpectQuery(`SELECT \* FROM "attendances" WHERE employee_id = \$1 AND attendance_date >= \$2 AND attendance_date < \$3 ORDER BY attendance_date DESC,employee_id`).
		WithArgs(employeeID, from, day(2026, 4, 1)).
		WillReturnRows(sqlmock.NewRows(attendanceColumns).
			AddRow(uuid.New().String(), employeeID.String(), day(2026, 3, 2), nil, attendance.StatusPresent, attendance.SourceDerived, 8).
			AddRow(uuid.New().String(), employeeID.String(), day(2026, 3, 1), nil, attendance.StatusLeave, attendance.SourceLeave, 0))

	rows, err := repo.FindAll(context.Background(), attendance.ListFilter{EmployeeID: &employeeID, From: &from, To: &to})

	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 8.0, rows[0].WorkingHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}
