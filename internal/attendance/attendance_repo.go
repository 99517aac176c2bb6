package attendance

import (
	"context"
	"time"

	"go-workforce/internal/shared/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFilter struct {
	EmployeeID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, day time.Time) (*Attendance, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Attendance, error)
	// UpsertCheckIn inserts the day row or fills the check-in of an existing
	// one. It returns false when the day already has a check-in.
	UpsertCheckIn(ctx context.Context, row *Attendance, clearLeave bool) (bool, error)
	// CompleteCheckOut returns false when the row was already checked out.
	CompleteCheckOut(ctx context.Context, row *Attendance) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, source string, at time.Time) (bool, error)
	// UpsertLeaveDay returns false when the day was already marked LEAVE.
	UpsertLeaveDay(ctx context.Context, employeeID uuid.UUID, day, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, day time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND attendance_date = ?", employeeID, day).
		Take(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Scopes(
			scope.Employee(filter.EmployeeID),
			scope.DateRange("attendance_date", filter.From, filter.To),
		).
		Order("attendance_date DESC").
		Order("employee_id").
		Find(&rows).Error
	return rows, err
}

const upsertCheckInSQL = `
INSERT INTO attendances (
	id, employee_id, attendance_date,
	check_in_at, check_in_latitude, check_in_longitude, check_in_address,
	status, status_source, working_hours, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
ON CONFLICT (employee_id, attendance_date) DO UPDATE SET
	check_in_at = EXCLUDED.check_in_at,
	check_in_latitude = EXCLUDED.check_in_latitude,
	check_in_longitude = EXCLUDED.check_in_longitude,
	check_in_address = EXCLUDED.check_in_address,
	status = CASE
		WHEN attendances.status_source = 'DERIVED' OR (? AND attendances.status_source = 'LEAVE')
		THEN EXCLUDED.status ELSE attendances.status END,
	status_source = CASE
		WHEN attendances.status_source = 'DERIVED' OR (? AND attendances.status_source = 'LEAVE')
		THEN EXCLUDED.status_source ELSE attendances.status_source END,
	updated_at = EXCLUDED.updated_at
WHERE attendances.check_in_at IS NULL
RETURNING *`

func (r *repository) UpsertCheckIn(ctx context.Context, row *Attendance, clearLeave bool) (bool, error) {
	res := r.db.WithContext(ctx).Raw(upsertCheckInSQL,
		row.ID, row.EmployeeID, row.AttendanceDate,
		row.CheckIn.At, row.CheckIn.Latitude, row.CheckIn.Longitude, row.CheckIn.Address,
		row.Status, row.StatusSource, row.CreatedAt, row.UpdatedAt,
		clearLeave, clearLeave,
	).Scan(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

const completeCheckOutSQL = `
UPDATE attendances SET
	check_out_at = ?,
	check_out_latitude = ?,
	check_out_longitude = ?,
	check_out_address = ?,
	working_hours = ?,
	status = CASE WHEN status_source = 'DERIVED' THEN ? ELSE status END,
	updated_at = ?
WHERE id = ? AND check_in_at IS NOT NULL AND check_out_at IS NULL`

func (r *repository) CompleteCheckOut(ctx context.Context, row *Attendance) (bool, error) {
	res := r.db.WithContext(ctx).Exec(completeCheckOutSQL,
		row.CheckOut.At, row.CheckOut.Latitude, row.CheckOut.Longitude, row.CheckOut.Address,
		row.WorkingHours, DeriveStatus(row.WorkingHours), row.UpdatedAt,
		row.ID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status, source string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Exec(`UPDATE attendances SET status = ?, status_source = ?, updated_at = ? WHERE id = ?`, status, source, at, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

const upsertLeaveDaySQL = `
INSERT INTO attendances (id, employee_id, attendance_date, status, status_source, working_hours, created_at, updated_at)
VALUES (?, ?, ?, 'LEAVE', 'LEAVE', 0, ?, ?)
ON CONFLICT (employee_id, attendance_date) DO UPDATE SET
	status = 'LEAVE',
	status_source = 'LEAVE',
	updated_at = EXCLUDED.updated_at
WHERE attendances.status <> 'LEAVE' OR attendances.status_source <> 'LEAVE'`

func (r *repository) UpsertLeaveDay(ctx context.Context, employeeID uuid.UUID, day, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(upsertLeaveDaySQL, uuid.New(), employeeID, day, at, at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
