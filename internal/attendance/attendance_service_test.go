package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-workforce/internal/access"
	"go-workforce/internal/attendance"
	attendanceerrors "go-workforce/internal/attendance/errors"
	attendanceMock "go-workforce/internal/attendance/mock"
	"go-workforce/internal/audit"
	auditMock "go-workforce/internal/audit/mock"
	"go-workforce/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	service attendance.Service
	repo    *attendanceMock.MockRepository
	audit   *auditMock.MockLogger
	now     time.Time
}

func setupServiceTest(t *testing.T, opts ...func(*attendance.Options)) *serviceDeps {
	ctrl := gomock.NewController(t)

	repo := attendanceMock.NewMockRepository(ctrl)
	auditLogger := auditMock.NewMockLogger(ctrl)
	now := time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)

	o := attendance.Options{
		Location:           time.UTC,
		CheckInClearsLeave: true,
		Now:                func() time.Time { return now },
	}
	for _, fn := range opts {
		fn(&o)
	}

	return &serviceDeps{
		service: attendance.NewService(repo, o, auditLogger),
		repo:    repo,
		audit:   auditLogger,
		now:     now,
	}
}

func employeeCaller() access.Caller {
	return access.Caller{EmployeeID: uuid.New(), Role: access.RoleEmployee}
}

func hrCaller() access.Caller {
	return access.Caller{EmployeeID: uuid.New(), Role: access.RoleHR}
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAttendanceService_CheckIn(t *testing.T) {
	ctx := context.Background()

	t.Run("success creates derived present row", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		req := attendance.GeoTagRequest{Latitude: ptr(-6.2), Longitude: ptr(106.8), Address: ptr("Jakarta")}

		deps.repo.EXPECT().
			UpsertCheckIn(ctx, gomock.Any(), true).
			DoAndReturn(func(ctx context.Context, row *attendance.Attendance, clearLeave bool) (bool, error) {
				assert.Equal(t, caller.EmployeeID, row.EmployeeID)
				assert.Equal(t, day(2026, 3, 10), row.AttendanceDate)
				assert.Equal(t, deps.now, *row.CheckIn.At)
				assert.Equal(t, attendance.StatusPresent, row.Status)
				assert.Equal(t, attendance.SourceDerived, row.StatusSource)
				assert.Nil(t, row.CheckOut.At)
				return true, nil
			})

		resp, err := deps.service.CheckIn(ctx, caller, req)

		assert.NoError(t, err)
		assert.Equal(t, "2026-03-10", resp.AttendanceDate)
		assert.Equal(t, attendance.StatusPresent, resp.Status)
		assert.NotNil(t, resp.CheckInAt)
		assert.Equal(t, "Jakarta", *resp.CheckInLocation.Address)
		assert.Nil(t, resp.CheckOutAt)
	})

	t.Run("day key uses configured location", func(t *testing.T) {
		wib := time.FixedZone("WIB", 7*3600)
		deps := setupServiceTest(t, func(o *attendance.Options) {
			o.Location = wib
			o.Now = func() time.Time { return time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC) }
		})

		deps.repo.EXPECT().
			UpsertCheckIn(ctx, gomock.Any(), true).
			DoAndReturn(func(ctx context.Context, row *attendance.Attendance, clearLeave bool) (bool, error) {
				assert.Equal(t, day(2026, 3, 11), row.AttendanceDate)
				return true, nil
			})

		_, err := deps.service.CheckIn(ctx, employeeCaller(), attendance.GeoTagRequest{})
		assert.NoError(t, err)
	})

	t.Run("second check-in same day", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().UpsertCheckIn(ctx, gomock.Any(), true).Return(false, nil)

		_, err := deps.service.CheckIn(ctx, employeeCaller(), attendance.GeoTagRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
	})

	t.Run("leave day kept when clearing disabled", func(t *testing.T) {
		deps := setupServiceTest(t, func(o *attendance.Options) { o.CheckInClearsLeave = false })

		deps.repo.EXPECT().
			UpsertCheckIn(ctx, gomock.Any(), false).
			DoAndReturn(func(ctx context.Context, row *attendance.Attendance, clearLeave bool) (bool, error) {
				row.Status = attendance.StatusLeave
				row.StatusSource = attendance.SourceLeave
				return true, nil
			})

		resp, err := deps.service.CheckIn(ctx, employeeCaller(), attendance.GeoTagRequest{})

		assert.NoError(t, err)
		assert.Equal(t, attendance.StatusLeave, resp.Status)
		assert.Equal(t, attendance.SourceLeave, resp.StatusSource)
	})

	t.Run("unique violation maps to storage conflict", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().
			UpsertCheckIn(ctx, gomock.Any(), true).
			Return(false, &pgconn.PgError{Code: "23505", ConstraintName: "uq_attendance_employee_day"})

		_, err := deps.service.CheckIn(ctx, employeeCaller(), attendance.GeoTagRequest{})

		assert.ErrorIs(t, err, apperror.ErrStorageConflict)
	})

	t.Run("missing employee id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.CheckIn(ctx, access.Caller{Role: access.RoleEmployee}, attendance.GeoTagRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidEmployeeID)
	})
}

func TestAttendanceService_CheckOut(t *testing.T) {
	ctx := context.Background()

	checkedIn := func(employeeID uuid.UUID, in time.Time, status, source string) *attendance.Attendance {
		return &attendance.Attendance{
			ID:             uuid.New(),
			EmployeeID:     employeeID,
			AttendanceDate: day(2026, 3, 10),
			CheckIn:        attendance.Stamp{At: ptr(in)},
			Status:         status,
			StatusSource:   source,
		}
	}

	t.Run("full day", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		row := checkedIn(caller.EmployeeID, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), attendance.StatusPresent, attendance.SourceDerived)

		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, day(2026, 3, 10)).Return(row, nil)
		deps.repo.EXPECT().
			CompleteCheckOut(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, r *attendance.Attendance) (bool, error) {
				assert.Equal(t, deps.now, *r.CheckOut.At)
				assert.Equal(t, 8.5, r.WorkingHours)
				return true, nil
			})

		resp, err := deps.service.CheckOut(ctx, caller, attendance.GeoTagRequest{})

		assert.NoError(t, err)
		assert.Equal(t, 8.5, resp.WorkingHours)
		assert.Equal(t, attendance.StatusPresent, resp.Status)
	})

	t.Run("short day becomes half day", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		row := checkedIn(caller.EmployeeID, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), attendance.StatusPresent, attendance.SourceDerived)

		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, gomock.Any()).Return(row, nil)
		deps.repo.EXPECT().CompleteCheckOut(ctx, gomock.Any()).Return(true, nil)

		resp, err := deps.service.CheckOut(ctx, caller, attendance.GeoTagRequest{})

		assert.NoError(t, err)
		assert.Equal(t, 3.5, resp.WorkingHours)
		assert.Equal(t, attendance.StatusHalfDay, resp.Status)
	})

	t.Run("override status is kept", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		row := checkedIn(caller.EmployeeID, time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC), attendance.StatusAbsent, attendance.SourceOverride)

		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, gomock.Any()).Return(row, nil)
		deps.repo.EXPECT().CompleteCheckOut(ctx, gomock.Any()).Return(true, nil)

		resp, err := deps.service.CheckOut(ctx, caller, attendance.GeoTagRequest{})

		assert.NoError(t, err)
		assert.Equal(t, 1.5, resp.WorkingHours)
		assert.Equal(t, attendance.StatusAbsent, resp.Status)
	})

	t.Run("check-out before check-in is clamped", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		in := deps.now.Add(5 * time.Minute)
		row := checkedIn(caller.EmployeeID, in, attendance.StatusPresent, attendance.SourceDerived)

		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, gomock.Any()).Return(row, nil)
		deps.repo.EXPECT().
			CompleteCheckOut(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, r *attendance.Attendance) (bool, error) {
				assert.Equal(t, in, *r.CheckOut.At)
				return true, nil
			})

		resp, err := deps.service.CheckOut(ctx, caller, attendance.GeoTagRequest{})

		assert.NoError(t, err)
		assert.Equal(t, 0.0, resp.WorkingHours)
		assert.Equal(t, attendance.StatusHalfDay, resp.Status)
	})

	t.Run("no record today", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.CheckOut(ctx, caller, attendance.GeoTagRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrNotCheckedIn)
	})

	t.Run("leave row without check-in", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		row := &attendance.Attendance{ID: uuid.New(), EmployeeID: caller.EmployeeID, Status: attendance.StatusLeave, StatusSource: attendance.SourceLeave}
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, gomock.Any()).Return(row, nil)

		_, err := deps.service.CheckOut(ctx, caller, attendance.GeoTagRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrNotCheckedIn)
	})

	t.Run("already checked out", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		row := checkedIn(caller.EmployeeID, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), attendance.StatusPresent, attendance.SourceDerived)
		row.CheckOut.At = ptr(time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC))
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, gomock.Any()).Return(row, nil)

		_, err := deps.service.CheckOut(ctx, caller, attendance.GeoTagRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)
	})

	t.Run("lost race to concurrent check-out", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		row := checkedIn(caller.EmployeeID, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), attendance.StatusPresent, attendance.SourceDerived)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, gomock.Any()).Return(row, nil)
		deps.repo.EXPECT().CompleteCheckOut(ctx, gomock.Any()).Return(false, nil)

		_, err := deps.service.CheckOut(ctx, caller, attendance.GeoTagRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)
	})
}

func TestAttendanceService_GetToday(t *testing.T) {
	ctx := context.Background()

	t.Run("no record is absent", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, day(2026, 3, 10)).Return(nil, gorm.ErrRecordNotFound)

		resp, err := deps.service.GetToday(ctx, caller)

		assert.NoError(t, err)
		assert.Equal(t, "2026-03-10", resp.Date)
		assert.Equal(t, attendance.StatusAbsent, resp.Status)
		assert.False(t, resp.CheckedIn)
	})

	t.Run("checked in", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		row := &attendance.Attendance{
			ID:           uuid.New(),
			EmployeeID:   caller.EmployeeID,
			CheckIn:      attendance.Stamp{At: ptr(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))},
			Status:       attendance.StatusPresent,
			StatusSource: attendance.SourceDerived,
		}
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, day(2026, 3, 10)).Return(row, nil)

		resp, err := deps.service.GetToday(ctx, caller)

		assert.NoError(t, err)
		assert.True(t, resp.CheckedIn)
		assert.False(t, resp.CheckedOut)
		assert.Equal(t, "2026-03-10T09:00:00Z", *resp.CheckInTime)
	})

	t.Run("storage error", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, caller.EmployeeID, gomock.Any()).Return(nil, errors.New("db down"))

		_, err := deps.service.GetToday(ctx, caller)

		assert.Error(t, err)
	})
}

func TestAttendanceService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("employee is pinned to own records", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := employeeCaller()
		other := uuid.New()

		deps.repo.EXPECT().
			FindAll(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, f attendance.ListFilter) ([]attendance.Attendance, error) {
				assert.Equal(t, caller.EmployeeID, *f.EmployeeID)
				return []attendance.Attendance{{ID: uuid.New(), EmployeeID: caller.EmployeeID, AttendanceDate: day(2026, 3, 9)}}, nil
			})

		resp, err := deps.service.List(ctx, caller, attendance.ListAttendanceQuery{EmployeeID: other.String()})

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "2026-03-09", resp[0].AttendanceDate)
	})

	t.Run("hr sees everyone within range", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().
			FindAll(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, f attendance.ListFilter) ([]attendance.Attendance, error) {
				assert.Nil(t, f.EmployeeID)
				assert.Equal(t, day(2026, 3, 1), *f.From)
				assert.Equal(t, day(2026, 3, 31), *f.To)
				return nil, nil
			})

		resp, err := deps.service.List(ctx, hrCaller(), attendance.ListAttendanceQuery{From: "2026-03-01", To: "2026-03-31"})

		assert.NoError(t, err)
		assert.Empty(t, resp)
	})

	t.Run("from after to", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.List(ctx, hrCaller(), attendance.ListAttendanceQuery{From: "2026-03-05", To: "2026-03-01"})

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateRange)
	})

	t.Run("bad date", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.List(ctx, hrCaller(), attendance.ListAttendanceQuery{From: "03/01/2026"})

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateFormat)
	})

	t.Run("bad employee id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.List(ctx, hrCaller(), attendance.ListAttendanceQuery{EmployeeID: "nope"})

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidEmployeeID)
	})
}

func TestAttendanceService_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success writes override and audits", func(t *testing.T) {
		deps := setupServiceTest(t)
		caller := hrCaller()
		id := uuid.New()
		row := &attendance.Attendance{
			ID:             id,
			EmployeeID:     uuid.New(),
			AttendanceDate: day(2026, 3, 9),
			Status:         attendance.StatusAbsent,
			StatusSource:   attendance.SourceOverride,
		}

		deps.repo.EXPECT().UpdateStatus(ctx, id, attendance.StatusAbsent, attendance.SourceOverride, deps.now).Return(true, nil)
		deps.repo.EXPECT().FindByID(ctx, id).Return(row, nil)
		deps.audit.EXPECT().
			Log(ctx, gomock.Any()).
			Do(func(ctx context.Context, e audit.Entry) {
				assert.Equal(t, audit.ActionAttendanceOverride, e.Action)
				assert.Equal(t, caller.EmployeeID.String(), e.ActorID)
				assert.Equal(t, id.String(), e.EntityID)
			})

		resp, err := deps.service.SetStatus(ctx, caller, id.String(), attendance.StatusAbsent)

		assert.NoError(t, err)
		assert.Equal(t, attendance.StatusAbsent, resp.Status)
		assert.Equal(t, attendance.SourceOverride, resp.StatusSource)
	})

	t.Run("employee is forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.SetStatus(ctx, employeeCaller(), uuid.New().String(), attendance.StatusPresent)

		assert.ErrorIs(t, err, attendanceerrors.ErrForbidden)
	})

	t.Run("unknown status", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.SetStatus(ctx, hrCaller(), uuid.New().String(), "SICK")

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidStatus)
	})

	t.Run("bad id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.SetStatus(ctx, hrCaller(), "x", attendance.StatusPresent)

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidAttendanceID)
	})

	t.Run("record not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().UpdateStatus(ctx, id, attendance.StatusPresent, attendance.SourceOverride, deps.now).Return(false, nil)

		_, err := deps.service.SetStatus(ctx, hrCaller(), id.String(), attendance.StatusPresent)

		assert.ErrorIs(t, err, attendanceerrors.ErrAttendanceNotFound)
	})
}

func TestAttendanceService_MarkLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes the day", func(t *testing.T) {
		deps := setupServiceTest(t)
		employeeID := uuid.New()

		deps.repo.EXPECT().UpsertLeaveDay(ctx, employeeID, day(2026, 3, 12), deps.now).Return(true, nil)

		changed, err := deps.service.MarkLeave(ctx, employeeID, time.Date(2026, 3, 12, 15, 4, 5, 0, time.UTC))

		assert.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("already on leave", func(t *testing.T) {
		deps := setupServiceTest(t)
		employeeID := uuid.New()
		deps.repo.EXPECT().UpsertLeaveDay(ctx, employeeID, day(2026, 3, 12), deps.now).Return(false, nil)

		changed, err := deps.service.MarkLeave(ctx, employeeID, day(2026, 3, 12))

		assert.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("storage error", func(t *testing.T) {
		deps := setupServiceTest(t)
		employeeID := uuid.New()
		deps.repo.EXPECT().UpsertLeaveDay(ctx, employeeID, gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))

		_, err := deps.service.MarkLeave(ctx, employeeID, day(2026, 3, 12))

		assert.Error(t, err)
	})
}
