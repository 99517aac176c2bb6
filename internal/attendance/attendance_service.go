package attendance

import (
	"context"
	"errors"
	"time"

	"go-workforce/internal/access"
	attendanceerrors "go-workforce/internal/attendance/errors"
	"go-workforce/internal/audit"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service interface {
	CheckIn(ctx context.Context, caller access.Caller, req GeoTagRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, caller access.Caller, req GeoTagRequest) (AttendanceResponse, error)
	GetToday(ctx context.Context, caller access.Caller) (TodayResponse, error)
	List(ctx context.Context, caller access.Caller, q ListAttendanceQuery) ([]AttendanceResponse, error)
	SetStatus(ctx context.Context, caller access.Caller, id, status string) (AttendanceResponse, error)
	// MarkLeave forces the employee's day to LEAVE, creating the row when
	// missing. It reports whether anything changed.
	MarkLeave(ctx context.Context, employeeID uuid.UUID, day time.Time) (bool, error)
}

type Options struct {
	// Location defines where a calendar day starts. Defaults to UTC.
	Location *time.Location
	// CheckInClearsLeave turns a LEAVE day back into a worked day when the
	// employee checks in on it.
	CheckInClearsLeave bool
	// Now defaults to time.Now.
	Now func() time.Time
}

type service struct {
	repo       Repository
	loc        *time.Location
	clearLeave bool
	now        func() time.Time
	audit      audit.Logger
	logger     *zap.Logger
}

func NewService(repo Repository, opts Options, auditLogger audit.Logger, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &service{
		repo:       repo,
		loc:        opts.Location,
		clearLeave: opts.CheckInClearsLeave,
		now:        opts.Now,
		audit:      auditLogger,
		logger:     l,
	}
}

func (s *service) CheckIn(ctx context.Context, caller access.Caller, req GeoTagRequest) (AttendanceResponse, error) {
	if caller.EmployeeID == uuid.Nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	now := s.now()
	day := Day(now, s.loc)
	s.logger.Debug("check in requested",
		zap.String("employee_id", caller.EmployeeID.String()),
		zap.String("day", day.Format(dateLayout)),
	)

	row := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     caller.EmployeeID,
		AttendanceDate: day,
		CheckIn:        newStamp(now, req),
		Status:         StatusPresent,
		StatusSource:   SourceDerived,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	ok, err := s.repo.UpsertCheckIn(ctx, row, s.clearLeave)
	if err != nil {
		s.logger.Error("check in persist failed",
			zap.String("employee_id", caller.EmployeeID.String()),
			zap.Error(err),
		)
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	if !ok {
		s.logger.Warn("check in rejected, already checked in",
			zap.String("employee_id", caller.EmployeeID.String()),
			zap.String("day", day.Format(dateLayout)),
		)
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	}

	s.logger.Info("check in success",
		zap.String("attendance_id", row.ID.String()),
		zap.String("employee_id", caller.EmployeeID.String()),
		zap.String("status", row.Status),
	)
	return mapToResponse(*row), nil
}

func (s *service) CheckOut(ctx context.Context, caller access.Caller, req GeoTagRequest) (AttendanceResponse, error) {
	if caller.EmployeeID == uuid.Nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	now := s.now()
	day := Day(now, s.loc)
	s.logger.Debug("check out requested",
		zap.String("employee_id", caller.EmployeeID.String()),
		zap.String("day", day.Format(dateLayout)),
	)

	row, err := s.repo.FindByEmployeeAndDate(ctx, caller.EmployeeID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
		}
		s.logger.Error("check out lookup failed", zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	if !row.CheckIn.Set() {
		return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
	}
	if row.CheckOut.Set() {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	// clock skew must not produce a check-out before the check-in
	out := now
	if out.Before(*row.CheckIn.At) {
		out = *row.CheckIn.At
	}

	row.CheckOut = newStamp(out, req)
	row.WorkingHours = WorkedHours(*row.CheckIn.At, out)
	if row.StatusSource == SourceDerived {
		row.Status = DeriveStatus(row.WorkingHours)
	}
	row.UpdatedAt = now

	ok, err := s.repo.CompleteCheckOut(ctx, row)
	if err != nil {
		s.logger.Error("check out persist failed",
			zap.String("attendance_id", row.ID.String()),
			zap.Error(err),
		)
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	if !ok {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	s.logger.Info("check out success",
		zap.String("attendance_id", row.ID.String()),
		zap.Float64("working_hours", row.WorkingHours),
		zap.String("status", row.Status),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetToday(ctx context.Context, caller access.Caller) (TodayResponse, error) {
	day := Day(s.now(), s.loc)

	row, err := s.repo.FindByEmployeeAndDate(ctx, caller.EmployeeID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TodayResponse{Date: day.Format(dateLayout), Status: StatusAbsent}, nil
		}
		return TodayResponse{}, mapRepositoryError(err)
	}

	return TodayResponse{
		Date:         day.Format(dateLayout),
		CheckedIn:    row.CheckIn.Set(),
		CheckedOut:   row.CheckOut.Set(),
		CheckInTime:  formatTime(row.CheckIn.At),
		CheckOutTime: formatTime(row.CheckOut.At),
		Status:       row.Status,
		WorkingHours: row.WorkingHours,
	}, nil
}

func (s *service) List(ctx context.Context, caller access.Caller, q ListAttendanceQuery) ([]AttendanceResponse, error) {
	var filter ListFilter

	if q.EmployeeID != "" {
		id, err := uuid.Parse(q.EmployeeID)
		if err != nil {
			return nil, attendanceerrors.ErrInvalidEmployeeID
		}
		filter.EmployeeID = &id
	}
	filter.EmployeeID = caller.ScopeEmployee(filter.EmployeeID)

	from, err := parseOptionalDate(q.From)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate(q.To)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, attendanceerrors.ErrInvalidDateRange
	}
	filter.From, filter.To = from, to

	rows, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list attendance failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) SetStatus(ctx context.Context, caller access.Caller, id, status string) (AttendanceResponse, error) {
	if !caller.Privileged() {
		s.logger.Warn("set attendance status forbidden",
			zap.String("actor_id", caller.EmployeeID.String()),
			zap.String("role", string(caller.Role)),
		)
		return AttendanceResponse{}, attendanceerrors.ErrForbidden
	}
	attendanceID, err := uuid.Parse(id)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidAttendanceID
	}
	if !ValidStatus(status) {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidStatus
	}

	ok, err := s.repo.UpdateStatus(ctx, attendanceID, status, SourceOverride, s.now())
	if err != nil {
		s.logger.Error("set attendance status persist failed",
			zap.String("attendance_id", id),
			zap.Error(err),
		)
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	if !ok {
		return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
	}

	row, err := s.repo.FindByID(ctx, attendanceID)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	s.audit.Log(ctx, audit.Entry{
		Action:     audit.ActionAttendanceOverride,
		Message:    "attendance status overridden",
		ActorID:    caller.EmployeeID.String(),
		EntityType: "attendance",
		EntityID:   id,
		Meta: map[string]any{
			"employee_id": row.EmployeeID.String(),
			"date":        row.AttendanceDate.Format(dateLayout),
			"status":      status,
		},
	})
	s.logger.Info("set attendance status success",
		zap.String("attendance_id", id),
		zap.String("status", status),
	)
	return mapToResponse(*row), nil
}

func (s *service) MarkLeave(ctx context.Context, employeeID uuid.UUID, day time.Time) (bool, error) {
	day = Day(day, day.Location())

	changed, err := s.repo.UpsertLeaveDay(ctx, employeeID, day, s.now())
	if err != nil {
		s.logger.Error("mark leave day failed",
			zap.String("employee_id", employeeID.String()),
			zap.String("day", day.Format(dateLayout)),
			zap.Error(err),
		)
		return false, mapRepositoryError(err)
	}
	s.logger.Debug("mark leave day",
		zap.String("employee_id", employeeID.String()),
		zap.String("day", day.Format(dateLayout)),
		zap.Bool("changed", changed),
	)
	return changed, nil
}

func newStamp(at time.Time, req GeoTagRequest) Stamp {
	t := at
	return Stamp{
		At:        &t,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	}
}

func parseOptionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidDateFormat
	}
	return &t, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func mapGeo(s Stamp) *GeoTagResponse {
	if s.Latitude == nil && s.Longitude == nil && s.Address == nil {
		return nil
	}
	return &GeoTagResponse{Latitude: s.Latitude, Longitude: s.Longitude, Address: s.Address}
}

func mapToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:               a.ID.String(),
		EmployeeID:       a.EmployeeID.String(),
		AttendanceDate:   a.AttendanceDate.Format(dateLayout),
		CheckInAt:        formatTime(a.CheckIn.At),
		CheckInLocation:  mapGeo(a.CheckIn),
		CheckOutAt:       formatTime(a.CheckOut.At),
		CheckOutLocation: mapGeo(a.CheckOut),
		Status:           a.Status,
		StatusSource:     a.StatusSource,
		WorkingHours:     a.WorkingHours,
	}
}

func mapToListResponse(rows []Attendance) []AttendanceResponse {
	resp := make([]AttendanceResponse, len(rows))
	for i, a := range rows {
		resp[i] = mapToResponse(a)
	}
	return resp
}
