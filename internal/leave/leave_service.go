package leave

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-workforce/internal/access"
	"go-workforce/internal/audit"
	"go-workforce/internal/events"
	leaveerrors "go-workforce/internal/leave/errors"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// AttendanceMarker is the attendance side of the leave backfill. MarkLeave
// must be idempotent per (employee, day).
//
//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type AttendanceMarker interface {
	MarkLeave(ctx context.Context, employeeID uuid.UUID, day time.Time) (bool, error)
}

type Service interface {
	Create(ctx context.Context, caller access.Caller, req CreateLeaveRequest) (LeaveResponse, error)
	List(ctx context.Context, caller access.Caller, q ListLeaveQuery) ([]LeaveResponse, error)
	GetByID(ctx context.Context, caller access.Caller, id string) (LeaveResponse, error)
	Approve(ctx context.Context, caller access.Caller, id string, req ReviewLeaveRequest) (LeaveResponse, error)
	Reject(ctx context.Context, caller access.Caller, id string, req ReviewLeaveRequest) (LeaveResponse, error)
	// Backfill re-runs the attendance marking of an approved request.
	Backfill(ctx context.Context, caller access.Caller, id string) (BackfillResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	marker   AttendanceMarker
	audit    audit.Logger
	logger   *zap.Logger
	backfill singleflight.Group
	now      func() time.Time
}

func NewService(
	db *gorm.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	marker AttendanceMarker,
	auditLogger audit.Logger,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		marker: marker,
		audit:  auditLogger,
		logger: l,
		now:    time.Now,
	}
}

func (s *service) Create(ctx context.Context, caller access.Caller, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("employee_id", caller.EmployeeID.String()),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if caller.EmployeeID == uuid.Nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	startDate, endDate, err := validateCreateRequest(req)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	now := s.now().UTC()
	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: caller.EmployeeID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  int(endDate.Sub(startDate).Hours()/24) + 1,
		Reason:     strings.TrimSpace(req.Reason),
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", l.EmployeeID.String()),
		zap.Int("total_days", l.TotalDays),
	)
	return mapToResponse(*l), nil
}

func validateCreateRequest(req CreateLeaveRequest) (time.Time, time.Time, error) {
	switch {
	case strings.TrimSpace(req.LeaveType) == "":
		return time.Time{}, time.Time{}, apperror.RequiredField("leave_type")
	case strings.TrimSpace(req.StartDate) == "":
		return time.Time{}, time.Time{}, apperror.RequiredField("start_date")
	case strings.TrimSpace(req.EndDate) == "":
		return time.Time{}, time.Time{}, apperror.RequiredField("end_date")
	case strings.TrimSpace(req.Reason) == "":
		return time.Time{}, time.Time{}, apperror.RequiredField("reason")
	}

	if !ValidLeaveType(req.LeaveType) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidLeaveType
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func (s *service) List(ctx context.Context, caller access.Caller, q ListLeaveQuery) ([]LeaveResponse, error) {
	if q.Status != "" && !ValidStatus(q.Status) {
		return nil, leaveerrors.ErrInvalidStatusFilter
	}
	if q.LeaveType != "" && !ValidLeaveType(q.LeaveType) {
		return nil, leaveerrors.ErrInvalidLeaveType
	}

	leaves, err := s.repo.FindAll(ctx, ListFilter{
		EmployeeID: caller.ScopeEmployee(nil),
		Status:     q.Status,
		LeaveType:  q.LeaveType,
	})
	if err != nil {
		s.logger.Error("list leaves failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, caller access.Caller, id string) (LeaveResponse, error) {
	l, err := s.find(ctx, s.repo, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !caller.CanView(l.EmployeeID) {
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, caller access.Caller, id string, req ReviewLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("approve leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", caller.EmployeeID.String()),
	)
	if !caller.Privileged() {
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}

	var approved Leave
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		l, err := s.find(ctx, qtx, id)
		if err != nil {
			return err
		}
		if l.Status != StatusPending {
			return leaveerrors.ErrAlreadyProcessed
		}

		s.review(l, caller, StatusApproved, req.Comment)
		ok, err := qtx.Review(ctx, l)
		if err != nil {
			return mapRepositoryError(err)
		}
		if !ok {
			return leaveerrors.ErrAlreadyProcessed
		}

		event, err := kafka.NewOutboxEvent(
			contextutil.GetRequestID(ctx),
			"leave",
			l.ID.String(),
			events.LeaveApprovedEventType,
			events.LeaveApprovedTopic,
			events.LeaveApprovedEvent{
				EventType:  events.LeaveApprovedEventType,
				LeaveID:    l.ID.String(),
				EmployeeID: l.EmployeeID.String(),
				StartDate:  l.StartDate.Format(dateLayout),
				EndDate:    l.EndDate.Format(dateLayout),
				ApprovedBy: caller.EmployeeID.String(),
				OccurredAt: *l.ReviewedAt,
			},
		)
		if err != nil {
			return err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("approve leave outbox write failed", zap.Error(err))
			return err
		}

		approved = *l
		return nil
	})
	if err != nil {
		s.logger.Warn("approve leave failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.audit.Log(ctx, audit.Entry{
		Action:     audit.ActionLeaveApproved,
		Message:    "leave request approved",
		ActorID:    caller.EmployeeID.String(),
		EntityType: "leave",
		EntityID:   approved.ID.String(),
		Meta: map[string]any{
			"employee_id": approved.EmployeeID.String(),
			"start_date":  approved.StartDate.Format(dateLayout),
			"end_date":    approved.EndDate.Format(dateLayout),
		},
	})

	if _, err := s.markDays(ctx, approved); err != nil {
		s.logger.Error("approve leave backfill incomplete",
			zap.String("leave_id", approved.ID.String()),
			zap.Error(err),
		)
		return LeaveResponse{}, leaveerrors.ErrBackfillIncomplete.WithCause(err)
	}

	s.logger.Info("approve leave success",
		zap.String("leave_id", approved.ID.String()),
		zap.Int("total_days", approved.TotalDays),
	)
	return mapToResponse(approved), nil
}

func (s *service) Reject(ctx context.Context, caller access.Caller, id string, req ReviewLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("reject leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", caller.EmployeeID.String()),
	)
	if !caller.Privileged() {
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}
	if strings.TrimSpace(req.Comment) == "" {
		return LeaveResponse{}, leaveerrors.ErrMissingComment
	}

	l, err := s.find(ctx, s.repo, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	s.review(l, caller, StatusRejected, req.Comment)
	ok, err := s.repo.Review(ctx, l)
	if err != nil {
		s.logger.Error("reject leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	s.audit.Log(ctx, audit.Entry{
		Action:     audit.ActionLeaveRejected,
		Message:    "leave request rejected",
		ActorID:    caller.EmployeeID.String(),
		EntityType: "leave",
		EntityID:   l.ID.String(),
		Meta:       map[string]any{"comment": *l.ReviewerComment},
	})
	s.logger.Info("reject leave success", zap.String("leave_id", l.ID.String()))
	return mapToResponse(*l), nil
}

func (s *service) Backfill(ctx context.Context, caller access.Caller, id string) (BackfillResponse, error) {
	if !caller.Privileged() {
		return BackfillResponse{}, leaveerrors.ErrForbidden
	}

	l, err := s.find(ctx, s.repo, id)
	if err != nil {
		return BackfillResponse{}, err
	}
	if l.Status != StatusApproved {
		return BackfillResponse{}, leaveerrors.ErrNotApproved
	}

	changed, err := s.markDays(ctx, *l)
	if err != nil {
		s.logger.Error("backfill leave incomplete",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return BackfillResponse{}, leaveerrors.ErrBackfillIncomplete.WithCause(err)
	}

	days := len(l.Days())
	s.audit.Log(ctx, audit.Entry{
		Action:     audit.ActionLeaveBackfilled,
		Message:    "leave attendance backfilled",
		ActorID:    caller.EmployeeID.String(),
		EntityType: "leave",
		EntityID:   l.ID.String(),
		Meta:       map[string]any{"days": days, "days_changed": changed},
	})
	s.logger.Info("backfill leave success",
		zap.String("leave_id", id),
		zap.Int("days", days),
		zap.Int("days_changed", changed),
	)
	return BackfillResponse{LeaveID: l.ID.String(), Days: days, DaysChanged: changed}, nil
}

// markDays marks every day of l as LEAVE on attendance. Concurrent runs for
// the same request share one execution.
func (s *service) markDays(ctx context.Context, l Leave) (int, error) {
	v, err, shared := s.backfill.Do(l.ID.String(), func() (any, error) {
		changed := 0
		for _, day := range l.Days() {
			ok, err := s.marker.MarkLeave(ctx, l.EmployeeID, day)
			if err != nil {
				return changed, err
			}
			if ok {
				changed++
			}
		}
		return changed, nil
	})
	if shared {
		s.logger.Debug("backfill shared with in-flight run", zap.String("leave_id", l.ID.String()))
	}
	changed, _ := v.(int)
	return changed, err
}

func (s *service) review(l *Leave, caller access.Caller, status, comment string) {
	now := s.now().UTC()
	l.Status = status
	if caller.EmployeeID != uuid.Nil {
		reviewer := caller.EmployeeID
		l.ReviewedBy = &reviewer
	}
	if c := strings.TrimSpace(comment); c != "" {
		l.ReviewerComment = &c
	}
	l.ReviewedAt = &now
	l.UpdatedAt = now
}

func (s *service) find(ctx context.Context, repo Repository, id string) (*Leave, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}
	l, err := repo.FindByID(ctx, leaveID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("find leave failed", zap.String("leave_id", id), zap.Error(err))
		}
		return nil, mapRepositoryError(err)
	}
	return l, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func mapToResponse(l Leave) LeaveResponse {
	var reviewedBy *string
	if l.ReviewedBy != nil {
		v := l.ReviewedBy.String()
		reviewedBy = &v
	}
	return LeaveResponse{
		ID:              l.ID.String(),
		EmployeeID:      l.EmployeeID.String(),
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		TotalDays:       l.TotalDays,
		Reason:          l.Reason,
		Status:          l.Status,
		ReviewedBy:      reviewedBy,
		ReviewerComment: l.ReviewerComment,
		ReviewedAt:      formatTime(l.ReviewedAt),
		CreatedAt:       l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
