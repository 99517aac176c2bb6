package leave

import (
	"context"

	"go-workforce/internal/shared/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFilter struct {
	EmployeeID *uuid.UUID
	Status     string
	LeaveType  string
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context, filter ListFilter) ([]Leave, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	// Review moves a PENDING request to l.Status. It returns false when the
	// request was no longer pending.
	Review(ctx context.Context, l *Leave) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Scopes(
			scope.Employee(filter.EmployeeID),
			scope.Equal("status", filter.Status),
			scope.Equal("leave_type", filter.LeaveType),
		).
		Order("start_date DESC").
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

const reviewSQL = `
UPDATE leaves SET
	status = ?,
	reviewed_by = ?,
	reviewer_comment = ?,
	reviewed_at = ?,
	updated_at = ?
WHERE id = ? AND status = 'PENDING'`

func (r *repository) Review(ctx context.Context, l *Leave) (bool, error) {
	res := r.db.WithContext(ctx).Exec(reviewSQL,
		l.Status, l.ReviewedBy, l.ReviewerComment, l.ReviewedAt, l.UpdatedAt,
		l.ID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
