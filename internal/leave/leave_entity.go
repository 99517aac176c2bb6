package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	TypePaidTimeOff = "PAID_TIME_OFF"
	TypeSick        = "SICK"
	TypeUnpaid      = "UNPAID"
)

type Leave struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index:idx_leaves_employee_dates"`

	LeaveType string    `gorm:"column:leave_type;type:varchar(20);not null"`
	StartDate time.Time `gorm:"column:start_date;type:date;not null;index:idx_leaves_employee_dates"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null;index:idx_leaves_employee_dates;check:chk_leaves_range,end_date >= start_date"`
	TotalDays int       `gorm:"column:total_days;type:int;not null;default:1"`
	Reason    string    `gorm:"column:reason;type:text;not null"`

	Status          string     `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index:idx_leaves_status"`
	ReviewedBy      *uuid.UUID `gorm:"column:reviewed_by;type:uuid"`
	ReviewerComment *string    `gorm:"column:reviewer_comment;type:text"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Leave) TableName() string {
	return "leaves"
}

func ValidLeaveType(t string) bool {
	switch t {
	case TypePaidTimeOff, TypeSick, TypeUnpaid:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Days lists every calendar day from StartDate to EndDate inclusive.
func (l Leave) Days() []time.Time {
	start := truncateDay(l.StartDate)
	end := truncateDay(l.EndDate)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
