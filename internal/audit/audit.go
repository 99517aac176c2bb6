package audit

import (
	"context"
	"time"
)

const (
	ActionAttendanceOverride = "ATTENDANCE_STATUS_OVERRIDE"
	ActionLeaveApproved      = "LEAVE_APPROVED"
	ActionLeaveRejected      = "LEAVE_REJECTED"
	ActionLeaveBackfilled    = "LEAVE_BACKFILLED"
	ActionPayrollUpserted    = "PAYROLL_UPSERTED"
	ActionPayrollUpdated     = "PAYROLL_UPDATED"
	ActionServerShutdown     = "SERVER_SHUTDOWN"
)

type Entry struct {
	Action     string
	Message    string
	ActorID    string
	EntityType string
	EntityID   string
	Meta       map[string]any
	OccurredAt time.Time
}

// Logger records audit entries. Implementations must not fail the caller's
// operation, so Log has no error result.
//
//go:generate mockgen -source=audit.go -destination=mock/audit_mock.go -package=mock
type Logger interface {
	Log(ctx context.Context, entry Entry)
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Log(context.Context, Entry) {}

func stamp(e Entry) Entry {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return e
}
