package events

import "time"

const (
	LeaveApprovedTopic     = "hr.leave.approved.v1"
	LeaveApprovedEventType = "leave.approved"
)

// LeaveApprovedEvent is published once per approval. Consumers use it to make
// sure every day of the leave is marked on attendance.
type LeaveApprovedEvent struct {
	EventType  string    `json:"event_type"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	ApprovedBy string    `json:"approved_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
