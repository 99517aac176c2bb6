package leave

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type ListLeaveQuery struct {
	Status    string `form:"status"`
	LeaveType string `form:"leave_type"`
}

// ReviewLeaveRequest is used by approve (comment optional) and reject
// (comment required).
type ReviewLeaveRequest struct {
	Comment string `json:"comment"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewerComment *string `json:"reviewer_comment,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type BackfillResponse struct {
	LeaveID     string `json:"leave_id"`
	Days        int    `json:"days"`
	DaysChanged int    `json:"days_changed"`
}
