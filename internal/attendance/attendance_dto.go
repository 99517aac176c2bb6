package attendance

type GeoTagRequest struct {
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
	Address   *string  `json:"address" binding:"omitempty,max=500"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListAttendanceQuery struct {
	EmployeeID string `form:"employee_id"`
	From       string `form:"from"`
	To         string `form:"to"`
}

type GeoTagResponse struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   *string  `json:"address,omitempty"`
}

type AttendanceResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	AttendanceDate   string          `json:"attendance_date"`
	CheckInAt        *string         `json:"check_in_at,omitempty"`
	CheckInLocation  *GeoTagResponse `json:"check_in_location,omitempty"`
	CheckOutAt       *string         `json:"check_out_at,omitempty"`
	CheckOutLocation *GeoTagResponse `json:"check_out_location,omitempty"`
	Status           string          `json:"status"`
	StatusSource     string          `json:"status_source"`
	WorkingHours     float64         `json:"working_hours"`
}

// TodayResponse is the caller's view of the current day. A day without a
// record is reported as ABSENT.
type TodayResponse struct {
	Date         string  `json:"date"`
	CheckedIn    bool    `json:"checked_in"`
	CheckedOut   bool    `json:"checked_out"`
	CheckInTime  *string `json:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty"`
	Status       string  `json:"status"`
	WorkingHours float64 `json:"working_hours"`
}
