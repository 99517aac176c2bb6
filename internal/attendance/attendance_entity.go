package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusHalfDay = "HALF_DAY"
	StatusLeave   = "LEAVE"
)

// Status provenance. Only DERIVED rows have their status recomputed from
// check-in and check-out.
const (
	SourceDerived  = "DERIVED"
	SourceLeave    = "LEAVE"
	SourceOverride = "OVERRIDE"
)

// HalfDayThreshold is the minimum worked time for a full PRESENT day.
const HalfDayThreshold = 4.0

type Stamp struct {
	At        *time.Time `gorm:"column:at;type:timestamptz"`
	Latitude  *float64   `gorm:"column:latitude"`
	Longitude *float64   `gorm:"column:longitude"`
	Address   *string    `gorm:"column:address;type:text"`
}

func (s Stamp) Set() bool {
	return s.At != nil
}

type Attendance struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID     uuid.UUID `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_day,priority:1"`
	AttendanceDate time.Time `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_attendance_employee_day,priority:2;index:idx_attendance_date"`
	CheckIn        Stamp     `gorm:"embedded;embeddedPrefix:check_in_"`
	CheckOut       Stamp     `gorm:"embedded;embeddedPrefix:check_out_"`
	Status         string    `gorm:"column:status;type:varchar(20);not null;default:'ABSENT'"`
	StatusSource   string    `gorm:"column:status_source;type:varchar(20);not null;default:'DERIVED'"`
	WorkingHours   float64   `gorm:"column:working_hours;type:numeric(5,2);not null;default:0;check:chk_attendance_hours,working_hours >= 0"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// ValidStatus reports whether s is one of the four attendance statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave:
		return true
	}
	return false
}

// Day returns the calendar day of t in loc, as midnight UTC. All day keys are
// built this way so equal days compare equal.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WorkedHours is out-in in hours, rounded to two decimals and never negative.
func WorkedHours(in, out time.Time) float64 {
	d := out.Sub(in)
	if d < 0 {
		return 0
	}
	return float64(int64(d.Hours()*100+0.5)) / 100
}

// DeriveStatus maps worked hours to PRESENT or HALF_DAY.
func DeriveStatus(hours float64) string {
	if hours < HalfDayThreshold {
		return StatusHalfDay
	}
	return StatusPresent
}
