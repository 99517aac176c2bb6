package scope

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee limits a query to one employee. A nil id leaves the query open.
func Employee(employeeID *uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if employeeID == nil {
			return db
		}
		return db.Where("employee_id = ?", *employeeID)
	}
}

// DateRange filters column to the calendar days [from, to]. Either bound may
// be nil. The upper bound is applied as "< to + 1 day".
func DateRange(column string, from, to *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(column+" >= ?", *from)
		}
		if to != nil {
			db = db.Where(column+" < ?", to.AddDate(0, 0, 1))
		}
		return db
	}
}

// Equal adds "column = value" unless value is the zero value.
func Equal[T comparable](column string, value T) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		var zero T
		if value == zero {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}
