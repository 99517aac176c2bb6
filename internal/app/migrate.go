package app

import (
	"go-workforce/internal/attendance"
	"go-workforce/internal/leave"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/payroll"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&attendance.Attendance{},
		&leave.Leave{},
		&payroll.Payroll{},
		&kafka.OutboxEvent{},
	)
}
