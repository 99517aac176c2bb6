package scope_test

import (
	"testing"
	"time"

	"go-workforce/internal/shared/scope"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	ID         uuid.UUID
	EmployeeID uuid.UUID
	Day        time.Time
	Status     string
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	assert.NoError(t, err)
	return db
}

func TestEmployee(t *testing.T) {
	db := dryRun(t)
	id := uuid.New()

	t.Run("nil keeps query open", func(t *testing.T) {
		var rows []row
		stmt := db.Scopes(scope.Employee(nil)).Find(&rows).Statement

		assert.NotContains(t, stmt.SQL.String(), "employee_id")
	})

	t.Run("id adds filter", func(t *testing.T) {
		var rows []row
		stmt := db.Scopes(scope.Employee(&id)).Find(&rows).Statement

		assert.Contains(t, stmt.SQL.String(), "employee_id = $1")
		assert.Equal(t, []interface{}{id}, stmt.Vars)
	})
}

func TestDateRange(t *testing.T) {
	db := dryRun(t)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	var rows []row
	stmt := db.Scopes(scope.DateRange("day", &from, &to)).Find(&rows).Statement

	assert.Contains(t, stmt.SQL.String(), "day >= $1")
	assert.Contains(t, stmt.SQL.String(), "day < $2")
	assert.Equal(t, []interface{}{from, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}, stmt.Vars)
}

func TestEqual(t *testing.T) {
	db := dryRun(t)

	var rows []row
	stmt := db.Scopes(scope.Equal("status", ""), scope.Equal("leave_type", "SICK")).Find(&rows).Statement

	assert.NotContains(t, stmt.SQL.String(), "status =")
	assert.Contains(t, stmt.SQL.String(), "leave_type = $1")
}
