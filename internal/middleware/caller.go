package middleware

import (
	"go-workforce/internal/access"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContextKey string

const (
	ContextEmployeeID ContextKey = "employee_id"
	ContextRole       ContextKey = "role"
)

// CallerFrom rebuilds the authenticated caller set by AuthMiddleware.
func CallerFrom(c *gin.Context) (access.Caller, bool) {
	id, err := uuid.Parse(c.GetString(string(ContextEmployeeID)))
	if err != nil {
		return access.Caller{}, false
	}
	role, ok := access.ParseRole(c.GetString(string(ContextRole)))
	if !ok {
		return access.Caller{}, false
	}
	return access.Caller{EmployeeID: id, Role: role}, true
}
