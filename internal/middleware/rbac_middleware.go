package middleware

import (
	"net/http"

	"go-workforce/internal/rbac"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is satisfied by rbac.Service.
type RBACService interface {
	Enforce(req rbac.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := c.GetString(string(ContextEmployeeID))
		role := c.GetString(string(ContextRole))

		if employeeID == "" || role == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		allowed, err := service.Enforce(rbac.EnforceRequest{
			EmployeeID: employeeID,
			Role:       role,
			Resource:   resource,
			Action:     action,
		})
		if err != nil {
			response.Abort(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message)
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden, apperror.ErrForbidden.Message, gin.H{
				"required": resource + ":" + action,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
