package payroll

import (
	"go-workforce/internal/middleware"
	"go-workforce/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
	jwtSecret string,
	logger *zap.Logger,
) {
	payrolls := r.Group("/payrolls")
	payrolls.Use(middleware.AuthMiddleware(jwtSecret))
	payrolls.Use(middleware.ContextLogger(logger))
	{
		payrolls.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionRead), handler.GetAll)
		payrolls.GET("/export", middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionExport), handler.Export)
		payrolls.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionRead), handler.GetById)
		payrolls.POST("",
			middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionCreate),
			middleware.Idempotency(rdb),
			handler.Upsert,
		)
		payrolls.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionUpdate), handler.Update)
	}
}
