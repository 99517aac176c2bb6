package leave

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
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(jwtSecret))
	leaves.Use(middleware.ContextLogger(logger))
	{
		leaves.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetAll)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetById)
		leaves.POST("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		leaves.PUT("/:id/approve", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionApprove), handler.Approve)
		leaves.PUT("/:id/reject", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionApprove), handler.Reject)
		leaves.POST("/:id/backfill", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionBackfill), handler.Backfill)
	}
}
