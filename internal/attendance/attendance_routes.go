package attendance

import (
	"go-workforce/internal/middleware"
	"go-workforce/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouteConfig struct {
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
}

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	cfg RouteConfig,
	logger *zap.Logger,
) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	attendances.Use(middleware.ContextLogger(logger))
	{
		attendances.POST("/check-in",
			middleware.RateLimitByUser(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionCheckIn),
			handler.CheckIn,
		)

		attendances.POST("/check-out",
			middleware.RateLimitByUser(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionCheckOut),
			handler.CheckOut,
		)

		attendances.GET("/today",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionRead),
			handler.GetToday,
		)

		attendances.GET("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionRead),
			handler.GetAll,
		)

		attendances.PUT("/:id/status",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionUpdate),
			handler.SetStatus,
		)
	}
}
