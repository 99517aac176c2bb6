package app

import (
	"net/http"

	"go-workforce/internal/attendance"
	"go-workforce/internal/config"
	"go-workforce/internal/leave"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/middleware"
	"go-workforce/internal/payroll"
	"go-workforce/internal/rbac"
	"go-workforce/internal/rbac/infra"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	deps *Infra,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(deps.DB)
	leaveRepo := leave.NewRepository(deps.DB)
	outboxRepo := kafka.NewOutboxRepository(deps.DB)
	payrollRepo := payroll.NewRepository(deps.DB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)
	if err := rbacService.LoadPolicy(rbac.DefaultPolicies()); err != nil {
		return err
	}

	// --- Services ---
	attendanceService := attendance.NewService(attendanceRepo, attendance.Options{
		Location:           cfg.Location(),
		CheckInClearsLeave: cfg.CheckInClearsLeave,
	}, deps.Audit, logger)
	leaveService := leave.NewService(deps.DB, leaveRepo, outboxRepo, attendanceService, deps.Audit, logger)
	payrollService := payroll.NewService(deps.DB, payrollRepo, deps.Audit, logger)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	payrollHandler := payroll.NewHandler(payrollService, logger)

	router.Use(middleware.RequestID())
	router.Use(middleware.Locale())

	router.GET("/health",
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS*10), cfg.RateLimitBurst*10),
		healthHandler(deps),
	)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, attendance.RouteConfig{
			JWTSecret:      cfg.JWTSecret,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		}, logger)
		leave.RegisterRoutes(api, leaveHandler, rbacService, deps.Redis, cfg.JWTSecret, logger)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, deps.Redis, cfg.JWTSecret, logger)
	}

	return nil
}

func healthHandler(deps *Infra) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "database unavailable", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	}
}
