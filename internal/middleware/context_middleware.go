package middleware

import (
	"go-workforce/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger attaches a request scoped logger carrying request and
// employee ids. Run it after RequestID and AuthMiddleware.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		rid := contextutil.GetRequestID(ctx)
		if rid == "" {
			rid = c.GetString("request_id")
		}
		eid := c.GetString(string(ContextEmployeeID))

		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("employee_id", eid),
		)

		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithEmployeeID(ctx, eid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
