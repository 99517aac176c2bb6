package middleware

import (
	"net/http"
	"sync"

	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type KeyedRateLimiter struct {
	keys map[string]*rate.Limiter
	mu   *sync.Mutex
	r    rate.Limit // requests per second
	b    int        // burst
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		keys: make(map[string]*rate.Limiter),
		mu:   &sync.Mutex{},
		r:    r,
		b:    b,
	}
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.keys[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.keys[key] = limiter
	}

	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			response.Abort(c, http.StatusTooManyRequests, apperror.CodeTooManyRequests, "Too many requests from this IP")
			return
		}
		c.Next()
	}
}

// RateLimitByUser limits per authenticated employee. Anonymous requests pass
// through; AuthMiddleware rejects them earlier on protected groups.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		employeeID := c.GetString(string(ContextEmployeeID))
		if employeeID == "" {
			c.Next()
			return
		}
		if !limiter.GetLimiter(employeeID).Allow() {
			response.Abort(c, http.StatusTooManyRequests, apperror.CodeTooManyRequests, "Too many requests from this user")
			return
		}
		c.Next()
	}
}
