package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/contextutil"
	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"

	idempotencyLockTTL  = 30 * time.Second
	idempotencyCacheTTL = 24 * time.Hour
)

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first successful response of a POST for the same
// employee, route and Idempotency-Key. A duplicate arriving while the first
// is still running gets 409 PROCESSING. Redis failures degrade to a normal
// request.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		idempKey := c.GetHeader(IdempotencyHeader)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		logger := contextutil.GetLogger(ctx, zap.L().Named("middleware.idempotency"))
		employeeID := c.GetString(string(ContextEmployeeID))

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), employeeID, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			var cached cachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				c.Header(ReplayedHeader, "true")
				c.Data(cached.Status, "application/json; charset=utf-8", []byte(cached.Body))
				c.Abort()
				return
			}
			logger.Warn("idempotency cache entry unreadable", zap.String("key", cacheKey))
		case !errors.Is(err, redis.Nil):
			logger.Warn("idempotency cache lookup failed", zap.Error(err))
			c.Next()
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			logger.Warn("idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Abort(c, http.StatusConflict, apperror.CodeProcessing, "Your request is still being processed")
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = rec

		c.Next()

		bg := context.WithoutCancel(ctx)
		status := rec.Status()
		if status >= 200 && status < 300 {
			data, _ := json.Marshal(cachedResponse{Status: status, Body: rec.buf.String()})
			if err := rdb.Set(bg, cacheKey, string(data), idempotencyCacheTTL).Err(); err != nil {
				logger.Warn("idempotency cache store failed", zap.Error(err))
			}
		}
		if err := rdb.Del(bg, lockKey).Err(); err != nil {
			logger.Warn("idempotency unlock failed", zap.Error(err))
		}
	}
}
