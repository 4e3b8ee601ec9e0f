package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wmmalith63/credence-tender-management/pkg/redis"
	"github.com/wmmalith63/credence-tender-management/pkg/response"
)

// RateLimit sliding-window limit per caller and route, backed by Redis.
// The caller is the authenticated user when known, the client IP
// otherwise. A nil rdb or a Redis error lets the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		caller := c.ClientIP()
		if uid := c.GetString(CtxUserID); uid != "" {
			caller = "user:" + uid
		}

		key := fmt.Sprintf("rate_limit:%s:%s", caller, c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, response.CodeRateLimit, "too many requests, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
