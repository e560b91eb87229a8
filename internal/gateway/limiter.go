package gateway

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/shareit/service-shareit/internal/pkg/metrics"
	"github.com/shareit/service-shareit/internal/pkg/middleware"
	"github.com/shareit/service-shareit/internal/pkg/response"
	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per caller.
type rateLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &rateLimiter{rps: rate.Limit(rps), burst: burst}
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rps, l.burst))
	return actual.(*rate.Limiter)
}

// middleware keys callers by the user id requireUser parsed, falling back to
// client IP. It must run after requireUser so only valid ids get a bucket.
func (l *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id, ok := middleware.GetUserID(c); ok {
			key = "user:" + strconv.FormatInt(id, 10)
		}
		if !l.getLimiter(key).Allow() {
			metrics.RecordGatewayRejection("rate_limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorBody{
				Error:   "RATE_LIMITED",
				Message: "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
