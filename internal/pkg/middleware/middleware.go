package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shareit/service-shareit/internal/pkg/metrics"
	"github.com/shareit/service-shareit/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
	// UserIDHeader identifies the acting user. It is not authenticated.
	UserIDHeader = "X-Sharer-User-Id"

	requestIDKey = "request_id"
	userIDKey    = "user_id"
)

// RecoveryMiddleware turns panics into a 500 response and logs them.
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", GetRequestID(c)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorBody{
					Error:   "INTERNAL",
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// LoggerMiddleware writes one structured access log line per request.
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", GetRequestID(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", fields...)
		} else {
			log.Info("request", fields...)
		}
	}
}

// RequestIDMiddleware propagates X-Request-ID or generates one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// MetricsMiddleware records request counts and latency by route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}

// UserIDMiddleware requires a positive integer X-Sharer-User-Id header and
// stores it on the context.
func UserIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParseUserID(c.GetHeader(UserIDHeader))
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		SetUserID(c, id)
		c.Next()
	}
}

// SetUserID stores an already validated caller id on the context.
func SetUserID(c *gin.Context, id int64) {
	c.Set(userIDKey, id)
}

// ParseUserID validates a raw X-Sharer-User-Id value.
func ParseUserID(raw string) (int64, error) {
	if raw == "" {
		return 0, errMissingUserID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidUserID
	}
	return id, nil
}

// GetUserID returns the acting user set by UserIDMiddleware.
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetRequestID returns the request id set by RequestIDMiddleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

type headerError string

func (e headerError) Error() string { return string(e) }

const (
	errMissingUserID headerError = "missing " + UserIDHeader + " header"
	errInvalidUserID headerError = UserIDHeader + " must be a positive integer"
)
