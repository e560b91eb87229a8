package gateway

import (
	"bytes"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shareit/service-shareit/internal/application"
	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	"github.com/shareit/service-shareit/internal/pkg/clock"
	"github.com/shareit/service-shareit/internal/pkg/domain"
	"github.com/shareit/service-shareit/internal/pkg/metrics"
	"github.com/shareit/service-shareit/internal/pkg/middleware"
	"github.com/shareit/service-shareit/internal/pkg/response"
)

const maxBodyBytes = 1 << 20

func reject(c *gin.Context, reason string, err error) {
	metrics.RecordGatewayRejection(reason)
	response.Error(c, err)
}

// requireUser checks X-Sharer-User-Id and stores the parsed id. The header
// itself is forwarded untouched.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := middleware.ParseUserID(c.GetHeader(middleware.UserIDHeader))
		if err != nil {
			reject(c, "user_header", domain.NewValidationError(err.Error()))
			return
		}
		middleware.SetUserID(c, id)
		c.Next()
	}
}

// validateCreate checks a new booking body: positive itemId, start not in
// the past, end in the future, start before end. The body is restored for the proxy.
func validateCreate(clk clock.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			reject(c, "body", domain.NewValidationError("failed to read body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		var req application.CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			reject(c, "body", domain.NewValidationError(err.Error()))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		now := clk.Now()
		switch {
		case req.Start.Before(now):
			reject(c, "body", domain.NewValidationError("start must not be in the past"))
			return
		case !req.End.After(now):
			reject(c, "body", domain.NewValidationError("end must be in the future"))
			return
		}
		if err := bookingDomain.ValidateInterval(req.Start.Time, req.End.Time); err != nil {
			reject(c, "body", err)
			return
		}
		c.Next()
	}
}

// validateList checks the optional state and the from/size window.
func validateList(withState bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if withState {
			if state, ok := c.GetQuery("state"); ok {
				if _, err := bookingDomain.ParseState(state); err != nil {
					reject(c, "state", err)
					return
				}
			}
		}

		from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
		if err != nil || from < 0 {
			reject(c, "pagination", domain.NewValidationError("from must be a non-negative integer"))
			return
		}
		size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(bookingDomain.DefaultPageSize)))
		if err != nil || size < 1 {
			reject(c, "pagination", domain.NewValidationError("size must be a positive integer"))
			return
		}
		c.Next()
	}
}

func validateID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.Param("id"), 10, 64); err != nil || id <= 0 {
			reject(c, "path", domain.NewValidationError("id must be a positive integer"))
			return
		}
		c.Next()
	}
}

func validateApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := strconv.ParseBool(c.Query("approved")); err != nil {
			reject(c, "approved", domain.NewValidationError("approved must be true or false"))
			return
		}
		c.Next()
	}
}
