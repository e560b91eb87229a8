package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/shareit/service-shareit/internal/config"
	"github.com/shareit/service-shareit/internal/pkg/clock"
	"github.com/shareit/service-shareit/internal/pkg/middleware"
	"github.com/shareit/service-shareit/internal/pkg/response"
	"go.uber.org/zap"
)

// NewRouter builds the gateway engine. Requests that pass validation are
// forwarded unchanged to cfg.ServerURL and the reply is relayed as is.
func NewRouter(cfg config.GatewayConfig, clk clock.Clock, log *zap.Logger) (*gin.Engine, error) {
	target, err := url.Parse(cfg.ServerURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid gateway server url %q", cfg.ServerURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("upstream request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"BAD_GATEWAY","message":"upstream unavailable"}`))
	}
	forward := gin.WrapH(proxy)

	r := gin.New()
	r.Use(middleware.RecoveryMiddleware(log))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.MetricsMiddleware())
	r.Use(func(c *gin.Context) {
		// downstream logs correlate on the same id
		c.Request.Header.Set(middleware.RequestIDHeader, middleware.GetRequestID(c))
		c.Next()
	})

	r.GET("/health/live", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok", "service": "gateway"})
	})

	limit := newRateLimiter(cfg.RateRPS, cfg.RateBurst).middleware()

	bookings := r.Group("/bookings", requireUser(), limit)
	{
		bookings.POST("", validateCreate(clk), forward)
		bookings.GET("", validateList(true), forward)
		bookings.GET("/owner", validateList(true), forward)
		bookings.GET("/:id", validateID(), forward)
		bookings.PATCH("/:id", validateID(), validateApproved(), forward)
	}

	items := r.Group("/items", requireUser(), limit)
	{
		items.GET("", validateList(false), forward)
		items.GET("/:id", validateID(), forward)
	}

	return r, nil
}
