package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/response"
	"github.com/suteetoe/krist-shop/prometheus"
)

// HealthHandler reports liveness together with database reachability
type HealthHandler struct {
	service string
	ping    func(ctx context.Context) error
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{service: service, ping: ping}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	if err := h.ping(c.Request().Context()); err != nil {
		logger.FromEcho(c).Error("Database ping failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, response.Envelope{
			Success: false,
			Message: "Database unavailable",
			Data:    echo.Map{"status": "unhealthy", "service": h.service},
		})
	}
	return response.OK(c, http.StatusOK, "ok", echo.Map{"status": "healthy", "service": h.service})
}

// MetricsHandler exposes the prometheus registry
func MetricsHandler(c echo.Context) error {
	prometheus.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}

// Feed is the live event stream admins subscribe to
type Feed interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

// OrderFeed upgrades the connection to the admin order websocket
func OrderFeed(feed Feed) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := feed.ServeWS(c.Response(), c.Request()); err != nil {
			logger.FromEcho(c).Warn("Websocket upgrade failed", zap.Error(err))
		}
		return nil
	}
}

// tokenFromQuery lets websocket clients, which cannot set headers, pass the access token as ?token=
func tokenFromQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Header.Get(echo.HeaderAuthorization) == "" {
			if token := c.QueryParam("token"); token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
			}
		}
		return next(c)
	}
}
