// Package httpapi is the HTTP adapter: it wires the use-case ports to gin
// routes and owns request-level concerns (auth extraction, locale, metrics).
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agora/internal/infrastructure/metrics"
	"agora/internal/ports/input"
)

// RouterConfig carries everything the router needs; all fields are required
// except Health.
type RouterConfig struct {
	Events       input.EventUseCase
	Participants input.ParticipantUseCase
	Attendance   input.AttendanceUseCase
	Auth         *Auth
	Metrics      *metrics.Metrics
	Registry     *prometheus.Registry
	Health       func(ctx context.Context) error
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cfg.Auth.Middleware())

	eventHandler := NewEventHandler(cfg.Events)
	participantHandler := NewParticipantHandler(cfg.Participants, cfg.Metrics)
	attendanceHandler := NewAttendanceHandler(cfg.Attendance, cfg.Participants, cfg.Events, cfg.Metrics)

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))

	r.POST("/events", eventHandler.PostEvent)
	r.GET("/events", eventHandler.GetEvents)
	r.GET("/events/:id", eventHandler.GetEvent)
	r.POST("/events/:id/join", participantHandler.PostJoin)
	r.POST("/events/:id/cancel", participantHandler.PostCancel)
	r.GET("/events/:id/participation", participantHandler.GetParticipation)

	r.GET("/attendance/:id", attendanceHandler.GetAttendancePage)
	r.POST("/attendance/:id/check-in", attendanceHandler.PostCheckIn)

	r.PUT("/admin/events/:id/attendance", attendanceHandler.SetAttendanceOpen)
	r.GET("/admin/events/:id/participants", participantHandler.GetRoster)

	return r
}
