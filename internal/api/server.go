// Package api exposes attendance and work-item operations over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/notify"
	"github.com/balkashynov/punch/internal/workitems"
)

// Server holds the handlers' collaborators
type Server struct {
	attendance    *attendance.Manager
	items         *workitems.Coordinator
	notifications *notify.Store
	logger        *slog.Logger
	origins       []string
}

// Options configures a Server
type Options struct {
	Logger *slog.Logger
	// AllowOrigins lists CORS origins; "*" or empty allows any
	AllowOrigins []string
}

// New creates a Server
func New(mgr *attendance.Manager, items *workitems.Coordinator, notes *notify.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		attendance:    mgr,
		items:         items,
		notifications: notes,
		logger:        logger,
		origins:       opts.AllowOrigins,
	}
}

// Router builds the gin engine with middleware and every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.accessLog(), s.cors())
	s.Register(router)
	return router
}

// Register mounts the routes on r
func (s *Server) Register(r gin.IRouter) {
	r.GET("/healthz", s.Health)

	users := r.Group("/api/v1/users/:user")
	users.POST("/clock-in", s.ClockIn)
	users.POST("/clock-out", s.transition(s.attendance.ClockOut))
	users.POST("/break/start", s.transition(s.attendance.StartBreak))
	users.POST("/break/end", s.transition(s.attendance.EndBreak))
	users.POST("/pause/start", s.transition(s.attendance.StartPause))
	users.POST("/pause/end", s.transition(s.attendance.EndPause))
	users.GET("/status", s.Status)
	users.GET("/hours/monthly", s.MonthlyHours)
	users.GET("/breakdown", s.Breakdown)
	users.GET("/notifications", s.Notifications)
	users.POST("/work-items", s.CreateWorkItem)
	users.GET("/work-items", s.ListWorkItems)
	users.POST("/work-items/:id/start", s.StartWorkItem)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("requestID", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"request_id", c.GetString("requestID"))
	}
}

func (s *Server) cors() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:       12 * time.Hour,
	}
	if len(s.origins) == 0 || (len(s.origins) == 1 && s.origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.origins
	}
	return cors.New(cfg)
}

// fail writes err with the status its kind maps to
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(), "request_id", c.GetString("requestID"), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, attendance.ErrInvalidClockType):
		return http.StatusBadRequest
	case attendance.IsValidation(err),
		errors.Is(err, attendance.ErrConcurrentUpdate),
		errors.Is(err, workitems.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, workitems.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, format string, args ...any) {
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(format, args...)})
}

func userParam(c *gin.Context) (string, bool) {
	user := strings.TrimSpace(c.Param("user"))
	if user == "" {
		badRequest(c, "user is required")
		return "", false
	}
	return user, true
}
