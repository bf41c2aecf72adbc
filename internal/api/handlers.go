package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/geo"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
)

type clockInRequest struct {
	ClockType    models.ClockType `json:"clock_type"`
	WorkLocation string           `json:"work_location"`
	Latitude     *float64         `json:"latitude"`
	Longitude    *float64         `json:"longitude"`
}

func (s *Server) ClockIn(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}

	var req clockInRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body: %v", err)
			return
		}
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		badRequest(c, "latitude and longitude must be sent together")
		return
	}

	in := attendance.ClockInRequest{ClockType: req.ClockType, WorkLocation: req.WorkLocation}
	if req.Latitude != nil {
		in.Locator = geo.Static{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	session, err := s.attendance.ClockIn(c.Request.Context(), user, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

type transitionFunc func(ctx context.Context, userID string) (*models.AttendanceSession, error)

// transition adapts a no-argument session transition to a handler
func (s *Server) transition(fn transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userParam(c)
		if !ok {
			return
		}
		session, err := fn(c.Request.Context(), user)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func (s *Server) Status(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}
	st, err := s.attendance.GetStatus(c.Request.Context(), user)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) MonthlyHours(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}

	month := s.attendance.Now()
	if q := c.Query("month"); q != "" {
		m, err := parser.ParseMonth(q, s.attendance.Location())
		if err != nil {
			badRequest(c, "%v", err)
			return
		}
		month = m
	}

	hours, err := s.attendance.MonthlyHours(c.Request.Context(), user, month)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"month": month.In(s.attendance.Location()).Format("2006-01"),
		"hours": hours,
	})
}

func (s *Server) Breakdown(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}
	b, err := s.attendance.TimeBreakdown(c.Request.Context(), user)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) Notifications(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}
	limit := 50
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := s.notifications.List(c.Request.Context(), user, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (s *Server) CreateWorkItem(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body: %v", err)
		return
	}
	item, err := s.items.Create(c.Request.Context(), user, req.Title, s.attendance.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) StartWorkItem(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid work item id %q", c.Param("id"))
		return
	}
	item, err := s.items.Start(c.Request.Context(), user, uint(id), s.attendance.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) ListWorkItems(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}
	all := c.Query("all") == "true"
	items, err := s.items.List(c.Request.Context(), user, all)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_items": items})
}
