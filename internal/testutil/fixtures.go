package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/balkashynov/punch/internal/models"
)

// Session options
type SessionOption func(*models.AttendanceSession)

func WithClockOut(t time.Time) SessionOption {
	return func(s *models.AttendanceSession) {
		s.ClockOut = &t
	}
}

func WithBreakMinutes(m int) SessionOption {
	return func(s *models.AttendanceSession) {
		s.TotalBreakMinutes = m
	}
}

func WithPauseMinutes(m int) SessionOption {
	return func(s *models.AttendanceSession) {
		s.TotalPauseMinutes = m
	}
}

func WithOpenBreak(start time.Time) SessionOption {
	return func(s *models.AttendanceSession) {
		s.BreakStart = &start
	}
}

func WithOpenPause(start time.Time) SessionOption {
	return func(s *models.AttendanceSession) {
		s.PauseStart = &start
	}
}

// NewTestSession builds a payroll session for userID; Status is derived from
// the options applied.
func NewTestSession(userID string, clockIn time.Time, opts ...SessionOption) *models.AttendanceSession {
	s := &models.AttendanceSession{
		UserID:       userID,
		ClockIn:      clockIn,
		ClockType:    models.ClockPayroll,
		WorkLocation: "office",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.DeriveStatus()
	return s
}

// RecordingNotifier keeps every notification it receives.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	Err  error
}

func (r *RecordingNotifier) Notify(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, *n)
	return r.Err
}

// Sent returns a copy of the notifications received so far.
func (r *RecordingNotifier) Sent() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

// Titles returns the titles of the notifications received so far.
func (r *RecordingNotifier) Titles() []string {
	var titles []string
	for _, n := range r.Sent() {
		titles = append(titles, n.Title)
	}
	return titles
}
