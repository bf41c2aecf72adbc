// Package attendance owns the attendance session state machine:
// clock-in, break, pause and clock-out.
//
// Every transition runs in one transaction that re-reads the open session,
// validates the move, applies the coordinated work-item change and writes the
// session back with a compare-and-swap on its version. Notifications are
// emitted after commit and never fail the transition.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/geo"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/notify"
	"github.com/balkashynov/punch/internal/workitems"
	"github.com/balkashynov/punch/internal/worktime"
)

// Operation names used in errors, logs and notifications
const (
	OpClockIn    = "clock in"
	OpClockOut   = "clock out"
	OpStartBreak = "start break"
	OpEndBreak   = "end break"
	OpStartPause = "start pause"
	OpEndPause   = "end pause"
)

// Link is attached to every notification the manager emits
const Link = "/attendance"

// Options configures a Manager
type Options struct {
	// AllowConcurrentSessions lets a user clock in while a session is open.
	// Transitions then act on the most recently opened session.
	AllowConcurrentSessions bool
	// DefaultLocation labels sessions clocked in without a location
	DefaultLocation string
	// GeoTimeout bounds coordinate capture at clock-in
	GeoTimeout time.Duration
	// Location is the zone for wall-clock values and rollups
	Location *time.Location
	Logger   *slog.Logger
	// Clock overrides time.Now
	Clock func() time.Time
}

// Manager runs attendance transitions for any user
type Manager struct {
	db       *gorm.DB
	uow      db.UnitOfWork
	items    *workitems.Coordinator
	notifier notify.Notifier
	opts     Options
	logger   *slog.Logger
}

// NewManager wires a Manager. A nil notifier discards notifications.
func NewManager(gdb *gorm.DB, items *workitems.Coordinator, notifier notify.Notifier, opts Options) *Manager {
	if notifier == nil {
		notifier = notify.Discard
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = "office"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		db:       gdb,
		uow:      db.NewUnitOfWork(gdb),
		items:    items,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// Location returns the zone used for wall-clock values and rollups
func (m *Manager) Location() *time.Location {
	return m.opts.Location
}

// Now returns the manager's current time in UTC, truncated to the second
func (m *Manager) Now() time.Time {
	return m.opts.Clock().UTC().Truncate(time.Second)
}

// ClockInRequest carries the caller's choices at clock-in
type ClockInRequest struct {
	ClockType    models.ClockType
	WorkLocation string
	// Locator is asked for coordinates; nil skips capture
	Locator geo.Locator
}

// ClockIn opens a new active session for the user
func (m *Manager) ClockIn(ctx context.Context, userID string, req ClockInRequest) (*models.AttendanceSession, error) {
	if req.ClockType == "" {
		req.ClockType = models.ClockPayroll
	}
	if !req.ClockType.Valid() {
		return nil, reject(OpClockIn, nil, fmt.Errorf("%w %q", ErrInvalidClockType, req.ClockType))
	}
	if req.WorkLocation == "" {
		req.WorkLocation = m.opts.DefaultLocation
	}

	// Captured before the transaction so a slow locator never holds it open
	coords := geo.Capture(ctx, req.Locator, m.opts.GeoTimeout)

	now := m.Now()
	session := &models.AttendanceSession{
		UserID:       userID,
		ClockIn:      now,
		ClockType:    req.ClockType,
		WorkLocation: req.WorkLocation,
	}
	if coords != nil {
		session.Latitude = &coords.Latitude
		session.Longitude = &coords.Longitude
	}
	session.DeriveStatus()

	err := m.uow.WithinTx(ctx, func(tx *gorm.DB) error {
		if !m.opts.AllowConcurrentSessions {
			open, err := findOpen(tx, userID)
			if err != nil {
				return err
			}
			if open != nil {
				return reject(OpClockIn, open, ErrAlreadyClockedIn)
			}
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("creating attendance session: %w", err)
		}
		return nil
	})
	if err != nil {
		m.logFailure(ctx, OpClockIn, userID, err)
		return nil, err
	}

	m.logger.InfoContext(ctx, "clocked in",
		"user_id", userID, "session_id", session.ID,
		"clock_type", session.ClockType, "location", session.WorkLocation,
		"coordinates", coords != nil)
	m.emit(ctx, userID, "Clocked in", fmt.Sprintf("You clocked in at %s (%s, %s).",
		worktime.WallClock(now, m.opts.Location), session.ClockType, session.WorkLocation))
	return session, nil
}

// StartBreak moves an active session onto a break and puts the user's
// running work item on hold
func (m *Manager) StartBreak(ctx context.Context, userID string) (*models.AttendanceSession, error) {
	s, err := m.transition(ctx, OpStartBreak, userID, func(tx *gorm.DB, s *models.AttendanceSession, now time.Time) error {
		switch s.Status {
		case models.StatusOnBreak:
			return reject(OpStartBreak, s, ErrAlreadyOnBreak)
		case models.StatusPaused:
			return reject(OpStartBreak, s, ErrAlreadyPaused)
		}
		s.BreakStart = &now
		s.BreakEnd = nil
		return m.holdWorkItem(tx, s, now)
	})
	if err != nil {
		return nil, err
	}
	m.emit(ctx, userID, "Break started", fmt.Sprintf("Break started at %s.", worktime.WallClock(*s.BreakStart, m.opts.Location)))
	return s, nil
}

// EndBreak closes the open break and resumes the work item it put on hold
func (m *Manager) EndBreak(ctx context.Context, userID string) (*models.AttendanceSession, error) {
	var minutes int
	s, err := m.transition(ctx, OpEndBreak, userID, func(tx *gorm.DB, s *models.AttendanceSession, now time.Time) error {
		if s.BreakStart == nil {
			return reject(OpEndBreak, s, ErrNotOnBreak)
		}
		minutes = closeBreak(s, now)
		return m.resumeWorkItem(tx, s, now)
	})
	if err != nil {
		return nil, err
	}
	m.emit(ctx, userID, "Break ended", fmt.Sprintf("Welcome back. Your break lasted %d min.", minutes))
	return s, nil
}

// StartPause stops tracking on an active session and puts the user's running
// work item on hold
func (m *Manager) StartPause(ctx context.Context, userID string) (*models.AttendanceSession, error) {
	s, err := m.transition(ctx, OpStartPause, userID, func(tx *gorm.DB, s *models.AttendanceSession, now time.Time) error {
		switch s.Status {
		case models.StatusPaused:
			return reject(OpStartPause, s, ErrAlreadyPaused)
		case models.StatusOnBreak:
			return reject(OpStartPause, s, ErrAlreadyOnBreak)
		}
		s.PauseStart = &now
		s.PauseEnd = nil
		return m.holdWorkItem(tx, s, now)
	})
	if err != nil {
		return nil, err
	}
	m.emit(ctx, userID, "Tracking paused", fmt.Sprintf("Tracking paused at %s.", worktime.WallClock(*s.PauseStart, m.opts.Location)))
	return s, nil
}

// EndPause closes the open pause and resumes the work item it put on hold
func (m *Manager) EndPause(ctx context.Context, userID string) (*models.AttendanceSession, error) {
	var minutes int
	s, err := m.transition(ctx, OpEndPause, userID, func(tx *gorm.DB, s *models.AttendanceSession, now time.Time) error {
		if s.PauseStart == nil {
			return reject(OpEndPause, s, ErrNotPaused)
		}
		minutes = closePause(s, now)
		return m.resumeWorkItem(tx, s, now)
	})
	if err != nil {
		return nil, err
	}
	m.emit(ctx, userID, "Tracking resumed", fmt.Sprintf("Tracking resumed after %d min.", minutes))
	return s, nil
}

// ClockOut finalizes any open break or pause, completes the session and
// closes the user's unfinished work items. Work-item failures are logged and
// do not stop the clock-out.
func (m *Manager) ClockOut(ctx context.Context, userID string) (*models.AttendanceSession, error) {
	s, err := m.transition(ctx, OpClockOut, userID, func(tx *gorm.DB, s *models.AttendanceSession, now time.Time) error {
		if s.BreakStart != nil {
			closeBreak(s, now)
		}
		if s.PauseStart != nil {
			closePause(s, now)
		}
		// The held item is completed with the rest below
		s.PausedWorkItemID = nil
		s.ClockOut = &now
		return nil
	}, func(tx *gorm.DB, s *models.AttendanceSession) {
		closed, err := m.items.CloseOpen(tx, userID, *s.ClockOut)
		if err != nil {
			m.logger.ErrorContext(ctx, "closing work items at clock-out", "user_id", userID, "error", err)
			return
		}
		if closed > 0 {
			m.logger.InfoContext(ctx, "closed work items at clock-out", "user_id", userID, "count", closed)
		}
	})
	if err != nil {
		return nil, err
	}

	worked := worktime.NetWorked(s, *s.ClockOut)
	m.emit(ctx, userID, "Clocked out", fmt.Sprintf("You clocked out at %s after %s of work.",
		worktime.WallClock(*s.ClockOut, m.opts.Location), FormatDuration(worked)))
	return s, nil
}

type mutateFunc func(tx *gorm.DB, s *models.AttendanceSession, now time.Time) error

type afterSaveFunc func(tx *gorm.DB, s *models.AttendanceSession)

// transition loads the user's open session, applies mutate and writes the
// result back, all inside one transaction. afterSave hooks run in the same
// transaction once the session row is written.
func (m *Manager) transition(ctx context.Context, op, userID string, mutate mutateFunc, afterSave ...afterSaveFunc) (*models.AttendanceSession, error) {
	now := m.Now()
	var session *models.AttendanceSession

	err := m.uow.WithinTx(ctx, func(tx *gorm.DB) error {
		s, err := findOpen(tx, userID)
		if err != nil {
			return err
		}
		if s == nil {
			return reject(op, nil, ErrNotClockedIn)
		}

		if err := mutate(tx, s, now); err != nil {
			return err
		}
		if err := save(tx, s, now); err != nil {
			return err
		}
		for _, fn := range afterSave {
			fn(tx, s)
		}
		session = s
		return nil
	})
	if err != nil {
		m.logFailure(ctx, op, userID, err)
		return nil, err
	}

	m.logger.InfoContext(ctx, "attendance transition",
		"op", op, "user_id", userID, "session_id", session.ID, "status", session.Status)
	return session, nil
}

// save writes every mutable column of s, guarded by the version it was read
// at. Status is re-derived here so it can never disagree with the intervals.
func save(tx *gorm.DB, s *models.AttendanceSession, now time.Time) error {
	readVersion := s.Version
	s.DeriveStatus()
	s.Version++
	s.UpdatedAt = now

	res := tx.Model(&models.AttendanceSession{}).
		Where("id = ? AND version = ?", s.ID, readVersion).
		Updates(map[string]any{
			"clock_out":           s.ClockOut,
			"break_start":         s.BreakStart,
			"break_end":           s.BreakEnd,
			"total_break_minutes": s.TotalBreakMinutes,
			"pause_start":         s.PauseStart,
			"pause_end":           s.PauseEnd,
			"total_pause_minutes": s.TotalPauseMinutes,
			"status":              s.Status,
			"paused_work_item_id": s.PausedWorkItemID,
			"version":             s.Version,
			"updated_at":          s.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("updating attendance session %s: %w", s.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("updating attendance session %s: %w", s.ID, ErrConcurrentUpdate)
	}
	return nil
}

// findOpen returns the user's most recently opened session that has not been
// clocked out, or nil
func findOpen(tx *gorm.DB, userID string) (*models.AttendanceSession, error) {
	var s models.AttendanceSession
	err := tx.Where("user_id = ? AND clock_out IS NULL", userID).
		Order("clock_in DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding open attendance session: %w", err)
	}
	return &s, nil
}

func (m *Manager) holdWorkItem(tx *gorm.DB, s *models.AttendanceSession, now time.Time) error {
	id, err := m.items.PauseActive(tx, s.UserID, now)
	if err != nil {
		return err
	}
	s.PausedWorkItemID = id
	return nil
}

func (m *Manager) resumeWorkItem(tx *gorm.DB, s *models.AttendanceSession, now time.Time) error {
	if s.PausedWorkItemID == nil {
		return nil
	}
	if err := m.items.Resume(tx, *s.PausedWorkItemID, now); err != nil {
		return err
	}
	s.PausedWorkItemID = nil
	return nil
}

// closeBreak ends the open break and returns its rounded length in minutes
func closeBreak(s *models.AttendanceSession, now time.Time) int {
	minutes := worktime.RoundMinutes(now.Sub(*s.BreakStart))
	s.TotalBreakMinutes += minutes
	s.BreakEnd = &now
	s.BreakStart = nil
	return minutes
}

// closePause ends the open pause and returns its rounded length in minutes
func closePause(s *models.AttendanceSession, now time.Time) int {
	minutes := worktime.RoundMinutes(now.Sub(*s.PauseStart))
	s.TotalPauseMinutes += minutes
	s.PauseEnd = &now
	s.PauseStart = nil
	return minutes
}

// emit sends a notification and only logs delivery failures
func (m *Manager) emit(ctx context.Context, userID, title, message string) {
	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    models.NotificationTypeAttendance,
		Link:    Link,
	}
	if err := m.notifier.Notify(ctx, n); err != nil {
		m.logger.WarnContext(ctx, "notification not delivered", "user_id", userID, "title", title, "error", err)
	}
}

func (m *Manager) logFailure(ctx context.Context, op, userID string, err error) {
	if IsValidation(err) {
		m.logger.InfoContext(ctx, "attendance transition rejected", "op", op, "user_id", userID, "reason", err)
		return
	}
	m.logger.ErrorContext(ctx, "attendance transition failed", "op", op, "user_id", userID, "error", err)
}

// FormatDuration renders d as "7h30m" or "45m"
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
