package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/worktime"
)

// StateOut is reported when the user has no open session
const StateOut = "out"

// Status is a snapshot of the user's attendance
type Status struct {
	State     string                    `json:"state"`
	Session   *models.AttendanceSession `json:"session,omitempty"`
	NetWorked time.Duration             `json:"-"`
	// NetWorkedMinutes mirrors NetWorked for JSON consumers
	NetWorkedMinutes int       `json:"net_worked_minutes"`
	At               time.Time `json:"at"`
}

// GetStatus returns the user's open session, if any, with live net worked
// time
func (m *Manager) GetStatus(ctx context.Context, userID string) (*Status, error) {
	now := m.Now()
	s, err := findOpen(m.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return &Status{State: StateOut, At: now}, nil
	}
	net := worktime.NetWorked(s, now)
	return &Status{
		State:            string(s.Status),
		Session:          s,
		NetWorked:        net,
		NetWorkedMinutes: int(net / time.Minute),
		At:               now,
	}, nil
}

// History returns the user's sessions that clocked in within [start, end],
// oldest first
func (m *Manager) History(ctx context.Context, userID string, start, end time.Time) ([]models.AttendanceSession, error) {
	var sessions []models.AttendanceSession
	err := m.db.WithContext(ctx).
		Where("user_id = ? AND clock_in >= ? AND clock_in <= ?", userID, start.UTC(), end.UTC()).
		Order("clock_in ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("listing attendance sessions: %w", err)
	}
	return sessions, nil
}

// MonthlyHours returns completed hours for the month containing month,
// rounded to one decimal
func (m *Manager) MonthlyHours(ctx context.Context, userID string, month time.Time) (float64, error) {
	start, end := worktime.MonthRange(month, m.opts.Location)
	sessions, err := m.History(ctx, userID, start, end)
	if err != nil {
		return 0, err
	}
	return worktime.MonthlyHours(sessions, month, m.opts.Location), nil
}

// TimeBreakdown returns today's, this week's and this month's completed
// hours with an entry per completed session since the earlier of the week
// and month start
func (m *Manager) TimeBreakdown(ctx context.Context, userID string) (*worktime.Breakdown, error) {
	now := m.Now()
	// The week can start in the previous month
	start := worktime.WeekStart(now, m.opts.Location)
	if monthStart := worktime.MonthStart(now, m.opts.Location); monthStart.Before(start) {
		start = monthStart
	}
	_, end := worktime.MonthRange(now, m.opts.Location)

	sessions, err := m.History(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	b := worktime.TimeBreakdown(sessions, now, m.opts.Location)
	return &b, nil
}
