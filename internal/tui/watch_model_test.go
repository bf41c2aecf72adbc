package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/testutil"
)

type fakeTracker struct {
	session *models.AttendanceSession
	calls   []string
	err     error
}

func (f *fakeTracker) GetStatus(context.Context, string) (*attendance.Status, error) {
	if f.session == nil {
		return &attendance.Status{State: attendance.StateOut}, nil
	}
	return &attendance.Status{State: string(f.session.Status), Session: f.session}, nil
}

func (f *fakeTracker) record(op string, mutate func(s *models.AttendanceSession)) (*models.AttendanceSession, error) {
	f.calls = append(f.calls, op)
	if f.err != nil {
		return nil, f.err
	}
	mutate(f.session)
	f.session.DeriveStatus()
	return f.session, nil
}

func (f *fakeTracker) StartBreak(context.Context, string) (*models.AttendanceSession, error) {
	return f.record(attendance.OpStartBreak, func(s *models.AttendanceSession) {
		t := testutil.At(12, 0)
		s.BreakStart = &t
	})
}

func (f *fakeTracker) EndBreak(context.Context, string) (*models.AttendanceSession, error) {
	return f.record(attendance.OpEndBreak, func(s *models.AttendanceSession) {
		s.BreakStart = nil
		s.TotalBreakMinutes += 30
	})
}

func (f *fakeTracker) StartPause(context.Context, string) (*models.AttendanceSession, error) {
	return f.record(attendance.OpStartPause, func(s *models.AttendanceSession) {
		t := testutil.At(12, 0)
		s.PauseStart = &t
	})
}

func (f *fakeTracker) EndPause(context.Context, string) (*models.AttendanceSession, error) {
	return f.record(attendance.OpEndPause, func(s *models.AttendanceSession) {
		s.PauseStart = nil
	})
}

func (f *fakeTracker) ClockOut(context.Context, string) (*models.AttendanceSession, error) {
	return f.record(attendance.OpClockOut, func(s *models.AttendanceSession) {
		t := testutil.At(17, 0)
		s.ClockOut = &t
	})
}

type fakeReminder struct {
	fire   bool
	checks int
}

func (f *fakeReminder) Check(context.Context, string, time.Time) (bool, error) {
	f.checks++
	return f.fire, nil
}

func (f *fakeReminder) Threshold() time.Duration { return 470 * time.Minute }

func newWatch(t *testing.T, tracker *fakeTracker, reminder Reminder) WatchModel {
	t.Helper()
	clock := testutil.NewClock(testutil.At(13, 0))
	m := NewWatchModel(context.Background(), tracker, reminder, "u1", time.UTC, clock.Now)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(WatchModel)
}

// run executes cmd and feeds its message back into the model
func run(t *testing.T, m WatchModel, cmd tea.Cmd) (WatchModel, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	model, next := m.Update(cmd())
	return model.(WatchModel), next
}

func press(m WatchModel, k string) (WatchModel, tea.Cmd) {
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	return model.(WatchModel), cmd
}

func TestWatch_ShowsLiveWorkedTime(t *testing.T) {
	tracker := &fakeTracker{session: testutil.NewTestSession("u1", testutil.At(9, 0), testutil.WithBreakMinutes(30))}
	m := newWatch(t, tracker, nil)

	m, _ = run(t, m, m.fetchStatus())
	assert.Equal(t, 3*time.Hour+30*time.Minute, m.worked())

	view := m.View()
	assert.Contains(t, view, "WORKING")
	assert.Contains(t, view, "Clocked in at 09:00")
	assert.Contains(t, view, "Breaks 30 min")
}

func TestWatch_NotClockedIn(t *testing.T) {
	m := newWatch(t, &fakeTracker{}, nil)
	m, _ = run(t, m, m.fetchStatus())

	assert.Contains(t, m.View(), "not clocked in")
	m, cmd := press(m, "b")
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
}

func TestWatch_BreakKeyToggles(t *testing.T) {
	tracker := &fakeTracker{session: testutil.NewTestSession("u1", testutil.At(9, 0))}
	m := newWatch(t, tracker, nil)
	m, _ = run(t, m, m.fetchStatus())

	m, cmd := press(m, "b")
	assert.True(t, m.busy)
	m, cmd = run(t, m, cmd)
	assert.False(t, m.busy)
	assert.Contains(t, m.notice, "Break started at 12:00")

	m, _ = run(t, m, cmd)
	assert.Contains(t, m.View(), "ON BREAK")

	m, cmd = press(m, "b")
	m, _ = run(t, m, cmd)
	assert.Equal(t, []string{attendance.OpStartBreak, attendance.OpEndBreak}, tracker.calls)
}

func TestWatch_PauseKeyToggles(t *testing.T) {
	tracker := &fakeTracker{session: testutil.NewTestSession("u1", testutil.At(9, 0))}
	m := newWatch(t, tracker, nil)
	m, _ = run(t, m, m.fetchStatus())

	m, cmd := press(m, "p")
	m, cmd = run(t, m, cmd)
	m, _ = run(t, m, cmd)
	assert.Contains(t, m.View(), "PAUSED")

	m, cmd = press(m, "p")
	_, _ = run(t, m, cmd)
	assert.Equal(t, []string{attendance.OpStartPause, attendance.OpEndPause}, tracker.calls)
}

func TestWatch_ActionErrorIsShown(t *testing.T) {
	tracker := &fakeTracker{session: testutil.NewTestSession("u1", testutil.At(9, 0)), err: errors.New("database is locked")}
	m := newWatch(t, tracker, nil)
	m, _ = run(t, m, m.fetchStatus())

	m, cmd := press(m, "p")
	m, _ = run(t, m, cmd)
	assert.Contains(t, m.View(), "database is locked")
	assert.False(t, m.busy)
}

func TestWatch_ClockOutQuits(t *testing.T) {
	tracker := &fakeTracker{session: testutil.NewTestSession("u1", testutil.At(9, 0))}
	m := newWatch(t, tracker, nil)
	m, _ = run(t, m, m.fetchStatus())

	m, cmd := press(m, "o")
	m, cmd = run(t, m, cmd)
	require.NotNil(t, m.clockedOut)
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWatch_QuitKeepsTracking(t *testing.T) {
	tracker := &fakeTracker{session: testutil.NewTestSession("u1", testutil.At(9, 0))}
	m := newWatch(t, tracker, nil)

	m, cmd := press(m, "q")
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, tracker.calls)
}

func TestWatch_ReminderAlert(t *testing.T) {
	tracker := &fakeTracker{session: testutil.NewTestSession("u1", testutil.At(5, 0))}
	reminder := &fakeReminder{fire: true}
	m := newWatch(t, tracker, reminder)

	m, cmd := run(t, m, m.fetchStatus())
	m, _ = run(t, m, cmd)
	assert.Contains(t, m.alert, "7h50m")
	assert.Contains(t, m.View(), "Time to start wrapping up")

	// Once alerted the screen stops asking
	_, cmd = run(t, m, m.fetchStatus())
	assert.Nil(t, cmd)
	assert.Equal(t, 1, reminder.checks)
}

func TestWatch_NoReminderCheckWhileOnBreak(t *testing.T) {
	tracker := &fakeTracker{session: testutil.NewTestSession("u1", testutil.At(5, 0), testutil.WithOpenBreak(testutil.At(12, 0)))}
	reminder := &fakeReminder{fire: true}
	m := newWatch(t, tracker, reminder)

	_, cmd := run(t, m, m.fetchStatus())
	assert.Nil(t, cmd)
	assert.Zero(t, reminder.checks)
}

func TestRenderBigClock(t *testing.T) {
	out := renderBigClock(7*time.Hour+5*time.Minute+9*time.Second, ColorAccentBright)
	assert.Len(t, strings.Split(out, "\n"), 5)
}
