package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/worktime"
)

// RunWatch runs the live attendance screen until the user quits or clocks
// out
func RunWatch(ctx context.Context, tracker Tracker, reminder Reminder, userID string, loc *time.Location) error {
	model := NewWatchModel(ctx, tracker, reminder, userID, loc, nil)

	finalModel, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(WatchModel)
	if !ok {
		return nil
	}
	if s := m.clockedOut; s != nil {
		fmt.Printf("⏹️  Clocked out at %s\n", worktime.WallClock(*s.ClockOut, m.loc))
		fmt.Printf("📊 Worked %s (breaks %d min, pauses %d min)\n",
			attendance.FormatDuration(worktime.NetWorked(s, *s.ClockOut)), s.TotalBreakMinutes, s.TotalPauseMinutes)
	} else if m.status != nil && m.status.Session != nil {
		fmt.Println("💡 Still clocked in. Use 'punch status' to check or 'punch out' to finish.")
	}
	return nil
}

// RunReport shows sessions in the interactive report view
func RunReport(title string, sessions []models.AttendanceSession, loc *time.Location) error {
	model := NewReportModel(title, sessions, loc, time.Now())
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
