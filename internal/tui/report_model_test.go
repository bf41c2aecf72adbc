package tui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/testutil"
)

func reportSessions(n int) []models.AttendanceSession {
	var out []models.AttendanceSession
	for i := 0; i < n; i++ {
		in := testutil.At(9, 0).AddDate(0, 0, i-n)
		s := testutil.NewTestSession("u1", in, testutil.WithClockOut(in.Add(8*time.Hour)), testutil.WithBreakMinutes(30))
		out = append(out, *s)
	}
	return out
}

func sized(m ReportModel, height int) ReportModel {
	model, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: height})
	return model.(ReportModel)
}

func pressKey(m ReportModel, k tea.KeyType) ReportModel {
	model, _ := m.Update(tea.KeyMsg{Type: k})
	return model.(ReportModel)
}

func TestReport_Totals(t *testing.T) {
	m := sized(NewReportModel("This week", reportSessions(3), time.UTC, testutil.At(18, 0)), 40)

	view := m.View()
	assert.Contains(t, view, "This week")
	assert.Contains(t, view, "7.50")
	assert.Contains(t, view, "Total: 22.50h over 3 sessions")
	assert.Contains(t, view, "7h30m")
}

func TestReport_Paging(t *testing.T) {
	// Height 13 leaves room for three rows per page
	m := sized(NewReportModel("Month", reportSessions(7), time.UTC, testutil.At(18, 0)), 13)
	assert.Equal(t, 3, m.perPage)
	assert.Equal(t, 3, m.pages())

	m = pressKey(m, tea.KeyRight)
	assert.Equal(t, 3, m.selected)
	assert.Equal(t, 1, m.currentPage)

	m = pressKey(m, tea.KeyUp)
	assert.Equal(t, 2, m.selected)
	assert.Equal(t, 0, m.currentPage)

	for i := 0; i < 10; i++ {
		m = pressKey(m, tea.KeyDown)
	}
	assert.Equal(t, 6, m.selected)
	assert.Equal(t, 2, m.currentPage)
	assert.Contains(t, m.View(), fmt.Sprintf("Page %d/%d", 3, 3))

	m = pressKey(m, tea.KeyLeft)
	assert.Equal(t, 3, m.selected)
}

func TestReport_Empty(t *testing.T) {
	m := sized(NewReportModel("Today", nil, time.UTC, testutil.At(18, 0)), 20)
	assert.Contains(t, m.View(), "No sessions in this period")
}
