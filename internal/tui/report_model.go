package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/worktime"
)

type reportKeys struct {
	Up   key.Binding
	Down key.Binding
	Prev key.Binding
	Next key.Binding
	Quit key.Binding
}

func (k reportKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Prev, k.Next, k.Quit}
}

func (k reportKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// ReportModel pages through the sessions of a report period
type ReportModel struct {
	width  int
	height int

	title    string
	sessions []models.AttendanceSession
	loc      *time.Location
	now      time.Time

	selected    int
	currentPage int
	perPage     int

	keys reportKeys
	help help.Model
}

// NewReportModel creates a report view over sessions, oldest first
func NewReportModel(title string, sessions []models.AttendanceSession, loc *time.Location, now time.Time) ReportModel {
	if loc == nil {
		loc = time.Local
	}
	return ReportModel{
		title:    title,
		sessions: sessions,
		loc:      loc,
		now:      now,
		perPage:  10,
		keys: reportKeys{
			Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Prev: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
			Next: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
			Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		help: help.New(),
	}
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// header, column titles, totals, pagination, help and margins
		m.perPage = max(3, m.height-10)
		m.currentPage = m.selected / m.perPage
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.sessions)-1 {
				m.selected++
			}
		case key.Matches(msg, m.keys.Prev):
			if m.currentPage > 0 {
				m.selected = (m.currentPage - 1) * m.perPage
			}
		case key.Matches(msg, m.keys.Next):
			if m.currentPage < m.pages()-1 {
				m.selected = (m.currentPage + 1) * m.perPage
			}
		}
		m.currentPage = m.selected / m.perPage
	}
	return m, nil
}

func (m ReportModel) pages() int {
	if len(m.sessions) == 0 {
		return 1
	}
	return (len(m.sessions) + m.perPage - 1) / m.perPage
}

func (m ReportModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderTable(leftWidth),
		" ",
		m.renderDetails(rightWidth),
	)
	helpBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Align(lipgloss.Center).
		Width(m.width).
		Render(m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, "", content, "", helpBar)
}

func (m ReportModel) renderTable(width int) string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	b.WriteString(headerStyle.Render("🗓  " + m.title))
	b.WriteString("\n\n")

	if len(m.sessions) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Render("No sessions in this period"))
		return lipgloss.NewStyle().Width(width).Render(b.String())
	}

	row := func(date, in, out, hours, state string) string {
		return fmt.Sprintf(" %-10s  %-5s  %-5s  %6s  %-9s", date, in, out, hours, state)
	}
	b.WriteString(headerStyle.Render(row("Date", "In", "Out", "Hours", "Status")))
	b.WriteString("\n")

	start := m.currentPage * m.perPage
	end := min(start+m.perPage, len(m.sessions))
	for i := start; i < end; i++ {
		s := &m.sessions[i]
		out, hours := "--:--", "live"
		if s.ClockOut != nil {
			out = worktime.WallClock(*s.ClockOut, m.loc)
			hours = fmt.Sprintf("%.2f", worktime.Round2(worktime.EntryHours(s)))
		}
		line := row(s.ClockIn.In(m.loc).Format("Mon 02/01"), worktime.WallClock(s.ClockIn, m.loc), out, hours, string(s.Status))

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		if i == m.selected {
			style = style.Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).Background(lipgloss.Color(ColorBorder))
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	total := worktime.Round2(worktime.RangeHours(m.sessions, m.sessions[0].ClockIn, m.sessions[len(m.sessions)-1].ClockIn))
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorSuccess)).
		Render(fmt.Sprintf(" Total: %.2fh over %d sessions", total, len(m.sessions))))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).
		Render(fmt.Sprintf(" Page %d/%d", m.currentPage+1, m.pages())))

	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Render(b.String())
}

func (m ReportModel) renderDetails(width int) string {
	if len(m.sessions) == 0 {
		return ""
	}
	s := &m.sessions[m.selected]

	label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true)
	field := func(name, v string) string {
		return label.Render(fmt.Sprintf("%-11s", name)) + value.Render(v)
	}

	worked := worktime.NetWorked(s, m.now)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).
			Render(s.ClockIn.In(m.loc).Format("Monday, 02 Jan 2006")),
		"",
		field("Clock in", worktime.WallClock(s.ClockIn, m.loc)),
	}
	if s.ClockOut != nil {
		lines = append(lines, field("Clock out", worktime.WallClock(*s.ClockOut, m.loc)))
	}
	lines = append(lines,
		field("Type", string(s.ClockType)),
		field("Location", s.WorkLocation),
		field("Breaks", fmt.Sprintf("%d min", s.TotalBreakMinutes)),
		field("Pauses", fmt.Sprintf("%d min", s.TotalPauseMinutes)),
		field("Worked", attendance.FormatDuration(worked)),
	)
	if s.Latitude != nil && s.Longitude != nil {
		lines = append(lines, field("Position", fmt.Sprintf("%.4f, %.4f", *s.Latitude, *s.Longitude)))
	}
	if s.ReminderSentAt != nil {
		lines = append(lines, field("Reminded", worktime.WallClock(*s.ReminderSentAt, m.loc)))
	}

	return lipgloss.NewStyle().
		Width(width-2).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Render(strings.Join(lines, "\n"))
}
