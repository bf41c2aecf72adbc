package tui

import (
	"context"
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

// Tracker is the attendance surface the watch screen drives
type Tracker interface {
	GetStatus(ctx context.Context, userID string) (*attendance.Status, error)
	StartBreak(ctx context.Context, userID string) (*models.AttendanceSession, error)
	EndBreak(ctx context.Context, userID string) (*models.AttendanceSession, error)
	StartPause(ctx context.Context, userID string) (*models.AttendanceSession, error)
	EndPause(ctx context.Context, userID string) (*models.AttendanceSession, error)
	ClockOut(ctx context.Context, userID string) (*models.AttendanceSession, error)
}

// Reminder checks a single session against the worked-time threshold
type Reminder interface {
	Check(ctx context.Context, sessionID string, now time.Time) (bool, error)
	Threshold() time.Duration
}

type watchKeys struct {
	Break    key.Binding
	Pause    key.Binding
	ClockOut key.Binding
	Quit     key.Binding
}

func (k watchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Break, k.Pause, k.ClockOut, k.Quit}
}

func (k watchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newWatchKeys() watchKeys {
	return watchKeys{
		Break:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "break")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		ClockOut: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "clock out")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit (keep tracking)")),
	}
}

// WatchModel shows the live net worked time of the user's open session
type WatchModel struct {
	ctx      context.Context
	tracker  Tracker
	reminder Reminder
	userID   string
	loc      *time.Location
	now      func() time.Time

	width  int
	height int
	keys   watchKeys
	help   help.Model

	status    *attendance.Status
	fetchedAt time.Time
	alert     string
	notice    string
	err       error
	busy      bool
	anim      int

	clockedOut *models.AttendanceSession
	quitting   bool
}

// tickMsg drives the clock and the periodic status refresh
type tickMsg time.Time

type statusMsg struct {
	status *attendance.Status
	err    error
}

type actionMsg struct {
	op      string
	session *models.AttendanceSession
	err     error
}

type reminderMsg struct {
	fired bool
	err   error
}

// refreshInterval is how often the session is reloaded from the store.
// The clock itself is recomputed every tick.
const refreshInterval = 5 * time.Second

// NewWatchModel creates the watch screen. reminder may be nil.
func NewWatchModel(ctx context.Context, tracker Tracker, reminder Reminder, userID string, loc *time.Location, now func() time.Time) WatchModel {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return WatchModel{
		ctx:      ctx,
		tracker:  tracker,
		reminder: reminder,
		userID:   userID,
		loc:      loc,
		now:      now,
		keys:     newWatchKeys(),
		help:     help.New(),
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m WatchModel) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		st, err := m.tracker.GetStatus(m.ctx, m.userID)
		return statusMsg{status: st, err: err}
	}
}

func (m WatchModel) act(op string, fn func(context.Context, string) (*models.AttendanceSession, error)) tea.Cmd {
	return func() tea.Msg {
		s, err := fn(m.ctx, m.userID)
		return actionMsg{op: op, session: s, err: err}
	}
}

func (m WatchModel) checkReminder(sessionID string) tea.Cmd {
	if m.reminder == nil {
		return nil
	}
	return func() tea.Msg {
		fired, err := m.reminder.Check(m.ctx, sessionID, m.now())
		return reminderMsg{fired: fired, err: err}
	}
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.anim = (m.anim + 1) % 4
		cmds := []tea.Cmd{tick()}
		if m.now().Sub(m.fetchedAt) >= refreshInterval {
			cmds = append(cmds, m.fetchStatus())
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		m.fetchedAt = m.now()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.status
		if m.status.Session != nil && m.status.Session.Status == models.StatusActive && m.alert == "" {
			return m, m.checkReminder(m.status.Session.ID)
		}
		return m, nil

	case actionMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.notice = actionNotice(msg.op, msg.session, m.loc)
		if msg.op == attendance.OpClockOut {
			m.clockedOut = msg.session
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.fetchStatus()

	case reminderMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.fired && m.reminder != nil {
			m.alert = fmt.Sprintf("🔔 You have worked %s today. Time to start wrapping up.",
				attendance.FormatDuration(m.reminder.Threshold()))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy || m.status == nil || m.status.Session == nil {
		return m, nil
	}

	state := m.status.Session.Status
	switch {
	case key.Matches(msg, m.keys.Break):
		m.busy = true
		if state == models.StatusOnBreak {
			return m, m.act(attendance.OpEndBreak, m.tracker.EndBreak)
		}
		return m, m.act(attendance.OpStartBreak, m.tracker.StartBreak)
	case key.Matches(msg, m.keys.Pause):
		m.busy = true
		if state == models.StatusPaused {
			return m, m.act(attendance.OpEndPause, m.tracker.EndPause)
		}
		return m, m.act(attendance.OpStartPause, m.tracker.StartPause)
	case key.Matches(msg, m.keys.ClockOut):
		m.busy = true
		return m, m.act(attendance.OpClockOut, m.tracker.ClockOut)
	}
	return m, nil
}

func actionNotice(op string, s *models.AttendanceSession, loc *time.Location) string {
	if s == nil {
		return ""
	}
	switch op {
	case attendance.OpStartBreak:
		return "☕ Break started at " + worktime.WallClock(*s.BreakStart, loc)
	case attendance.OpEndBreak:
		return fmt.Sprintf("▶ Back to work, %d min of breaks today", s.TotalBreakMinutes)
	case attendance.OpStartPause:
		return "⏸ Tracking paused at " + worktime.WallClock(*s.PauseStart, loc)
	case attendance.OpEndPause:
		return "▶ Tracking resumed"
	case attendance.OpClockOut:
		return "⏹ Clocked out at " + worktime.WallClock(*s.ClockOut, loc)
	}
	return ""
}

// worked returns the live net worked time, projected from the last refresh
func (m WatchModel) worked() time.Duration {
	if m.status == nil || m.status.Session == nil {
		return 0
	}
	return worktime.NetWorked(m.status.Session, m.now())
}

func (m WatchModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Align(lipgloss.Center).
		Width(m.width).
		Render(m.help.View(m.keys))

	panel := m.renderPanel(m.width, m.height-2)
	return lipgloss.JoinVertical(lipgloss.Left, panel, helpBar)
}

func (m WatchModel) renderPanel(width, height int) string {
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
	var components []string

	if m.status == nil {
		components = append(components, center.Render("Loading attendance..."))
	} else if m.status.Session == nil {
		components = append(components,
			center.Foreground(lipgloss.Color(ColorSecondaryText)).Render("You are not clocked in. Run 'punch in' to start."))
	} else {
		s := m.status.Session
		label, color := stateLabel(s.Status)
		anim := []string{"⏱", "⏲", "⏱", "⏲"}[m.anim]
		if s.Status != models.StatusActive {
			anim = "·"
		}
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color(color)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width).
			Render(fmt.Sprintf("%s  %s  %s", anim, label, anim))
		components = append(components, header)

		clockColor := ColorAccentBright
		if s.Status != models.StatusActive {
			clockColor = ColorDisabledText
		}
		for _, line := range strings.Split(renderBigClock(m.worked(), clockColor), "\n") {
			components = append(components, center.Render(line))
		}

		info := fmt.Sprintf("Clocked in at %s · %s · %s",
			worktime.WallClock(s.ClockIn, m.loc), s.ClockType, s.WorkLocation)
		components = append(components, center.
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Render(info))

		totals := fmt.Sprintf("Breaks %d min · Pauses %d min", s.TotalBreakMinutes, s.TotalPauseMinutes)
		components = append(components, center.Foreground(lipgloss.Color(ColorDisabledText)).Render(totals))
	}

	if m.alert != "" {
		components = append(components, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning)).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorWarning)).
			Padding(0, 2).
			Render(m.alert))
	}
	if m.notice != "" {
		components = append(components, center.Foreground(lipgloss.Color(ColorSuccess)).Render(m.notice))
	}
	if m.err != nil {
		components = append(components, center.Foreground(lipgloss.Color(ColorError)).Render("✗ "+m.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(components, "\n\n"))
}

func stateLabel(s models.SessionStatus) (string, string) {
	switch s {
	case models.StatusOnBreak:
		return "ON BREAK", ColorBreak
	case models.StatusPaused:
		return "PAUSED", ColorPause
	case models.StatusCompleted:
		return "CLOCKED OUT", ColorDisabledText
	default:
		return "WORKING", ColorAccentBright
	}
}

// bigDigits holds 5x5 glyphs for the clock
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock draws d as HH:MM:SS in block glyphs
func renderBigClock(d time.Duration, color string) string {
	d = d.Truncate(time.Second)
	text := fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)

	var lines [5]strings.Builder
	for _, r := range text {
		glyph, ok := bigDigits[r]
		if !ok {
			continue
		}
		for i := range lines {
			lines[i].WriteString(glyph[i])
			lines[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = style.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}
