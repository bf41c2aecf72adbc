package worktime

import (
	"time"

	"github.com/balkashynov/punch/internal/models"
)

// Entry is the net hours of one completed session
type Entry struct {
	SessionID string    `json:"session_id"`
	ClockIn   time.Time `json:"clock_in"`
	ClockOut  time.Time `json:"clock_out"`
	ClockType string    `json:"clock_type"`
	Hours     float64   `json:"hours"`
}

// Breakdown groups completed hours into today, this week and this month.
// All values are rounded to two decimals.
type Breakdown struct {
	Today   float64 `json:"today"`
	Week    float64 `json:"week"`
	Month   float64 `json:"month"`
	Entries []Entry `json:"entries"`
}

// DayStart returns midnight of t's day in loc
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// WeekStart returns midnight of the Monday starting t's week in loc
func WeekStart(t time.Time, loc *time.Location) time.Time {
	day := DayStart(t, loc)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns midnight of the first day of t's month in loc
func MonthStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// MonthRange returns the inclusive bounds of the calendar month containing t
func MonthRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := MonthStart(t, loc)
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// MonthlyHours returns completed hours for the month containing month,
// rounded to one decimal.
func MonthlyHours(sessions []models.AttendanceSession, month time.Time, loc *time.Location) float64 {
	start, end := MonthRange(month, loc)
	return Round1(RangeHours(sessions, start, end))
}

// TimeBreakdown computes the breakdown for the period ending at now.
// Entries keep the order of sessions.
func TimeBreakdown(sessions []models.AttendanceSession, now time.Time, loc *time.Location) Breakdown {
	dayStart := DayStart(now, loc)
	weekStart := WeekStart(now, loc)
	monthStart, monthEnd := MonthRange(now, loc)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)

	b := Breakdown{
		Today:   Round2(RangeHours(sessions, dayStart, dayEnd)),
		Week:    Round2(RangeHours(sessions, weekStart, weekEnd)),
		Month:   Round2(RangeHours(sessions, monthStart, monthEnd)),
		Entries: []Entry{},
	}

	for i := range sessions {
		s := &sessions[i]
		if s.ClockOut == nil {
			continue
		}
		b.Entries = append(b.Entries, Entry{
			SessionID: s.ID,
			ClockIn:   s.ClockIn,
			ClockOut:  *s.ClockOut,
			ClockType: string(s.ClockType),
			Hours:     Round2(EntryHours(s)),
		})
	}
	return b
}
