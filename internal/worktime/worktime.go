// Package worktime computes net worked time and hour rollups from attendance
// sessions. Everything here is pure: no I/O and no clock reads.
package worktime

import (
	"math"
	"time"

	"github.com/balkashynov/punch/internal/models"
)

// NetWorked returns elapsed time since clock-in minus all closed break and
// pause minutes and any currently open break or pause, clamped to zero.
// Completed sessions are measured up to their clock-out instead of now.
func NetWorked(s *models.AttendanceSession, now time.Time) time.Duration {
	if s == nil {
		return 0
	}

	end := now
	if s.ClockOut != nil {
		end = *s.ClockOut
	}

	elapsed := end.Sub(s.ClockIn)
	elapsed -= time.Duration(s.TotalPauseMinutes) * time.Minute
	elapsed -= time.Duration(s.TotalBreakMinutes) * time.Minute

	switch s.Status {
	case models.StatusPaused:
		if s.PauseStart != nil {
			elapsed -= end.Sub(*s.PauseStart)
		}
	case models.StatusOnBreak:
		if s.BreakStart != nil {
			elapsed -= end.Sub(*s.BreakStart)
		}
	}

	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// NetWorkedMinutes is NetWorked truncated to whole minutes
func NetWorkedMinutes(s *models.AttendanceSession, now time.Time) int {
	return int(NetWorked(s, now) / time.Minute)
}

// EntryHours returns the net hours of a completed session. Open sessions
// count as zero.
func EntryHours(s *models.AttendanceSession) float64 {
	if s == nil || s.ClockOut == nil {
		return 0
	}
	worked := s.ClockOut.Sub(s.ClockIn)
	worked -= time.Duration(s.TotalBreakMinutes+s.TotalPauseMinutes) * time.Minute
	if worked < 0 {
		return 0
	}
	return worked.Hours()
}

// RangeHours sums EntryHours over completed sessions whose clock-in falls
// within [start, end].
func RangeHours(sessions []models.AttendanceSession, start, end time.Time) float64 {
	var total float64
	for i := range sessions {
		s := &sessions[i]
		if s.ClockOut == nil {
			continue
		}
		if s.ClockIn.Before(start) || s.ClockIn.After(end) {
			continue
		}
		total += EntryHours(s)
	}
	return total
}

// RoundMinutes rounds d to whole minutes, halves away from zero. Negative
// durations count as zero.
func RoundMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Minutes()))
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
