package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClockType is the kind of time a session counts towards
type ClockType string

const (
	ClockPayroll  ClockType = "payroll"
	ClockBillable ClockType = "billable"
)

// Valid reports whether t is a known clock type
func (t ClockType) Valid() bool {
	return t == ClockPayroll || t == ClockBillable
}

// SessionStatus is the stored state of an attendance session
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusOnBreak   SessionStatus = "on_break"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
)

// AttendanceSession represents one clock-in to clock-out record for a user
type AttendanceSession struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    string     `gorm:"not null;index:idx_attendance_user_open,priority:1" json:"user_id"`
	ClockIn   time.Time  `gorm:"not null;index" json:"clock_in"`
	ClockOut  *time.Time `gorm:"index:idx_attendance_user_open,priority:2" json:"clock_out"`
	ClockType ClockType  `gorm:"not null;default:payroll" json:"clock_type"`

	// Location is recorded best-effort and never validated
	WorkLocation string   `json:"work_location"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	BreakStart        *time.Time `json:"break_start"`
	BreakEnd          *time.Time `json:"break_end"`
	TotalBreakMinutes int        `gorm:"not null;default:0" json:"total_break_minutes"`

	PauseStart        *time.Time `json:"pause_start"`
	PauseEnd          *time.Time `json:"pause_end"`
	TotalPauseMinutes int        `gorm:"not null;default:0" json:"total_pause_minutes"`

	Status SessionStatus `gorm:"not null;default:active;index" json:"status"`

	// Work item put on hold by the currently open break or pause
	PausedWorkItemID *uint `json:"paused_work_item_id,omitempty"`

	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`

	// Bumped on every write; updates compare-and-swap on it
	Version int `gorm:"not null;default:0" json:"version"`
}

// BeforeCreate assigns a UUID when the caller did not
func (s *AttendanceSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsOpen reports whether the session has not been clocked out yet
func (s *AttendanceSession) IsOpen() bool {
	return s.ClockOut == nil
}

// DeriveStatus recomputes Status from the interval fields and returns it.
// It is the only place Status is assigned.
func (s *AttendanceSession) DeriveStatus() SessionStatus {
	switch {
	case s.ClockOut != nil:
		s.Status = StatusCompleted
	case s.BreakStart != nil:
		s.Status = StatusOnBreak
	case s.PauseStart != nil:
		s.Status = StatusPaused
	default:
		s.Status = StatusActive
	}
	return s.Status
}
