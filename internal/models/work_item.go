package models

import "time"

// WorkItemStatus is the state of a tracked work item
type WorkItemStatus string

const (
	WorkPending    WorkItemStatus = "pending"
	WorkInProgress WorkItemStatus = "in_progress"
	WorkOnHold     WorkItemStatus = "on_hold"
	WorkCompleted  WorkItemStatus = "completed"
)

// WorkItem represents a separately tracked unit of task time.
// StartTime and EndTime are wall-clock "HH:MM" values.
type WorkItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    string         `gorm:"not null;index" json:"user_id"`
	Title     string         `json:"title"`
	StartTime string         `gorm:"size:5;not null" json:"start_time"`
	EndTime   *string        `gorm:"size:5" json:"end_time"`
	Status    WorkItemStatus `gorm:"not null;default:pending;index" json:"status"`

	PauseStart        *time.Time `json:"pause_start"`
	PauseEnd          *time.Time `json:"pause_end"`
	TotalPauseMinutes int        `gorm:"not null;default:0" json:"total_pause_minutes"`

	// Set only when the item is completed
	TimeSpentMinutes *int `json:"time_spent_minutes"`
}
