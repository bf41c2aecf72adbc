package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationTypeAttendance tags every record emitted by the attendance core
const NotificationTypeAttendance = "attendance"

// Notification is a user-facing message persisted for the dashboard
type Notification struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	UserID  string `gorm:"not null;index" json:"user_id"`
	Title   string `gorm:"not null" json:"title"`
	Message string `json:"message"`
	Type    string `gorm:"not null;default:attendance" json:"type"`
	Link    string `json:"link"`
	Read    bool   `gorm:"default:false" json:"read"`
}

// BeforeCreate assigns a UUID when the caller did not
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
