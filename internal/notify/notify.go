// Package notify delivers attendance notifications. Delivery is
// fire-and-forget: callers log failures and carry on.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

// Notifier receives notification records
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, n *models.Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n *models.Notification) error {
	return f(ctx, n)
}

// Discard drops every notification
var Discard Notifier = NotifierFunc(func(context.Context, *models.Notification) error { return nil })

// Multi fans a notification out to every notifier and joins their errors
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n *models.Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Store persists notifications so the dashboard can list them
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store writing to db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Notify(ctx context.Context, n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationTypeAttendance
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("persisting notification: %w", err)
	}
	return nil
}

// List returns the user's most recent notifications, newest first.
// A non-positive limit returns all of them.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var out []models.Notification
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return out, nil
}

// Log writes notifications to a structured logger
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log notifier
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, n *models.Notification) error {
	l.logger.InfoContext(ctx, "notification",
		"user_id", n.UserID,
		"type", n.Type,
		"title", n.Title,
		"message", n.Message,
		"link", n.Link,
	)
	return nil
}

// Terminal prints notifications as a highlighted alert for a human watching
// the terminal
type Terminal struct {
	w io.Writer
}

// NewTerminal creates a Terminal notifier writing to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

var (
	alertTitle = color.New(color.FgYellow, color.Bold)
	alertBody  = color.New(color.FgWhite)
)

func (t *Terminal) Notify(_ context.Context, n *models.Notification) error {
	if _, err := alertTitle.Fprintf(t.w, "🔔 %s\n", n.Title); err != nil {
		return err
	}
	_, err := alertBody.Fprintf(t.w, "   %s\n", n.Message)
	return err
}
