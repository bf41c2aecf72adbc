// Package reminder fires a one-shot alert when a session's net worked time
// reaches a threshold. The "already reminded" flag lives in the session row,
// so the alert fires once per session no matter how many processes tick.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/notify"
	"github.com/balkashynov/punch/internal/worktime"
)

// Defaults
const (
	DefaultThreshold = 470 * time.Minute
	DefaultInterval  = time.Minute
)

// Title of the reminder notification
const Title = "Almost done for today"

// Link is attached to reminder notifications
const Link = "/attendance"

// Options configures a Scheduler
type Options struct {
	Threshold time.Duration
	Interval  time.Duration
	// Location formats wall-clock values in messages
	Location *time.Location
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Scheduler checks active sessions against the threshold
type Scheduler struct {
	db       *gorm.DB
	notifier notify.Notifier
	opts     Options
	logger   *slog.Logger
}

// New creates a Scheduler. Zero options fall back to the defaults.
func New(db *gorm.DB, notifier notify.Notifier, opts Options) *Scheduler {
	if notifier == nil {
		notifier = notify.Discard
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{db: db, notifier: notifier, opts: opts, logger: logger}
}

// Threshold returns the configured net worked time that triggers the alert
func (s *Scheduler) Threshold() time.Duration {
	return s.opts.Threshold
}

// Run ticks every interval until ctx is cancelled. Tick failures are logged
// and the loop carries on.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started",
		"threshold", s.opts.Threshold.String(), "interval", s.opts.Interval.String())
	s.tickAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tickAndLog(ctx)
		}
	}
}

func (s *Scheduler) tickAndLog(ctx context.Context) {
	fired, err := s.Tick(ctx, s.opts.Clock())
	if err != nil {
		s.logger.ErrorContext(ctx, "reminder tick failed", "error", err)
		return
	}
	if fired > 0 {
		s.logger.InfoContext(ctx, "reminders sent", "count", fired)
	}
}

// Tick checks every active, not yet reminded session at now and returns how
// many reminders it sent
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (int, error) {
	var sessions []models.AttendanceSession
	err := s.db.WithContext(ctx).
		Where("clock_out IS NULL AND status = ? AND reminder_sent_at IS NULL", models.StatusActive).
		Find(&sessions).Error
	if err != nil {
		return 0, fmt.Errorf("listing sessions due for a reminder: %w", err)
	}

	fired := 0
	for i := range sessions {
		ok, err := s.fire(ctx, &sessions[i], now)
		if err != nil {
			s.logger.ErrorContext(ctx, "reminder check failed", "session_id", sessions[i].ID, "error", err)
			continue
		}
		if ok {
			fired++
		}
	}
	return fired, nil
}

// Check runs the threshold check for one session and reports whether this
// call sent the reminder
func (s *Scheduler) Check(ctx context.Context, sessionID string, now time.Time) (bool, error) {
	var session models.AttendanceSession
	err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if !session.IsOpen() || session.Status != models.StatusActive || session.ReminderSentAt != nil {
		return false, nil
	}
	return s.fire(ctx, &session, now)
}

// fire claims the reminder for session if it is due. The conditional update
// is the one-shot guard: only the caller whose update lands sends the alert.
func (s *Scheduler) fire(ctx context.Context, session *models.AttendanceSession, now time.Time) (bool, error) {
	worked := worktime.NetWorked(session, now)
	if worked < s.opts.Threshold {
		return false, nil
	}

	sentAt := now.UTC().Truncate(time.Second)
	res := s.db.WithContext(ctx).Model(&models.AttendanceSession{}).
		Where("id = ? AND reminder_sent_at IS NULL", session.ID).
		Update("reminder_sent_at", sentAt)
	if res.Error != nil {
		return false, fmt.Errorf("marking reminder for session %s: %w", session.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	session.ReminderSentAt = &sentAt

	n := &models.Notification{
		UserID: session.UserID,
		Title:  Title,
		Message: fmt.Sprintf("You have worked %s since clocking in at %s. Remember to clock out.",
			formatWorked(worked), worktime.WallClock(session.ClockIn, s.opts.Location)),
		Type: models.NotificationTypeAttendance,
		Link: Link,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "reminder not delivered", "session_id", session.ID, "error", err)
	}
	s.logger.InfoContext(ctx, "reminder sent",
		"session_id", session.ID, "user_id", session.UserID, "worked_minutes", int(worked/time.Minute))
	return true, nil
}

func formatWorked(d time.Duration) string {
	d = d.Truncate(time.Minute)
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
