// Package workitems keeps tracked work items in step with attendance
// transitions. The coordination methods take the caller's transaction so the
// work-item change commits or rolls back with the session change.
package workitems

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/worktime"
)

// ErrNotFound is returned when a work item does not exist for the user
var ErrNotFound = errors.New("work item not found")

// ErrInvalidState is returned when a work item cannot make the requested move
var ErrInvalidState = errors.New("work item is not in a valid state for this action")

// Coordinator pauses, resumes and closes work items
type Coordinator struct {
	db     *gorm.DB
	loc    *time.Location
	logger *slog.Logger
}

// New creates a Coordinator. Wall-clock fields are written in loc.
func New(db *gorm.DB, loc *time.Location, logger *slog.Logger) *Coordinator {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{db: db, loc: loc, logger: logger}
}

// Location returns the zone wall-clock values are written in
func (c *Coordinator) Location() *time.Location {
	return c.loc
}

// PauseActive puts the user's most recently created in-progress item on
// hold and returns its id, or nil when there is nothing to pause.
func (c *Coordinator) PauseActive(tx *gorm.DB, userID string, now time.Time) (*uint, error) {
	var item models.WorkItem
	err := tx.Where("user_id = ? AND status = ? AND end_time IS NULL", userID, models.WorkInProgress).
		Order("created_at DESC, id DESC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding in-progress work item: %w", err)
	}

	res := tx.Model(&models.WorkItem{}).
		Where("id = ? AND status = ?", item.ID, models.WorkInProgress).
		Updates(map[string]any{
			"status":      models.WorkOnHold,
			"pause_start": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("putting work item #%d on hold: %w", item.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	c.logger.Debug("work item on hold", "work_item_id", item.ID, "user_id", userID)
	return &item.ID, nil
}

// Resume puts the given on-hold item back in progress, adding the rounded
// pause to its total. Items no longer on hold are left alone.
func (c *Coordinator) Resume(tx *gorm.DB, itemID uint, now time.Time) error {
	var item models.WorkItem
	err := tx.First(&item, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.logger.Warn("paused work item disappeared", "work_item_id", itemID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading work item #%d: %w", itemID, err)
	}
	if item.Status != models.WorkOnHold || item.EndTime != nil {
		c.logger.Debug("work item no longer on hold, not resuming", "work_item_id", itemID, "status", item.Status)
		return nil
	}

	closePause(&item, now)
	item.Status = models.WorkInProgress

	if err := tx.Model(&models.WorkItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"status":              item.Status,
			"pause_start":         nil,
			"pause_end":           item.PauseEnd,
			"total_pause_minutes": item.TotalPauseMinutes,
		}).Error; err != nil {
		return fmt.Errorf("resuming work item #%d: %w", item.ID, err)
	}

	c.logger.Debug("work item resumed", "work_item_id", item.ID, "pause_minutes", item.TotalPauseMinutes)
	return nil
}

// CloseOpen completes every unfinished item of the user at clockOut. Each
// item is written in its own savepoint: a failing item is logged and
// skipped. It returns the number of items closed.
func (c *Coordinator) CloseOpen(tx *gorm.DB, userID string, clockOut time.Time) (int, error) {
	var items []models.WorkItem
	err := tx.Where("user_id = ? AND end_time IS NULL AND status IN ?", userID,
		[]models.WorkItemStatus{models.WorkInProgress, models.WorkOnHold, models.WorkPending}).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return 0, fmt.Errorf("finding open work items: %w", err)
	}

	endWall := worktime.WallClock(clockOut, c.loc)
	closed := 0
	for i := range items {
		item := &items[i]
		err := tx.Transaction(func(itx *gorm.DB) error {
			return c.complete(itx, item, clockOut, endWall)
		})
		if err != nil {
			c.logger.Error("failed to close work item at clock-out",
				"work_item_id", item.ID, "user_id", userID, "error", err)
			continue
		}
		closed++
	}
	return closed, nil
}

func (c *Coordinator) complete(tx *gorm.DB, item *models.WorkItem, clockOut time.Time, endWall string) error {
	if item.Status == models.WorkOnHold {
		closePause(item, clockOut)
	}

	spent, err := worktime.WallMinutes(item.StartTime, endWall)
	if err != nil {
		return err
	}
	spent -= item.TotalPauseMinutes
	if spent < 0 {
		spent = 0
	}

	item.EndTime = &endWall
	item.TimeSpentMinutes = &spent
	item.Status = models.WorkCompleted

	return tx.Model(&models.WorkItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"status":              item.Status,
			"end_time":            endWall,
			"time_spent_minutes":  spent,
			"pause_start":         item.PauseStart,
			"pause_end":           item.PauseEnd,
			"total_pause_minutes": item.TotalPauseMinutes,
		}).Error
}

// closePause ends an open pause, adding the rounded minutes to the total
func closePause(item *models.WorkItem, now time.Time) {
	if item.PauseStart == nil {
		return
	}
	item.TotalPauseMinutes += worktime.RoundMinutes(now.Sub(*item.PauseStart))
	item.PauseStart = nil
	item.PauseEnd = &now
}

// Create records a pending work item starting at startAt
func (c *Coordinator) Create(ctx context.Context, userID, title string, startAt time.Time) (*models.WorkItem, error) {
	item := models.WorkItem{
		UserID:    userID,
		Title:     title,
		StartTime: worktime.WallClock(startAt, c.loc),
		Status:    models.WorkPending,
	}
	if err := c.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("creating work item: %w", err)
	}
	return &item, nil
}

// Start moves a pending item to in progress, resetting its start time to now
func (c *Coordinator) Start(ctx context.Context, userID string, id uint, now time.Time) (*models.WorkItem, error) {
	item, err := c.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if item.Status != models.WorkPending {
		return nil, fmt.Errorf("work item #%d is %s: %w", id, item.Status, ErrInvalidState)
	}

	item.Status = models.WorkInProgress
	item.StartTime = worktime.WallClock(now, c.loc)
	if err := c.db.WithContext(ctx).Model(&models.WorkItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{"status": item.Status, "start_time": item.StartTime}).Error; err != nil {
		return nil, fmt.Errorf("starting work item #%d: %w", id, err)
	}
	return item, nil
}

// Get loads one of the user's work items
func (c *Coordinator) Get(ctx context.Context, userID string, id uint) (*models.WorkItem, error) {
	var item models.WorkItem
	err := c.db.WithContext(ctx).Where("user_id = ?", userID).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("work item #%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading work item #%d: %w", id, err)
	}
	return &item, nil
}

// List returns the user's work items, newest first
func (c *Coordinator) List(ctx context.Context, userID string, includeCompleted bool) ([]models.WorkItem, error) {
	var items []models.WorkItem
	q := c.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeCompleted {
		q = q.Where("status <> ?", models.WorkCompleted)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing work items: %w", err)
	}
	return items, nil
}
