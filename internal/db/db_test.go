package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

func TestOpen_MemoryRunsMigrations(t *testing.T) {
	db, err := Open(MemoryPath, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	for _, table := range []string{"attendance_sessions", "work_items", "notifications"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestOpen_FileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "punch.db")
	db, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, Close(db))

	// Reopening an existing database must not re-run applied migrations
	db, err = Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, Close(db))
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(MemoryPath, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.NoError(t, Migrate(db))
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db, err := Open(MemoryPath, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	uow := NewUnitOfWork(db)
	boom := errors.New("boom")

	err = uow.WithinTx(context.Background(), func(tx *gorm.DB) error {
		s := models.AttendanceSession{UserID: "u1", ClockIn: time.Now().UTC(), ClockType: models.ClockPayroll, Status: models.StatusActive}
		if err := tx.Create(&s).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.AttendanceSession{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUnitOfWork_Commits(t *testing.T) {
	db, err := Open(MemoryPath, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	uow := NewUnitOfWork(db)
	err = uow.WithinTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&models.WorkItem{UserID: "u1", StartTime: "09:00", Status: models.WorkPending}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.WorkItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
