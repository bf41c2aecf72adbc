package db

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

// Migrations lists schema changes in the order they were introduced
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20261001_create_attendance_sessions",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.AttendanceSession{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("attendance_sessions")
			},
		},
		{
			ID: "20261001_create_work_items",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.WorkItem{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("work_items")
			},
		},
		{
			ID: "20261008_create_notifications",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Notification{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("notifications")
			},
		},
	}
}

// Migrate brings the schema up to date
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations())
	return m.Migrate()
}
