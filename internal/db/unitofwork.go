package db

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork manages transactional boundaries. The callback receives a
// transaction-scoped handle; everything written through it commits or rolls
// back together.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GormUnitOfWork implements UnitOfWork with gorm transactions.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a UnitOfWork backed by db.
func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return u.db.WithContext(ctx).Transaction(fn)
}
