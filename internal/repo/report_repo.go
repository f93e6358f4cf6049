// Package repo implements the persistence layer of the failure journal,
// backed by GORM. This file provides repository functions for the Report
// model.
//
// All functions are context-aware and accept a *gorm.DB handle so they can run
// inside transactions. They hold no business logic: key resolution and
// validation happen in services.ReportService.
//
// Error semantics:
//   - A missing report yields gorm.ErrRecordNotFound (exported as ErrNotFound).
//   - Any other DB error is propagated unchanged.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-error-catalog/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateReport inserts r, assigning a UUID and a UTC timestamp when unset.
func CreateReport(ctx context.Context, db *gorm.DB, r *domain.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// GetReport fetches a report by ID, or ErrNotFound.
func GetReport(ctx context.Context, db *gorm.DB, id string) (*domain.Report, error) {
	var r domain.Report
	if err := db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// reportScope narrows to one key when key is non-empty.
func reportScope(ctx context.Context, db *gorm.DB, key string) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.Report{})
	if key != "" {
		q = q.Where("key = ?", key)
	}
	return q
}

// CountReports returns the number of reports, optionally for one key.
func CountReports(ctx context.Context, db *gorm.DB, key string) (int64, error) {
	var n int64
	err := reportScope(ctx, db, key).Count(&n).Error
	return n, err
}

// ListReportsPage returns reports newest first, optionally for one key.
// Ties on created_at are broken by id so pages are stable.
func ListReportsPage(ctx context.Context, db *gorm.DB, key string, offset, limit int) ([]domain.Report, error) {
	var out []domain.Report
	err := reportScope(ctx, db, key).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
