// Package repo implements the persistence layer of the failure journal. This
// file provides aggregate queries used for conditional responses (ETag
// generation) and the per-key histogram.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-error-catalog/internal/domain"
)

// ReportsStats returns the number of reports and the newest CreatedAt,
// optionally scoped to one key. When there are no rows the count is 0 and
// latest is nil.
func ReportsStats(ctx context.Context, db *gorm.DB, key string) (count int64, latest *time.Time, err error) {
	if err = reportScope(ctx, db, key).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = reportScope(ctx, db, key).Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}

// CountByKey returns one row per journaled key, ordered by code.
func CountByKey(ctx context.Context, db *gorm.DB) ([]domain.KeyCount, error) {
	var out []domain.KeyCount
	err := db.WithContext(ctx).
		Model(&domain.Report{}).
		Select("key, code, COUNT(*) AS count").
		Group("key, code").
		Order("code ASC").
		Scan(&out).Error
	return out, err
}
