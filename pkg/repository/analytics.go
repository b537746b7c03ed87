package repository

import (
	"context"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type analyticsRepo struct {
	db *gorm.DB
}

// Upsert records one snapshot per user and day; a second write for the same
// day replaces the counters. a is reloaded so it carries the stored row.
func (r *analyticsRepo) Upsert(ctx context.Context, a *models.LabourAnalytics) error {
	a.Date = utc(a.Date)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_workers", "active_workers", "total_hours", "efficiency"}),
	}).Create(a).Error
	if err != nil {
		return wrap(err)
	}

	var stored models.LabourAnalytics
	if err := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", a.UserID, a.Date).First(&stored).Error; err != nil {
		return wrap(err)
	}
	*a = stored
	return nil
}

func (r *analyticsRepo) ListSince(ctx context.Context, userID string, since time.Time) ([]models.LabourAnalytics, error) {
	var rows []models.LabourAnalytics
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, utc(since)).
		Order("date DESC").
		Find(&rows).Error
	return rows, wrap(err)
}

func (r *analyticsRepo) ListRange(ctx context.Context, userID string, rng DateRange) ([]models.LabourAnalytics, error) {
	var rows []models.LabourAnalytics
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, utc(rng.Start), utc(rng.End)).
		Order("date ASC").
		Find(&rows).Error
	return rows, wrap(err)
}
