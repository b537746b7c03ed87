package repository

import (
	"context"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultAlertLimit = 50

var alertListOrder = clause.OrderBy{Expression: clause.Expr{
	SQL:                "CASE severity WHEN ? THEN 3 WHEN ? THEN 2 ELSE 1 END DESC, created_at DESC",
	Vars:               []any{models.SeverityCritical, models.SeverityWarning},
	WithoutParentheses: true,
}}

type alertRepo struct {
	db *gorm.DB
}

func (r *alertRepo) Create(ctx context.Context, a *models.ScheduleAlert) error {
	return wrap(r.db.WithContext(ctx).Omit("Task").Create(a).Error)
}

func (r *alertRepo) Get(ctx context.Context, id string) (*models.ScheduleAlert, error) {
	var a models.ScheduleAlert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, wrap(err)
	}
	return &a, nil
}

// List orders by severity (CRITICAL first) then newest first
func (r *alertRepo) List(ctx context.Context, userID string, f AlertFilter) ([]models.ScheduleAlert, error) {
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.IsRead != nil {
		tx = tx.Where("is_read = ?", *f.IsRead)
	}
	if f.Severity != nil {
		tx = tx.Where("severity = ?", *f.Severity)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultAlertLimit
	}

	var alerts []models.ScheduleAlert
	err := tx.Preload("Task").Order(alertListOrder).Limit(limit).Find(&alerts).Error
	return alerts, wrap(err)
}

func (r *alertRepo) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.ScheduleAlert{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return wrap(res.Error)
	}
	// Some drivers report zero affected rows when the value is unchanged, so
	// existence is checked by the caller rather than inferred here.
	return nil
}

func (r *alertRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ScheduleAlert{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, wrap(err)
}
