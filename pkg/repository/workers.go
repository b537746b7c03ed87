package repository

import (
	"context"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"gorm.io/gorm"
)

type workerRepo struct {
	db *gorm.DB
}

func (r *workerRepo) Create(ctx context.Context, w *models.Worker) error {
	return wrap(r.db.WithContext(ctx).Create(w).Error)
}

func (r *workerRepo) Update(ctx context.Context, w *models.Worker) error {
	res := r.db.WithContext(ctx).Model(&models.Worker{}).Where("id = ? AND user_id = ?", w.ID, w.UserID).
		Select("first_name", "last_name", "phone", "skills", "hourly_rate", "availability", "status", "updated_at").
		Updates(w)
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workerRepo) Get(ctx context.Context, userID, id string) (*models.Worker, error) {
	var w models.Worker
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&w).Error; err != nil {
		return nil, wrap(err)
	}
	return &w, nil
}

// List returns the user's workers newest first, each with at most
// upcomingLimit shifts dated from upcomingFrom onward.
func (r *workerRepo) List(ctx context.Context, userID string, f WorkerFilter, upcomingFrom time.Time, upcomingLimit int) ([]models.Worker, error) {
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.Status != nil {
		tx = tx.Where("status = ?", *f.Status)
	}
	tx = tx.Preload("Shifts", func(db *gorm.DB) *gorm.DB {
		return db.Where("date >= ?", utc(upcomingFrom)).Order("start_time ASC")
	})

	var workers []models.Worker
	if err := tx.Order("created_at DESC").Find(&workers).Error; err != nil {
		return nil, wrap(err)
	}

	// Skill sets are JSON columns, so any-of matching happens here to stay
	// portable across postgres, mysql and sqlite.
	out := workers[:0]
	for _, w := range workers {
		if len(f.Skills) > 0 && !w.HasAnySkill(f.Skills) {
			continue
		}
		if upcomingLimit > 0 && len(w.Shifts) > upcomingLimit {
			w.Shifts = w.Shifts[:upcomingLimit]
		}
		out = append(out, w)
	}
	return out, nil
}

// ListActive returns ACTIVE workers in registry order (oldest first)
func (r *workerRepo) ListActive(ctx context.Context, userID string) ([]models.Worker, error) {
	var workers []models.Worker
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.WorkerActive).
		Order("created_at ASC").Order("id ASC").
		Find(&workers).Error
	return workers, wrap(err)
}

func (r *workerRepo) ListByIDs(ctx context.Context, ids []string) ([]models.Worker, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var workers []models.Worker
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&workers).Error
	return workers, wrap(err)
}

func (r *workerRepo) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Worker{}).Where("user_id = ?", userID).Count(&count).Error
	return count, wrap(err)
}
