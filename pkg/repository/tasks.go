package repository

import (
	"context"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Priorities and severities are stored as text, so rank them explicitly.
var taskListOrder = clause.OrderBy{Expression: clause.Expr{
	SQL:                "CASE priority WHEN ? THEN 4 WHEN ? THEN 3 WHEN ? THEN 2 ELSE 1 END DESC, start_date ASC",
	Vars:               []any{models.PriorityUrgent, models.PriorityHigh, models.PriorityMedium},
	WithoutParentheses: true,
}}

type taskRepo struct {
	db *gorm.DB
}

func (r *taskRepo) Create(ctx context.Context, t *models.LabourTask) error {
	return wrap(r.db.WithContext(ctx).Create(t).Error)
}

func (r *taskRepo) Get(ctx context.Context, id string) (*models.LabourTask, error) {
	var t models.LabourTask
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, wrap(err)
	}
	return &t, nil
}

func (r *taskRepo) List(ctx context.Context, userID string, f TaskFilter) ([]models.LabourTask, error) {
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.Status != nil {
		tx = tx.Where("status = ?", *f.Status)
	}
	if f.Priority != nil {
		tx = tx.Where("priority = ?", *f.Priority)
	}
	if f.StartFrom != nil {
		tx = tx.Where("start_date >= ?", utc(*f.StartFrom))
	}
	if f.StartTo != nil {
		tx = tx.Where("start_date <= ?", utc(*f.StartTo))
	}

	var tasks []models.LabourTask
	err := tx.Preload("Shifts.Worker").Order(taskListOrder).Find(&tasks).Error
	return tasks, wrap(err)
}

// ListStartingBetween spans every owner; it feeds the upcoming-task scan.
func (r *taskRepo) ListStartingBetween(ctx context.Context, from, to time.Time, statuses []models.TaskStatus) ([]models.LabourTask, error) {
	var tasks []models.LabourTask
	err := r.db.WithContext(ctx).
		Where("start_date >= ? AND start_date < ?", utc(from), utc(to)).
		Where("status IN ?", statuses).
		Order("start_date ASC").
		Find(&tasks).Error
	return tasks, wrap(err)
}

// ListOverlapping returns tasks whose [start, end) window intersects [from, to)
func (r *taskRepo) ListOverlapping(ctx context.Context, userID string, from, to time.Time) ([]models.LabourTask, error) {
	var tasks []models.LabourTask
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date < ? AND end_date > ?", userID, utc(to), utc(from)).
		Find(&tasks).Error
	return tasks, wrap(err)
}

func (r *taskRepo) ListByStatuses(ctx context.Context, userID string, statuses []models.TaskStatus) ([]models.LabourTask, error) {
	var tasks []models.LabourTask
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, statuses).
		Order("start_date ASC").
		Find(&tasks).Error
	return tasks, wrap(err)
}

func (r *taskRepo) ListStartingIn(ctx context.Context, userID string, rng DateRange) ([]models.LabourTask, error) {
	var tasks []models.LabourTask
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date >= ? AND start_date <= ?", userID, utc(rng.Start), utc(rng.End)).
		Find(&tasks).Error
	return tasks, wrap(err)
}

func (r *taskRepo) UpdateStatusIf(ctx context.Context, id string, from, to models.TaskStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.LabourTask{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, wrap(res.Error)
	}
	return res.RowsAffected == 1, nil
}
