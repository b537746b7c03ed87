package repository

import (
	"context"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"gorm.io/gorm"
)

type shiftRepo struct {
	db *gorm.DB
}

func (r *shiftRepo) Create(ctx context.Context, s *models.Shift) error {
	return wrap(r.db.WithContext(ctx).Omit("Worker", "Task").Create(s).Error)
}

func (r *shiftRepo) CreateBatch(ctx context.Context, shifts []models.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	return wrap(r.db.WithContext(ctx).Omit("Worker", "Task").Create(&shifts).Error)
}

func (r *shiftRepo) Get(ctx context.Context, id string) (*models.Shift, error) {
	var s models.Shift
	err := r.db.WithContext(ctx).Preload("Worker").Preload("Task").Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &s, nil
}

// Update overwrites the status and whichever actual-time fields are set.
// The caller is expected to have loaded the shift already.
func (r *shiftRepo) Update(ctx context.Context, id string, u ShiftUpdate) error {
	updates := map[string]interface{}{"status": u.Status}
	if u.ActualStart != nil {
		updates["actual_start"] = utc(*u.ActualStart)
	}
	if u.ActualEnd != nil {
		updates["actual_end"] = utc(*u.ActualEnd)
	}
	if u.OvertimeHours != nil {
		updates["overtime_hours"] = *u.OvertimeHours
	}

	return wrap(r.db.WithContext(ctx).Model(&models.Shift{}).Where("id = ?", id).Updates(updates).Error)
}

// ListOverlapping returns non-cancelled shifts of the given workers that
// intersect [start, end).
func (r *shiftRepo) ListOverlapping(ctx context.Context, workerIDs []string, start, end time.Time) ([]models.Shift, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}
	var shifts []models.Shift
	err := r.db.WithContext(ctx).
		Where("worker_id IN ? AND status <> ?", workerIDs, models.ShiftCancelled).
		Where("start_time < ? AND end_time > ?", utc(end), utc(start)).
		Find(&shifts).Error
	return shifts, wrap(err)
}

func (r *shiftRepo) ListCompletedWithOvertime(ctx context.Context, from, to time.Time) ([]models.Shift, error) {
	var shifts []models.Shift
	err := r.db.WithContext(ctx).Preload("Worker").
		Where("status = ? AND overtime_hours > 0", models.ShiftCompleted).
		Where("date >= ? AND date < ?", utc(from), utc(to)).
		Order("worker_id ASC").
		Find(&shifts).Error
	return shifts, wrap(err)
}

func (r *shiftRepo) ownedBy(userID string) *gorm.DB {
	return r.db.Model(&models.LabourTask{}).Select("id").Where("user_id = ?", userID)
}

func (r *shiftRepo) ListForUser(ctx context.Context, userID string, rng DateRange) ([]models.Shift, error) {
	var shifts []models.Shift
	err := r.db.WithContext(ctx).
		Where("task_id IN (?)", r.ownedBy(userID)).
		Where("date >= ? AND date <= ?", utc(rng.Start), utc(rng.End)).
		Find(&shifts).Error
	return shifts, wrap(err)
}

// CountActiveByTask counts non-cancelled shifts per task id
func (r *shiftRepo) CountActiveByTask(ctx context.Context, taskIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(taskIDs))
	if len(taskIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		TaskID string
		Total  int
	}
	err := r.db.WithContext(ctx).Model(&models.Shift{}).
		Select("task_id, COUNT(*) AS total").
		Where("task_id IN ? AND status <> ?", taskIDs, models.ShiftCancelled).
		Group("task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err)
	}
	for _, row := range rows {
		counts[row.TaskID] = row.Total
	}
	return counts, nil
}

func (r *shiftRepo) SumOvertimeSince(ctx context.Context, userID string, since time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Shift{}).
		Select("COALESCE(SUM(overtime_hours), 0)").
		Where("task_id IN (?) AND status <> ?", r.ownedBy(userID), models.ShiftCancelled).
		Where("date >= ? AND overtime_hours > 0", utc(since)).
		Row().Scan(&total)
	return total, wrap(err)
}
