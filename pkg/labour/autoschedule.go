package labour

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
	"github.com/arnavshah/labour-scheduler/pkg/scheduler"
)

// ScheduleResult describes what one auto-scheduling run did
type ScheduleResult struct {
	Task     *models.LabourTask
	Shifts   []models.Shift
	Alert    *models.ScheduleAlert
	Conflict *scheduler.ConflictReason
}

// Staffed reports whether the run created the task's shifts
func (r *ScheduleResult) Staffed() bool {
	return len(r.Shifts) > 0
}

func assignLockKey(userID string) string {
	return "labour:assign:" + userID
}

// ScheduleTask staffs a PENDING task with the owner's active, qualified and
// unbooked workers. Either every required shift is created and the task
// becomes SCHEDULED in one transaction, or nothing is written and a CRITICAL
// shortage alert is raised. Runs for the same owner are serialized.
func (s *Service) ScheduleTask(ctx context.Context, task *models.LabourTask) (*ScheduleResult, error) {
	result := &ScheduleResult{Task: task}
	if task.Status != models.TaskPending {
		return result, nil
	}
	if task.RequiredWorkers <= 0 {
		return nil, invalid("task requires at least one worker")
	}

	release, err := s.locker.Acquire(ctx, assignLockKey(task.UserID))
	if err != nil {
		return nil, fmt.Errorf("acquire assignment lock: %w", err)
	}
	defer release()

	fields := map[string]interface{}{"user_id": task.UserID, "task_id": task.ID}

	workers, err := s.store.Workers().ListActive(ctx, task.UserID)
	if err != nil {
		return nil, s.storeErr(err, "list active workers", fields)
	}
	ids := make([]string, 0, len(workers))
	for _, w := range workers {
		ids = append(ids, w.ID)
	}
	busy, err := s.store.Shifts().ListOverlapping(ctx, ids, task.StartDate, task.EndDate)
	if err != nil {
		return nil, s.storeErr(err, "list booked shifts", fields)
	}

	plan := scheduler.NewPlanner(workers, busy).Plan(task)
	if !plan.Complete() {
		result.Conflict = plan.Conflict
		alert, err := s.CreateAlert(ctx, task.UserID, AlertInput{
			TaskID:         &task.ID,
			AlertType:      models.AlertLaborShortage,
			Severity:       models.SeverityCritical,
			Title:          "Labor Shortage Detected",
			Message:        shortageMessage(task, plan.Conflict),
			ActionRequired: true,
			Metadata: map[string]interface{}{
				"needed":    plan.Conflict.Needed,
				"qualified": plan.Conflict.Qualified,
				"reasons":   plan.Conflict.Reasons,
			},
		})
		if err != nil {
			return result, err
		}
		result.Alert = alert
		s.log.Info().Fields(fields).Int("needed", plan.Conflict.Needed).
			Int("qualified", plan.Conflict.Qualified).Msg("task left pending: labor shortage")
		return result, nil
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Shifts().CreateBatch(ctx, plan.Shifts); err != nil {
			return err
		}
		ok, err := tx.Tasks().UpdateStatusIf(ctx, task.ID, models.TaskPending, models.TaskScheduled)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTaskNotPending
		}
		return nil
	})
	if errors.Is(err, ErrTaskNotPending) {
		return result, fmt.Errorf("schedule task %s: %w", task.ID, err)
	}
	if err != nil {
		return result, s.storeErr(err, "create shifts", fields)
	}

	task.Status = models.TaskScheduled
	result.Shifts = plan.Shifts
	s.log.Info().Fields(fields).Int("shifts", len(plan.Shifts)).Msg("task scheduled")
	return result, nil
}

func shortageMessage(task *models.LabourTask, c *scheduler.ConflictReason) string {
	return fmt.Sprintf("Not enough workers available for task: %s (%d of %d found; %s)",
		task.Title, c.Qualified, c.Needed, strings.Join(c.Reasons, "; "))
}
