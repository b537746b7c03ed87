package labour

import (
	"context"
	"math"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
)

// ShiftInput books a worker on a task by hand
type ShiftInput struct {
	WorkerID  string    `json:"worker_id" binding:"required"`
	TaskID    string    `json:"task_id" binding:"required"`
	Date      time.Time `json:"date"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// ActualTimes are the clock-in and clock-out reported for a shift
type ActualTimes struct {
	ActualStart *time.Time `json:"actual_start"`
	ActualEnd   *time.Time `json:"actual_end"`
}

// SCHEDULED -> IN_PROGRESS -> COMPLETED, CANCELLED from any non-terminal
// state. SCHEDULED -> COMPLETED records a shift reported in one call.
// Re-applying the current status is allowed; a cancelled shift takes no
// actual times.
var shiftTransitions = map[models.ShiftStatus][]models.ShiftStatus{
	models.ShiftScheduled:  {models.ShiftInProgress, models.ShiftCompleted, models.ShiftCancelled},
	models.ShiftInProgress: {models.ShiftCompleted, models.ShiftCancelled},
}

func validShiftStatus(st models.ShiftStatus) bool {
	switch st {
	case models.ShiftScheduled, models.ShiftInProgress, models.ShiftCompleted, models.ShiftCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a shift may move from one status to another
func CanTransition(from, to models.ShiftStatus) bool {
	if from == to {
		return true
	}
	for _, next := range shiftTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OvertimeHours is max(0, actual - scheduled) in hours
func OvertimeHours(scheduledStart, scheduledEnd, actualStart, actualEnd time.Time) float64 {
	scheduled := scheduledEnd.Sub(scheduledStart).Hours()
	actual := actualEnd.Sub(actualStart).Hours()
	return math.Max(0, actual-scheduled)
}

// CreateShift books a SCHEDULED shift. The worker and task must belong to
// userID and the worker must not already hold an overlapping shift.
func (s *Service) CreateShift(ctx context.Context, userID string, in ShiftInput) (*models.Shift, error) {
	if in.WorkerID == "" || in.TaskID == "" {
		return nil, invalid("worker and task are required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil, invalid("start and end times are required")
	}
	if in.EndTime.Before(in.StartTime) {
		return nil, invalid("end time is before start time")
	}

	if _, err := s.GetWorker(ctx, userID, in.WorkerID); err != nil {
		return nil, err
	}
	task, err := s.store.Tasks().Get(ctx, in.TaskID)
	if err != nil {
		return nil, s.storeErr(err, "get task "+in.TaskID, map[string]interface{}{"user_id": userID})
	}
	if task.UserID != userID {
		return nil, ErrNotFound
	}

	release, err := s.locker.Acquire(ctx, assignLockKey(userID))
	if err != nil {
		return nil, err
	}
	defer release()

	fields := map[string]interface{}{"user_id": userID, "worker_id": in.WorkerID, "task_id": in.TaskID}
	booked, err := s.store.Shifts().ListOverlapping(ctx, []string{in.WorkerID}, in.StartTime, in.EndTime)
	if err != nil {
		return nil, s.storeErr(err, "list booked shifts", fields)
	}
	if len(booked) > 0 {
		return nil, ErrShiftOverlap
	}

	date := in.Date
	if date.IsZero() {
		date = in.StartTime
	}
	shift := &models.Shift{
		WorkerID:  in.WorkerID,
		TaskID:    in.TaskID,
		Date:      date.UTC(),
		StartTime: in.StartTime.UTC(),
		EndTime:   in.EndTime.UTC(),
		Status:    models.ShiftScheduled,
	}
	if err := s.store.Shifts().Create(ctx, shift); err != nil {
		return nil, s.storeErr(err, "create shift", fields)
	}
	return s.getShift(ctx, userID, shift.ID)
}

func (s *Service) getShift(ctx context.Context, userID, id string) (*models.Shift, error) {
	shift, err := s.store.Shifts().Get(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, "get shift "+id, map[string]interface{}{"user_id": userID})
	}
	if shift.Task == nil || shift.Task.UserID != userID {
		return nil, ErrNotFound
	}
	return shift, nil
}

// UpdateShiftStatus records a status change and, when supplied, the actual
// start and end. Overtime is recomputed only when an actual end is given,
// from the actual start of this call, else the stored one, else the
// scheduled start. Each call overwrites, so repeating it is harmless.
func (s *Service) UpdateShiftStatus(ctx context.Context, userID, id string, status models.ShiftStatus, actual *ActualTimes) (*models.Shift, error) {
	if !validShiftStatus(status) {
		return nil, invalid("unknown shift status %q", status)
	}
	shift, err := s.getShift(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(shift.Status, status) {
		return nil, ErrInvalidTransition
	}
	if status == models.ShiftCancelled && actual != nil && (actual.ActualStart != nil || actual.ActualEnd != nil) {
		return nil, invalid("a cancelled shift takes no actual times")
	}

	update := repository.ShiftUpdate{Status: status}
	if actual != nil {
		update.ActualStart = actual.ActualStart
		if actual.ActualEnd != nil {
			start := shift.StartTime
			if actual.ActualStart != nil {
				start = *actual.ActualStart
			} else if shift.ActualStart != nil {
				start = *shift.ActualStart
			}
			if actual.ActualEnd.Before(start) {
				return nil, invalid("actual end is before actual start")
			}
			overtime := OvertimeHours(shift.StartTime, shift.EndTime, start, *actual.ActualEnd)
			update.ActualEnd = actual.ActualEnd
			update.OvertimeHours = &overtime
		}
	}

	if err := s.store.Shifts().Update(ctx, id, update); err != nil {
		return nil, s.storeErr(err, "update shift "+id, map[string]interface{}{"user_id": userID})
	}
	return s.getShift(ctx, userID, id)
}
