package labour

import (
	"context"
	"strings"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
)

type TaskFilter = repository.TaskFilter

// TaskInput is a labour task as submitted by its owner
type TaskInput struct {
	Title           string              `json:"title" binding:"required"`
	TaskType        string              `json:"task_type"`
	Location        string              `json:"location"`
	Description     string              `json:"description"`
	RequiredSkills  []string            `json:"required_skills"`
	RequiredWorkers int                 `json:"required_workers" binding:"required"`
	EstimatedHours  float64             `json:"estimated_hours"`
	StartDate       time.Time           `json:"start_date" binding:"required"`
	EndDate         time.Time           `json:"end_date" binding:"required"`
	Priority        models.TaskPriority `json:"priority"`
}

func validPriority(p models.TaskPriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}

func validTaskStatus(st models.TaskStatus) bool {
	switch st {
	case models.TaskPending, models.TaskScheduled, models.TaskInProgress,
		models.TaskCompleted, models.TaskDelayed, models.TaskCancelled:
		return true
	}
	return false
}

func (in TaskInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title is required")
	}
	if in.RequiredWorkers < 1 {
		return invalid("required workers must be at least 1")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return invalid("start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return invalid("end date is before start date")
	}
	if in.EstimatedHours < 0 {
		return invalid("estimated hours must not be negative")
	}
	if in.Priority != "" && !validPriority(in.Priority) {
		return invalid("unknown priority %q", in.Priority)
	}
	return nil
}

// CreateTask persists a PENDING task and immediately tries to staff it.
// The returned task reflects the outcome: SCHEDULED when fully staffed,
// otherwise still PENDING with a shortage alert raised. A scheduling error
// is returned together with the persisted task.
func (s *Service) CreateTask(ctx context.Context, userID string, in TaskInput) (*models.LabourTask, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now()
	task := &models.LabourTask{
		UserID:          userID,
		Title:           strings.TrimSpace(in.Title),
		TaskType:        strings.TrimSpace(in.TaskType),
		Location:        strings.TrimSpace(in.Location),
		Description:     in.Description,
		RequiredSkills:  normalizeSkills(in.RequiredSkills),
		RequiredWorkers: in.RequiredWorkers,
		EstimatedHours:  in.EstimatedHours,
		StartDate:       in.StartDate.UTC(),
		EndDate:         in.EndDate.UTC(),
		Priority:        priority,
		Status:          models.TaskPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, s.storeErr(err, "create task", map[string]interface{}{"user_id": userID})
	}

	if _, err := s.ScheduleTask(ctx, task); err != nil {
		return task, err
	}
	return task, nil
}

// GetTasks lists tasks by priority (highest first) then start date, with
// their shifts and assigned workers.
func (s *Service) GetTasks(ctx context.Context, userID string, f TaskFilter) ([]models.LabourTask, error) {
	if f.Status != nil && !validTaskStatus(*f.Status) {
		return nil, invalid("unknown task status %q", *f.Status)
	}
	if f.Priority != nil && !validPriority(*f.Priority) {
		return nil, invalid("unknown priority %q", *f.Priority)
	}
	tasks, err := s.store.Tasks().List(ctx, userID, f)
	if err != nil {
		return nil, s.storeErr(err, "list tasks", map[string]interface{}{"user_id": userID})
	}
	return tasks, nil
}
