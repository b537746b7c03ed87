package labour

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
)

const (
	dashboardDefaultRange = 30 * 24 * time.Hour
	highOvertimeHours     = 20.0
)

type DateRange = repository.DateRange

// SnapshotPoint is one day of the utilization series
type SnapshotPoint struct {
	Date          time.Time `json:"date"`
	Efficiency    float64   `json:"efficiency"`
	TotalHours    float64   `json:"total_hours"`
	ActiveWorkers int       `json:"active_workers"`
}

// DashboardAnalytics is the read-only rollup behind the dashboard
type DashboardAnalytics struct {
	Range          DateRange                 `json:"range"`
	TotalWorkers   int64                     `json:"total_workers"`
	TasksByStatus  map[models.TaskStatus]int `json:"tasks_by_status"`
	TotalTasks     int                       `json:"total_tasks"`
	ActiveTasks    int                       `json:"active_tasks"`
	CompletedTasks int                       `json:"completed_tasks"`
	DelayedTasks   int                       `json:"delayed_tasks"`
	TotalHours     float64                   `json:"total_hours"`
	OvertimeHours  float64                   `json:"overtime_hours"`
	UnreadAlerts   int64                     `json:"unread_alerts"`
	Efficiency     float64                   `json:"efficiency"`
	Series         []SnapshotPoint           `json:"series"`
}

// GetDashboardAnalytics rolls up the user's workforce over rng, the last 30
// days when rng is nil. Task counts cover tasks starting in the range; hours
// come from shifts with both actual times recorded.
func (s *Service) GetDashboardAnalytics(ctx context.Context, userID string, rng *DateRange) (*DashboardAnalytics, error) {
	r := DateRange{Start: s.now().Add(-dashboardDefaultRange), End: s.now()}
	if rng != nil {
		r = *rng
	}
	if r.End.Before(r.Start) {
		return nil, invalid("range end is before range start")
	}
	fields := map[string]interface{}{"user_id": userID}

	out := &DashboardAnalytics{Range: r, TasksByStatus: map[models.TaskStatus]int{}}

	var err error
	if out.TotalWorkers, err = s.store.Workers().Count(ctx, userID); err != nil {
		return nil, s.storeErr(err, "count workers", fields)
	}

	tasks, err := s.store.Tasks().ListStartingIn(ctx, userID, r)
	if err != nil {
		return nil, s.storeErr(err, "list tasks in range", fields)
	}
	for _, t := range tasks {
		out.TasksByStatus[t.Status]++
	}
	out.TotalTasks = len(tasks)
	out.ActiveTasks = out.TasksByStatus[models.TaskInProgress]
	out.CompletedTasks = out.TasksByStatus[models.TaskCompleted]
	out.DelayedTasks = out.TasksByStatus[models.TaskDelayed]
	out.Efficiency = Efficiency(out.CompletedTasks, out.DelayedTasks)

	shifts, err := s.store.Shifts().ListForUser(ctx, userID, r)
	if err != nil {
		return nil, s.storeErr(err, "list shifts in range", fields)
	}
	for _, sh := range shifts {
		if sh.Status == models.ShiftCancelled || sh.ActualStart == nil || sh.ActualEnd == nil {
			continue
		}
		out.TotalHours += sh.ActualEnd.Sub(*sh.ActualStart).Hours()
		out.OvertimeHours += sh.OvertimeHours
	}

	if out.UnreadAlerts, err = s.store.Alerts().CountUnread(ctx, userID); err != nil {
		return nil, s.storeErr(err, "count unread alerts", fields)
	}

	snapshots, err := s.store.Analytics().ListRange(ctx, userID, r)
	if err != nil {
		return nil, s.storeErr(err, "list analytics", fields)
	}
	out.Series = make([]SnapshotPoint, 0, len(snapshots))
	for _, snap := range snapshots {
		out.Series = append(out.Series, SnapshotPoint{
			Date:          snap.Date,
			Efficiency:    snap.Efficiency,
			TotalHours:    snap.TotalHours,
			ActiveWorkers: snap.ActiveWorkers,
		})
	}
	return out, nil
}

// Efficiency is completed / (completed + delayed), 0 when both are zero
func Efficiency(completed, delayed int) float64 {
	if completed+delayed == 0 {
		return 0
	}
	return float64(completed) / float64(completed+delayed)
}

type RecommendationType string

const (
	RecommendStaffing   RecommendationType = "STAFFING"
	RecommendTraining   RecommendationType = "TRAINING"
	RecommendEfficiency RecommendationType = "EFFICIENCY"
)

type RecommendationPriority string

const (
	RecommendMedium RecommendationPriority = "MEDIUM"
	RecommendHigh   RecommendationPriority = "HIGH"
)

// Recommendation is one suggested change to the user's staffing
type Recommendation struct {
	Type        RecommendationType     `json:"type"`
	Priority    RecommendationPriority `json:"priority"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Action      string                 `json:"action"`
	Tasks       []UnderstaffedTask     `json:"tasks,omitempty"`
	Skills      []string               `json:"skills,omitempty"`
}

type UnderstaffedTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Assigned int    `json:"assigned"`
	Required int    `json:"required"`
}

var openTaskStatuses = []models.TaskStatus{models.TaskPending, models.TaskScheduled, models.TaskInProgress}

// GetOptimizationRecommendations returns at most one recommendation each for
// understaffed tasks, skills no active worker holds, and more than 20 hours
// of overtime over the past week.
func (s *Service) GetOptimizationRecommendations(ctx context.Context, userID string) ([]Recommendation, error) {
	fields := map[string]interface{}{"user_id": userID}
	recs := []Recommendation{}

	tasks, err := s.store.Tasks().ListByStatuses(ctx, userID, openTaskStatuses)
	if err != nil {
		return nil, s.storeErr(err, "list open tasks", fields)
	}
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	counts, err := s.store.Shifts().CountActiveByTask(ctx, ids)
	if err != nil {
		return nil, s.storeErr(err, "count shifts", fields)
	}

	var under []UnderstaffedTask
	for _, t := range tasks {
		if counts[t.ID] < t.RequiredWorkers {
			under = append(under, UnderstaffedTask{
				ID: t.ID, Title: t.Title, Assigned: counts[t.ID], Required: t.RequiredWorkers,
			})
		}
	}
	if len(under) > 0 {
		recs = append(recs, Recommendation{
			Type:        RecommendStaffing,
			Priority:    RecommendHigh,
			Title:       "Understaffed Tasks Detected",
			Description: fmt.Sprintf("%d tasks need more workers assigned.", len(under)),
			Action:      "Review and assign additional workers to these tasks.",
			Tasks:       under,
		})
	}

	workers, err := s.store.Workers().ListActive(ctx, userID)
	if err != nil {
		return nil, s.storeErr(err, "list active workers", fields)
	}
	if gaps := skillGaps(tasks, workers); len(gaps) > 0 {
		recs = append(recs, Recommendation{
			Type:        RecommendTraining,
			Priority:    RecommendMedium,
			Title:       "Skill Gaps Identified",
			Description: "Missing skills: " + strings.Join(gaps, ", "),
			Action:      "Consider training existing workers or hiring workers with these skills.",
			Skills:      gaps,
		})
	}

	overtime, err := s.store.Shifts().SumOvertimeSince(ctx, userID, s.today().AddDate(0, 0, -7))
	if err != nil {
		return nil, s.storeErr(err, "sum overtime", fields)
	}
	if overtime > highOvertimeHours {
		recs = append(recs, Recommendation{
			Type:        RecommendEfficiency,
			Priority:    RecommendHigh,
			Title:       "High Overtime Detected",
			Description: fmt.Sprintf("%.1f overtime hours in the past week.", overtime),
			Action:      "Consider hiring additional workers or redistributing workload.",
		})
	}
	return recs, nil
}

// skillGaps lists, sorted, the skills some task requires that no worker holds
func skillGaps(tasks []models.LabourTask, workers []models.Worker) []string {
	held := make(map[string]bool)
	for _, w := range workers {
		for _, sk := range w.Skills {
			held[sk] = true
		}
	}
	missing := make(map[string]bool)
	for _, t := range tasks {
		for _, sk := range t.RequiredSkills {
			if !held[sk] {
				missing[sk] = true
			}
		}
	}
	gaps := make([]string, 0, len(missing))
	for sk := range missing {
		gaps = append(gaps, sk)
	}
	sort.Strings(gaps)
	return gaps
}

// SnapshotInput is a daily utilization snapshot pushed by the aggregation job
type SnapshotInput struct {
	Date          time.Time `json:"date" binding:"required"`
	TotalWorkers  int       `json:"total_workers"`
	ActiveWorkers int       `json:"active_workers"`
	TotalHours    float64   `json:"total_hours"`
	Efficiency    float64   `json:"efficiency"`
}

// RecordSnapshot stores the snapshot for its calendar day, replacing any
// earlier snapshot of the same day.
func (s *Service) RecordSnapshot(ctx context.Context, userID string, in SnapshotInput) (*models.LabourAnalytics, error) {
	if in.Date.IsZero() {
		return nil, invalid("date is required")
	}
	if in.TotalWorkers < 0 || in.ActiveWorkers < 0 || in.ActiveWorkers > in.TotalWorkers {
		return nil, invalid("active workers must be between 0 and total workers")
	}
	if in.TotalHours < 0 || in.Efficiency < 0 {
		return nil, invalid("hours and efficiency must not be negative")
	}

	d := in.Date.UTC()
	snap := &models.LabourAnalytics{
		UserID:        userID,
		Date:          time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		TotalWorkers:  in.TotalWorkers,
		ActiveWorkers: in.ActiveWorkers,
		TotalHours:    in.TotalHours,
		Efficiency:    in.Efficiency,
		CreatedAt:     s.now(),
	}
	if err := s.store.Analytics().Upsert(ctx, snap); err != nil {
		return nil, s.storeErr(err, "record snapshot", map[string]interface{}{"user_id": userID})
	}
	return snap, nil
}
