package labour

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
)

func TestEfficiency(t *testing.T) {
	if got := Efficiency(0, 0); got != 0 {
		t.Errorf("Expected 0 with no finished tasks, got %v", got)
	}
	if got := Efficiency(3, 1); got != 0.75 {
		t.Errorf("Expected 0.75, got %v", got)
	}
}

func TestGetDashboardAnalytics_IgnoresCancelledShifts(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	u := createUser(t, svc, "farmer", models.RoleFarmer)
	w := createWorker(t, svc, u.ID, "A")

	past := baseTime.AddDate(0, 0, -3)
	task := seedTask(t, svc, u.ID, "weeding", models.TaskCompleted, past, 1)
	seedShift(t, svc, w.ID, task.ID, past, models.ShiftCompleted, 1)

	// Hours recorded before the shift was called off.
	as, ae := past.AddDate(0, 0, 1), past.AddDate(0, 0, 1).Add(20*time.Hour)
	cancelled := &models.Shift{
		WorkerID: w.ID, TaskID: task.ID, Date: as,
		StartTime: as, EndTime: as.Add(8 * time.Hour),
		ActualStart: &as, ActualEnd: &ae,
		Status: models.ShiftCancelled, OvertimeHours: 12,
	}
	if err := svc.store.Shifts().Create(ctx, cancelled); err != nil {
		t.Fatalf("Failed to seed shift: %v", err)
	}

	d, err := svc.GetDashboardAnalytics(ctx, u.ID, nil)
	if err != nil {
		t.Fatalf("GetDashboardAnalytics failed: %v", err)
	}
	if d.TotalHours != 9 || d.OvertimeHours != 1 {
		t.Errorf("Expected 9 hours and 1 overtime, got %v and %v", d.TotalHours, d.OvertimeHours)
	}

	total, err := svc.store.Shifts().SumOvertimeSince(ctx, u.ID, baseTime.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("SumOvertimeSince failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected cancelled overtime excluded from the sum, got %v", total)
	}
}

func TestGetDashboardAnalytics(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	u := createUser(t, svc, "farmer", models.RoleFarmer)
	w := createWorker(t, svc, u.ID, "A")
	createWorker(t, svc, u.ID, "B")

	past := baseTime.AddDate(0, 0, -5)
	done := seedTask(t, svc, u.ID, "done", models.TaskCompleted, past, 1)
	seedTask(t, svc, u.ID, "done too", models.TaskCompleted, past, 1)
	seedTask(t, svc, u.ID, "done three", models.TaskCompleted, past, 1)
	seedTask(t, svc, u.ID, "late", models.TaskDelayed, past, 1)
	seedTask(t, svc, u.ID, "running", models.TaskInProgress, past, 1)
	seedTask(t, svc, u.ID, "ancient", models.TaskCompleted, baseTime.AddDate(0, 0, -90), 1)

	seedShift(t, svc, w.ID, done.ID, past, models.ShiftCompleted, 2)
	seedShift(t, svc, w.ID, done.ID, past.AddDate(0, 0, 1), models.ShiftScheduled, 0)

	svc.CreateAlert(ctx, u.ID, AlertInput{AlertType: models.AlertUpcomingTask, Severity: models.SeverityInfo, Title: "a", Message: "a"})
	read, _ := svc.CreateAlert(ctx, u.ID, AlertInput{AlertType: models.AlertUpcomingTask, Severity: models.SeverityInfo, Title: "b", Message: "b"})
	svc.MarkAlertRead(ctx, u.ID, read.ID)

	svc.RecordSnapshot(ctx, u.ID, SnapshotInput{Date: past, TotalWorkers: 2, ActiveWorkers: 1, TotalHours: 10, Efficiency: 0.5})
	svc.RecordSnapshot(ctx, u.ID, SnapshotInput{Date: past.AddDate(0, 0, 1), TotalWorkers: 2, ActiveWorkers: 2, TotalHours: 16, Efficiency: 0.9})

	d, err := svc.GetDashboardAnalytics(ctx, u.ID, nil)
	if err != nil {
		t.Fatalf("GetDashboardAnalytics failed: %v", err)
	}
	if d.TotalWorkers != 2 {
		t.Errorf("Expected 2 workers, got %d", d.TotalWorkers)
	}
	if d.TotalTasks != 5 || d.CompletedTasks != 3 || d.DelayedTasks != 1 || d.ActiveTasks != 1 {
		t.Errorf("Unexpected task counts %+v", d)
	}
	if d.TasksByStatus[models.TaskCompleted] != 3 {
		t.Errorf("Expected 3 completed in status map, got %v", d.TasksByStatus)
	}
	if d.Efficiency != 0.75 {
		t.Errorf("Expected efficiency 0.75, got %v", d.Efficiency)
	}
	if d.TotalHours != 10 || d.OvertimeHours != 2 {
		t.Errorf("Expected 10 actual hours with 2 overtime, got %v / %v", d.TotalHours, d.OvertimeHours)
	}
	if d.UnreadAlerts != 1 {
		t.Errorf("Expected 1 unread alert, got %d", d.UnreadAlerts)
	}
	if len(d.Series) != 2 || d.Series[0].Efficiency != 0.5 || d.Series[1].ActiveWorkers != 2 {
		t.Errorf("Unexpected series %+v", d.Series)
	}
}

func TestGetDashboardAnalytics_RejectsInvertedRange(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.GetDashboardAnalytics(context.Background(), "u1", &DateRange{Start: baseTime, End: baseTime.Add(-time.Hour)})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestGetOptimizationRecommendations(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	u := createUser(t, svc, "farmer", models.RoleFarmer)
	w := createWorker(t, svc, u.ID, "A", "harvesting")

	staffed := seedTask(t, svc, u.ID, "staffed", models.TaskScheduled, baseTime.Add(24*time.Hour), 1, "harvesting")
	seedShift(t, svc, w.ID, staffed.ID, staffed.StartDate, models.ShiftScheduled, 0)
	under := seedTask(t, svc, u.ID, "under", models.TaskPending, baseTime.Add(48*time.Hour), 2, "grafting", "harvesting")
	seedShift(t, svc, w.ID, under.ID, under.StartDate, models.ShiftCancelled, 0)
	seedTask(t, svc, u.ID, "finished", models.TaskCompleted, baseTime.AddDate(0, 0, -2), 4, "welding")

	week := seedTask(t, svc, u.ID, "last week", models.TaskCompleted, baseTime.AddDate(0, 0, -3), 1)
	seedShift(t, svc, w.ID, week.ID, baseTime.AddDate(0, 0, -3), models.ShiftCompleted, 12)
	seedShift(t, svc, w.ID, week.ID, baseTime.AddDate(0, 0, -2), models.ShiftCompleted, 9)

	recs, err := svc.GetOptimizationRecommendations(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetOptimizationRecommendations failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("Expected 3 recommendations, got %+v", recs)
	}

	staffing := recs[0]
	if staffing.Type != RecommendStaffing || staffing.Priority != RecommendHigh {
		t.Errorf("Unexpected staffing recommendation %+v", staffing)
	}
	if len(staffing.Tasks) != 1 || staffing.Tasks[0].ID != under.ID || staffing.Tasks[0].Assigned != 0 {
		t.Errorf("Expected only the understaffed task, got %+v", staffing.Tasks)
	}

	training := recs[1]
	if training.Type != RecommendTraining || len(training.Skills) != 1 || training.Skills[0] != "grafting" {
		t.Errorf("Expected grafting gap only, got %+v", training)
	}
	if training.Description != "Missing skills: grafting" {
		t.Errorf("Unexpected description %q", training.Description)
	}

	efficiency := recs[2]
	if efficiency.Type != RecommendEfficiency || efficiency.Description != "21.0 overtime hours in the past week." {
		t.Errorf("Unexpected efficiency recommendation %+v", efficiency)
	}
}

func TestGetOptimizationRecommendations_NothingToSuggest(t *testing.T) {
	svc := newTestService(t, nil)
	u := createUser(t, svc, "farmer", models.RoleFarmer)

	recs, err := svc.GetOptimizationRecommendations(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetOptimizationRecommendations failed: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("Expected an empty list, got %+v", recs)
	}
}
