package labour

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
)

func TestCheckUpcomingTasks(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	u := createUser(t, svc, "farmer", models.RoleFarmer)

	tomorrow := time.Date(2026, 3, 3, 8, 30, 0, 0, time.UTC)
	pending := seedTask(t, svc, u.ID, "Spray", models.TaskPending, tomorrow, 1)
	seedTask(t, svc, u.ID, "Harvest", models.TaskScheduled, tomorrow.Add(-8*time.Hour), 1)
	seedTask(t, svc, u.ID, "Cancelled", models.TaskCancelled, tomorrow, 1)
	seedTask(t, svc, u.ID, "Later", models.TaskPending, tomorrow.Add(24*time.Hour), 1)
	seedTask(t, svc, u.ID, "Today", models.TaskPending, baseTime.Add(time.Hour), 1)

	report, err := svc.CheckUpcomingTasks(ctx)
	if err != nil {
		t.Fatalf("CheckUpcomingTasks failed: %v", err)
	}
	if report.Processed != 2 || report.AlertsCreated != 2 || report.Failures != 0 {
		t.Errorf("Unexpected report %+v", report)
	}

	alerts := alertsOfType(listAlerts(t, svc, u.ID), models.AlertUpcomingTask)
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 reminders, got %d", len(alerts))
	}
	var found bool
	for _, a := range alerts {
		if a.Severity != models.SeverityInfo {
			t.Errorf("Expected INFO reminder, got %s", a.Severity)
		}
		if a.TaskID != nil && *a.TaskID == pending.ID {
			found = true
			if a.Message != `Task "Spray" is scheduled to start tomorrow at 8:30 AM` {
				t.Errorf("Unexpected message %q", a.Message)
			}
		}
	}
	if !found {
		t.Errorf("Expected reminder for the pending task")
	}
}

func TestCheckUpcomingTasks_IsolatesFailures(t *testing.T) {
	store := openTestStore(t)
	setup := newTestService(t, store)
	ctx := context.Background()
	bad := createUser(t, setup, "bad", models.RoleFarmer)
	good := createUser(t, setup, "good", models.RoleFarmer)

	tomorrow := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	seedTask(t, setup, bad.ID, "first", models.TaskPending, tomorrow, 1)
	seedTask(t, setup, good.ID, "second", models.TaskPending, tomorrow.Add(time.Hour), 1)

	svc := newTestService(t, failingStore{Store: store, userID: bad.ID})
	report, err := svc.CheckUpcomingTasks(ctx)
	if err != nil {
		t.Fatalf("Scan must not fail on a single task: %v", err)
	}
	if report.Processed != 2 || report.Failures != 1 || report.AlertsCreated != 1 {
		t.Errorf("Unexpected report %+v", report)
	}
	if got := alertsOfType(listAlerts(t, setup, good.ID), models.AlertUpcomingTask); len(got) != 1 {
		t.Errorf("Expected the healthy user to get a reminder, got %d", len(got))
	}
}

func TestPredictLaborShortages(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	short := createUser(t, svc, "short", models.RoleFarmer)
	createWorker(t, svc, short.ID, "Solo")
	seedTask(t, svc, short.ID, "Big job", models.TaskPending, baseTime.Add(24*time.Hour), 5)

	surplus := createUser(t, svc, "surplus", models.RoleFarmer)
	for i := 0; i < 10; i++ {
		createWorker(t, svc, surplus.ID, "W")
	}
	balanced := createUser(t, svc, "balanced", models.RoleFarmer)
	admin := createUser(t, svc, "admin", models.RoleAdmin)
	for i := 0; i < 10; i++ {
		createWorker(t, svc, admin.ID, "Admin")
	}

	report, err := svc.PredictLaborShortages(ctx)
	if err != nil {
		t.Fatalf("PredictLaborShortages failed: %v", err)
	}
	if report.Processed != 3 || report.AlertsCreated != 2 || report.Failures != 0 {
		t.Errorf("Unexpected report %+v", report)
	}

	shortAlerts := listAlerts(t, svc, short.ID)
	if len(shortAlerts) != 1 {
		t.Fatalf("Expected 1 alert for the short farm, got %d", len(shortAlerts))
	}
	a := shortAlerts[0]
	if a.AlertType != models.AlertLaborShortage || a.Severity != models.SeverityWarning || !a.ActionRequired {
		t.Errorf("Unexpected shortage alert %+v", a)
	}
	if !strings.Contains(a.Message, "you may need 5 more workers") {
		t.Errorf("Expected worker gap in message, got %q", a.Message)
	}

	surplusAlerts := listAlerts(t, svc, surplus.ID)
	if len(surplusAlerts) != 1 || surplusAlerts[0].AlertType != models.AlertLaborSurplus ||
		surplusAlerts[0].Severity != models.SeverityInfo {
		t.Fatalf("Expected one INFO surplus alert, got %+v", surplusAlerts)
	}
	if surplusAlerts[0].Message != "You may have 8 excess workers scheduled." {
		t.Errorf("Unexpected surplus message %q", surplusAlerts[0].Message)
	}

	if n := len(listAlerts(t, svc, balanced.ID)); n != 0 {
		t.Errorf("Expected no alerts for the balanced farm, got %d", n)
	}
	if n := len(listAlerts(t, svc, admin.ID)); n != 0 {
		t.Errorf("Expected admins to be skipped, got %d alerts", n)
	}
}

func TestPredictLaborShortages_IsolatesFailures(t *testing.T) {
	store := openTestStore(t)
	setup := newTestService(t, store)
	bad := createUser(t, setup, "bad", models.RoleFarmer)
	good := createUser(t, setup, "good", models.RoleFarmer)
	seedTask(t, setup, bad.ID, "job", models.TaskPending, baseTime.Add(24*time.Hour), 3)
	seedTask(t, setup, good.ID, "job", models.TaskPending, baseTime.Add(24*time.Hour), 3)

	svc := newTestService(t, failingStore{Store: store, userID: bad.ID})
	report, err := svc.PredictLaborShortages(context.Background())
	if err != nil {
		t.Fatalf("Scan must not fail on a single user: %v", err)
	}
	if report.Failures != 1 || report.AlertsCreated != 1 {
		t.Errorf("Unexpected report %+v", report)
	}
	if n := len(listAlerts(t, setup, good.ID)); n != 1 {
		t.Errorf("Expected the healthy user to be alerted, got %d", n)
	}
}

func TestCheckOvertimeWarnings(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	u := createUser(t, svc, "farmer", models.RoleFarmer)
	heavy := createWorker(t, svc, u.ID, "Heavy")
	light := createWorker(t, svc, u.ID, "Light")
	old := createWorker(t, svc, u.ID, "Old")
	task := seedTask(t, svc, u.ID, "Harvest", models.TaskCompleted, baseTime.AddDate(0, 0, -6), 1)

	day := time.Date(2026, 2, 24, 6, 0, 0, 0, time.UTC)
	seedShift(t, svc, heavy.ID, task.ID, day, models.ShiftCompleted, 6)
	seedShift(t, svc, heavy.ID, task.ID, day.AddDate(0, 0, 2), models.ShiftCompleted, 6)
	seedShift(t, svc, heavy.ID, task.ID, day.AddDate(0, 0, 3), models.ShiftCancelled, 9)
	seedShift(t, svc, light.ID, task.ID, day, models.ShiftCompleted, 5)
	seedShift(t, svc, old.ID, task.ID, day.AddDate(0, 0, -10), models.ShiftCompleted, 15)

	report, err := svc.CheckOvertimeWarnings(ctx)
	if err != nil {
		t.Fatalf("CheckOvertimeWarnings failed: %v", err)
	}
	if report.Processed != 2 || report.AlertsCreated != 1 || report.Failures != 0 {
		t.Errorf("Unexpected report %+v", report)
	}

	alerts := alertsOfType(listAlerts(t, svc, u.ID), models.AlertOvertimeWarning)
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 overtime warning, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Severity != models.SeverityWarning {
		t.Errorf("Expected WARNING, got %s", a.Severity)
	}
	if a.Message != "Worker Heavy Test has worked 12.0 overtime hours this week." {
		t.Errorf("Unexpected message %q", a.Message)
	}
	if a.Metadata["worker_id"] != heavy.ID {
		t.Errorf("Expected worker id in metadata, got %v", a.Metadata)
	}
}

func TestCheckOvertimeWarnings_ExactlyTenHoursIsFine(t *testing.T) {
	svc := newTestService(t, nil)
	u := createUser(t, svc, "farmer", models.RoleFarmer)
	w := createWorker(t, svc, u.ID, "Edge")
	task := seedTask(t, svc, u.ID, "Harvest", models.TaskCompleted, baseTime.AddDate(0, 0, -3), 1)
	seedShift(t, svc, w.ID, task.ID, baseTime.AddDate(0, 0, -3), models.ShiftCompleted, 10)

	report, err := svc.CheckOvertimeWarnings(context.Background())
	if err != nil {
		t.Fatalf("CheckOvertimeWarnings failed: %v", err)
	}
	if report.AlertsCreated != 0 {
		t.Errorf("Expected no warning at exactly 10 hours, got %+v", report)
	}
}
