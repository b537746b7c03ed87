package labour

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/database"
	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
)

// Monday 2026-03-02 10:00 UTC
var baseTime = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// tickingClock advances one second per reading so rows created in sequence
// keep a stable registry order.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func openTestStore(t *testing.T) repository.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(database.Config{
		Driver:   database.DriverSQLite,
		DataPath: "file:" + name + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewStore(db)
}

func newTestService(t *testing.T, store repository.Store) *Service {
	t.Helper()
	if store == nil {
		store = openTestStore(t)
	}
	clock := &tickingClock{now: baseTime}
	return New(store, WithClock(clock.Now), WithLocation(time.UTC))
}

func createUser(t *testing.T, svc *Service, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", Role: role}
	if err := svc.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return u
}

func createWorker(t *testing.T, svc *Service, userID, name string, skills ...string) *models.Worker {
	t.Helper()
	w, err := svc.CreateWorker(context.Background(), userID, WorkerInput{
		FirstName: name, LastName: "Test", Skills: skills,
	})
	if err != nil {
		t.Fatalf("Failed to create worker %s: %v", name, err)
	}
	return w
}

func taskInput(title string, workers int, start time.Time, hours int, skills ...string) TaskInput {
	return TaskInput{
		Title:           title,
		RequiredWorkers: workers,
		RequiredSkills:  skills,
		StartDate:       start,
		EndDate:         start.Add(time.Duration(hours) * time.Hour),
	}
}

func listAlerts(t *testing.T, svc *Service, userID string) []models.ScheduleAlert {
	t.Helper()
	alerts, err := svc.GetAlerts(context.Background(), userID, AlertFilter{})
	if err != nil {
		t.Fatalf("Failed to list alerts: %v", err)
	}
	return alerts
}

var errAlertStore = errors.New("alert store unavailable")

// failingStore rejects alert writes for one user
type failingStore struct {
	repository.Store
	userID string
}

func (f failingStore) Alerts() repository.AlertRepo {
	return failingAlerts{AlertRepo: f.Store.Alerts(), userID: f.userID}
}

type failingAlerts struct {
	repository.AlertRepo
	userID string
}

func (f failingAlerts) Create(ctx context.Context, a *models.ScheduleAlert) error {
	if a.UserID == f.userID {
		return errAlertStore
	}
	return f.AlertRepo.Create(ctx, a)
}

func seedTask(t *testing.T, svc *Service, userID, title string, status models.TaskStatus, start time.Time, required int, skills ...string) *models.LabourTask {
	t.Helper()
	task := &models.LabourTask{
		UserID: userID, Title: title, RequiredWorkers: required, RequiredSkills: skills,
		StartDate: start, EndDate: start.Add(8 * time.Hour),
		Priority: models.PriorityMedium, Status: status,
	}
	if err := svc.store.Tasks().Create(context.Background(), task); err != nil {
		t.Fatalf("Failed to seed task: %v", err)
	}
	return task
}

func seedShift(t *testing.T, svc *Service, workerID, taskID string, start time.Time, status models.ShiftStatus, overtime float64) *models.Shift {
	t.Helper()
	sh := &models.Shift{
		WorkerID: workerID, TaskID: taskID, Date: start,
		StartTime: start, EndTime: start.Add(8 * time.Hour),
		Status: status, OvertimeHours: overtime,
	}
	if status == models.ShiftCompleted {
		as, ae := start, start.Add(8*time.Hour+time.Duration(overtime*float64(time.Hour)))
		sh.ActualStart, sh.ActualEnd = &as, &ae
	}
	if err := svc.store.Shifts().Create(context.Background(), sh); err != nil {
		t.Fatalf("Failed to seed shift: %v", err)
	}
	return sh
}

func alertsOfType(alerts []models.ScheduleAlert, typ models.AlertType) []models.ScheduleAlert {
	var out []models.ScheduleAlert
	for _, a := range alerts {
		if a.AlertType == typ {
			out = append(out, a)
		}
	}
	return out
}
