package repository

import (
	"context"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"gorm.io/gorm"
)

// DateRange is a closed interval used by listing queries
type DateRange struct {
	Start time.Time
	End   time.Time
}

// WorkerFilter narrows worker listings. Skills match when any one is held.
type WorkerFilter struct {
	Skills []string
	Status *models.WorkerStatus
}

// TaskFilter narrows task listings. StartFrom/StartTo bound the start date.
type TaskFilter struct {
	Status    *models.TaskStatus
	Priority  *models.TaskPriority
	StartFrom *time.Time
	StartTo   *time.Time
}

// AlertFilter narrows alert listings
type AlertFilter struct {
	IsRead   *bool
	Severity *models.Severity
	Limit    int
}

// ShiftUpdate carries the fields a status update may overwrite
type ShiftUpdate struct {
	Status        models.ShiftStatus
	ActualStart   *time.Time
	ActualEnd     *time.Time
	OvertimeHours *float64
}

type WorkerRepo interface {
	Create(ctx context.Context, w *models.Worker) error
	Update(ctx context.Context, w *models.Worker) error
	Get(ctx context.Context, userID, id string) (*models.Worker, error)
	List(ctx context.Context, userID string, f WorkerFilter, upcomingFrom time.Time, upcomingLimit int) ([]models.Worker, error)
	ListActive(ctx context.Context, userID string) ([]models.Worker, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Worker, error)
	Count(ctx context.Context, userID string) (int64, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *models.LabourTask) error
	Get(ctx context.Context, id string) (*models.LabourTask, error)
	List(ctx context.Context, userID string, f TaskFilter) ([]models.LabourTask, error)
	ListStartingBetween(ctx context.Context, from, to time.Time, statuses []models.TaskStatus) ([]models.LabourTask, error)
	ListOverlapping(ctx context.Context, userID string, from, to time.Time) ([]models.LabourTask, error)
	ListByStatuses(ctx context.Context, userID string, statuses []models.TaskStatus) ([]models.LabourTask, error)
	ListStartingIn(ctx context.Context, userID string, r DateRange) ([]models.LabourTask, error)
	// UpdateStatusIf moves a task to "to" only when it is still in "from".
	UpdateStatusIf(ctx context.Context, id string, from, to models.TaskStatus) (bool, error)
}

type ShiftRepo interface {
	Create(ctx context.Context, s *models.Shift) error
	CreateBatch(ctx context.Context, shifts []models.Shift) error
	Get(ctx context.Context, id string) (*models.Shift, error)
	Update(ctx context.Context, id string, u ShiftUpdate) error
	ListOverlapping(ctx context.Context, workerIDs []string, start, end time.Time) ([]models.Shift, error)
	ListCompletedWithOvertime(ctx context.Context, from, to time.Time) ([]models.Shift, error)
	ListForUser(ctx context.Context, userID string, r DateRange) ([]models.Shift, error)
	CountActiveByTask(ctx context.Context, taskIDs []string) (map[string]int, error)
	SumOvertimeSince(ctx context.Context, userID string, since time.Time) (float64, error)
}

type AlertRepo interface {
	Create(ctx context.Context, a *models.ScheduleAlert) error
	Get(ctx context.Context, id string) (*models.ScheduleAlert, error)
	List(ctx context.Context, userID string, f AlertFilter) ([]models.ScheduleAlert, error)
	MarkRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type AnalyticsRepo interface {
	Upsert(ctx context.Context, a *models.LabourAnalytics) error
	ListSince(ctx context.Context, userID string, since time.Time) ([]models.LabourAnalytics, error)
	ListRange(ctx context.Context, userID string, r DateRange) ([]models.LabourAnalytics, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

// Store groups the per-entity repositories behind one transactional boundary
type Store interface {
	Workers() WorkerRepo
	Tasks() TaskRepo
	Shifts() ShiftRepo
	Alerts() AlertRepo
	Analytics() AnalyticsRepo
	Users() UserRepo
	// Transaction runs fn against a store bound to a single transaction.
	// Returning an error from fn rolls every write back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by gorm
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Workers() WorkerRepo { return &workerRepo{db: s.db} }
func (s *gormStore) Tasks() TaskRepo { return &taskRepo{db: s.db} }
func (s *gormStore) Shifts() ShiftRepo { return &shiftRepo{db: s.db} }
func (s *gormStore) Alerts() AlertRepo { return &alertRepo{db: s.db} }
func (s *gormStore) Analytics() AnalyticsRepo { return &analyticsRepo{db: s.db} }
func (s *gormStore) Users() UserRepo { return &userRepo{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&gormStore{db: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return wrap(err)
}

// utc normalises query arguments so text-backed time columns compare correctly
func utc(t time.Time) time.Time {
	return t.UTC()
}
