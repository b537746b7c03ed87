package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WorkerStatus is the lifecycle state of a worker profile
type WorkerStatus string

const (
	WorkerActive   WorkerStatus = "ACTIVE"
	WorkerInactive WorkerStatus = "INACTIVE"
)

// TaskStatus is the lifecycle state of a labour task
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskScheduled  TaskStatus = "SCHEDULED"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskDelayed    TaskStatus = "DELAYED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// TaskPriority orders tasks in listings, LOW < MEDIUM < HIGH < URGENT
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// ShiftStatus is the lifecycle state of a shift
type ShiftStatus string

const (
	ShiftScheduled  ShiftStatus = "SCHEDULED"
	ShiftInProgress ShiftStatus = "IN_PROGRESS"
	ShiftCompleted  ShiftStatus = "COMPLETED"
	ShiftCancelled  ShiftStatus = "CANCELLED"
)

// AlertType classifies a schedule alert
type AlertType string

const (
	AlertLaborShortage   AlertType = "LABOR_SHORTAGE"
	AlertLaborSurplus    AlertType = "LABOR_SURPLUS"
	AlertUpcomingTask    AlertType = "UPCOMING_TASK"
	AlertOvertimeWarning AlertType = "OVERTIME_WARNING"
)

// Severity is the urgency of an alert, INFO < WARNING < CRITICAL
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns the sort weight of a severity
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// Role of an application user
type Role string

const (
	RoleFarmer Role = "FARMER"
	RoleAdmin  Role = "ADMIN"
)

// TimeWindow is a daily availability slot in HH:MM form
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Availability maps a lower-case day of week to the windows a worker can work
type Availability map[string][]TimeWindow

// User owns workers, tasks and alerts
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null;default:'FARMER';index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Worker is a farm hand that can be assigned to shifts
type Worker struct {
	ID           string                           `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string                           `gorm:"type:varchar(36);not null;index" json:"user_id"`
	FirstName    string                           `gorm:"not null" json:"first_name"`
	LastName     string                           `gorm:"not null" json:"last_name"`
	Phone        string                           `json:"phone"`
	Skills       datatypes.JSONSlice[string]      `json:"skills"`
	HourlyRate   float64                          `gorm:"not null;default:0" json:"hourly_rate"`
	Availability datatypes.JSONType[Availability] `json:"availability"`
	Status       WorkerStatus                     `gorm:"type:varchar(16);not null;default:'ACTIVE';index" json:"status"`
	CreatedAt    time.Time                        `json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
	Shifts       []Shift                          `gorm:"foreignKey:WorkerID" json:"shifts,omitempty"`
}

// FullName returns the display name of the worker
func (w *Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// HasAnySkill reports whether the worker holds one of the given skills.
// An empty requirement matches every worker.
func (w *Worker) HasAnySkill(skills []string) bool {
	if len(skills) == 0 {
		return true
	}
	for _, want := range skills {
		for _, have := range w.Skills {
			if have == want {
				return true
			}
		}
	}
	return false
}

// LabourTask is a time-bounded piece of work needing a number of workers
type LabourTask struct {
	ID              string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          string                      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title           string                      `gorm:"not null" json:"title"`
	TaskType        string                      `json:"task_type"`
	Location        string                      `json:"location"`
	Description     string                      `json:"description,omitempty"`
	RequiredSkills  datatypes.JSONSlice[string] `json:"required_skills"`
	RequiredWorkers int                         `gorm:"not null;default:1" json:"required_workers"`
	EstimatedHours  float64                     `json:"estimated_hours"`
	StartDate       time.Time                   `gorm:"not null;index" json:"start_date"`
	EndDate         time.Time                   `gorm:"not null" json:"end_date"`
	Priority        TaskPriority                `gorm:"type:varchar(16);not null;default:'MEDIUM'" json:"priority"`
	Status          TaskStatus                  `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	Shifts          []Shift                     `gorm:"foreignKey:TaskID" json:"shifts,omitempty"`
}

// Shift is one worker's time slice on one task
type Shift struct {
	ID            string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	WorkerID      string      `gorm:"type:varchar(36);not null;index" json:"worker_id"`
	TaskID        string      `gorm:"type:varchar(36);not null;index" json:"task_id"`
	Date          time.Time   `gorm:"not null;index" json:"date"`
	StartTime     time.Time   `gorm:"not null" json:"start_time"`
	EndTime       time.Time   `gorm:"not null" json:"end_time"`
	ActualStart   *time.Time  `json:"actual_start,omitempty"`
	ActualEnd     *time.Time  `json:"actual_end,omitempty"`
	Status        ShiftStatus `gorm:"type:varchar(16);not null;default:'SCHEDULED';index" json:"status"`
	OvertimeHours float64     `gorm:"not null;default:0" json:"overtime_hours"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Worker        *Worker     `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Task          *LabourTask `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

// ScheduledHours is the planned length of the shift
func (s *Shift) ScheduledHours() float64 {
	return s.EndTime.Sub(s.StartTime).Hours()
}

// ScheduleAlert is an anomaly signal raised for a user
type ScheduleAlert struct {
	ID             string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string            `gorm:"type:varchar(36);not null;index" json:"user_id"`
	TaskID         *string           `gorm:"type:varchar(36);index" json:"task_id,omitempty"`
	AlertType      AlertType         `gorm:"type:varchar(32);not null" json:"alert_type"`
	Severity       Severity          `gorm:"type:varchar(16);not null" json:"severity"`
	Title          string            `gorm:"not null" json:"title"`
	Message        string            `gorm:"type:text;not null" json:"message"`
	IsRead         bool              `gorm:"not null;default:false" json:"is_read"`
	ActionRequired bool              `gorm:"not null;default:false" json:"action_required"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"index" json:"created_at"`
	Task           *LabourTask       `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

// LabourAnalytics is a daily utilization snapshot written by an aggregation job
type LabourAnalytics struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_analytics_user_date" json:"user_id"`
	Date          time.Time `gorm:"not null;uniqueIndex:idx_analytics_user_date" json:"date"`
	TotalWorkers  int       `gorm:"not null;default:0" json:"total_workers"`
	ActiveWorkers int       `gorm:"not null;default:0" json:"active_workers"`
	TotalHours    float64   `gorm:"not null;default:0" json:"total_hours"`
	Efficiency    float64   `gorm:"not null;default:0" json:"efficiency"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName keeps the snapshot table name singular like the upstream schema
func (LabourAnalytics) TableName() string { return "labour_analytics" }

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error            { newID(&u.ID); return nil }
func (w *Worker) BeforeCreate(*gorm.DB) error          { newID(&w.ID); return nil }
func (t *LabourTask) BeforeCreate(*gorm.DB) error      { newID(&t.ID); return nil }
func (s *Shift) BeforeCreate(*gorm.DB) error           { newID(&s.ID); return nil }
func (a *ScheduleAlert) BeforeCreate(*gorm.DB) error   { newID(&a.ID); return nil }
func (a *LabourAnalytics) BeforeCreate(*gorm.DB) error { newID(&a.ID); return nil }

// All lists every model for auto-migration
func All() []any {
	return []any{&User{}, &Worker{}, &LabourTask{}, &Shift{}, &ScheduleAlert{}, &LabourAnalytics{}}
}
