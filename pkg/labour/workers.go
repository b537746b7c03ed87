package labour

import (
	"context"
	"strings"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
	"gorm.io/datatypes"
)

const upcomingShiftsPerWorker = 10

type WorkerFilter = repository.WorkerFilter

// WorkerInput is a worker profile as submitted by its owner
type WorkerInput struct {
	FirstName    string              `json:"first_name" binding:"required"`
	LastName     string              `json:"last_name" binding:"required"`
	Phone        string              `json:"phone"`
	Skills       []string            `json:"skills"`
	HourlyRate   float64             `json:"hourly_rate"`
	Availability models.Availability `json:"availability"`
	Status       models.WorkerStatus `json:"status"`
}

// WorkerUpdate changes only the fields that are set
type WorkerUpdate struct {
	FirstName    *string              `json:"first_name"`
	LastName     *string              `json:"last_name"`
	Phone        *string              `json:"phone"`
	Skills       []string             `json:"skills"`
	HourlyRate   *float64             `json:"hourly_rate"`
	Availability models.Availability  `json:"availability"`
	Status       *models.WorkerStatus `json:"status"`
}

func validWorkerStatus(st models.WorkerStatus) bool {
	return st == models.WorkerActive || st == models.WorkerInactive
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, sk := range skills {
		sk = strings.TrimSpace(sk)
		if sk == "" || seen[sk] {
			continue
		}
		seen[sk] = true
		out = append(out, sk)
	}
	return out
}

func (in WorkerInput) validate() error {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return invalid("first and last name are required")
	}
	if in.HourlyRate < 0 {
		return invalid("hourly rate must not be negative")
	}
	if in.Status != "" && !validWorkerStatus(in.Status) {
		return invalid("unknown worker status %q", in.Status)
	}
	return nil
}

func (s *Service) CreateWorker(ctx context.Context, userID string, in WorkerInput) (*models.Worker, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.WorkerActive
	}

	now := s.now()
	w := &models.Worker{
		UserID:       userID,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Skills:       normalizeSkills(in.Skills),
		HourlyRate:   in.HourlyRate,
		Availability: datatypes.NewJSONType(in.Availability),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Workers().Create(ctx, w); err != nil {
		return nil, s.storeErr(err, "create worker", map[string]interface{}{"user_id": userID})
	}
	return w, nil
}

func (s *Service) GetWorker(ctx context.Context, userID, id string) (*models.Worker, error) {
	w, err := s.store.Workers().Get(ctx, userID, id)
	if err != nil {
		return nil, s.storeErr(err, "get worker "+id, map[string]interface{}{"user_id": userID})
	}
	return w, nil
}

// GetWorkers lists the user's workers newest first with their next shifts
func (s *Service) GetWorkers(ctx context.Context, userID string, f WorkerFilter) ([]models.Worker, error) {
	if f.Status != nil && !validWorkerStatus(*f.Status) {
		return nil, invalid("unknown worker status %q", *f.Status)
	}
	workers, err := s.store.Workers().List(ctx, userID, f, s.now(), upcomingShiftsPerWorker)
	if err != nil {
		return nil, s.storeErr(err, "list workers", map[string]interface{}{"user_id": userID})
	}
	return workers, nil
}

// UpdateWorker applies an explicit profile update
func (s *Service) UpdateWorker(ctx context.Context, userID, id string, in WorkerUpdate) (*models.Worker, error) {
	w, err := s.GetWorker(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		w.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		w.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		w.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Skills != nil {
		w.Skills = normalizeSkills(in.Skills)
	}
	if in.HourlyRate != nil {
		w.HourlyRate = *in.HourlyRate
	}
	if in.Availability != nil {
		w.Availability = datatypes.NewJSONType(in.Availability)
	}
	if in.Status != nil {
		w.Status = *in.Status
	}

	check := WorkerInput{FirstName: w.FirstName, LastName: w.LastName, HourlyRate: w.HourlyRate, Status: w.Status}
	if err := check.validate(); err != nil {
		return nil, err
	}

	w.UpdatedAt = s.now()
	if err := s.store.Workers().Update(ctx, w); err != nil {
		return nil, s.storeErr(err, "update worker "+id, map[string]interface{}{"user_id": userID})
	}
	return w, nil
}
