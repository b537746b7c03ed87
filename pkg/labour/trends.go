package labour

import (
	"context"
	"math"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
)

const (
	demandHorizon      = 7 * 24 * time.Hour
	utilizationWindow  = 30 * 24 * time.Hour
	defaultUtilization = 0.8
	surplusFactor      = 1.2
	confidentSnapshots = 10
	highConfidence     = 0.85
	lowConfidence      = 0.6
)

// Prediction is the single-factor staffing forecast for the coming week
type Prediction struct {
	Shortage         bool    `json:"shortage"`
	Surplus          bool    `json:"surplus"`
	PredictedWorkers int     `json:"predicted_workers"`
	RequiredWorkers  int     `json:"required_workers"`
	AvailableWorkers int     `json:"available_workers"`
	Utilization      float64 `json:"utilization"`
	Snapshots        int     `json:"snapshots"`
	Confidence       float64 `json:"confidence"`
}

// Metadata flattens the prediction for alert metadata
func (p Prediction) Metadata() map[string]interface{} {
	return map[string]interface{}{
		"shortage":          p.Shortage,
		"surplus":           p.Surplus,
		"predicted_workers": p.PredictedWorkers,
		"required_workers":  p.RequiredWorkers,
		"available_workers": p.AvailableWorkers,
		"utilization":       p.Utilization,
		"confidence":        p.Confidence,
	}
}

// Predict applies the utilization heuristic. Snapshots with no workers carry
// no utilization and are ignored.
func Predict(required, available int, snapshots []models.LabourAnalytics) Prediction {
	var sum float64
	used := 0
	for _, snap := range snapshots {
		if snap.TotalWorkers <= 0 {
			continue
		}
		sum += float64(snap.ActiveWorkers) / float64(snap.TotalWorkers)
		used++
	}
	utilization := defaultUtilization
	if used > 0 {
		utilization = sum / float64(used)
	}

	predicted := int(math.Floor(float64(available) * utilization))
	confidence := lowConfidence
	if used >= confidentSnapshots {
		confidence = highConfidence
	}

	return Prediction{
		Shortage:         predicted < required,
		Surplus:          float64(predicted) > float64(required)*surplusFactor,
		PredictedWorkers: predicted,
		RequiredWorkers:  required,
		AvailableWorkers: available,
		Utilization:      utilization,
		Snapshots:        used,
		Confidence:       confidence,
	}
}

// AnalyzeLaborTrends forecasts the user's staffing for the next 7 days from
// task demand, active headcount and 30 days of utilization snapshots.
func (s *Service) AnalyzeLaborTrends(ctx context.Context, userID string) (*Prediction, error) {
	now := s.now()
	fields := map[string]interface{}{"user_id": userID}

	tasks, err := s.store.Tasks().ListOverlapping(ctx, userID, now, now.Add(demandHorizon))
	if err != nil {
		return nil, s.storeErr(err, "list upcoming tasks", fields)
	}
	required := 0
	for _, t := range tasks {
		required += t.RequiredWorkers
	}

	workers, err := s.store.Workers().ListActive(ctx, userID)
	if err != nil {
		return nil, s.storeErr(err, "list active workers", fields)
	}

	snapshots, err := s.store.Analytics().ListSince(ctx, userID, now.Add(-utilizationWindow))
	if err != nil {
		return nil, s.storeErr(err, "list analytics", fields)
	}

	p := Predict(required, len(workers), snapshots)
	return &p, nil
}
