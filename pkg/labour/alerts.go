package labour

import (
	"context"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
	"gorm.io/datatypes"
)

type AlertFilter = repository.AlertFilter

// AlertInput describes an alert to raise
type AlertInput struct {
	TaskID         *string
	AlertType      models.AlertType
	Severity       models.Severity
	Title          string
	Message        string
	ActionRequired bool
	Metadata       map[string]interface{}
}

// CreateAlert appends an alert for userID and hands it to the notifier.
// Publishing is best effort; a failed publish is logged, not returned.
func (s *Service) CreateAlert(ctx context.Context, userID string, in AlertInput) (*models.ScheduleAlert, error) {
	if in.Severity.Rank() == 0 {
		return nil, invalid("unknown severity %q", in.Severity)
	}
	alert := &models.ScheduleAlert{
		UserID:         userID,
		TaskID:         in.TaskID,
		AlertType:      in.AlertType,
		Severity:       in.Severity,
		Title:          in.Title,
		Message:        in.Message,
		ActionRequired: in.ActionRequired,
		CreatedAt:      s.now(),
	}
	if in.Metadata != nil {
		alert.Metadata = datatypes.JSONMap(in.Metadata)
	}

	if err := s.store.Alerts().Create(ctx, alert); err != nil {
		return nil, s.storeErr(err, "create alert", map[string]interface{}{
			"user_id":    userID,
			"alert_type": string(in.AlertType),
		})
	}

	if err := s.notifier.Publish(ctx, alert); err != nil {
		s.log.Warn().Err(err).Str("alert_id", alert.ID).Str("user_id", userID).Msg("failed to publish alert")
	}
	return alert, nil
}

// GetAlerts lists alerts CRITICAL first, newest first, at most f.Limit
// (50 when unset).
func (s *Service) GetAlerts(ctx context.Context, userID string, f AlertFilter) ([]models.ScheduleAlert, error) {
	if f.Severity != nil && f.Severity.Rank() == 0 {
		return nil, invalid("unknown severity %q", *f.Severity)
	}
	alerts, err := s.store.Alerts().List(ctx, userID, f)
	if err != nil {
		return nil, s.storeErr(err, "list alerts", map[string]interface{}{"user_id": userID})
	}
	return alerts, nil
}

// MarkAlertRead flips isRead to true. Marking an already read alert
// returns the same result without writing.
func (s *Service) MarkAlertRead(ctx context.Context, userID, id string) (*models.ScheduleAlert, error) {
	alert, err := s.store.Alerts().Get(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, "get alert "+id, map[string]interface{}{"user_id": userID})
	}
	if alert.UserID != userID {
		return nil, ErrNotFound
	}
	if alert.IsRead {
		return alert, nil
	}
	if err := s.store.Alerts().MarkRead(ctx, id); err != nil {
		return nil, s.storeErr(err, "mark alert read "+id, map[string]interface{}{"user_id": userID})
	}
	alert.IsRead = true
	return alert, nil
}
