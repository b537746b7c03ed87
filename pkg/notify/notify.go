// Package notify fans created schedule alerts out to other systems.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/segmentio/kafka-go"
)

// AlertEvent is the message published for every created alert
type AlertEvent struct {
	AlertID        string           `json:"alertId"`
	UserID         string           `json:"userId"`
	TaskID         string           `json:"taskId,omitempty"`
	AlertType      models.AlertType `json:"alertType"`
	Severity       models.Severity  `json:"severity"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	ActionRequired bool             `json:"actionRequired"`
	Timestamp      time.Time        `json:"timestamp"`
}

// NewAlertEvent builds the event for a persisted alert
func NewAlertEvent(a *models.ScheduleAlert) AlertEvent {
	ev := AlertEvent{
		AlertID:        a.ID,
		UserID:         a.UserID,
		AlertType:      a.AlertType,
		Severity:       a.Severity,
		Title:          a.Title,
		Message:        a.Message,
		ActionRequired: a.ActionRequired,
		Timestamp:      a.CreatedAt,
	}
	if a.TaskID != nil {
		ev.TaskID = *a.TaskID
	}
	return ev
}

type Notifier interface {
	Publish(ctx context.Context, alert *models.ScheduleAlert) error
	Close() error
}

// Nop drops every alert
type Nop struct{}

func (Nop) Publish(context.Context, *models.ScheduleAlert) error { return nil }
func (Nop) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaNotifier struct {
	writer messageWriter
}

// NewKafka publishes alerts to topic, keyed by user so one farm's alerts
// stay ordered within a partition.
func NewKafka(brokers []string, topic string) Notifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &kafkaNotifier{writer: writer}
}

func (n *kafkaNotifier) Publish(ctx context.Context, alert *models.ScheduleAlert) error {
	ev := NewAlertEvent(alert)
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.UserID),
		Value: payload,
		Time:  ev.Timestamp,
	})
}

func (n *kafkaNotifier) Close() error {
	return n.writer.Close()
}
