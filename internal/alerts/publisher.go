package alerts

import (
	"context"
	"errors"
	"strconv"

	"medcompanion/pkg/kafka"
	"medcompanion/pkg/model"
)

// Publisher emits companion events. Implementations are best effort from the
// caller's point of view: errors are reported, never retried by the caller.
type Publisher interface {
	PublishEmergency(ctx context.Context, correlationID string, event model.EmergencyEvent) error
	PublishAppointmentConfirmed(ctx context.Context, correlationID string, event model.AppointmentConfirmedEvent) error
	Close() error
}

type eventProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher writes emergencies and confirmations to their own topics,
// keyed by user id so one user's events stay ordered.
type KafkaPublisher struct {
	alerts       eventProducer
	appointments eventProducer
	source       string
}

func NewKafkaPublisher(alerts, appointments eventProducer, source string) *KafkaPublisher {
	return &KafkaPublisher{alerts: alerts, appointments: appointments, source: source}
}

func (p *KafkaPublisher) PublishEmergency(ctx context.Context, correlationID string, event model.EmergencyEvent) error {
	msg, err := p.message(event.UserID, model.EventEmergencyDetected, correlationID, event)
	if err != nil {
		return err
	}
	return p.alerts.Publish(ctx, msg)
}

func (p *KafkaPublisher) PublishAppointmentConfirmed(ctx context.Context, correlationID string, event model.AppointmentConfirmedEvent) error {
	msg, err := p.message(event.UserID, model.EventAppointmentConfirmed, correlationID, event)
	if err != nil {
		return err
	}
	return p.appointments.Publish(ctx, msg)
}

func (p *KafkaPublisher) message(userID int64, eventType, correlationID string, payload any) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(strconv.FormatInt(userID, 10)).
		WithValue(payload).
		WithEventID("").
		WithEventType(eventType).
		WithUserID(userID).
		WithCorrelationID(correlationID).
		WithSchemaVersion(model.EventSchemaVersion).
		WithSource(p.source).
		BuildE()
}

func (p *KafkaPublisher) Close() error {
	return errors.Join(p.alerts.Close(), p.appointments.Close())
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishEmergency(context.Context, string, model.EmergencyEvent) error {
	return nil
}

func (NoopPublisher) PublishAppointmentConfirmed(context.Context, string, model.AppointmentConfirmedEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
