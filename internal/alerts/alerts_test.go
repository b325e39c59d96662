package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"medcompanion/pkg/kafka"
	"medcompanion/pkg/logger"
	"medcompanion/pkg/model"
)

type mockProducer struct {
	publishFunc func(ctx context.Context, msg kafka.Message) error
	published   []kafka.Message
	closed      bool
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error {
	m.closed = true
	return nil
}

type mockNotifier struct {
	sendSMSFunc   func(recipient, body string) error
	sendEmailFunc func(recipient, subject, body string) error
	sms           []string
	emails        []string
}

func (m *mockNotifier) SendSMS(_ context.Context, recipient, body string) error {
	m.sms = append(m.sms, recipient+"|"+body)
	if m.sendSMSFunc != nil {
		return m.sendSMSFunc(recipient, body)
	}
	return nil
}

func (m *mockNotifier) SendEmail(_ context.Context, recipient, subject, body string) error {
	m.emails = append(m.emails, recipient+"|"+subject)
	if m.sendEmailFunc != nil {
		return m.sendEmailFunc(recipient, subject, body)
	}
	return nil
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestKafkaPublisher_RoutesByEventType(t *testing.T) {
	alertsTopic := &mockProducer{}
	appointmentsTopic := &mockProducer{}
	p := NewKafkaPublisher(alertsTopic, appointmentsTopic, "companion")

	err := p.PublishEmergency(context.Background(), "req-1", model.EmergencyEvent{
		UserID:        42,
		SeverityScore: 10,
		Conditions:    []string{"Possible Heart Attack"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = p.PublishAppointmentConfirmed(context.Background(), "", model.AppointmentConfirmedEvent{
		UserID:         42,
		ConfirmationID: "APT-1234ABCD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(alertsTopic.published) != 1 || len(appointmentsTopic.published) != 1 {
		t.Fatalf("expected one message per topic, got %d and %d", len(alertsTopic.published), len(appointmentsTopic.published))
	}

	alert := alertsTopic.published[0]
	if alert.Key != "42" || alert.GetEventType() != model.EventEmergencyDetected || alert.GetCorrelationID() != "req-1" {
		t.Errorf("unexpected alert message %+v", alert)
	}
	if alert.Headers[kafka.HeaderSource] != "companion" || alert.Headers[kafka.HeaderSchemaVersion] != model.EventSchemaVersion {
		t.Errorf("missing headers %v", alert.Headers)
	}
	var decoded model.EmergencyEvent
	if err := json.Unmarshal(alert.Value, &decoded); err != nil || decoded.SeverityScore != 10 {
		t.Errorf("unexpected payload %s (%v)", alert.Value, err)
	}

	if appointmentsTopic.published[0].GetEventType() != model.EventAppointmentConfirmed {
		t.Errorf("unexpected appointment event type %s", appointmentsTopic.published[0].GetEventType())
	}
	if _, ok := appointmentsTopic.published[0].Headers[kafka.HeaderCorrelationID]; ok {
		t.Error("empty correlation id must not be set")
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !alertsTopic.closed || !appointmentsTopic.closed {
		t.Error("expected both producers closed")
	}
}

func TestKafkaPublisher_PropagatesError(t *testing.T) {
	failing := &mockProducer{publishFunc: func(ctx context.Context, msg kafka.Message) error {
		return errors.New("broker down")
	}}
	p := NewKafkaPublisher(failing, &mockProducer{}, "companion")

	if err := p.PublishEmergency(context.Background(), "", model.EmergencyEvent{UserID: 1}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.PublishEmergency(context.Background(), "", model.EmergencyEvent{}); err != nil {
		t.Error(err)
	}
	if err := p.PublishAppointmentConfirmed(context.Background(), "", model.AppointmentConfirmedEvent{}); err != nil {
		t.Error(err)
	}
	if err := p.Close(); err != nil {
		t.Error(err)
	}
}

func TestDispatcher_TriggerAlert(t *testing.T) {
	n := &mockNotifier{}
	d := NewDispatcher(n, logger.Discard(), WithClock(fixedClock))

	res, err := d.TriggerAlert(context.Background(), "John Doe", "Heart Attack", "Unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantBody := "[2025-03-14 09:26:53] EMERGENCY ALERT: User John Doe at Unknown showing signs of Heart Attack. Contacts notified."
	if len(n.sms) != 1 || n.sms[0] != EmergencyContact+"|"+wantBody {
		t.Errorf("unexpected sms %q", n.sms)
	}
	if len(n.emails) != 1 || n.emails[0] != OnCallDoctorEmail+"|URGENT: John Doe" {
		t.Errorf("unexpected emails %q", n.emails)
	}
	if res.Status != StatusSuccess || res.Timestamp != "2025-03-14 09:26:53" {
		t.Errorf("unexpected result %+v", res)
	}

	log := d.Notifications()
	if len(log) != 1 || log[0].Status != StatusSent || log[0].Condition != "Heart Attack" {
		t.Errorf("unexpected notification log %+v", log)
	}
}

func TestDispatcher_TriggerAlertFailure(t *testing.T) {
	n := &mockNotifier{sendEmailFunc: func(recipient, subject, body string) error {
		return errors.New("smtp unavailable")
	}}
	d := NewDispatcher(n, logger.Discard())

	if _, err := d.TriggerAlert(context.Background(), "1", "x", "y"); err == nil {
		t.Fatal("expected error")
	}
	if len(d.Notifications()) != 0 {
		t.Error("failed deliveries must not be logged as sent")
	}
}

func TestDispatcher_LogIsBounded(t *testing.T) {
	d := NewDispatcher(&mockNotifier{}, logger.Discard(), WithLogCapacity(2))
	for _, user := range []string{"a", "b", "c"} {
		if _, err := d.TriggerAlert(context.Background(), user, "x", "y"); err != nil {
			t.Fatal(err)
		}
	}
	log := d.Notifications()
	if len(log) != 2 || log[0].User != "b" || log[1].User != "c" {
		t.Errorf("expected the two newest entries, got %+v", log)
	}
}

func emergencyMessage(t *testing.T, event model.EmergencyEvent) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey("1").
		WithValue(event).
		WithEventType(model.EventEmergencyDetected).
		BuildE()
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestDispatcher_Handle(t *testing.T) {
	tests := []struct {
		name          string
		msg           func(t *testing.T) kafka.Message
		notifier      *mockNotifier
		wantErrType   kafka.ErrorType
		wantSMS       int
		wantCondition string
	}{
		{
			name: "emergency with conditions",
			msg: func(t *testing.T) kafka.Message {
				return emergencyMessage(t, model.EmergencyEvent{UserID: 7, SeverityScore: 10, Conditions: []string{"Possible Stroke", "Critical Symptom: seizure"}})
			},
			notifier:      &mockNotifier{},
			wantSMS:       1,
			wantCondition: "Possible Stroke, Critical Symptom: seizure",
		},
		{
			name: "emergency without named condition",
			msg: func(t *testing.T) kafka.Message {
				return emergencyMessage(t, model.EmergencyEvent{UserID: 7, SeverityScore: 8})
			},
			notifier:      &mockNotifier{},
			wantSMS:       1,
			wantCondition: "a severity 8 emergency",
		},
		{
			name: "other event types are ignored",
			msg: func(t *testing.T) kafka.Message {
				return kafka.NewMessage().WithKey("1").WithValue("{}").WithEventType(model.EventAppointmentConfirmed).Build()
			},
			notifier: &mockNotifier{},
		},
		{
			name: "undecodable payload is permanent",
			msg: func(t *testing.T) kafka.Message {
				return kafka.Message{Value: []byte("{not json"), Headers: map[string]string{kafka.HeaderEventType: model.EventEmergencyDetected}}
			},
			notifier:    &mockNotifier{},
			wantErrType: kafka.ErrorTypePermanent,
		},
		{
			name: "delivery failure is transient",
			msg: func(t *testing.T) kafka.Message {
				return emergencyMessage(t, model.EmergencyEvent{UserID: 7, SeverityScore: 10})
			},
			notifier: &mockNotifier{sendSMSFunc: func(recipient, body string) error {
				return errors.New("sms gateway 503")
			}},
			wantErrType: kafka.ErrorTypeTransient,
			wantSMS:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.notifier, logger.Discard(), WithClock(fixedClock))
			err := d.Handle(context.Background(), tt.msg(t))

			if tt.wantErrType == kafka.ErrorTypeUnknown {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else if got := kafka.ClassifyError(err); got != tt.wantErrType {
				t.Fatalf("error type = %d, want %d (err %v)", got, tt.wantErrType, err)
			}

			if len(tt.notifier.sms) != tt.wantSMS {
				t.Errorf("expected %d sms, got %d", tt.wantSMS, len(tt.notifier.sms))
			}
			if tt.wantCondition != "" {
				log := d.Notifications()
				if len(log) != 1 || log[0].Condition != tt.wantCondition || log[0].User != "7" {
					t.Errorf("unexpected notification log %+v", log)
				}
				if !strings.Contains(tt.notifier.sms[0], "at "+UnknownLocation+" showing signs of") {
					t.Errorf("expected default location in %q", tt.notifier.sms[0])
				}
			}
		})
	}
}
