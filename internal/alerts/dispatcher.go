package alerts

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"medcompanion/pkg/kafka"
	"medcompanion/pkg/logger"
	"medcompanion/pkg/model"
)

const (
	EmergencyContact  = "Emergency Contact"
	OnCallDoctorEmail = "doctor@medsy.com"
	UnknownLocation   = "Unknown"

	StatusSent    = "SENT"
	StatusSuccess = "success"

	DefaultLogCapacity = 1000

	timestampLayout = "2006-01-02 15:04:05"
)

// Notification is one entry of the dispatcher's delivery log.
type Notification struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Condition string `json:"condition"`
	Status    string `json:"status"`
}

type AlertResult struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Dispatcher turns emergency events into notifications for the patient's
// emergency contact and the on-call doctor.
type Dispatcher struct {
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	sent     []Notification
	capacity int
}

type DispatcherOption func(*Dispatcher)

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithLogCapacity bounds the in-memory delivery log; the oldest entries go first.
func WithLogCapacity(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.capacity = n
		}
	}
}

func NewDispatcher(notifier Notifier, log *logger.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		log:      log,
		now:      time.Now,
		capacity: DefaultLogCapacity,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle is a kafka.MessageHandler. Undecodable payloads are permanent
// failures; delivery failures are transient so the consumer retries them.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	if msg.GetEventType() != model.EventEmergencyDetected {
		d.log.Debug("ignoring event", "event_type", msg.GetEventType(), "event_id", msg.GetEventID())
		return nil
	}

	var event model.EmergencyEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("decode emergency event", err)
	}

	location := event.Location
	if location == "" {
		location = UnknownLocation
	}

	if _, err := d.TriggerAlert(ctx, strconv.FormatInt(event.UserID, 10), describeConditions(event), location); err != nil {
		return kafka.NewTransientError("deliver emergency alert", err)
	}
	return nil
}

func (d *Dispatcher) TriggerAlert(ctx context.Context, user, condition, location string) (AlertResult, error) {
	timestamp := d.now().Format(timestampLayout)
	body := fmt.Sprintf("[%s] EMERGENCY ALERT: User %s at %s showing signs of %s. Contacts notified.", timestamp, user, location, condition)

	if err := d.notifier.SendSMS(ctx, EmergencyContact, body); err != nil {
		return AlertResult{}, fmt.Errorf("sms to %s: %w", EmergencyContact, err)
	}
	if err := d.notifier.SendEmail(ctx, OnCallDoctorEmail, "URGENT: "+user, body); err != nil {
		return AlertResult{}, fmt.Errorf("email to %s: %w", OnCallDoctorEmail, err)
	}

	d.record(Notification{Timestamp: timestamp, User: user, Condition: condition, Status: StatusSent})
	d.log.Warn("Emergency alert dispatched", "user", user, "condition", condition, "location", location)

	return AlertResult{
		Status:    StatusSuccess,
		Message:   "Emergency protocols initiated. Contacts notified.",
		Timestamp: timestamp,
	}, nil
}

func (d *Dispatcher) record(n Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sent) >= d.capacity {
		copy(d.sent, d.sent[1:])
		d.sent = d.sent[:len(d.sent)-1]
	}
	d.sent = append(d.sent, n)
}

// Notifications returns a copy of the delivery log, oldest first.
func (d *Dispatcher) Notifications() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Notification, len(d.sent))
	copy(out, d.sent)
	return out
}

func describeConditions(event model.EmergencyEvent) string {
	if len(event.Conditions) > 0 {
		return strings.Join(event.Conditions, ", ")
	}
	return fmt.Sprintf("a severity %d emergency", event.SeverityScore)
}
