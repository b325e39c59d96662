package alerts

import (
	"context"

	"medcompanion/pkg/logger"
)

// Notifier delivers alert messages to people.
type Notifier interface {
	SendSMS(ctx context.Context, recipient, body string) error
	SendEmail(ctx context.Context, recipient, subject, body string) error
}

// LogNotifier records deliveries in the log instead of calling a gateway.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendSMS(_ context.Context, recipient, body string) error {
	n.log.Info("Sending SMS", "recipient", recipient, "body", body)
	return nil
}

func (n *LogNotifier) SendEmail(_ context.Context, recipient, subject, body string) error {
	n.log.Info("Sending email", "recipient", recipient, "subject", subject, "body", body)
	return nil
}
