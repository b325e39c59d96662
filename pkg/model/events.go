package model

import "time"

const (
	EventEmergencyDetected    = "emergency.detected"
	EventAppointmentConfirmed = "appointment.confirmed"
	EventSchemaVersion        = "1"
)

// EmergencyEvent is published when a message is triaged as an emergency.
type EmergencyEvent struct {
	UserID        int64     `json:"user_id"`
	SeverityScore int       `json:"severity_score"`
	Conditions    []string  `json:"conditions"`
	Location      string    `json:"location,omitempty"`
	DetectedAt    time.Time `json:"detected_at"`
}

// AppointmentConfirmedEvent is published once per completed booking.
type AppointmentConfirmedEvent struct {
	UserID         int64     `json:"user_id"`
	ConfirmationID string    `json:"confirmation_id"`
	Reason         string    `json:"reason"`
	RequestedDate  string    `json:"requested_date"`
	TimeSlot       string    `json:"time_slot"`
	Attachments    int       `json:"attachments"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}
