package model

const (
	IntentBookAppointment       = "book_appointment"
	IntentCancelAppointment     = "cancel_appointment"
	IntentRescheduleAppointment = "reschedule_appointment"
	IntentReportSymptoms        = "report_symptoms"
	IntentMedicationInfo        = "ask_medication_info"
	IntentGeneralQuery          = "general_query"
	IntentEmergencyAlert        = "emergency_alert"
	IntentGeneralChat           = "general_chat"
)

// EmergencyAssessment is the verdict of the emergency signal for one message.
type EmergencyAssessment struct {
	IsEmergency        bool     `json:"is_emergency"`
	SeverityScore      int      `json:"severity_score"`
	ConditionsDetected []string `json:"conditions_detected"`
	AlertMessage       string   `json:"alert_message"`
	ActionRequired     string   `json:"action_required"`
}

// IntentPrediction is a classified intent label with its confidence in [0,1].
type IntentPrediction struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"-"`
}

// SentimentAssessment frames a reply; it never drives routing.
type SentimentAssessment struct {
	SentimentScore float64 `json:"sentiment_score"`
	AnxietyLevel   float64 `json:"anxiety_level"`
	IsPanic        bool    `json:"is_panic"`
	PainLevel      int     `json:"pain_level"`
}
