package model

const DefaultChatUserID int64 = 1

type ChatRequest struct {
	UserID  *int64 `json:"user_id,omitempty"`
	Message string `json:"message" validate:"required,max=2000"`
}

type IntentPayload struct {
	Intent     string        `json:"intent"`
	Confidence float64       `json:"confidence"`
	Options    []string      `json:"options,omitempty"`
	State      *BookingState `json:"state,omitempty"`
}

// ChatResponse.Sentiment is a *SentimentAssessment, or an empty object when
// sentiment was not scored (emergency short-circuit).
type ChatResponse struct {
	Response    string        `json:"response"`
	Sentiment   any           `json:"sentiment"`
	Intent      IntentPayload `json:"intent"`
	IsEmergency bool          `json:"is_emergency"`
}

type AppointmentRequest struct {
	UserID  int64  `json:"user_id" validate:"required,min=1"`
	Message string `json:"message" validate:"max=2000"`
}

type AppointmentResponse struct {
	Response string       `json:"response"`
	State    BookingState `json:"state"`
	Options  []string     `json:"options"`
}
