package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// BookingState is the position of a booking conversation. The zero value is
// StateInitiate and states only ever move forward, one step at a time.
type BookingState uint8

const (
	StateInitiate BookingState = iota
	StateProblemSelection
	StateDateSelection
	StateTimeSelection
	StateFileUpload
	StateConfirmation
	StateCompleted
)

var bookingStateNames = [...]string{
	StateInitiate:         "INITIATE",
	StateProblemSelection: "PROBLEM_SELECTION",
	StateDateSelection:    "DATE_SELECTION",
	StateTimeSelection:    "TIME_SELECTION",
	StateFileUpload:       "FILE_UPLOAD",
	StateConfirmation:     "CONFIRMATION",
	StateCompleted:        "COMPLETED",
}

// BookingStates lists every state in transition order.
func BookingStates() []BookingState {
	return []BookingState{
		StateInitiate,
		StateProblemSelection,
		StateDateSelection,
		StateTimeSelection,
		StateFileUpload,
		StateConfirmation,
		StateCompleted,
	}
}

func (s BookingState) String() string {
	if int(s) < len(bookingStateNames) {
		return bookingStateNames[s]
	}
	return fmt.Sprintf("BookingState(%d)", uint8(s))
}

func (s BookingState) Valid() bool {
	return s <= StateCompleted
}

// Next returns the following state. COMPLETED is terminal and returns itself.
func (s BookingState) Next() BookingState {
	if s >= StateCompleted {
		return StateCompleted
	}
	return s + 1
}

func (s BookingState) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid booking state %d", uint8(s))
	}
	return json.Marshal(s.String())
}

func (s *BookingState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseBookingState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseBookingState(name string) (BookingState, error) {
	for i, n := range bookingStateNames {
		if n == name {
			return BookingState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown booking state %q", name)
}

// BookingData is collected one field per state. Nil means "not reached yet".
type BookingData struct {
	Problem        *string  `json:"problem"`
	Date           *string  `json:"date"`
	TimeSlot       *string  `json:"time_slot"`
	Attachments    []string `json:"attachments"`
	ConfirmationID *string  `json:"confirmation_id"`
}

// Clone returns a deep copy so callers cannot mutate a machine's data.
func (d BookingData) Clone() BookingData {
	out := BookingData{
		Problem:        cloneString(d.Problem),
		Date:           cloneString(d.Date),
		TimeSlot:       cloneString(d.TimeSlot),
		ConfirmationID: cloneString(d.ConfirmationID),
		Attachments:    make([]string, len(d.Attachments)),
	}
	copy(out.Attachments, d.Attachments)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Deref returns the pointed-to value or an empty string.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BookingTurn is the outcome of feeding one message to a booking machine.
type BookingTurn struct {
	Response string       `json:"response"`
	Options  []string     `json:"options"`
	State    BookingState `json:"state"`
	Data     BookingData  `json:"data"`

	// Completed is set only on the turn that entered COMPLETED.
	Completed bool `json:"-"`
}

const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment is the persisted form of a completed booking conversation.
type Appointment struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	ConfirmationID string    `json:"confirmation_id" bson:"confirmation_id"`
	UserID         int64     `json:"user_id" bson:"user_id"`
	Reason         string    `json:"reason" bson:"reason"`
	RequestedDate  string    `json:"requested_date" bson:"requested_date"`
	TimeSlot       string    `json:"time_slot" bson:"time_slot"`
	Attachments    []string  `json:"attachments" bson:"attachments"`
	Status         string    `json:"status" bson:"status"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// AppointmentList is one page of a user's appointments, newest first.
type AppointmentList struct {
	Data  []*Appointment `json:"data"`
	Total int64          `json:"total"`
}
