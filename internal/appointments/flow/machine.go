package flow

import (
	"fmt"
	"strings"
	"sync"

	"medcompanion/pkg/model"

	"github.com/google/uuid"
)

const (
	MsgStart           = "I'll help you book an appointment. Let's start with your main concern. Please choose from the list or say it."
	MsgAskDate         = "Okay, checking for %s. When would you like to come in? (e.g., Next Monday, Jan 30th)"
	MsgAskTime         = "Got it, %s. What time works best? We have slots in Morning, Afternoon, or Evening."
	MsgAskFiles        = "Noted. Do you have any medical reports or files to share? (Yes/No)"
	MsgFilesReceived   = "Please upload your files using the interface. (Simulated: File received). Proceeding to confirmation."
	MsgNoFiles         = "Okay, no files. Let's review."
	MsgAlreadyBooked   = "Your appointment is already booked. Do you need anything else?"
	SimulatedUpload    = "simulated-upload"
	ConfirmationPrefix = "APT-"
)

// IDGenerator produces confirmation ids. Uniqueness is best effort.
type IDGenerator func() string

func NewConfirmationID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ConfirmationPrefix + strings.ToUpper(raw[:8])
}

type Option func(*Machine)

func WithIDGenerator(gen IDGenerator) Option {
	return func(m *Machine) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// Machine is one patient's booking conversation. Process is safe for
// concurrent use; turns for the same machine are applied one at a time.
type Machine struct {
	mu    sync.Mutex
	state model.BookingState
	data  model.BookingData
	newID IDGenerator
}

func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		state: model.StateInitiate,
		data:  model.BookingData{Attachments: []string{}},
		newID: NewConfirmationID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() model.BookingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Data() model.BookingData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone()
}

// Snapshot reads state and data under one lock.
func (m *Machine) Snapshot() (model.BookingState, model.BookingData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.data.Clone()
}

// Process advances the machine by one turn. Every state accepts any input.
// Leaving FILE_UPLOAD runs the CONFIRMATION entry action in the same turn,
// so the caller sees a single response that already carries the summary.
func (m *Machine) Process(input string) model.BookingTurn {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.state
	response, options := m.step(input)
	if m.state == model.StateConfirmation {
		summary, _ := m.step("")
		response = response + "\n\n" + summary
		options = nil
	}

	if options == nil {
		options = []string{}
	}
	return model.BookingTurn{
		Response:  response,
		Options:   options,
		State:     m.state,
		Data:      m.data.Clone(),
		Completed: before != model.StateCompleted && m.state == model.StateCompleted,
	}
}

func (m *Machine) step(input string) (string, []string) {
	switch m.state {
	case model.StateInitiate:
		m.state = model.StateProblemSelection
		return MsgStart, ProblemCatalog()

	case model.StateProblemSelection:
		problem := MatchProblem(input)
		m.data.Problem = &problem
		m.state = model.StateDateSelection
		return fmt.Sprintf(MsgAskDate, problem), nil

	case model.StateDateSelection:
		date := input
		m.data.Date = &date
		m.state = model.StateTimeSelection
		return fmt.Sprintf(MsgAskTime, date), TimeSlots()

	case model.StateTimeSelection:
		slot := input
		m.data.TimeSlot = &slot
		m.state = model.StateFileUpload
		return MsgAskFiles, nil

	case model.StateFileUpload:
		response := MsgNoFiles
		if strings.Contains(strings.ToLower(input), "yes") {
			m.data.Attachments = append(m.data.Attachments, SimulatedUpload)
			response = MsgFilesReceived
		}
		m.state = model.StateConfirmation
		return response, nil

	case model.StateConfirmation:
		id := m.newID()
		m.data.ConfirmationID = &id
		m.state = model.StateCompleted
		return m.summary(), nil

	case model.StateCompleted:
		return MsgAlreadyBooked, nil

	default:
		panic(fmt.Sprintf("booking flow: unhandled state %s", m.state))
	}
}

func (m *Machine) summary() string {
	var sb strings.Builder
	sb.WriteString("Appointment Confirmed!\n")
	fmt.Fprintf(&sb, "ID: %s\n", model.Deref(m.data.ConfirmationID))
	fmt.Fprintf(&sb, "Problem: %s\n", model.Deref(m.data.Problem))
	fmt.Fprintf(&sb, "Date: %s\n", model.Deref(m.data.Date))
	fmt.Fprintf(&sb, "Time: %s", model.Deref(m.data.TimeSlot))
	if n := len(m.data.Attachments); n > 0 {
		fmt.Fprintf(&sb, "\nFiles: %d attached", n)
	}
	return sb.String()
}
