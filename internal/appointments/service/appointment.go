package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	appointmentserrors "medcompanion/internal/appointments/errors"
	"medcompanion/internal/appointments/repository"
	apperrors "medcompanion/pkg/errors"
	"medcompanion/pkg/logger"
	"medcompanion/pkg/model"
	"medcompanion/pkg/sanitizer"
)

const DefaultListLimit = 20

var confirmationIDPattern = regexp.MustCompile(`^APT-[A-Z0-9]{8}$`)

type AppointmentService interface {
	// Record persists the appointment described by a completed booking turn.
	Record(ctx context.Context, userID int64, turn model.BookingTurn) (*model.Appointment, error)
	GetByConfirmationID(ctx context.Context, confirmationID string) (*model.Appointment, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*model.Appointment, int64, error)
	Enabled() bool
}

type appointmentService struct {
	repo repository.AppointmentRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewAppointmentService accepts a nil repo; every call then reports that
// persistence is disabled.
func NewAppointmentService(repo repository.AppointmentRepository, log *logger.Logger) AppointmentService {
	return &appointmentService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func (s *appointmentService) Enabled() bool {
	return s.repo != nil
}

func (s *appointmentService) Record(ctx context.Context, userID int64, turn model.BookingTurn) (*model.Appointment, error) {
	if s.repo == nil {
		return nil, appointmentserrors.ErrPersistenceDisabled
	}
	if turn.State != model.StateCompleted {
		return nil, appointmentserrors.ErrNotCompleted
	}

	appointment := FromTurn(userID, turn, s.now())
	if !ValidConfirmationID(appointment.ConfirmationID) {
		return nil, appointmentserrors.ErrInvalidConfirmationID
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		if errors.Is(err, appointmentserrors.ErrDuplicateConfirmationID) {
			return nil, apperrors.Conflict("Appointment with this confirmation ID already exists")
		}
		s.log.Error("Failed to persist appointment",
			"user_id", userID,
			"confirmation_id", appointment.ConfirmationID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to persist appointment", err)
	}

	s.log.Info("Appointment persisted",
		"id", appointment.ID,
		"user_id", userID,
		"confirmation_id", appointment.ConfirmationID,
	)
	return appointment, nil
}

func (s *appointmentService) GetByConfirmationID(ctx context.Context, confirmationID string) (*model.Appointment, error) {
	if s.repo == nil {
		return nil, apperrors.NotFound("Appointment")
	}
	if !ValidConfirmationID(confirmationID) {
		return nil, apperrors.InvalidInput("Invalid confirmation ID format")
	}

	appointment, err := s.repo.FindByConfirmationID(ctx, confirmationID)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", confirmationID)
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appointment, nil
}

func (s *appointmentService) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.Appointment, int64, error) {
	if s.repo == nil {
		return []*model.Appointment{}, 0, nil
	}
	if userID < 1 {
		return nil, 0, apperrors.InvalidInput("user_id must be positive")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = sanitizer.ClampInt(limit, 1, DefaultListLimit)

	appointments, err := s.repo.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list appointments", err)
	}
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count appointments", err)
	}
	if appointments == nil {
		appointments = []*model.Appointment{}
	}
	return appointments, count, nil
}

// FromTurn maps a completed booking conversation to its stored record.
func FromTurn(userID int64, turn model.BookingTurn, now time.Time) *model.Appointment {
	data := turn.Data.Clone()
	return &model.Appointment{
		ConfirmationID: model.Deref(data.ConfirmationID),
		UserID:         userID,
		Reason:         model.Deref(data.Problem),
		RequestedDate:  model.Deref(data.Date),
		TimeSlot:       model.Deref(data.TimeSlot),
		Attachments:    data.Attachments,
		Status:         model.AppointmentStatusScheduled,
		CreatedAt:      now.UTC().Truncate(time.Millisecond),
	}
}

func ValidConfirmationID(id string) bool {
	return confirmationIDPattern.MatchString(id)
}
