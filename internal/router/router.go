package router

import (
	"context"
	"sync"
	"time"

	"medcompanion/internal/alerts"
	"medcompanion/internal/appointments/service"
	"medcompanion/internal/appointments/session"
	"medcompanion/internal/assistant"
	"medcompanion/internal/triage/intent"
	"medcompanion/pkg/logger"
	"medcompanion/pkg/middleware"
	"medcompanion/pkg/model"
	"medcompanion/pkg/sanitizer"

	"github.com/google/uuid"
)

// Path names the branch a message took through the router.
type Path string

const (
	PathEmergency    Path = "emergency"
	PathSession      Path = "session"
	PathBookingStart Path = "booking_start"
	PathGeneral      Path = "general"
)

// EmergencySignal assesses a tokenised message for medical emergencies.
type EmergencySignal interface {
	Check(tokens []string) model.EmergencyAssessment
}

type SentimentSignal interface {
	Analyze(text string) model.SentimentAssessment
}

type ResponseGenerator interface {
	Generate(ctx context.Context, text, convContext string, sentiment *model.SentimentAssessment) string
}

// Decision is the outcome of routing one message. Emergency is set only on
// the emergency path, Booking only on the two session paths, and Sentiment
// on every path except emergency.
type Decision struct {
	Path      Path
	Response  string
	Intent    model.IntentPrediction
	Sentiment *model.SentimentAssessment
	Emergency *model.EmergencyAssessment
	Booking   *model.BookingTurn
}

func (d *Decision) IsEmergency() bool {
	return d.Path == PathEmergency
}

func (d *Decision) ChatResponse() model.ChatResponse {
	resp := model.ChatResponse{
		Response:    d.Response,
		IsEmergency: d.IsEmergency(),
		Intent: model.IntentPayload{
			Intent:     d.Intent.Intent,
			Confidence: d.Intent.Confidence,
		},
	}
	if d.Sentiment != nil {
		resp.Sentiment = d.Sentiment
	} else {
		resp.Sentiment = struct{}{}
	}
	if d.Booking != nil {
		state := d.Booking.State
		resp.Intent.State = &state
		resp.Intent.Options = d.Booking.Options
	}
	return resp
}

// DefaultSideEffectTimeout bounds one background persist or publish.
const DefaultSideEffectTimeout = 10 * time.Second

type Option func(*Router)

func WithBookingThreshold(threshold float64) Option {
	return func(r *Router) {
		r.threshold = threshold
	}
}

func WithAppointments(svc service.AppointmentService) Option {
	return func(r *Router) {
		r.appointments = svc
	}
}

func WithPublisher(p alerts.Publisher) Option {
	return func(r *Router) {
		r.publisher = p
	}
}

// WithSideEffectTimeout bounds each background persist/publish job. It is
// independent of the request deadline.
func WithSideEffectTimeout(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.sideEffectTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

// Router applies the fixed routing priority to each inbound message:
// emergency, active session, booking start, general reply.
type Router struct {
	sessions     *session.Registry
	emergency    EmergencySignal
	classifier   intent.Classifier
	sentiment    SentimentSignal
	responder    ResponseGenerator
	appointments service.AppointmentService
	publisher    alerts.Publisher
	threshold    float64
	now          func() time.Time
	log          *logger.Logger

	sideEffectTimeout time.Duration
	pending           sync.WaitGroup
}

func New(
	sessions *session.Registry,
	emergency EmergencySignal,
	classifier intent.Classifier,
	sentiment SentimentSignal,
	responder ResponseGenerator,
	log *logger.Logger,
	opts ...Option,
) *Router {
	r := &Router{
		sessions:   sessions,
		emergency:  emergency,
		classifier: classifier,
		sentiment:  sentiment,
		responder:  responder,
		publisher:  alerts.NoopPublisher{},
		threshold:  intent.DefaultBookingThreshold,
		now:        time.Now,
		log:        log,

		sideEffectTimeout: DefaultSideEffectTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Route(ctx context.Context, userID int64, text string) (*Decision, error) {
	text = sanitizer.NormalizeMessage(text)

	assessment := r.emergency.Check(sanitizer.Tokenize(text))
	if assessment.IsEmergency {
		r.log.Warn("Emergency detected",
			"user_id", userID,
			"severity", assessment.SeverityScore,
			"conditions", assessment.ConditionsDetected,
		)
		r.publishEmergency(ctx, userID, assessment)
		return &Decision{
			Path:      PathEmergency,
			Response:  assessment.AlertMessage + " " + assessment.ActionRequired,
			Intent:    model.IntentPrediction{Intent: model.IntentEmergencyAlert, Confidence: 1.0},
			Emergency: &assessment,
		}, nil
	}

	prediction := r.classify(ctx, text)
	bookingStart := intent.IsBookingStart(prediction, r.threshold)

	if machine, ok := r.sessions.Get(userID); ok {
		if machine.State() == model.StateCompleted && !bookingStart {
			r.sessions.Delete(userID)
			r.log.Debug("Completed booking session closed", "user_id", userID)
		} else {
			turn := machine.Process(text)
			r.afterTurn(ctx, userID, turn)
			return r.bookingDecision(PathSession, text, prediction, turn), nil
		}
	} else if bookingStart {
		turn := r.sessions.GetOrCreate(userID).Process(text)
		r.log.Info("Booking session started", "user_id", userID, "confidence", prediction.Confidence)
		r.afterTurn(ctx, userID, turn)
		return r.bookingDecision(PathBookingStart, text, prediction, turn), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sentiment := r.sentiment.Analyze(text)
	return &Decision{
		Path:      PathGeneral,
		Response:  r.responder.Generate(ctx, text, assistant.DefaultContext, &sentiment),
		Intent:    prediction,
		Sentiment: &sentiment,
	}, nil
}

// Book feeds a message straight into the user's booking session, creating it
// if needed. Triage is skipped.
func (r *Router) Book(ctx context.Context, userID int64, text string) model.BookingTurn {
	turn := r.sessions.GetOrCreate(userID).Process(sanitizer.NormalizeMessage(text))
	r.afterTurn(ctx, userID, turn)
	return turn
}

func (r *Router) Reset(userID int64) {
	r.sessions.Delete(userID)
	r.log.Debug("Booking session reset", "user_id", userID)
}

func (r *Router) classify(ctx context.Context, text string) model.IntentPrediction {
	prediction, err := r.classifier.Classify(ctx, text)
	if err != nil {
		r.log.Warn("Intent classification failed", "error", err)
		return model.IntentPrediction{Intent: model.IntentGeneralChat}
	}
	return prediction
}

func (r *Router) bookingDecision(path Path, text string, prediction model.IntentPrediction, turn model.BookingTurn) *Decision {
	sentiment := r.sentiment.Analyze(text)
	return &Decision{
		Path:      path,
		Response:  turn.Response,
		Intent:    prediction,
		Sentiment: &sentiment,
		Booking:   &turn,
	}
}

// afterTurn persists and announces a booking on the turn that completed it.
// Both run in the background and never change or delay the reply.
func (r *Router) afterTurn(ctx context.Context, userID int64, turn model.BookingTurn) {
	if !turn.Completed {
		return
	}

	event := model.AppointmentConfirmedEvent{
		UserID:         userID,
		ConfirmationID: model.Deref(turn.Data.ConfirmationID),
		Reason:         model.Deref(turn.Data.Problem),
		RequestedDate:  model.Deref(turn.Data.Date),
		TimeSlot:       model.Deref(turn.Data.TimeSlot),
		Attachments:    len(turn.Data.Attachments),
		ConfirmedAt:    r.now().UTC(),
	}
	correlation := correlationID(ctx)

	if r.appointments != nil && r.appointments.Enabled() {
		r.background(ctx, func(ctx context.Context) {
			if _, err := r.appointments.Record(ctx, userID, turn); err != nil {
				r.log.Error("Failed to record appointment", "user_id", userID, "confirmation_id", event.ConfirmationID, "error", err)
			}
		})
	}
	r.background(ctx, func(ctx context.Context) {
		if err := r.publisher.PublishAppointmentConfirmed(ctx, correlation, event); err != nil {
			r.log.Error("Failed to publish appointment confirmation", "user_id", userID, "confirmation_id", event.ConfirmationID, "error", err)
		}
	})
}

func (r *Router) publishEmergency(ctx context.Context, userID int64, assessment model.EmergencyAssessment) {
	event := model.EmergencyEvent{
		UserID:        userID,
		SeverityScore: assessment.SeverityScore,
		Conditions:    assessment.ConditionsDetected,
		DetectedAt:    r.now().UTC(),
	}
	correlation := correlationID(ctx)

	r.background(ctx, func(ctx context.Context) {
		if err := r.publisher.PublishEmergency(ctx, correlation, event); err != nil {
			r.log.Error("Failed to publish emergency", "user_id", userID, "severity", event.SeverityScore, "error", err)
		}
	})
}

// background runs job detached from the request's cancellation, bounded by
// sideEffectTimeout. Request-scoped values stay visible to job.
func (r *Router) background(ctx context.Context, job func(ctx context.Context)) {
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.sideEffectTimeout)
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		defer cancel()
		job(jobCtx)
	}()
}

// Drain waits for in-flight background jobs. It returns ctx.Err() if ctx ends
// first.
func (r *Router) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func correlationID(ctx context.Context) string {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
