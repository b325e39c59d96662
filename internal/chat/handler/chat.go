package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"medcompanion/internal/appointments/service"
	"medcompanion/internal/chat/validator"
	"medcompanion/internal/router"
	apperrors "medcompanion/pkg/errors"
	httputil "medcompanion/pkg/http"
	"medcompanion/pkg/logger"
	"medcompanion/pkg/model"
	"medcompanion/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

const (
	WelcomeMessage = "Welcome to Med Companion API"
	ResetMessage   = "Booking session reset"
)

type MessageRouter interface {
	Route(ctx context.Context, userID int64, text string) (*router.Decision, error)
	Book(ctx context.Context, userID int64, text string) model.BookingTurn
	Reset(userID int64)
}

type ChatHandler struct {
	router       MessageRouter
	appointments service.AppointmentService
	validator    *validator.RequestValidator
	log          *logger.Logger
}

func NewChatHandler(router MessageRouter, appointments service.AppointmentService, validator *validator.RequestValidator, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		router:       router,
		appointments: appointments,
		validator:    validator,
		log:          log,
	}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ChatRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Chat", err)
		return
	}

	req.Message = sanitizer.NormalizeMessage(req.Message)
	if err := h.validator.ValidateChat(&req); err != nil {
		h.writeError(w, "Chat", err)
		return
	}

	userID := model.DefaultChatUserID
	if req.UserID != nil {
		userID = *req.UserID
	}

	decision, err := h.router.Route(r.Context(), userID, req.Message)
	if err != nil {
		h.writeError(w, "Chat", err)
		return
	}

	if err := httputil.WriteSuccess(w, decision.ChatResponse()); err != nil {
		h.log.Error("failed to write success response", "handler", "Chat", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ChatHandler) ProcessAppointment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AppointmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ProcessAppointment", err)
		return
	}

	if err := h.validator.ValidateAppointment(&req); err != nil {
		h.writeError(w, "ProcessAppointment", err)
		return
	}

	turn := h.router.Book(r.Context(), req.UserID, req.Message)

	if err := httputil.WriteSuccess(w, model.AppointmentResponse{
		Response: turn.Response,
		State:    turn.State,
		Options:  turn.Options,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "ProcessAppointment", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ChatHandler) ResetAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := strconv.ParseInt(ps.ByName("user_id"), 10, 64)
	if err != nil {
		h.writeError(w, "ResetAppointment", apperrors.InvalidInput("invalid user_id parameter: "+ps.ByName("user_id")))
		return
	}

	h.router.Reset(userID)

	if err := httputil.WriteMessage(w, ResetMessage); err != nil {
		h.log.Error("failed to write message response", "handler", "ResetAppointment", "operation", "WriteMessage", "error", err)
	}
}

func (h *ChatHandler) GetAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointment, err := h.appointments.GetByConfirmationID(r.Context(), ps.ByName("confirmation_id"))
	if err != nil {
		h.writeError(w, "GetAppointment", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAppointment", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ChatHandler) ListUserAppointments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := httputil.ParsePositiveID("user_id", ps.ByName("user_id"))
	if err != nil {
		h.writeError(w, "ListUserAppointments", err)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			h.writeError(w, "ListUserAppointments", apperrors.InvalidInput("invalid limit parameter: "+limitStr))
			return
		}
	}

	appointments, total, err := h.appointments.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.writeError(w, "ListUserAppointments", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.AppointmentList{Data: appointments, Total: total}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListUserAppointments", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ChatHandler) Root(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if err := httputil.WriteMessage(w, WelcomeMessage); err != nil {
		h.log.Error("failed to write message response", "handler", "Root", "operation", "WriteMessage", "error", err)
	}
}

func (h *ChatHandler) writeError(w http.ResponseWriter, handler string, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		err = verrs.AppError()
	case errors.Is(err, context.DeadlineExceeded):
		err = apperrors.Timeout("Request timed out")
	case errors.Is(err, context.Canceled):
		err = apperrors.New(apperrors.CodeTimeout, "Request cancelled", 499)
	}

	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ChatHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/", h.Root)
	router.POST("/api/v1/chat", h.Chat)
	router.POST("/api/v1/chat/", h.Chat)
	router.POST("/api/v1/appointments/process", h.ProcessAppointment)
	router.DELETE("/api/v1/appointments/reset/:user_id", h.ResetAppointment)
	router.GET("/api/v1/appointments/:confirmation_id", h.GetAppointment)
	router.GET("/api/v1/users/:user_id/appointments", h.ListUserAppointments)
}
