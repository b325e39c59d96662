package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	httputil "medcompanion/pkg/http"
	kafkamw "medcompanion/pkg/kafka/middleware"
	"medcompanion/pkg/logger"
)

const readyPingTimeout = 2 * time.Second

type HealthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database,omitempty"`
	Sessions *int              `json:"sessions,omitempty"`
	Events   *kafkamw.Snapshot `json:"events,omitempty"`
}

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// SessionCounter is satisfied by *session.Registry.
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	db       Pinger
	sessions SessionCounter
	metrics  *kafkamw.Metrics
	log      *logger.Logger
}

// NewHealthHandler accepts nil for db and metrics when persistence or
// events are disabled.
func NewHealthHandler(db Pinger, sessions SessionCounter, metrics *kafkamw.Metrics, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:       db,
		sessions: sessions,
		metrics:  metrics,
		log:      log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := HealthResponse{Status: "ready", Database: "disabled"}
	if h.sessions != nil {
		n := h.sessions.Len()
		resp.Sessions = &n
	}
	if h.metrics != nil {
		s := h.metrics.Snapshot()
		resp.Events = &s
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
		defer cancel()

		if err := h.db.Ping(ctx, nil); err != nil {
			h.log.Error("Database health check failed",
				"error", err,
				"path", r.URL.Path,
			)
			resp.Status = "unavailable"
			resp.Database = "error"
			if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, resp); writeErr != nil {
				h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
			}
			return
		}
		resp.Database = "ok"
	}

	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
