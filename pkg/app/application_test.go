package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"medcompanion/internal/appointments/service"
	"medcompanion/internal/appointments/session"
	"medcompanion/internal/assistant"
	"medcompanion/internal/chat/handler"
	"medcompanion/internal/chat/validator"
	"medcompanion/internal/router"
	"medcompanion/internal/triage/emergency"
	"medcompanion/internal/triage/intent"
	"medcompanion/internal/triage/sentiment"
	"medcompanion/pkg/client"
	"medcompanion/pkg/config"
	"medcompanion/pkg/logger"
	"medcompanion/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                   "0",
		RateLimitRequests:      50,
		RateLimitWindow:        time.Minute,
		RequestTimeout:         5 * time.Second,
		IdempotencyTTL:         time.Minute,
		MaxRequestSize:         config.DefaultMaxRequestSize,
		ReadTimeout:            time.Second,
		WriteTimeout:           time.Second,
		IdleTimeout:            time.Second,
		ShutdownTimeout:        time.Second,
		BookingIntentThreshold: config.DefaultBookingIntentThreshold,
		Log:                    logger.Discard(),
		Client:                 client.NewClient(),
	}
}

type harness struct {
	app      *Application
	server   *httptest.Server
	client   *client.CompanionClient
	registry *session.Registry
}

func newHarness(t *testing.T, mutate func(cfg *config.Config)) *harness {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	registry := session.NewRegistry(0, cfg.Log)
	appointments := service.NewAppointmentService(nil, cfg.Log)
	r := router.New(
		registry,
		emergency.NewDetector(),
		intent.NewKeywordClassifier(nil),
		sentiment.NewAnalyzer(),
		assistant.NewResponder(nil, cfg.Log),
		cfg.Log,
		router.WithBookingThreshold(cfg.BookingIntentThreshold),
		router.WithAppointments(appointments),
	)

	a := NewApplication(cfg)
	a.OnShutdown("sessions", func() error {
		registry.Stop()
		return nil
	})
	a.SetApp(
		handler.NewHealthHandler(nil, registry, nil, cfg.Log),
		handler.NewChatHandler(r, appointments, validator.NewRequestValidator(cfg.Log), cfg.Log),
	)

	server := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		server.Close()
		a.Stop()
	})

	return &harness{
		app:      a,
		server:   server,
		client:   client.NewCompanionClient(server.URL),
		registry: registry,
	}
}

func TestEndToEnd_ChatBooking(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	steps := []struct {
		message   string
		wantState model.BookingState
	}{
		{"I'd like to book an appointment", model.StateProblemSelection},
		{"Joint pain in my knee", model.StateDateSelection},
		{"next Tuesday", model.StateTimeSelection},
		{"Morning", model.StateFileUpload},
		{"no files", model.StateCompleted},
	}

	var last *model.ChatResponse
	for _, step := range steps {
		resp, err := h.client.Chat(ctx, 42, step.message, "")
		if err != nil {
			t.Fatalf("%q: %v", step.message, err)
		}
		if resp.Intent.State == nil || *resp.Intent.State != step.wantState {
			t.Fatalf("%q: expected state %s, got %+v", step.message, step.wantState, resp.Intent)
		}
		last = resp
	}
	if !strings.Contains(last.Response, "Joint/Muscle pain") || !strings.Contains(last.Response, "next Tuesday") {
		t.Errorf("summary missing booking details: %q", last.Response)
	}

	resp, err := h.client.Chat(ctx, 42, "thank you so much", "")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Intent.State != nil || resp.IsEmergency {
		t.Errorf("expected a general reply after completion, got %+v", resp)
	}
	if h.registry.Contains(42) {
		t.Error("expected completed session to be closed")
	}
}

func TestEndToEnd_EmergencyMidBooking(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	if _, err := h.client.ProcessAppointment(ctx, 7, "start", ""); err != nil {
		t.Fatal(err)
	}

	resp, err := h.client.Chat(ctx, 7, "I suddenly have chest pain and shortness of breath", "")
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsEmergency || resp.Intent.Intent != model.IntentEmergencyAlert {
		t.Fatalf("expected emergency, got %+v", resp)
	}

	m, ok := h.registry.Get(7)
	if !ok || m.State() != model.StateProblemSelection {
		t.Error("emergency must leave the booking session untouched")
	}
}

func TestEndToEnd_IdempotentBookingTurn(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first, err := h.client.ProcessAppointment(ctx, 9, "start", "turn-1")
	if err != nil {
		t.Fatal(err)
	}
	replay, err := h.client.ProcessAppointment(ctx, 9, "start", "turn-1")
	if err != nil {
		t.Fatal(err)
	}
	if first.State != replay.State || replay.State != model.StateProblemSelection {
		t.Errorf("expected replayed PROBLEM_SELECTION, got %s then %s", first.State, replay.State)
	}

	next, err := h.client.ProcessAppointment(ctx, 9, "Allergies", "turn-2")
	if err != nil {
		t.Fatal(err)
	}
	if next.State != model.StateDateSelection {
		t.Errorf("expected DATE_SELECTION after a fresh key, got %s", next.State)
	}
}

func TestEndToEnd_ResetAndLookup(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	if _, err := h.client.ProcessAppointment(ctx, 3, "start", ""); err != nil {
		t.Fatal(err)
	}
	if err := h.client.ResetAppointment(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if err := h.client.ResetAppointment(ctx, 3); err != nil {
		t.Errorf("reset of an absent session must succeed: %v", err)
	}
	if h.registry.Contains(3) {
		t.Error("expected session removed")
	}

	_, err := h.client.GetAppointment(ctx, "APT-12345678")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 with persistence disabled, got %v", err)
	}

	page, err := h.client.ListAppointments(ctx, 3, 5)
	if err != nil {
		t.Fatalf("list must succeed with persistence disabled: %v", err)
	}
	if page.Total != 0 || len(page.Data) != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
}

func TestEndToEnd_Middleware(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.RateLimitRequests = 2
	})
	ctx := context.Background()

	t.Run("health bypasses app middleware", func(t *testing.T) {
		resp, err := h.client.HTTP().GET(ctx, "/health")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if resp.Header.Get("X-Request-ID") == "" {
			t.Error("expected a request id header")
		}
	})

	t.Run("rejects non json bodies", func(t *testing.T) {
		resp, err := h.client.HTTP().POSTRaw(ctx, "/api/v1/chat", []byte("message=hi"), map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		})
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnsupportedMediaType {
			t.Errorf("expected 415, got %d", resp.StatusCode)
		}
	})

	t.Run("rate limits per user", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if _, err := h.client.Chat(ctx, 77, "hello", ""); err != nil {
				t.Fatalf("request %d: %v", i, err)
			}
		}
		_, err := h.client.Chat(ctx, 77, "hello", "")
		if err == nil || !strings.Contains(err.Error(), "429") {
			t.Errorf("expected 429, got %v", err)
		}
		if _, err := h.client.Chat(ctx, 78, "hello", ""); err != nil {
			t.Errorf("other users must not be limited: %v", err)
		}
	})
}

func TestStop_RunsHooksInReverseOrder(t *testing.T) {
	a := NewApplication(testConfig())
	var order []string
	a.OnShutdown("first", func() error {
		order = append(order, "first")
		return nil
	})
	a.OnShutdown("second", func() error {
		order = append(order, "second")
		return context.Canceled
	})

	a.Stop()
	a.Stop()

	if strings.Join(order, ",") != "second,first" {
		t.Errorf("unexpected hook order %v", order)
	}
}
