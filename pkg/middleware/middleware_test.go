package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "medcompanion/pkg/errors"
	httputil "medcompanion/pkg/http"
	"medcompanion/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteMessage(w, "ok")
	})
}

func decodeError(t *testing.T, body io.Reader) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp
}

func TestRequestLogging_SetsRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generated when absent", incoming: ""},
		{name: "reused when supplied", incoming: "req-123", wantSame: true},
		{name: "regenerated when too long", incoming: strings.Repeat("x", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(HeaderRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if seen == "" {
				t.Fatal("expected request id on context")
			}
			if got := rec.Header().Get(HeaderRequestID); got != seen {
				t.Errorf("response header %q does not match context %q", got, seen)
			}
			if tt.wantSame && seen != tt.incoming {
				t.Errorf("expected %q to be reused, got %q", tt.incoming, seen)
			}
			if !tt.wantSame && seen == tt.incoming {
				t.Errorf("expected a generated id, got %q", seen)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp := decodeError(t, rec.Body); resp.Code != apperrors.CodeInternal {
		t.Errorf("expected code %s, got %s", apperrors.CodeInternal, resp.Code)
	}
}

func TestContentTypeValidation(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{name: "json post", method: http.MethodPost, contentType: "application/json", wantStatus: http.StatusOK},
		{name: "json with charset", method: http.MethodPost, contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "form post", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
		{name: "missing header", method: http.MethodPost, contentType: "", wantStatus: http.StatusUnsupportedMediaType},
		{name: "get ignores header", method: http.MethodGet, contentType: "", wantStatus: http.StatusOK},
		{name: "delete ignores header", method: http.MethodDelete, contentType: "", wantStatus: http.StatusOK},
	}

	h := ContentTypeValidation(logger.Discard())(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	readAll := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			_ = httputil.WriteError(w, apperrors.PayloadTooLarge(16))
			return
		}
		_ = httputil.WriteMessage(w, "ok")
	})
	h := MaxRequestSize(16)(readAll)

	tests := []struct {
		name       string
		body       string
		unknownLen bool
		wantStatus int
	}{
		{name: "within limit", body: `{"a":1}`, wantStatus: http.StatusOK},
		{name: "declared too large", body: strings.Repeat("a", 64), wantStatus: http.StatusRequestEntityTooLarge},
		{name: "undeclared too large", body: strings.Repeat("a", 64), unknownLen: true, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.unknownLen {
				req.ContentLength = -1
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		_ = httputil.WriteMessage(w, "too late")
	})

	rec := httptest.NewRecorder()
	RequestTimeout(20*time.Millisecond)(slow).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	if resp := decodeError(t, rec.Body); resp.Code != apperrors.CodeTimeout {
		t.Errorf("expected code %s, got %s", apperrors.CodeTimeout, resp.Code)
	}
}

func TestRequestTimeout_FastHandlerPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestTimeout(time.Second)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequestTimeout_PanicReachesRecovery(t *testing.T) {
	h := Recovery(logger.Discard())(RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("inside timeout")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestUserRateLimit(t *testing.T) {
	limiter := NewUserRateLimiter(2, time.Minute, nil, logger.Discard())
	defer limiter.Stop()
	h := UserRateLimit(limiter)(okHandler())

	send := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil)
		if user != "" {
			req.Header.Set(HeaderUserID, user)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := send("1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "60" {
		t.Errorf("expected Retry-After 60, got %q", got)
	}

	if rec := send("2"); rec.Code != http.StatusOK {
		t.Errorf("other users must have their own budget, got %d", rec.Code)
	}
	for i := 0; i < 5; i++ {
		if rec := send(""); rec.Code != http.StatusOK {
			t.Errorf("anonymous requests are not limited, got %d", rec.Code)
		}
	}
}

func TestUserRateLimiter_WindowSlides(t *testing.T) {
	limiter := NewUserRateLimiter(1, 20*time.Millisecond, nil, logger.Discard())
	defer limiter.Stop()

	if !limiter.Allow("u") {
		t.Fatal("first request must pass")
	}
	if limiter.Allow("u") {
		t.Fatal("second request inside the window must be refused")
	}
	time.Sleep(30 * time.Millisecond)
	if !limiter.Allow("u") {
		t.Fatal("request after the window must pass")
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		window time.Duration
		want   string
	}{
		{window: time.Minute, want: "60"},
		{window: 500 * time.Millisecond, want: "1"},
		{window: 0, want: "1"},
	}
	for _, tt := range tests {
		if got := retryAfterSeconds(tt.window); got != tt.want {
			t.Errorf("retryAfterSeconds(%s) = %q, want %q", tt.window, got, tt.want)
		}
	}
}

func countingHandler(calls *int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		_ = httputil.WriteJSON(w, status, map[string]int32{"call": n})
	})
}

func idempotentRequest(user, key, path string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	req.Header.Set(HeaderUserID, user)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	return req
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, "")(countingHandler(&calls, http.StatusOK))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, idempotentRequest("1", "abc", "/api/v1/chat"))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, idempotentRequest("1", "abc", "/api/v1/chat"))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body %q differs from original %q", second.Body.String(), first.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("expected replay marker header")
	}
}

func TestIdempotency_KeyScope(t *testing.T) {
	tests := []struct {
		name      string
		second    *http.Request
		wantCalls int32
	}{
		{name: "no key is never cached", second: idempotentRequest("1", "", "/api/v1/chat"), wantCalls: 2},
		{name: "different user", second: idempotentRequest("2", "abc", "/api/v1/chat"), wantCalls: 2},
		{name: "different path", second: idempotentRequest("1", "abc", "/api/v1/appointments/process"), wantCalls: 2},
		{name: "same scope", second: idempotentRequest("1", "abc", "/api/v1/chat"), wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewInMemoryIdempotencyStore(time.Hour)
			defer store.Stop()

			var calls int32
			h := Idempotency(store, HeaderIdempotencyKey)(countingHandler(&calls, http.StatusOK))

			firstKey := "abc"
			if tt.second.Header.Get(HeaderIdempotencyKey) == "" {
				firstKey = ""
			}
			h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("1", firstKey, "/api/v1/chat"))
			h.ServeHTTP(httptest.NewRecorder(), tt.second)

			if calls != tt.wantCalls {
				t.Errorf("expected %d handler calls, got %d", tt.wantCalls, calls)
			}
		})
	}
}

func TestIdempotency_ErrorsAreNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, "")(countingHandler(&calls, http.StatusBadRequest))

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("1", "k", "/api/v1/chat"))
	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("1", "k", "/api/v1/chat"))

	if calls != 2 {
		t.Errorf("expected failed responses to be retried, handler ran %d times", calls)
	}
}

func TestIdempotency_ConcurrentDuplicateConflicts(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	release := make(chan struct{})
	entered := make(chan struct{})
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_ = httputil.WriteMessage(w, "done")
	}))

	var wg sync.WaitGroup
	first := httptest.NewRecorder()
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.ServeHTTP(first, idempotentRequest("1", "dup", "/api/v1/chat"))
	}()
	<-entered

	second := httptest.NewRecorder()
	h.ServeHTTP(second, idempotentRequest("1", "dup", "/api/v1/chat"))
	close(release)
	wg.Wait()

	if second.Code != http.StatusConflict {
		t.Errorf("expected 409 for in-flight duplicate, got %d", second.Code)
	}
	if first.Code != http.StatusOK {
		t.Errorf("expected original request to succeed, got %d", first.Code)
	}
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Stop()

	store.Set("k", &CachedResponse{StatusCode: http.StatusOK})
	if _, ok := store.Get("k"); !ok {
		t.Fatal("expected fresh entry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}

	store.Stop()
	store.Stop()
}
