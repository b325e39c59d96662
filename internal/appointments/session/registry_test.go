package session

import (
	"sync"
	"testing"
	"time"

	"medcompanion/pkg/logger"
	"medcompanion/pkg/model"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	})
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGetOrCreate_ReturnsSameMachine(t *testing.T) {
	r := NewRegistry(0, newTestLogger())
	defer r.Stop()

	first := r.GetOrCreate(7)
	second := r.GetOrCreate(7)
	if first != second {
		t.Fatal("expected the same machine for repeated GetOrCreate")
	}
	if first.State() != model.StateInitiate {
		t.Errorf("expected fresh machine in INITIATE, got %s", first.State())
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 session, got %d", r.Len())
	}
}

func TestGetOrCreate_DistinctUsers(t *testing.T) {
	r := NewRegistry(0, newTestLogger())
	defer r.Stop()

	a := r.GetOrCreate(1)
	b := r.GetOrCreate(2)
	if a == b {
		t.Fatal("different users must not share a machine")
	}

	a.Process("Book appointment")
	if b.State() != model.StateInitiate {
		t.Errorf("advancing user 1 changed user 2's machine: %s", b.State())
	}
}

func TestGetOrCreate_Concurrent(t *testing.T) {
	r := NewRegistry(0, newTestLogger())
	defer r.Stop()

	const workers = 64
	results := make(chan any, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- r.GetOrCreate(42)
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var first any
	for m := range results {
		if first == nil {
			first = m
			continue
		}
		if m != first {
			t.Fatal("concurrent GetOrCreate built more than one machine")
		}
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 session, got %d", r.Len())
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry(0, newTestLogger())
	defer r.Stop()

	if _, ok := r.Get(3); ok {
		t.Fatal("expected no session before creation")
	}
	if r.Len() != 0 {
		t.Fatalf("Get must not create a session, len = %d", r.Len())
	}

	created := r.GetOrCreate(3)
	got, ok := r.Get(3)
	if !ok || got != created {
		t.Fatal("expected Get to return the created machine")
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name   string
		seed   []int64
		delete int64
		want   int
	}{
		{name: "existing session", seed: []int64{1, 2}, delete: 1, want: 1},
		{name: "absent session", seed: []int64{1, 2}, delete: 99, want: 2},
		{name: "empty registry", seed: nil, delete: 5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(0, newTestLogger())
			defer r.Stop()
			for _, id := range tt.seed {
				r.GetOrCreate(id)
			}

			r.Delete(tt.delete)

			if r.Contains(tt.delete) {
				t.Errorf("session %d still present after delete", tt.delete)
			}
			if r.Len() != tt.want {
				t.Errorf("expected %d sessions, got %d", tt.want, r.Len())
			}
		})
	}
}

func TestDelete_ThenGetOrCreateStartsFresh(t *testing.T) {
	r := NewRegistry(0, newTestLogger())
	defer r.Stop()

	m := r.GetOrCreate(9)
	m.Process("Book appointment")
	r.Delete(9)

	fresh := r.GetOrCreate(9)
	if fresh == m {
		t.Fatal("expected a new machine after delete")
	}
	if fresh.State() != model.StateInitiate {
		t.Errorf("expected INITIATE, got %s", fresh.State())
	}
}

func TestContains_HasNoSideEffects(t *testing.T) {
	r := NewRegistry(0, newTestLogger())
	defer r.Stop()

	if r.Contains(11) {
		t.Fatal("expected no session")
	}
	if r.Len() != 0 {
		t.Fatalf("Contains created a session, len = %d", r.Len())
	}
}

func TestIdleTTL_ExpiresUntouchedSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(time.Minute, newTestLogger(), WithClock(clock.Now), WithJanitorInterval(time.Hour))
	defer r.Stop()

	stale := r.GetOrCreate(1)
	clock.Advance(30 * time.Second)
	r.GetOrCreate(2)
	clock.Advance(45 * time.Second)

	if r.Contains(1) {
		t.Error("expected user 1 to be idle-expired")
	}
	if !r.Contains(2) {
		t.Error("expected user 2 to still be live")
	}

	if n := r.evictIdle(); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 session after eviction, got %d", r.Len())
	}

	if fresh := r.GetOrCreate(1); fresh == stale {
		t.Error("expected a new machine after expiry")
	}
}

func TestIdleTTL_TouchKeepsSessionAlive(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(time.Minute, newTestLogger(), WithClock(clock.Now), WithJanitorInterval(time.Hour))
	defer r.Stop()

	m := r.GetOrCreate(1)
	for i := 0; i < 5; i++ {
		clock.Advance(50 * time.Second)
		if got, ok := r.Get(1); !ok || got != m {
			t.Fatalf("step %d: session expired despite being touched", i)
		}
	}
}

func TestIdleTTL_ZeroNeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(0, newTestLogger(), WithClock(clock.Now))
	defer r.Stop()

	r.GetOrCreate(1)
	clock.Advance(24 * 365 * time.Hour)

	if !r.Contains(1) {
		t.Error("sessions must live until deleted when idle TTL is zero")
	}
	if n := r.evictIdle(); n != 0 {
		t.Errorf("expected no evictions, got %d", n)
	}
}

func TestJanitor_EvictsInBackground(t *testing.T) {
	r := NewRegistry(10*time.Millisecond, newTestLogger(), WithJanitorInterval(5*time.Millisecond))
	defer r.Stop()

	r.GetOrCreate(1)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.Len() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("janitor did not evict idle session, len = %d", r.Len())
}

func TestStop_Idempotent(t *testing.T) {
	r := NewRegistry(time.Minute, newTestLogger())
	r.Stop()
	r.Stop()
}

func TestConcurrentMixedOperations(t *testing.T) {
	r := NewRegistry(0, newTestLogger())
	defer r.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := int64(i % 5)
			switch i % 4 {
			case 0:
				r.GetOrCreate(id).Process("yes")
			case 1:
				r.Delete(id)
			case 2:
				r.Contains(id)
			case 3:
				if m, ok := r.Get(id); ok {
					m.State()
				}
			}
		}(i)
	}
	wg.Wait()

	if r.Len() > 5 {
		t.Errorf("expected at most 5 sessions, got %d", r.Len())
	}
}
