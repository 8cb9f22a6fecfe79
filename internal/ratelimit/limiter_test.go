package ratelimit

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func fixedClock(l *Limiter, now *time.Time) {
	l.nowFunc = func() time.Time { return *now }
}

func TestAllow_Burst(t *testing.T) {
	tests := []struct {
		name  string
		burst int
	}{
		{"single", 1},
		{"three", 3},
		{"ten", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Now()
			l := NewLimiter(1, tt.burst)
			fixedClock(l, &now)

			for i := 0; i < tt.burst; i++ {
				if !l.Allow("k") {
					t.Fatalf("request %d should be allowed within burst", i+1)
				}
			}
			if l.Allow("k") {
				t.Error("request past burst should be rejected")
			}
		})
	}
}

func TestAllow_Refill(t *testing.T) {
	now := time.Now()
	l := NewLimiter(10, 2)
	fixedClock(l, &now)

	l.Allow("k")
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("expected rejection after burst")
	}

	now = now.Add(50 * time.Millisecond)
	if l.Allow("k") {
		t.Error("half a token should not be enough")
	}

	now = now.Add(60 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("expected allow after refill")
	}
}

func TestAllow_RefillCapsAtBurst(t *testing.T) {
	now := time.Now()
	l := NewLimiter(100, 2)
	fixedClock(l, &now)

	l.Allow("k")
	now = now.Add(time.Hour)

	allowed := 0
	for i := 0; i < 5; i++ {
		if l.Allow("k") {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("allowed = %d after long idle, want burst 2", allowed)
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	l := NewLimiter(0, 1)
	l.Allow("a")
	if l.Allow("a") {
		t.Error("a should be exhausted")
	}
	if !l.Allow("b") {
		t.Error("b has its own bucket")
	}
}

func TestAllow_Concurrent(t *testing.T) {
	l := NewLimiter(0, 50)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("k") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestNewToolLimiters(t *testing.T) {
	limiters := NewToolLimiters()
	for _, tool := range []string{
		"puzzle_new_run", "puzzle_state", "puzzle_answer", "puzzle_hint",
		"puzzle_seeds", "assess_analyze", "assess_history",
	} {
		if limiters[tool] == nil {
			t.Errorf("no limiter for %s", tool)
		}
	}
}

func TestCheckLimit(t *testing.T) {
	now := time.Now()
	l := PerMinute(60, 1)
	fixedClock(l, &now)
	limiters := ToolLimiters{"puzzle_answer": l}

	if err := CheckLimit(limiters, "puzzle_answer"); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	err := CheckLimit(limiters, "puzzle_answer")
	if !errors.Is(err, ErrLimited) {
		t.Fatalf("second call error = %v, want ErrLimited", err)
	}
	if !strings.Contains(err.Error(), "retry in 1s") {
		t.Errorf("error = %q, want a retry hint", err)
	}

	if err := CheckLimit(limiters, "unlisted"); err != nil {
		t.Errorf("unlisted tool error = %v, want nil", err)
	}

	zero := ToolLimiters{"x": NewLimiter(0, 0)}
	err = CheckLimit(zero, "x")
	if !errors.Is(err, ErrLimited) || strings.Contains(err.Error(), "retry") {
		t.Errorf("zero-rate error = %v", err)
	}
}
