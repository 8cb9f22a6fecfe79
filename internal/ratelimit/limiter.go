// Package ratelimit throttles MCP tool calls with per-key token buckets.
package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrLimited is wrapped by CheckLimit when a tool is over its budget.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter is a per-key token bucket. Every key starts with a full burst
// and refills at rate tokens per second. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   int
	nowFunc func() time.Time
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a limiter with rate tokens per second and the given burst.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// PerMinute is NewLimiter with the rate expressed per minute.
func PerMinute(n float64, burst int) *Limiter {
	return NewLimiter(n/60, burst)
}

// Allow spends one token for key if one is available.
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.take(key)
	return ok
}

// take spends a token or reports how long until one is available. The
// wait is zero when the bucket can never refill.
func (l *Limiter) take(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(l.burst), b.tokens+l.rate*elapsed)
		b.lastCheck = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if l.rate <= 0 {
		return false, 0
	}
	wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
	return false, wait
}

// ToolLimiters maps tool names to their limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters returns the default per-tool budgets. Reads are cheap;
// calls that write a save or a history entry are tighter.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"puzzle_new_run": PerMinute(10, 3),
		"puzzle_state":   NewLimiter(1, 10),
		"puzzle_answer":  PerMinute(60, 5),
		"puzzle_hint":    PerMinute(30, 5),
		"puzzle_seeds":   NewLimiter(1, 10),
		"assess_analyze": PerMinute(10, 3),
		"assess_history": NewLimiter(1, 10),
	}
}

// CheckLimit spends one call for toolName. Tools without a limiter are
// never limited. The returned error wraps ErrLimited.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}

	allowed, wait := limiter.take(toolName)
	if allowed {
		return nil
	}
	if wait > 0 {
		return fmt.Errorf("%w for %s, retry in %s", ErrLimited, toolName, wait.Round(time.Millisecond))
	}
	return fmt.Errorf("%w for %s", ErrLimited, toolName)
}
