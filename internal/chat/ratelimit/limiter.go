// Package ratelimit gates chat submissions with a fixed-window counter: the
// count resets wholesale when the window elapses, deliberately not a token
// bucket. Limits are parameters of every call, so different call sites can
// run different budgets against the same limiter.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a session may consume one more request.
type Limiter interface {
	// TryConsume increments the session's counter and reports whether the
	// request is allowed. A denied call leaves the counter untouched.
	TryConsume(ctx context.Context, sessionID string, maxPerWindow int, window time.Duration, now time.Time) (bool, error)
}

// rateWindow is the per-session state: the start of the current window and
// the number of requests consumed inside it.
type rateWindow struct {
	windowStart time.Time
	count       int
}

// MemoryLimiter keeps windows in process memory, keyed by session id.
// Windows are created on first use and live until the limiter is dropped.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*rateWindow),
	}
}

func (l *MemoryLimiter) TryConsume(_ context.Context, sessionID string, maxPerWindow int, window time.Duration, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[sessionID]
	if !ok {
		w = &rateWindow{windowStart: now}
		l.windows[sessionID] = w
	}

	if now.Sub(w.windowStart) > window {
		w.windowStart = now
		w.count = 0
	}

	if w.count < maxPerWindow {
		w.count++
		return true, nil
	}

	return false, nil
}
