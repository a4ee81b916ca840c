package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates an operation until it may proceed.
type Limiter interface {
	Wait(ctx context.Context) error
}

// MinInterval enforces a minimum time between consecutive operations. The
// first call never waits. Batch lookups use it to stay polite to upstream
// hosts.
type MinInterval struct {
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewMinInterval returns a gate that spaces calls by at least d.
func NewMinInterval(d time.Duration) *MinInterval {
	return &MinInterval{Interval: d}
}

// Wait blocks until Interval has elapsed since the previous Wait returned,
// or returns early if the context is canceled.
func (m *MinInterval) Wait(ctx context.Context) error {
	if m == nil || m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.last.IsZero() {
		wait := m.last.Add(m.Interval).Sub(m.clock())
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	m.last = m.clock()
	return nil
}

func (m *MinInterval) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}
