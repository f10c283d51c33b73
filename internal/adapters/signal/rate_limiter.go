package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/jonboulle/clockwork"
)

// JoinRateLimiter caps join attempts per connection in a sliding window,
// which makes guessing six-digit codes slow.
type JoinRateLimiter struct {
	mu       sync.Mutex
	history  map[domain.ConnID][]time.Time
	limit    int
	interval time.Duration
	clock    clockwork.Clock
}

// NewJoinRateLimiter returns nil when limit is not positive; a nil
// limiter allows everything.
func NewJoinRateLimiter(limit int, interval time.Duration, clock clockwork.Clock) *JoinRateLimiter {
	if limit <= 0 {
		return nil
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &JoinRateLimiter{
		history:  make(map[domain.ConnID][]time.Time),
		limit:    limit,
		interval: interval,
		clock:    clock,
	}
}

func (rl *JoinRateLimiter) Allow(id domain.ConnID) bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[id]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return false
	}

	rl.history[id] = append(fresh, now)
	return true
}

// Forget drops the history of a closed connection.
func (rl *JoinRateLimiter) Forget(id domain.ConnID) {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, id)
}
