// Package ratelimit provides per-key token-bucket admission control.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// idleRefillPeriods is how many full-refill periods a bucket may sit
	// untouched before the janitor evicts it.
	idleRefillPeriods = 10
	// defaultSweepInterval is how often the janitor scans for idle buckets.
	defaultSweepInterval = time.Minute
)

// bucket tracks the remaining tokens for one key and when they were last
// refilled. Read-modify-write of the pair is done under the limiter lock.
type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter admits requests while tokens are available, refilling each key's
// bucket continuously at rps tokens per second up to burst. State is
// process-lifetime only; idle buckets are swept to bound memory under many
// distinct keys.
type Limiter struct {
	rps   float64
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket

	now    func() time.Time
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a limiter refilling rps tokens per second with the given
// burst capacity and starts its background sweeper.
func New(rps float64, burst int) *Limiter {
	l := &Limiter{
		rps:     rps,
		burst:   burst,
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.janitor(defaultSweepInterval)
	return l
}

// newWithClock creates a limiter without a sweeper, using the supplied
// clock.
func newWithClock(rps float64, burst int, now func() time.Time) *Limiter {
	return &Limiter{
		rps:     rps,
		burst:   burst,
		buckets: make(map[string]*bucket),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

// Allow reports whether one request for key may proceed, consuming a token
// when it does. The first call for a fresh key initializes the bucket at
// capacity minus the token this call consumes.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists {
		l.buckets[key] = &bucket{tokens: float64(l.burst) - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	tokens := b.tokens + elapsed*l.rps
	if tokens > float64(l.burst) {
		tokens = float64(l.burst)
	}

	allowed := tokens >= 1.0
	if allowed {
		tokens--
	}
	// The updated (tokens, timestamp) pair is kept either way so refill
	// accrues from this observation.
	b.tokens = tokens
	b.last = now
	return allowed
}

// Stop terminates the background sweeper.
func (l *Limiter) Stop() {
	close(l.stopCh)
	l.wg.Wait()
}

// janitor periodically evicts buckets idle long enough to have fully
// refilled many times over; keeping them would change no admission decision.
func (l *Limiter) janitor(interval time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep removes buckets whose last access is older than the idle TTL.
func (l *Limiter) sweep() {
	ttl := l.idleTTL()
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if b.last.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// idleTTL is idleRefillPeriods times the time a drained bucket needs to
// refill completely.
func (l *Limiter) idleTTL() time.Duration {
	if l.rps <= 0 {
		return idleRefillPeriods * time.Minute
	}
	refill := time.Duration(float64(l.burst) / l.rps * float64(time.Second))
	if refill < time.Second {
		refill = time.Second
	}
	return idleRefillPeriods * refill
}

// size returns the current bucket count. Test hook.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
