package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// LimiterTestSuite tests token-bucket admission with a fake clock.
type LimiterTestSuite struct {
	suite.Suite
	now     time.Time
	limiter *Limiter
}

// SetupTest runs before each test.
func (s *LimiterTestSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.limiter = newWithClock(5, 10, func() time.Time { return s.now })
}

// advance moves the fake clock forward.
func (s *LimiterTestSuite) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

// TestBurstThenDeny tests that a fresh key admits exactly burst calls.
func (s *LimiterTestSuite) TestBurstThenDeny() {
	for i := 0; i < 10; i++ {
		s.True(s.limiter.Allow("key"), "call %d within burst must pass", i+1)
	}
	s.False(s.limiter.Allow("key"), "11th immediate call must be denied")
}

// TestRefillAfterWait tests continuous refill at the configured rate.
func (s *LimiterTestSuite) TestRefillAfterWait() {
	for i := 0; i < 10; i++ {
		s.True(s.limiter.Allow("key"))
	}
	s.False(s.limiter.Allow("key"))

	// 0.2s at 5 rps refills one token.
	s.advance(200 * time.Millisecond)
	s.True(s.limiter.Allow("key"))
	s.False(s.limiter.Allow("key"))
}

// TestRefillCapsAtBurst tests that a long idle period does not exceed burst.
func (s *LimiterTestSuite) TestRefillCapsAtBurst() {
	for i := 0; i < 10; i++ {
		s.True(s.limiter.Allow("key"))
	}

	s.advance(time.Hour)
	for i := 0; i < 10; i++ {
		s.True(s.limiter.Allow("key"), "refilled call %d must pass", i+1)
	}
	s.False(s.limiter.Allow("key"))
}

// TestKeysAreIndependent tests that buckets do not interfere across keys.
func (s *LimiterTestSuite) TestKeysAreIndependent() {
	for i := 0; i < 10; i++ {
		s.True(s.limiter.Allow("a"))
	}
	s.False(s.limiter.Allow("a"))

	// A different key still has its full burst.
	for i := 0; i < 10; i++ {
		s.True(s.limiter.Allow("b"))
	}
}

// TestDeniedCallStillUpdatesTimestamp tests that refill accrues from the
// last observation, admitted or not.
func (s *LimiterTestSuite) TestDeniedCallStillUpdatesTimestamp() {
	for i := 0; i < 10; i++ {
		s.True(s.limiter.Allow("key"))
	}

	s.advance(100 * time.Millisecond) // half a token
	s.False(s.limiter.Allow("key"))

	s.advance(100 * time.Millisecond) // the other half
	s.True(s.limiter.Allow("key"), "fractional refills must accumulate")
}

// TestSweepEvictsIdleBuckets tests the idle-bucket eviction policy.
func (s *LimiterTestSuite) TestSweepEvictsIdleBuckets() {
	s.True(s.limiter.Allow("stale"))
	s.True(s.limiter.Allow("fresh"))
	s.Equal(2, s.limiter.size())

	// Push "stale" far beyond the idle TTL, touch "fresh" recently.
	s.advance(time.Hour)
	s.True(s.limiter.Allow("fresh"))
	s.limiter.sweep()

	s.Equal(1, s.limiter.size())
	// An evicted key starts over with a full burst.
	for i := 0; i < 10; i++ {
		s.True(s.limiter.Allow("stale"))
	}
}

// TestStop tests that a running limiter shuts down its sweeper cleanly.
func (s *LimiterTestSuite) TestStop() {
	l := New(5, 10)
	s.True(l.Allow("key"))
	l.Stop()
}

// TestLimiterTestSuite runs the test suite.
func TestLimiterTestSuite(t *testing.T) {
	suite.Run(t, new(LimiterTestSuite))
}
