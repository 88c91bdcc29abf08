package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
	})
}

func TestRateLimiter_AllowsFreshKey(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	allowed, _ := rl.Allow("10.0.0.1", "reader@example.com")

	assert.True(t, allowed)
}

func TestRateLimiter_LocksAfterMaxFailures(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1", "reader@example.com")
	rl.RecordFailure("10.0.0.1", "reader@example.com")
	locked, retryAfter := rl.RecordFailure("10.0.0.1", "reader@example.com")

	assert.True(t, locked)
	assert.Equal(t, time.Minute, retryAfter)

	allowed, _ := rl.Allow("10.0.0.1", "reader@example.com")
	assert.False(t, allowed)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.RecordFailure("10.0.0.1", "reader@example.com")
	}

	// Different IP and different email both still pass
	allowed, _ := rl.Allow("10.0.0.2", "reader@example.com")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("10.0.0.1", "other@example.com")
	assert.True(t, allowed)
}

func TestRateLimiter_SuccessClearsRecord(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1", "reader@example.com")
	rl.RecordFailure("10.0.0.1", "reader@example.com")
	rl.RecordSuccess("10.0.0.1", "reader@example.com")

	rl.RecordFailure("10.0.0.1", "reader@example.com")
	allowed, _ := rl.Allow("10.0.0.1", "reader@example.com")

	assert.True(t, allowed)
}
