package ratelimiter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (rl *SlidingWindowLimiter) Len() int {
	rl.Lock()
	defer rl.Unlock()
	return len(rl.clients)
}

func TestSlidingWindow_NonPositiveLimitRejects(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now))

	for _, limit := range []int{0, -1} {
		allowed, info := rl.Allow("k", limit, time.Minute)
		assert.False(t, allowed)
		assert.Equal(t, limit, info.Limit)
		assert.Zero(t, info.Remaining)
		assert.Equal(t, clock.Now(), info.ResetTime)
		assert.Equal(t, 60, info.RetryAfter)
	}
	assert.Equal(t, 0, rl.Len())
}

func TestSlidingWindow_AdmitsUpToLimitThenRejects(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now))

	for i := 1; i <= 3; i++ {
		allowed, info := rl.Allow("ip:10.0.0.1", 3, time.Minute)
		require.True(t, allowed, "request %d should be admitted", i)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 3-i, info.Remaining)
		assert.Zero(t, info.RetryAfter)
		assert.Equal(t, clock.Now().Add(time.Minute), info.ResetTime)
		clock.Advance(100 * time.Millisecond)
	}

	allowed, info := rl.Allow("ip:10.0.0.1", 3, time.Minute)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 60, info.RetryAfter)
}

func TestSlidingWindow_RejectionIsNotRecorded(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now))

	allowed, _ := rl.Allow("k", 1, 10*time.Second)
	require.True(t, allowed)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		allowed, _ = rl.Allow("k", 1, 10*time.Second)
		require.False(t, allowed)
	}

	// solo cuenta la petición admitida, así que la ventana se libera 10s después
	clock.Advance(6 * time.Second)
	allowed, _ = rl.Allow("k", 1, 10*time.Second)
	assert.True(t, allowed)
}

func TestSlidingWindow_RetryAfterRoundsUp(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now))

	rl.Allow("k", 1, 10*time.Second)
	clock.Advance(2500 * time.Millisecond)

	allowed, info := rl.Allow("k", 1, 10*time.Second)
	require.False(t, allowed)
	assert.Equal(t, 8, info.RetryAfter)
	assert.Equal(t, clock.Now().Add(7500*time.Millisecond), info.ResetTime)
}

func TestSlidingWindow_AdmitsAgainAfterRetryAfter(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		rl.Allow("k", 3, 60*time.Second)
		clock.Advance(300 * time.Millisecond)
	}

	allowed, info := rl.Allow("k", 3, 60*time.Second)
	require.False(t, allowed)
	require.Positive(t, info.RetryAfter)

	clock.Advance(time.Duration(info.RetryAfter) * time.Second)

	allowed, info = rl.Allow("k", 3, 60*time.Second)
	assert.True(t, allowed)
	assert.GreaterOrEqual(t, info.Remaining, 0)
}

func TestSlidingWindow_SlidesInsteadOfResetting(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now))

	rl.Allow("k", 2, 10*time.Second) // t=0
	clock.Advance(6 * time.Second)
	rl.Allow("k", 2, 10*time.Second) // t=6
	clock.Advance(5 * time.Second)   // t=11: la primera caducó, la segunda sigue contando

	allowed, info := rl.Allow("k", 2, 10*time.Second)
	require.True(t, allowed)
	assert.Equal(t, 0, info.Remaining)

	allowed, info = rl.Allow("k", 2, 10*time.Second)
	require.False(t, allowed)
	assert.Equal(t, 5, info.RetryAfter) // la de t=6 sale de la ventana en t=16
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now))

	for i := 0; i < 2; i++ {
		allowed, _ := rl.Allow("ip:1.1.1.1", 2, time.Minute)
		require.True(t, allowed)
	}
	allowed, _ := rl.Allow("ip:1.1.1.1", 2, time.Minute)
	require.False(t, allowed)

	allowed, info := rl.Allow("ip:2.2.2.2", 2, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 1, info.Remaining)
}

func TestSlidingWindow_ConcurrentSameKeyNeverOverAdmits(t *testing.T) {
	rl := NewSlidingWindowLimiter()

	const limit = 50
	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := rl.Allow("shared", limit, time.Hour); ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), admitted.Load())
}

func TestSlidingWindow_SweepDropsIdleKeys(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now), WithIdleTTL(time.Minute))

	rl.Allow("old", 5, 10*time.Second)
	clock.Advance(30 * time.Second)
	rl.Allow("fresh", 5, 10*time.Second)

	// "old" tiene la ventana vacía pero se vio hace 30s, dentro del TTL
	assert.Equal(t, 0, rl.Sweep())
	assert.Equal(t, 2, rl.Len())

	clock.Advance(45 * time.Second)
	assert.Equal(t, 1, rl.Sweep())
	assert.Equal(t, 1, rl.Len())

	clock.Advance(time.Minute)
	assert.Equal(t, 1, rl.Sweep())
	assert.Equal(t, 0, rl.Len())
}

func TestSlidingWindow_SweepKeepsActiveWindows(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now))

	rl.Allow("busy", 5, time.Hour)
	clock.Advance(10 * time.Minute)

	assert.Equal(t, 0, rl.Sweep())
	assert.Equal(t, 1, rl.Len())
}

func TestSlidingWindow_JanitorStopsWithContext(t *testing.T) {
	clock := newFakeClock()
	rl := NewSlidingWindowLimiter(WithClock(clock.Now))
	rl.Allow("k", 1, time.Second)
	clock.Advance(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl.StartJanitor(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 5*time.Millisecond)
}
