package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisKey holds the shared state when a Redis client is configured.
const RedisKey = "hotel:ratelimit:state"

// ThrottleDelay is the pause applied while the budget is below WarnThreshold.
const ThrottleDelay = 500 * time.Millisecond

var (
	remainingGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hotel_ratelimit_remaining",
		Help: "Requests remaining in the current hotel API rate limit window",
	})

	blocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_ratelimit_blocks_total",
		Help: "Total number of requests blocked because the rate limit was exhausted",
	})

	throttlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_ratelimit_throttles_total",
		Help: "Total number of requests delayed because the rate limit was low",
	})
)

// Tracker remembers the API's rate limit window and gates requests.
// With a Redis client the window is shared by every process using the same
// Redis; without one it is kept in memory.
type Tracker struct {
	rdb    redis.Cmdable
	logger zerolog.Logger
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error

	mu    sync.Mutex
	local State
}

// NewTracker creates a tracker. rdb may be nil.
func NewTracker(rdb redis.Cmdable, logger zerolog.Logger) *Tracker {
	return &Tracker{
		rdb:    rdb,
		logger: logger,
		now:    time.Now,
		sleep:  sleepCtx,
		local:  Unknown(),
	}
}

// State returns the current window.
func (t *Tracker) State(ctx context.Context) (State, error) {
	if t.rdb == nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.local, nil
	}

	raw, err := t.rdb.Get(ctx, RedisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Unknown(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("get rate limit state: %w", err)
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("decode rate limit state: %w", err)
	}
	return s, nil
}

// Observe records the window reported by a response. Responses without rate
// limit headers leave the state untouched.
func (t *Tracker) Observe(ctx context.Context, status int, h http.Header) error {
	s, ok, err := FromResponse(status, h, t.now())
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := t.store(ctx, s); err != nil {
		return err
	}

	if s.Remaining >= 0 {
		remainingGauge.Set(float64(s.Remaining))
	}

	now := t.now()
	switch {
	case s.Blocked(now):
		t.logger.Warn().
			Int("remaining", s.Remaining).
			Dur("wait", s.Wait(now)).
			Msg("Hotel API rate limit exhausted")
	case s.Throttled(now):
		t.logger.Warn().
			Int("remaining", s.Remaining).
			Msg("Hotel API rate limit low")
	default:
		t.logger.Debug().
			Int("remaining", s.Remaining).
			Time("reset_at", s.ResetAt).
			Msg("Rate limit state updated")
	}
	return nil
}

// ShouldAllowRequest reports whether a request may be sent now. It returns
// false while the window is exhausted, and delays the caller by
// ThrottleDelay while the budget is low.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	s, err := t.State(ctx)
	if err != nil {
		return false, err
	}

	now := t.now()
	if s.Blocked(now) {
		blocksTotal.Inc()
		t.logger.Warn().
			Dur("wait", s.Wait(now)).
			Msg("Blocking request until rate limit resets")
		return false, nil
	}

	if s.Throttled(now) {
		throttlesTotal.Inc()
		if err := t.sleep(ctx, ThrottleDelay); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (t *Tracker) store(ctx context.Context, s State) error {
	if t.rdb == nil {
		t.mu.Lock()
		t.local = s
		t.mu.Unlock()
		return nil
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode rate limit state: %w", err)
	}

	// Keep the key a little past the window so stale windows disappear.
	ttl := s.Wait(t.now()) + time.Minute
	if err := t.rdb.Set(ctx, RedisKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
