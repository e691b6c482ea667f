package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg BreakerConfig) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker("test", cfg)
	b.now = clock.now
	return b, clock
}

func fail(context.Context) (int, error) { return 0, errors.New("fail") }
func ok(context.Context) (int, error)   { return 1, nil }

func TestBreaker_Defaults(t *testing.T) {
	b := NewBreaker("search", BreakerConfig{})
	assert.Equal(t, 3, b.cfg.Threshold)
	assert.Equal(t, time.Minute, b.cfg.Cooldown)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{Threshold: 2, Cooldown: time.Minute})
	ctx := context.Background()

	_, _ = Guard(ctx, b, fail)
	assert.Equal(t, StateClosed, b.State())
	_, _ = Guard(ctx, b, fail)
	assert.Equal(t, StateOpen, b.State())

	calls := 0
	_, err := Guard(ctx, b, func(context.Context) (int, error) {
		calls++
		return 0, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{Threshold: 2})
	ctx := context.Background()

	_, _ = Guard(ctx, b, fail)
	v, err := Guard(ctx, b, ok)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	_, _ = Guard(ctx, b, fail)

	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	tests := []struct {
		name  string
		probe func(context.Context) (int, error)
		want  BreakerState
	}{
		{"success closes", ok, StateClosed},
		{"failure reopens", fail, StateOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, clock := newTestBreaker(BreakerConfig{Threshold: 1, Cooldown: 30 * time.Second})
			ctx := context.Background()

			_, _ = Guard(ctx, b, fail)
			require.Equal(t, StateOpen, b.State())

			clock.advance(30 * time.Second)
			assert.Equal(t, StateHalfOpen, b.State())

			_, _ = Guard(ctx, b, tt.probe)
			assert.Equal(t, tt.want, b.State())
		})
	}
}

func TestBreaker_CanceledDoesNotCount(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{Threshold: 1})

	_, _ = Guard(context.Background(), b, func(context.Context) (int, error) {
		return 0, context.Canceled
	})
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_CustomCounts(t *testing.T) {
	ignored := errors.New("not found")
	b, _ := newTestBreaker(BreakerConfig{
		Threshold: 1,
		Counts:    func(err error) bool { return !errors.Is(err, ignored) },
	})

	b.Record(ignored)
	assert.Equal(t, StateClosed, b.State())
	b.Record(errors.New("503"))
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_ConcurrentAccess(t *testing.T) {
	b := NewBreaker("concurrent", BreakerConfig{Threshold: 100})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = Guard(ctx, b, fail)
				return
			}
			_, _ = Guard(ctx, b, ok)
		}()
	}
	wg.Wait()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", BreakerState(9).String())
}
