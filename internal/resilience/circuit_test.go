package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/resilience"
)

func TestBreakerTransitions(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	breaker := resilience.NewBreaker(2, 0.5, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)

	require.False(t, breaker.Allow(ctx), "breaker should open after threshold exceeded")
	require.Equal(t, resilience.Open, breaker.State())

	now = now.Add(61 * time.Second)
	require.True(t, breaker.Allow(ctx), "breaker should move to half-open after cool off")
	require.Equal(t, resilience.HalfOpen, breaker.State())
	breaker.Report(ctx, true)
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	breaker := resilience.NewBreaker(1, 1, time.Second).WithClock(func() time.Time { return now })
	ctx := context.Background()

	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
	now = now.Add(2 * time.Second)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
	require.False(t, breaker.Allow(ctx))
}

func TestBackoffWithJitter(t *testing.T) {
	base := 100 * time.Millisecond
	require.Equal(t, base, resilience.Backoff(base, 1, 0))
	require.Equal(t, base*4, resilience.Backoff(base, 3, 0))

	d := resilience.Backoff(base, 2, 0.2)
	require.GreaterOrEqual(t, d, base*2-(base*2/5))
	require.LessOrEqual(t, d, base*2+(base*2/5))
}

func TestBreakerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	resilience.MustRegisterMetrics("test", reg)
	t.Cleanup(func() {
		resilience.BreakerState = nil
		resilience.BreakerTransitions = nil
	})

	ctx := context.Background()
	breaker := resilience.NewBreaker(1, 1, time.Minute).WithTarget("smtp")
	breaker.Report(ctx, false)

	require.Equal(t, float64(1), testutil.ToFloat64(resilience.BreakerState.WithLabelValues("smtp")))
	require.Equal(t, float64(1), testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("smtp", "closed", "open")))
}

func TestBreakerJudgesOnlyRecentWindow(t *testing.T) {
	ctx := context.Background()
	breaker := resilience.NewBreaker(4, 0.5, time.Minute)

	// a long run of successes must not hide a fresh outage
	for i := 0; i < 50; i++ {
		breaker.Report(ctx, true)
	}
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Closed, breaker.State())
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State(), "2 of the last 4 calls failed")
}

func TestBreakerHalfOpenAdmitsOneTrial(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	breaker := resilience.NewBreaker(1, 1, time.Second).WithClock(func() time.Time { return now })
	ctx := context.Background()

	breaker.Report(ctx, false)
	now = now.Add(2 * time.Second)
	require.True(t, breaker.Allow(ctx))
	require.False(t, breaker.Allow(ctx), "second caller waits for the trial outcome")
	breaker.Report(ctx, true)
	require.Equal(t, resilience.Closed, breaker.State())
	require.True(t, breaker.Allow(ctx))
	require.True(t, breaker.Allow(ctx))
}

func TestBreakerClosingClearsHistory(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	breaker := resilience.NewBreaker(2, 0.5, time.Second).WithClock(func() time.Time { return now })
	ctx := context.Background()

	breaker.Report(ctx, false)
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
	now = now.Add(2 * time.Second)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, true)

	breaker.Report(ctx, false)
	require.Equal(t, resilience.Closed, breaker.State(), "window refills before judging again")
}

type flakyMailer struct {
	failures int
	calls    int
}

func (f *flakyMailer) Send(context.Context, common.Mail) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("421 service not available")
	}
	return nil
}

var leadMail = common.Mail{To: []string{"sales@example.com"}, Subject: "hi", HTML: "<p>hi</p>"}

func TestSenderRetriesUntilSuccess(t *testing.T) {
	next := &flakyMailer{failures: 2}
	var waits []time.Duration
	s := resilience.Sender{
		Next:        next,
		Breaker:     resilience.NewBreaker(10, 1, time.Minute),
		MaxAttempts: 3,
		BaseBackoff: 10 * time.Millisecond,
		Wait: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}
	require.NoError(t, s.Send(context.Background(), leadMail))
	require.Equal(t, 3, next.calls)
	require.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, waits)
}

func TestSenderFailsFastWhenOpen(t *testing.T) {
	next := &flakyMailer{failures: 100}
	breaker := resilience.NewBreaker(1, 1, time.Minute)
	noWait := func(context.Context, time.Duration) error { return nil }
	s := resilience.Sender{Next: next, Breaker: breaker, MaxAttempts: 3, Wait: noWait}

	err := s.Send(context.Background(), leadMail)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Equal(t, 1, next.calls)

	err = s.Send(context.Background(), leadMail)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Equal(t, 1, next.calls)
}

func TestSenderStopsWhenContextEnds(t *testing.T) {
	next := &flakyMailer{failures: 100}
	ctx, cancel := context.WithCancel(context.Background())
	s := resilience.Sender{
		Next:        next,
		Breaker:     resilience.NewBreaker(10, 1, time.Minute),
		MaxAttempts: 5,
		BaseBackoff: time.Hour,
	}
	go cancel()
	err := s.Send(ctx, leadMail)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, next.calls)
}
