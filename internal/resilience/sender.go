package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/anisjkb/deed/internal/common"
)

// Sender wraps a Mailer with bounded retries and a circuit breaker.
// When the breaker is open Send fails fast with ErrOpenCircuit so the queue
// can reschedule instead of holding a worker on a dead relay.
type Sender struct {
	Next        common.Mailer
	Breaker     *Breaker
	MaxAttempts int
	BaseBackoff time.Duration
	Jitter      float64
	// Wait pauses between attempts and returns early when ctx ends. Tests replace it.
	Wait func(ctx context.Context, d time.Duration) error
}

// Send implements common.Mailer.
func (s Sender) Send(ctx context.Context, m common.Mail) error {
	if s.Next == nil {
		return errors.New("resilience: sender not configured")
	}
	breaker := s.Breaker
	if breaker == nil {
		breaker = NewBreaker(1, 1, time.Second)
	}
	attempts := max(s.MaxAttempts, 1)
	wait := s.Wait
	if wait == nil {
		wait = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if !breaker.Allow(ctx) {
			return errors.Join(ErrOpenCircuit, lastErr)
		}
		err := s.Next.Send(ctx, m)
		breaker.Report(ctx, err == nil)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if werr := wait(ctx, Backoff(s.BaseBackoff, attempt, s.Jitter)); werr != nil {
			return errors.Join(werr, lastErr)
		}
	}
	return lastErr
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
