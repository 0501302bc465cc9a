package tasks

import (
	"context"
	"time"
)

// Waiter pauses between batches. Implementations must return early with ctx.Err() when ctx is done.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// TimerWaiter waits on a timer.
type TimerWaiter struct{}

// Wait blocks for d or until ctx is done.
func (TimerWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
