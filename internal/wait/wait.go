// Package wait has the cooperative polling primitives used to wait on the
// transfer service state.
package wait

import (
	"context"
	"fmt"
	"time"
)

// Sleeper suspends the caller for a duration.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc is a helper to implement Sleeper with functions.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (s SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return s(ctx, d) }

// RealSleeper sleeps using the wall clock, it returns early if the context is done.
var RealSleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})

// ConditionFunc returns true when the wait should end.
type ConditionFunc func(ctx context.Context) (done bool, err error)

// Until checks the condition and, while it's not satisfied, sleeps the interval
// before checking again. There is no timeout, the context is the only way to
// stop it before the condition is satisfied or fails.
func Until(ctx context.Context, sleeper Sleeper, interval time.Duration, condition ConditionFunc) error {
	if sleeper == nil {
		sleeper = RealSleeper
	}

	for {
		done, err := condition(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if err := sleeper.Sleep(ctx, interval); err != nil {
			return fmt.Errorf("wait interrupted: %w", err)
		}
	}
}
