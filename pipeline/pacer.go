package pipeline

import (
	"context"
	"time"
)

// Pacer decides how long the sweep waits between two tokens.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay waits the same interval between every pair of tokens. A zero
// interval does not wait at all.
type FixedDelay time.Duration

func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
