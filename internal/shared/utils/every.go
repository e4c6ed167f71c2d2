package utils

import (
	"context"
	"time"
)

// RunEvery calls fn once per interval until ctx is done. The first call
// happens after one interval. It returns immediately for a non-positive
// interval.
func RunEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
