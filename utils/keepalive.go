package utils

import (
	"context"
	"time"
)

// StartKeepAlive calls beat every interval until ctx is cancelled. A zero interval disables it.
func StartKeepAlive(ctx context.Context, interval time.Duration, beat func(context.Context) error) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				bctx, cancel := context.WithTimeout(ctx, 10*time.Second)
				if err := beat(bctx); err != nil {
					Sugar.Warnf("keep-alive heartbeat failed: %v", err)
				}
				cancel()
			}
		}
	}()
}
