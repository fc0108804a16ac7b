package service

import (
	"context"
	"log"
	"time"
)

// TickRateInterval converts a tick rate in Hz into a ticker interval
func TickRateInterval(rate int) time.Duration {
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}

// RunTicker advances the active world one step per interval using the held
// input until ctx is cancelled. onTick, if set, receives every result.
func RunTicker(ctx context.Context, svc GameService, interval time.Duration, onTick func(*TickResult)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[TICK] Ticker started (interval=%s)", interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[TICK] Ticker stopped")
			return ctx.Err()
		case <-ticker.C:
			result, err := svc.Tick(ctx, 1, nil)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[TICK] Error: %v", err)
				continue
			}
			if onTick != nil {
				onTick(result)
			}
		}
	}
}
