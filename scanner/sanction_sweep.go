package scanner

import (
	"context"
	"errors"
	"log"
	"time"

	"sanction-bot/sanction"
)

// Sweeper runs one reconciliation pass over active sanctions.
type Sweeper interface {
	SweepOnce(ctx context.Context) (sanction.SweepReport, error)
}

// StartSanctionSweep calls SweepOnce every interval until done is closed. It
// blocks, so run it in its own goroutine. onReport, if set, receives every
// report that reversed or failed something.
func StartSanctionSweep(sw Sweeper, interval time.Duration, done <-chan struct{}, onReport func(sanction.SweepReport)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Printf("[Sweep] Sanction sweep started, interval: %v", interval)
	for {
		select {
		case <-ticker.C:
			report, err := sw.SweepOnce(ctx)
			switch {
			case errors.Is(err, sanction.ErrSweepInProgress):
				log.Println("[Sweep] Previous sweep still running, skipping this tick")
			case err != nil:
				log.Printf("[Sweep] Sweep failed: %v", err)
			case onReport != nil && report.Expired > 0:
				onReport(report)
			}
		case <-done:
			log.Println("[Sweep] Sanction sweep stopped")
			return
		}
	}
}
