package sanction

import (
	"context"
	"fmt"
	"log"

	"sanction-bot/model"
)

// SweepReport summarizes one reconciliation pass.
type SweepReport struct {
	Scanned         int
	Expired         int
	Reversed        int
	AlreadyInactive int
	EffectFailed    int
	Failed          int
}

func (r SweepReport) String() string {
	return fmt.Sprintf("scanned=%d expired=%d reversed=%d already_inactive=%d effect_failed=%d failed=%d",
		r.Scanned, r.Expired, r.Reversed, r.AlreadyInactive, r.EffectFailed, r.Failed)
}

// SweepOnce reverses every active sanction whose expiry has passed. It catches
// timers that were lost, processes that restarted without recovery, and clock
// jumps. Running it next to live timers is safe: Reverse decides the winner.
func (e *Engine) SweepOnce(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	if !e.sweepMu.TryLock() {
		return report, ErrSweepInProgress
	}
	defer e.sweepMu.Unlock()

	records, err := e.store.FindAllActive(ctx, e.kinds)
	if err != nil {
		return report, fmt.Errorf("%w: list active sanctions: %w", ErrStoreUnavailable, err)
	}

	now := e.clock.Now()
	for _, record := range records {
		report.Scanned++
		if !record.ExpiredAt(now) {
			continue
		}
		report.Expired++

		if ctx.Err() != nil {
			report.Failed++
			continue
		}

		result, err := e.Reverse(ctx, record.ActionID, model.ReversalInfo{
			By:     model.SystemModeratorID,
			Reason: "expired (sweep)",
		})
		switch result {
		case ResultReversed:
			report.Reversed++
		case ResultAlreadyInactive:
			report.AlreadyInactive++
		case ResultEffectFailed:
			report.EffectFailed++
		default:
			report.Failed++
			log.Printf("[Sanction] Sweep could not reverse action %s: %v", record.ActionID, err)
		}
	}

	if report.Expired > 0 {
		log.Printf("[Sanction] Sweep finished: %s", report)
	}
	return report, nil
}
