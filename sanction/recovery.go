package sanction

import (
	"context"
	"fmt"
	"log"

	"sanction-bot/model"
)

// RecoveryReport summarizes one RecoverAll pass.
type RecoveryReport struct {
	Scanned      int
	Scheduled    int
	Reversed     int
	Skipped      int
	EffectFailed int
	Failed       int
}

func (r RecoveryReport) String() string {
	return fmt.Sprintf("scanned=%d scheduled=%d reversed=%d skipped=%d effect_failed=%d failed=%d",
		r.Scanned, r.Scheduled, r.Reversed, r.Skipped, r.EffectFailed, r.Failed)
}

// RecoverAll rebuilds the timer registry from the store after a start. Active
// sanctions that are already past expiry are reversed immediately, future ones get
// a timer and permanent ones are left alone. A failing record never stops the scan.
func (e *Engine) RecoverAll(ctx context.Context) (RecoveryReport, error) {
	var report RecoveryReport

	if err := e.store.Ping(ctx); err != nil {
		return report, fmt.Errorf("%w: ping before recovery: %w", ErrStoreUnavailable, err)
	}

	records, err := e.store.FindAllActive(ctx, e.kinds)
	if err != nil {
		return report, fmt.Errorf("%w: list active sanctions: %w", ErrStoreUnavailable, err)
	}

	now := e.clock.Now()
	for _, record := range records {
		report.Scanned++

		if record.IsPermanent() {
			report.Skipped++
			continue
		}

		if record.ExpiredAt(now) {
			result, err := e.Reverse(ctx, record.ActionID, model.ReversalInfo{
				By:     model.SystemModeratorID,
				Reason: "expired (recovery)",
			})
			switch result {
			case ResultReversed:
				report.Reversed++
			case ResultAlreadyInactive:
				report.Skipped++
			case ResultEffectFailed:
				report.EffectFailed++
			default:
				report.Failed++
				log.Printf("[Sanction] Recovery could not reverse action %s: %v", record.ActionID, err)
			}
			continue
		}

		switch e.timers.Schedule(record) {
		case ScheduleArmed:
			report.Scheduled++
		case ScheduleFiredInline:
			report.Reversed++
		default:
			report.Skipped++
		}
	}

	log.Printf("[Sanction] Recovery finished: %s", report)
	if report.EffectFailed > 0 || report.Failed > 0 {
		e.alerts.Warn("", "Recovery", report.String())
	}
	return report, nil
}
