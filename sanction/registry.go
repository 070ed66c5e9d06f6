package sanction

import (
	"log"
	"sync"
	"time"

	"sanction-bot/model"
)

// ExpiryFunc is invoked once a scheduled sanction reaches its expiry.
type ExpiryFunc func(record model.SanctionRecord)

// ScheduleResult tells the caller what Schedule did with a record.
type ScheduleResult int

const (
	ScheduleIgnored ScheduleResult = iota // permanent, inactive, or registry stopped
	ScheduleArmed
	ScheduleFiredInline
)

type timerEntry struct {
	timer  *time.Timer
	record model.SanctionRecord
}

// Registry holds one pending timer per action ID for the lifetime of the process.
// It is volatile: after a restart RecoverAll rebuilds it from the store.
type Registry struct {
	mu       sync.Mutex
	clock    Clock
	onExpire ExpiryFunc
	timers   map[string]*timerEntry
	stopped  bool
}

// NewRegistry creates an empty registry calling onExpire for every due sanction.
func NewRegistry(clock Clock, onExpire ExpiryFunc) *Registry {
	if clock == nil {
		clock = SystemClock
	}
	return &Registry{
		clock:    clock,
		onExpire: onExpire,
		timers:   make(map[string]*timerEntry),
	}
}

// Schedule arms a one-shot timer for the record's remaining time. A record that is
// already due is expired inline instead. Scheduling an action ID twice replaces the
// earlier timer.
func (r *Registry) Schedule(record model.SanctionRecord) ScheduleResult {
	expiry, ok := record.ExpiryTime()
	if !ok || !record.Active {
		return ScheduleIgnored
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ScheduleIgnored
	}
	if old, exists := r.timers[record.ActionID]; exists {
		old.timer.Stop()
		delete(r.timers, record.ActionID)
	}

	remaining := expiry.Sub(r.clock.Now())
	if remaining <= 0 {
		r.mu.Unlock()
		log.Printf("[Sanction] Action %s already expired at schedule time, reversing now", record.ActionID)
		r.onExpire(record)
		return ScheduleFiredInline
	}

	entry := &timerEntry{record: record}
	// Armed under the lock so the callback cannot observe the map before the insert.
	entry.timer = time.AfterFunc(remaining, func() {
		r.mu.Lock()
		if cur, ok := r.timers[record.ActionID]; ok && cur == entry {
			delete(r.timers, record.ActionID)
		}
		r.mu.Unlock()
		r.onExpire(entry.record)
	})
	r.timers[record.ActionID] = entry
	r.mu.Unlock()

	log.Printf("[Sanction] Timer armed for action %s, remaining: %v", record.ActionID, remaining)
	return ScheduleArmed
}

// Cancel disarms the timer for actionID. It reports false when no timer was held,
// which is normal after a restart or once the timer has fired.
func (r *Registry) Cancel(actionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.timers[actionID]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(r.timers, actionID)
	return true
}

// FireNow disarms the timer for actionID and runs its expiry immediately.
// It reports false when there was no timer or it had already started firing.
func (r *Registry) FireNow(actionID string) bool {
	r.mu.Lock()
	entry, ok := r.timers[actionID]
	if ok {
		delete(r.timers, actionID)
		ok = entry.timer.Stop()
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.onExpire(entry.record)
	return true
}

// Has reports whether a timer is armed for actionID.
func (r *Registry) Has(actionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[actionID]
	return ok
}

// Len returns the number of armed timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Stop disarms every timer; later Schedule calls are ignored.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.timers {
		entry.timer.Stop()
		delete(r.timers, id)
	}
	r.stopped = true
}
