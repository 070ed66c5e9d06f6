package sanction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"sanction-bot/model"
	"sanction-bot/utils"
)

// DefaultEffectTimeout bounds a single platform call made outside a request context.
const DefaultEffectTimeout = 30 * time.Second

// ReverseResult is the outcome of a reversal attempt.
type ReverseResult int

const (
	ResultNone            ReverseResult = iota // store failure, nothing known
	ResultReversed                             // this caller flipped the flag and the effect is done
	ResultAlreadyInactive                      // another path got there first
	ResultEffectFailed                         // flag flipped, platform effect failed
)

func (r ReverseResult) String() string {
	switch r {
	case ResultReversed:
		return "reversed"
	case ResultAlreadyInactive:
		return "already_inactive"
	case ResultEffectFailed:
		return "effect_failed"
	default:
		return "none"
	}
}

// Options tune an Engine. Zero values pick the defaults.
type Options struct {
	Clock         Clock
	Alerter       Alerter
	IDMaxAttempts int
	EffectTimeout time.Duration
	Kinds         []model.SanctionKind
}

// Engine issues sanctions and owns the single reversal path shared by manual
// revocation, timer expiry, recovery and the sweep.
type Engine struct {
	store         Store
	applier       Applier
	ids           *IDGenerator
	timers        *Registry
	clock         Clock
	alerts        Alerter
	effectTimeout time.Duration
	kinds         []model.SanctionKind
	sweepMu       sync.Mutex
}

// NewEngine wires an engine with its own timer registry.
func NewEngine(store Store, applier Applier, opts Options) *Engine {
	e := &Engine{
		store:         store,
		applier:       applier,
		ids:           NewIDGenerator(store, opts.IDMaxAttempts),
		clock:         opts.Clock,
		alerts:        opts.Alerter,
		effectTimeout: opts.EffectTimeout,
		kinds:         opts.Kinds,
	}
	if e.clock == nil {
		e.clock = SystemClock
	}
	if e.alerts == nil {
		e.alerts = nopAlerter{}
	}
	if e.effectTimeout <= 0 {
		e.effectTimeout = DefaultEffectTimeout
	}
	if len(e.kinds) == 0 {
		e.kinds = []model.SanctionKind{model.KindMute, model.KindTimedRoleGrant, model.KindTimedRoleRevoke}
	}
	e.timers = NewRegistry(e.clock, e.expire)
	return e
}

// Timers exposes the registry for diagnostics and shutdown.
func (e *Engine) Timers() *Registry {
	return e.timers
}

// Kinds returns the sanction kinds this engine schedules.
func (e *Engine) Kinds() []model.SanctionKind {
	return e.kinds
}

func (e *Engine) manages(kind model.SanctionKind) bool {
	for _, k := range e.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IssueRequest is what the command layer hands over to create a sanction.
type IssueRequest struct {
	GuildID     string
	UserID      string
	ModeratorID string
	Kind        model.SanctionKind
	Reason      string
	Duration    string
	Metadata    model.SanctionMetadata
}

// Issue persists a new active sanction, then applies its forward effect. If the
// effect fails the record is flipped back to inactive before the error is returned,
// so no active record is left without its effect.
func (e *Engine) Issue(ctx context.Context, req IssueRequest) (*model.SanctionRecord, error) {
	if !e.manages(req.Kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, req.Kind)
	}
	if req.GuildID == "" || req.UserID == "" || req.ModeratorID == "" || req.Metadata.RoleID == "" {
		return nil, fmt.Errorf("%w: guild, user, moderator and role are required", ErrInvalidRequest)
	}
	d, permanent, err := utils.ParseSanctionDuration(req.Duration)
	if err != nil {
		return nil, err
	}

	active := true
	existing, err := e.store.FindOne(ctx, model.SanctionFilter{
		GuildID: req.GuildID,
		UserID:  req.UserID,
		Kind:    req.Kind,
		Active:  &active,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w (action %s)", ErrAlreadySanctioned, existing.ActionID)
	}

	actionID, err := e.ids.Generate(ctx)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	record := &model.SanctionRecord{
		ActionID:    actionID,
		GuildID:     req.GuildID,
		UserID:      req.UserID,
		ModeratorID: req.ModeratorID,
		Kind:        req.Kind,
		Reason:      req.Reason,
		Duration:    strings.ToLower(strings.TrimSpace(req.Duration)),
		IssuedAt:    now.UnixMilli(),
		Active:      true,
		Metadata:    req.Metadata,
	}
	if permanent {
		record.Duration = model.PermanentDuration
	} else {
		record.ExpiresAt = sql.NullInt64{Int64: now.Add(d).UnixMilli(), Valid: true}
	}

	for retried := false; ; retried = true {
		err := e.store.Create(ctx, record)
		if err == nil {
			break
		}
		switch {
		case errors.Is(err, ErrAlreadySanctioned):
			return nil, err
		case errors.Is(err, ErrDuplicateActionID) && !retried:
			log.Printf("[Sanction] Action ID %s taken at insert, drawing a new one", record.ActionID)
			if record.ActionID, err = e.ids.Generate(ctx); err != nil {
				return nil, err
			}
		case errors.Is(err, ErrDuplicateActionID):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}
	actionID = record.ActionID

	outcome, err := e.applier.ApplyForward(ctx, record)
	if outcome != EffectApplied {
		if outcome == EffectMemberAbsent {
			err = ErrMemberAbsent
		}
		e.compensate(ctx, record, err)
		return record, fmt.Errorf("%w: forward effect for action %s: %w", ErrEffectFailed, actionID, err)
	}

	// A revoke may have won the record while the forward call was in flight and
	// reversed an effect that was not there yet.
	current, err := e.store.FindOne(ctx, model.SanctionFilter{ActionID: actionID})
	if err != nil {
		log.Printf("[Sanction] Failed to re-read action %s after forward effect: %v", actionID, err)
	} else if current != nil && !current.Active {
		e.undoLateForward(ctx, current)
		return current, nil
	}

	if !permanent {
		e.timers.Schedule(*record)
	}
	log.Printf("[Sanction] Issued %s %s to user %s in guild %s (duration: %s)",
		record.Kind, record.ActionID, record.UserID, record.GuildID, record.Duration)
	return record, nil
}

// undoLateForward reverses a forward effect that landed after the record was
// already ended by another path.
func (e *Engine) undoLateForward(ctx context.Context, record *model.SanctionRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.effectTimeout)
	defer cancel()

	outcome, err := e.applier.ApplyReversal(ctx, record)
	if outcome == EffectFailed {
		log.Printf("[Sanction] Failed to undo late forward effect for action %s: %v", record.ActionID, err)
		e.alerts.Error(record.GuildID, "Issue",
			fmt.Sprintf("Action %s (%s) for <@%s> was ended during issue but the platform reversal failed: %v",
				record.ActionID, record.Kind, record.UserID, err))
		return
	}
	log.Printf("[Sanction] Action %s was ended during issue (%s), forward effect undone", record.ActionID, record.EndReason)
}

// compensate undoes the persisted half of an issue whose forward effect failed.
func (e *Engine) compensate(ctx context.Context, record *model.SanctionRecord, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.effectTimeout)
	defer cancel()

	info := model.ReversalInfo{
		By:     model.SystemModeratorID,
		Reason: "forward effect failed",
		At:     e.clock.Now(),
	}
	if _, err := e.store.ConditionalDeactivate(ctx, record.ActionID, info); err != nil {
		log.Printf("[Sanction] Failed to compensate action %s after forward failure: %v", record.ActionID, err)
		e.alerts.Error(record.GuildID, "Compensate",
			fmt.Sprintf("Action %s may be active without its effect: %v", record.ActionID, err))
		return
	}
	record.Active = false
	record.EndedAt = sql.NullInt64{Int64: info.At.UnixMilli(), Valid: true}
	record.EndedBy = info.By
	record.EndReason = info.Reason
	log.Printf("[Sanction] Forward effect for action %s failed, record deactivated: %v", record.ActionID, cause)
}

// Reverse ends a sanction. Only the caller whose conditional update flips the
// record from active to inactive performs the reversal effect; every other caller
// gets ResultAlreadyInactive. The flag is never flipped back, even if the effect
// fails.
func (e *Engine) Reverse(ctx context.Context, actionID string, info model.ReversalInfo) (ReverseResult, error) {
	if info.By == "" {
		info.By = model.SystemModeratorID
	}
	if info.At.IsZero() {
		info.At = e.clock.Now()
	}

	prior, err := e.store.ConditionalDeactivate(ctx, actionID, info)
	if err != nil {
		return ResultNone, fmt.Errorf("%w: deactivate %s: %w", ErrStoreUnavailable, actionID, err)
	}
	e.timers.Cancel(actionID)
	if prior == nil {
		return ResultAlreadyInactive, nil
	}

	// The flag is flipped; the effect must run even if the caller gave up.
	effectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.effectTimeout)
	defer cancel()

	outcome, err := e.applier.ApplyReversal(effectCtx, prior)
	switch outcome {
	case EffectApplied:
		log.Printf("[Sanction] Reversed %s %s for user %s (%s)", prior.Kind, actionID, prior.UserID, info.Reason)
		return ResultReversed, nil
	case EffectMemberAbsent:
		log.Printf("[Sanction] Reversed %s %s, user %s already left guild %s", prior.Kind, actionID, prior.UserID, prior.GuildID)
		return ResultReversed, nil
	default:
		log.Printf("[Sanction] Reversal effect for action %s failed: %v", actionID, err)
		e.alerts.Error(prior.GuildID, "Reverse",
			fmt.Sprintf("Action %s (%s) for <@%s> is marked ended but the platform reversal failed: %v",
				actionID, prior.Kind, prior.UserID, err))
		return ResultEffectFailed, fmt.Errorf("%w: reversal for action %s: %w", ErrEffectFailed, actionID, err)
	}
}

// expire is the registry callback for timers that reached their expiry.
func (e *Engine) expire(record model.SanctionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), e.effectTimeout)
	defer cancel()

	result, err := e.Reverse(ctx, record.ActionID, model.ReversalInfo{
		By:     model.SystemModeratorID,
		Reason: "expired",
	})
	if err != nil {
		log.Printf("[Sanction] Timer reversal for action %s ended with %s: %v", record.ActionID, result, err)
	}
}

// RevokeRequest asks to end a user's active sanction of a kind before it expires.
type RevokeRequest struct {
	GuildID    string
	UserID     string
	Kind       model.SanctionKind
	Reason     string
	ExecutorID string
}

// Revoke is the manual reversal path. It does not assume a timer exists.
func (e *Engine) Revoke(ctx context.Context, req RevokeRequest) (*model.SanctionRecord, ReverseResult, error) {
	if !e.manages(req.Kind) {
		return nil, ResultNone, fmt.Errorf("%w: %s", ErrUnknownKind, req.Kind)
	}
	if req.GuildID == "" || req.UserID == "" || req.ExecutorID == "" {
		return nil, ResultNone, fmt.Errorf("%w: guild, user and executor are required", ErrInvalidRequest)
	}
	active := true
	record, err := e.store.FindOne(ctx, model.SanctionFilter{
		GuildID: req.GuildID,
		UserID:  req.UserID,
		Kind:    req.Kind,
		Active:  &active,
	})
	if err != nil {
		return nil, ResultNone, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if record == nil {
		return nil, ResultNone, fmt.Errorf("%w: no active %s for user %s", ErrNotFound, req.Kind, req.UserID)
	}
	result, err := e.revoke(ctx, record, req.ExecutorID, req.Reason)
	return record, result, err
}

// RevokeByID manually ends the sanction with the given action ID.
func (e *Engine) RevokeByID(ctx context.Context, actionID, executorID, reason string) (*model.SanctionRecord, ReverseResult, error) {
	record, err := e.store.FindOne(ctx, model.SanctionFilter{ActionID: actionID})
	if err != nil {
		return nil, ResultNone, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if record == nil {
		return nil, ResultNone, fmt.Errorf("%w: action %s", ErrNotFound, actionID)
	}
	result, err := e.revoke(ctx, record, executorID, reason)
	return record, result, err
}

func (e *Engine) revoke(ctx context.Context, record *model.SanctionRecord, executorID, reason string) (ReverseResult, error) {
	if reason == "" {
		reason = "revoked"
	}
	return e.Reverse(ctx, record.ActionID, model.ReversalInfo{By: executorID, Reason: reason})
}

// Status is the read-only diagnostic view of one sanction.
type Status struct {
	Record         model.SanctionRecord
	Permanent      bool
	ExpiresAt      time.Time
	Remaining      time.Duration
	ExpiredPending bool // active but past expiry: waiting for a timer or the next sweep
	Scheduled      bool
}

// Inspect reports a sanction's expiry state without changing anything.
func (e *Engine) Inspect(ctx context.Context, actionID string) (Status, error) {
	record, err := e.store.FindOne(ctx, model.SanctionFilter{ActionID: actionID})
	if err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if record == nil {
		return Status{}, fmt.Errorf("%w: action %s", ErrNotFound, actionID)
	}

	status := Status{Record: *record, Scheduled: e.timers.Has(actionID)}
	expiry, ok := record.ExpiryTime()
	if !ok {
		status.Permanent = true
		return status, nil
	}
	now := e.clock.Now()
	status.ExpiresAt = expiry
	if remaining := expiry.Sub(now); remaining > 0 {
		status.Remaining = remaining
	}
	status.ExpiredPending = record.Active && record.ExpiredAt(now)
	return status, nil
}

// AttachLogMessage remembers the log-channel announcement for a sanction.
func (e *Engine) AttachLogMessage(ctx context.Context, actionID, messageID string) error {
	if err := e.store.UpdateMetadata(ctx, actionID, model.SanctionMetadata{LogMessageID: messageID}); err != nil {
		return fmt.Errorf("failed to attach log message to action %s: %w", actionID, err)
	}
	return nil
}

// History lists every sanction of a user in a guild, newest first.
func (e *Engine) History(ctx context.Context, guildID, userID string) ([]model.SanctionRecord, error) {
	records, err := e.store.FindByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return records, nil
}

// Close disarms all timers. Pending sanctions are picked up again by RecoverAll.
func (e *Engine) Close() {
	e.timers.Stop()
}
