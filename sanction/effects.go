package sanction

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sanction-bot/model"
)

// EffectOutcome is the result of applying a sanction effect on the platform.
type EffectOutcome int

const (
	EffectApplied EffectOutcome = iota
	EffectMemberAbsent
	EffectFailed
)

func (o EffectOutcome) String() string {
	switch o {
	case EffectApplied:
		return "applied"
	case EffectMemberAbsent:
		return "member_absent"
	case EffectFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Applier applies a sanction's forward effect and its reversal.
type Applier interface {
	ApplyForward(ctx context.Context, record *model.SanctionRecord) (EffectOutcome, error)
	ApplyReversal(ctx context.Context, record *model.SanctionRecord) (EffectOutcome, error)
}

type effectFunc func(ctx context.Context, p Platform, record *model.SanctionRecord) error

// KindEffects is the forward/reversal pair for one sanction kind.
type KindEffects struct {
	Forward  effectFunc
	Reversal effectFunc
}

// EffectTable maps each sanction kind to its effects and implements Applier.
type EffectTable struct {
	platform Platform
	kinds    map[model.SanctionKind]KindEffects
}

// NewEffectTable builds the table for mutes and timed role changes.
func NewEffectTable(p Platform) *EffectTable {
	return &EffectTable{
		platform: p,
		kinds: map[model.SanctionKind]KindEffects{
			model.KindMute: {
				Forward: func(ctx context.Context, p Platform, r *model.SanctionRecord) error {
					if err := p.AddRole(ctx, r.GuildID, r.UserID, r.Metadata.RoleID); err != nil {
						return err
					}
					// Best effort: the mute role already keeps them silent.
					if err := p.DisconnectVoice(ctx, r.GuildID, r.UserID); err != nil {
						log.Printf("[Sanction] Could not disconnect user %s from voice in guild %s: %v", r.UserID, r.GuildID, err)
					}
					return nil
				},
				Reversal: func(ctx context.Context, p Platform, r *model.SanctionRecord) error {
					return p.RemoveRole(ctx, r.GuildID, r.UserID, r.Metadata.RoleID)
				},
			},
			model.KindTimedRoleGrant: {
				Forward: func(ctx context.Context, p Platform, r *model.SanctionRecord) error {
					return p.AddRole(ctx, r.GuildID, r.UserID, r.Metadata.RoleID)
				},
				Reversal: func(ctx context.Context, p Platform, r *model.SanctionRecord) error {
					return p.RemoveRole(ctx, r.GuildID, r.UserID, r.Metadata.RoleID)
				},
			},
			model.KindTimedRoleRevoke: {
				Forward: func(ctx context.Context, p Platform, r *model.SanctionRecord) error {
					return p.RemoveRole(ctx, r.GuildID, r.UserID, r.Metadata.RoleID)
				},
				Reversal: func(ctx context.Context, p Platform, r *model.SanctionRecord) error {
					return p.AddRole(ctx, r.GuildID, r.UserID, r.Metadata.RoleID)
				},
			},
		},
	}
}

// Kinds returns every kind the table can schedule.
func (t *EffectTable) Kinds() []model.SanctionKind {
	return []model.SanctionKind{model.KindMute, model.KindTimedRoleGrant, model.KindTimedRoleRevoke}
}

// Supports reports whether kind has an entry.
func (t *EffectTable) Supports(kind model.SanctionKind) bool {
	_, ok := t.kinds[kind]
	return ok
}

func (t *EffectTable) ApplyForward(ctx context.Context, record *model.SanctionRecord) (EffectOutcome, error) {
	effects, ok := t.kinds[record.Kind]
	if !ok {
		return EffectFailed, fmt.Errorf("%w: %s", ErrUnknownKind, record.Kind)
	}
	return classify(effects.Forward(ctx, t.platform, record))
}

func (t *EffectTable) ApplyReversal(ctx context.Context, record *model.SanctionRecord) (EffectOutcome, error) {
	effects, ok := t.kinds[record.Kind]
	if !ok {
		return EffectFailed, fmt.Errorf("%w: %s", ErrUnknownKind, record.Kind)
	}
	return classify(effects.Reversal(ctx, t.platform, record))
}

func classify(err error) (EffectOutcome, error) {
	switch {
	case err == nil:
		return EffectApplied, nil
	case errors.Is(err, ErrMemberAbsent):
		return EffectMemberAbsent, nil
	default:
		return EffectFailed, err
	}
}
