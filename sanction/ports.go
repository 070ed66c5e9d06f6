package sanction

import (
	"context"
	"time"

	"sanction-bot/model"
)

// Clock returns the current wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real wall clock.
var SystemClock Clock = systemClock{}

// Store persists sanction records. ConditionalDeactivate is the only write that
// changes an existing record's state and must be atomic: it flips active to false
// only when the record is still active and returns the prior record, or nil when
// nothing was changed.
//
// Create must fail with an error wrapping ErrAlreadySanctioned when the record
// would violate the one-active-per-(guild, user, kind) rule.
type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, record *model.SanctionRecord) error
	FindOne(ctx context.Context, filter model.SanctionFilter) (*model.SanctionRecord, error)
	FindAllActive(ctx context.Context, kinds []model.SanctionKind) ([]model.SanctionRecord, error)
	FindByUser(ctx context.Context, guildID, userID string) ([]model.SanctionRecord, error)
	ConditionalDeactivate(ctx context.Context, actionID string, info model.ReversalInfo) (*model.SanctionRecord, error)
	UpdateMetadata(ctx context.Context, actionID string, patch model.SanctionMetadata) error
}

// Platform is the subset of community operations sanctions need. Implementations
// return an error wrapping ErrMemberAbsent when the member has left the guild.
type Platform interface {
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	DisconnectVoice(ctx context.Context, guildID, userID string) error
}

// Alerter receives operational alerts. utils.ChannelLogger implements it.
type Alerter interface {
	Warn(guildID, operation, detail string)
	Error(guildID, operation, detail string)
}

type nopAlerter struct{}

func (nopAlerter) Warn(string, string, string)  {}
func (nopAlerter) Error(string, string, string) {}
