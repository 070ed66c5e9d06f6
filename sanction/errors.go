package sanction

import (
	"errors"

	"sanction-bot/utils"
)

// Sanction errors.
var (
	ErrGenerationExhausted = errors.New("sanction id generation exhausted")
	ErrStoreUnavailable    = errors.New("sanction store unavailable")
	ErrEffectFailed        = errors.New("sanction effect failed")
	ErrMalformedDuration   = utils.ErrMalformedDuration
	ErrAlreadySanctioned   = errors.New("user already has an active sanction of this kind")
	ErrNotFound            = errors.New("sanction not found")
	ErrUnknownKind         = errors.New("unknown sanction kind")
	ErrInvalidRequest      = errors.New("invalid sanction request")
	ErrMemberAbsent        = errors.New("member is not in the guild")
	ErrSweepInProgress     = errors.New("sanction sweep already running")
	ErrDuplicateActionID   = errors.New("duplicate action id")
)
