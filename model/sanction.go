package model

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SanctionKind selects which effect pair runs when a sanction is issued and when it ends.
type SanctionKind string

const (
	KindMute            SanctionKind = "mute"
	KindTimedRoleGrant  SanctionKind = "timed_role_grant"
	KindTimedRoleRevoke SanctionKind = "timed_role_revoke"
)

// PermanentDuration is the stored duration of a sanction that never expires.
const PermanentDuration = "forever"

// SystemModeratorID identifies reversals performed by the bot itself.
const SystemModeratorID = "system"

// SanctionMetadata carries what a kind needs to undo its forward effect.
type SanctionMetadata struct {
	RoleID         string `json:"role_id,omitempty"`
	VoiceChannelID string `json:"voice_channel_id,omitempty"`
	LogMessageID   string `json:"log_message_id,omitempty"`
}

// Merge returns m with every non-empty field of patch applied.
func (m SanctionMetadata) Merge(patch SanctionMetadata) SanctionMetadata {
	if patch.RoleID != "" {
		m.RoleID = patch.RoleID
	}
	if patch.VoiceChannelID != "" {
		m.VoiceChannelID = patch.VoiceChannelID
	}
	if patch.LogMessageID != "" {
		m.LogMessageID = patch.LogMessageID
	}
	return m
}

// Value stores the metadata as a JSON string.
func (m SanctionMetadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the JSON column back.
func (m *SanctionMetadata) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = SanctionMetadata{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported metadata column type %T", src)
	}
	if len(raw) == 0 {
		*m = SanctionMetadata{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// SanctionRecord represents a single sanction in the database.
// The database table is named 'sanctions'. Records are never deleted.
type SanctionRecord struct {
	ActionID    string           `db:"action_id"` // Primary Key, 18 digit numeric string
	GuildID     string           `db:"guild_id"`
	UserID      string           `db:"user_id"`
	ModeratorID string           `db:"moderator_id"`
	Kind        SanctionKind     `db:"kind"`
	Reason      string           `db:"reason"`
	Duration    string           `db:"duration"`   // "10m", "1d" or PermanentDuration
	IssuedAt    int64            `db:"issued_at"`  // unix milliseconds
	ExpiresAt   sql.NullInt64    `db:"expires_at"` // unix milliseconds, NULL when permanent
	Active      bool             `db:"active"`
	Metadata    SanctionMetadata `db:"metadata"`
	EndedAt     sql.NullInt64    `db:"ended_at"`
	EndedBy     string           `db:"ended_by"`
	EndReason   string           `db:"end_reason"`
}

// IsPermanent reports whether the sanction has no expiry.
func (r *SanctionRecord) IsPermanent() bool {
	return !r.ExpiresAt.Valid
}

// IssuedTime returns IssuedAt as a time.Time.
func (r *SanctionRecord) IssuedTime() time.Time {
	return time.UnixMilli(r.IssuedAt)
}

// ExpiryTime returns the expiry and false for permanent sanctions.
func (r *SanctionRecord) ExpiryTime() (time.Time, bool) {
	if !r.ExpiresAt.Valid {
		return time.Time{}, false
	}
	return time.UnixMilli(r.ExpiresAt.Int64), true
}

// ExpiredAt reports whether a non-permanent sanction is past its expiry at now.
func (r *SanctionRecord) ExpiredAt(now time.Time) bool {
	expiry, ok := r.ExpiryTime()
	return ok && !now.Before(expiry)
}

// ReversalInfo is the audit trail written together with the active -> inactive flip.
type ReversalInfo struct {
	By     string
	Reason string
	At     time.Time
}

// SanctionFilter selects records for FindOne. Empty fields are not filtered on.
type SanctionFilter struct {
	ActionID string
	GuildID  string
	UserID   string
	Kind     SanctionKind
	Active   *bool
}

// SanctionCount is the number of sanctions one moderator issued of one kind.
type SanctionCount struct {
	ModeratorID string       `db:"moderator_id"`
	Kind        SanctionKind `db:"kind"`
	Count       int          `db:"count"`
}
