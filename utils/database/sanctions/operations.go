package sanctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"sanction-bot/model"
	"sanction-bot/sanction"
)

// ErrDuplicateActionID is returned when an insert reuses an existing action ID.
var ErrDuplicateActionID = sanction.ErrDuplicateActionID

// Store is the SQLite implementation of sanction.Store.
type Store struct {
	db *sqlx.DB
}

// New wraps an initialized database.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open initializes the database at dbPath and returns a store on it.
func Open(dbPath string) (*Store, error) {
	db, err := Init(dbPath)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// DB returns the underlying handle.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create inserts a new sanction record.
func (s *Store) Create(ctx context.Context, record *model.SanctionRecord) error {
	query := `INSERT INTO sanctions (action_id, guild_id, user_id, moderator_id, kind, reason, duration, issued_at, expires_at, active, metadata)
			  VALUES (:action_id, :guild_id, :user_id, :moderator_id, :kind, :reason, :duration, :issued_at, :expires_at, :active, :metadata)`

	_, err := s.db.NamedExecContext(ctx, query, record)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) {
			switch sqliteErr.ExtendedCode {
			case sqlite3.ErrConstraintPrimaryKey:
				return fmt.Errorf("failed to insert sanction %s: %w", record.ActionID, ErrDuplicateActionID)
			case sqlite3.ErrConstraintUnique:
				return fmt.Errorf("failed to insert sanction %s: %w", record.ActionID, sanction.ErrAlreadySanctioned)
			}
		}
		return fmt.Errorf("failed to insert sanction record: %w", err)
	}
	return nil
}

// FindOne returns the newest record matching filter, or nil when there is none.
func (s *Store) FindOne(ctx context.Context, filter model.SanctionFilter) (*model.SanctionRecord, error) {
	query := "SELECT * FROM sanctions WHERE 1 = 1"
	var args []interface{}

	if filter.ActionID != "" {
		query += " AND action_id = ?"
		args = append(args, filter.ActionID)
	}
	if filter.GuildID != "" {
		query += " AND guild_id = ?"
		args = append(args, filter.GuildID)
	}
	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filter.Kind))
	}
	if filter.Active != nil {
		query += " AND active = ?"
		args = append(args, *filter.Active)
	}
	query += " ORDER BY issued_at DESC LIMIT 1"

	var record model.SanctionRecord
	err := s.db.GetContext(ctx, &record, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find sanction: %w", err)
	}
	return &record, nil
}

// FindAllActive returns every active record of the given kinds, soonest expiry first.
func (s *Store) FindAllActive(ctx context.Context, kinds []model.SanctionKind) ([]model.SanctionRecord, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	kindNames := make([]string, len(kinds))
	for i, k := range kinds {
		kindNames[i] = string(k)
	}

	query, args, err := sqlx.In(`SELECT * FROM sanctions
			  WHERE active = 1
			  AND kind IN (?)
			  ORDER BY expires_at IS NULL, expires_at`, kindNames)
	if err != nil {
		return nil, fmt.Errorf("failed to build active sanctions query: %w", err)
	}

	var records []model.SanctionRecord
	if err := s.db.SelectContext(ctx, &records, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get active sanctions: %w", err)
	}
	return records, nil
}

// FindByUser returns a user's sanctions in a guild, newest first.
func (s *Store) FindByUser(ctx context.Context, guildID, userID string) ([]model.SanctionRecord, error) {
	var records []model.SanctionRecord
	query := "SELECT * FROM sanctions WHERE guild_id = ? AND user_id = ? ORDER BY issued_at DESC"
	if err := s.db.SelectContext(ctx, &records, query, guildID, userID); err != nil {
		return nil, fmt.Errorf("failed to get sanctions for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// ConditionalDeactivate flips an active record to inactive and writes the reversal
// audit in the same statement. It returns the record as of the flip, or nil when the
// record was already inactive or does not exist.
func (s *Store) ConditionalDeactivate(ctx context.Context, actionID string, info model.ReversalInfo) (*model.SanctionRecord, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin deactivation of %s: %w", actionID, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE sanctions SET active = 0, ended_at = ?, ended_by = ?, end_reason = ?
		 WHERE action_id = ? AND active = 1`,
		info.At.UnixMilli(), info.By, info.Reason, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate sanction %s: %w", actionID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected for sanction %s: %w", actionID, err)
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	var record model.SanctionRecord
	if err := tx.GetContext(ctx, &record, "SELECT * FROM sanctions WHERE action_id = ?", actionID); err != nil {
		return nil, fmt.Errorf("failed to read deactivated sanction %s: %w", actionID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deactivation of %s: %w", actionID, err)
	}
	return &record, nil
}

// UpdateMetadata merges patch into the record's metadata.
func (s *Store) UpdateMetadata(ctx context.Context, actionID string, patch model.SanctionMetadata) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin metadata update of %s: %w", actionID, err)
	}
	defer tx.Rollback()

	var current model.SanctionMetadata
	err = tx.GetContext(ctx, &current, "SELECT metadata FROM sanctions WHERE action_id = ?", actionID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: action %s", sanction.ErrNotFound, actionID)
	}
	if err != nil {
		return fmt.Errorf("failed to read metadata of %s: %w", actionID, err)
	}

	merged := current.Merge(patch)
	if _, err := tx.ExecContext(ctx, "UPDATE sanctions SET metadata = ? WHERE action_id = ?", merged, actionID); err != nil {
		return fmt.Errorf("failed to update metadata of %s: %w", actionID, err)
	}
	return tx.Commit()
}

// IssuedStats counts the sanctions issued in a guild since the given time, per
// moderator and kind, largest first.
func (s *Store) IssuedStats(ctx context.Context, guildID string, since time.Time) ([]model.SanctionCount, error) {
	var counts []model.SanctionCount
	query := `SELECT moderator_id, kind, COUNT(*) AS count FROM sanctions
			  WHERE guild_id = ? AND issued_at >= ?
			  GROUP BY moderator_id, kind
			  ORDER BY count DESC, moderator_id`
	if err := s.db.SelectContext(ctx, &counts, query, guildID, since.UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to get sanction stats for guild %s: %w", guildID, err)
	}
	return counts, nil
}

// CountActive returns the number of active sanctions in a guild.
func (s *Store) CountActive(ctx context.Context, guildID string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM sanctions WHERE guild_id = ? AND active = 1", guildID); err != nil {
		return 0, fmt.Errorf("failed to count active sanctions for guild %s: %w", guildID, err)
	}
	return n, nil
}
