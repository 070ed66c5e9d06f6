package sanctions

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS sanctions (
	action_id TEXT PRIMARY KEY,
	guild_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	moderator_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	duration TEXT NOT NULL,
	issued_at INTEGER NOT NULL,
	expires_at INTEGER,
	active INTEGER NOT NULL DEFAULT 1,
	metadata TEXT NOT NULL DEFAULT '{}',
	ended_at INTEGER,
	ended_by TEXT NOT NULL DEFAULT '',
	end_reason TEXT NOT NULL DEFAULT ''
);`

var indexes = []string{
	// At most one active sanction per user and kind in a guild.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sanctions_one_active
		ON sanctions (guild_id, user_id, kind) WHERE active = 1`,
	`CREATE INDEX IF NOT EXISTS idx_sanctions_active_expiry ON sanctions (active, expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sanctions_user ON sanctions (guild_id, user_id, issued_at)`,
}

// Init opens the sanction database and ensures the table and indexes exist.
func Init(dbPath string) (*sqlx.DB, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sanction database: %w", err)
	}
	// One writer at a time keeps conditional updates strictly serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sanctions table: %w", err)
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute index statement %s: %w", stmt, err)
		}
	}

	return db, nil
}
