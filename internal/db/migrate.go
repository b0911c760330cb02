package db

import (
	"context"
	"fmt"
)

// schema holds idempotent statements for the tables this service owns.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS history (
		id            UUID PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		mood          TEXT NOT NULL DEFAULT '',
		mood_response TEXT NOT NULL,
		movie_ids     INTEGER[] NOT NULL DEFAULT '{}',
		query         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS history_user_created_idx ON history (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		movie_id   INTEGER NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		poster_url TEXT NOT NULL DEFAULT '',
		mood       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, movie_id)
	)`,
}

// Migrate creates missing tables and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
