package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultHistoryLimit bounds ListForUser when no limit is given.
const DefaultHistoryLimit = 50

// HistoryRepository handles recommendation history operations.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a history entry, touching the owning user in the same transaction.
func (r *HistoryRepository) Create(ctx context.Context, entry *HistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userQuery := `
		INSERT INTO users (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET last_seen_at = NOW()
	`
	if _, err := tx.Exec(ctx, userQuery, entry.UserID); err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.MovieIDs == nil {
		entry.MovieIDs = []int32{}
	}
	query := `
		INSERT INTO history (id, user_id, mood, mood_response, movie_ids, query, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Mood,
		entry.MoodResponse,
		entry.MovieIDs,
		entry.Query,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListForUser returns a user's most recent entries first.
func (r *HistoryRepository) ListForUser(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query := `
		SELECT id, user_id, mood, mood_response, movie_ids, query, created_at
		FROM history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Mood, &e.MoodResponse, &e.MovieIDs, &e.Query, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}

// Delete removes one of the user's entries. Entries owned by someone else are not found.
func (r *HistoryRepository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	query := `DELETE FROM history WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting history entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
