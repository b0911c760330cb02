package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoriteRepository handles saved-movie operations.
type FavoriteRepository struct {
	pool *pgxpool.Pool
}

// Add saves a movie, refreshing its display fields if it was already saved.
func (r *FavoriteRepository) Add(ctx context.Context, fav *Favorite) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO users (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET last_seen_at = NOW()
	`, fav.UserID)
	batch.Queue(`
		INSERT INTO favorites (user_id, movie_id, title, poster_url, mood, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			title = EXCLUDED.title,
			poster_url = EXCLUDED.poster_url,
			mood = EXCLUDED.mood
		RETURNING created_at
	`, fav.UserID, fav.MovieID, fav.Title, fav.PosterURL, fav.Mood)

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	if _, err := results.Exec(); err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	if err := results.QueryRow().Scan(&fav.CreatedAt); err != nil {
		return fmt.Errorf("upserting favorite: %w", err)
	}
	return nil
}

// ListForUser returns a user's favorites, newest first.
func (r *FavoriteRepository) ListForUser(ctx context.Context, userID string) ([]Favorite, error) {
	query := `
		SELECT user_id, movie_id, title, poster_url, mood, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	favs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Favorite, error) {
		var f Favorite
		err := row.Scan(&f.UserID, &f.MovieID, &f.Title, &f.PosterURL, &f.Mood, &f.CreatedAt)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning favorites: %w", err)
	}
	if favs == nil {
		favs = []Favorite{}
	}
	return favs, nil
}

// Remove deletes a saved movie.
func (r *FavoriteRepository) Remove(ctx context.Context, userID string, movieID int32) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2`
	result, err := r.pool.Exec(ctx, query, userID, movieID)
	if err != nil {
		return fmt.Errorf("deleting favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
