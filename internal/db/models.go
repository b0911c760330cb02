package db

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account, known only by its opaque identifier.
type User struct {
	ID         string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// HistoryEntry records one recommendation shown to a user.
type HistoryEntry struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"-"`
	Mood         string    `json:"mood"`
	MoodResponse string    `json:"moodResponse"`
	MovieIDs     []int32   `json:"movieIds"`
	Query        string    `json:"query"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Favorite is a movie a user saved.
type Favorite struct {
	UserID    string    `json:"-"`
	MovieID   int32     `json:"movieId"`
	Title     string    `json:"title"`
	PosterURL string    `json:"posterUrl"`
	Mood      string    `json:"mood"`
	CreatedAt time.Time `json:"createdAt"`
}
