package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/justestif/go-moodflix/internal/auth"
	"github.com/justestif/go-moodflix/internal/db"
	"github.com/justestif/go-moodflix/internal/logging"
)

// HistoryStore persists recommendation history.
type HistoryStore interface {
	Create(ctx context.Context, entry *db.HistoryEntry) error
	ListForUser(ctx context.Context, userID string, limit int) ([]db.HistoryEntry, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}

// FavoriteStore persists saved movies.
type FavoriteStore interface {
	Add(ctx context.Context, fav *db.Favorite) error
	ListForUser(ctx context.Context, userID string) ([]db.Favorite, error)
	Remove(ctx context.Context, userID string, movieID int32) error
}

const maxHistoryLimit = 200

type historyRequest struct {
	Mood         string  `json:"mood" validate:"max=32"`
	MoodResponse string  `json:"moodResponse" validate:"required,oneof=match address"`
	MovieIDs     []int32 `json:"movieIds" validate:"max=100,dive,gt=0"`
	Query        string  `json:"query" validate:"max=1000"`
}

type favoriteRequest struct {
	MovieID   int32  `json:"movieId" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,max=300"`
	PosterURL string `json:"posterUrl" validate:"omitempty,url,max=500"`
	Mood      string `json:"mood" validate:"max=32"`
}

// ListHistory handles GET /api/history.
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	limit := db.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, r, http.StatusBadRequest, codeValidation, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	entries, err := h.history.ListForUser(r.Context(), userID, limit)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"history": entries})
}

// CreateHistory handles POST /api/history.
func (h *Handlers) CreateHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req historyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	entry := &db.HistoryEntry{
		UserID:       userID,
		Mood:         req.Mood,
		MoodResponse: req.MoodResponse,
		MovieIDs:     req.MovieIDs,
		Query:        req.Query,
	}
	if err := h.history.Create(r.Context(), entry); err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, entry)
}

// DeleteHistory handles DELETE /api/history/{id}.
func (h *Handlers) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeValidation, "id must be a UUID")
		return
	}
	if err := h.history.Delete(r.Context(), id, userID); err != nil {
		h.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFavorites handles GET /api/favorites.
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	favs, err := h.favorites.ListForUser(r.Context(), userID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"favorites": favs})
}

// AddFavorite handles POST /api/favorites.
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req favoriteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	fav := &db.Favorite{
		UserID:    userID,
		MovieID:   req.MovieID,
		Title:     req.Title,
		PosterURL: req.PosterURL,
		Mood:      req.Mood,
	}
	if err := h.favorites.Add(r.Context(), fav); err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, fav)
}

// RemoveFavorite handles DELETE /api/favorites/{movieID}.
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 32)
	if err != nil || movieID <= 0 {
		writeError(w, r, http.StatusBadRequest, codeValidation, "movieID must be a positive integer")
		return
	}
	if err := h.favorites.Remove(r.Context(), userID, int32(movieID)); err != nil {
		h.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Msg("store operation failed")
	writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
}
