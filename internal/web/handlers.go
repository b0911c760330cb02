package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/justestif/go-moodflix/internal/logging"
	"github.com/justestif/go-moodflix/internal/mood"
	"github.com/justestif/go-moodflix/internal/query"
	"github.com/justestif/go-moodflix/internal/recommend"
)

const healthTimeout = 2 * time.Second

// Recommender is the pipeline surface the handlers need.
type Recommender interface {
	Parse(ctx context.Context, text, moodLabel string, response mood.Response) (*query.ParsedQuery, error)
	GetRecommendations(ctx context.Context, req recommend.Request) (*recommend.Result, error)
}

// Pinger reports dependency health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	recommender Recommender
	health      Pinger
	history     HistoryStore
	favorites   FavoriteStore
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		recommender: deps.Recommender,
		health:      deps.Health,
		history:     deps.History,
		favorites:   deps.Favorites,
	}
}

func (h *Handlers) persistenceEnabled() bool {
	return h.history != nil && h.favorites != nil
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
			writeError(w, r, http.StatusServiceUnavailable, codeUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

type moodInfo struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// Moods handles GET /api/moods.
func (h *Handlers) Moods(w http.ResponseWriter, r *http.Request) {
	table := mood.GenreTable()
	out := make([]moodInfo, 0, len(table))
	for _, tag := range mood.All() {
		out = append(out, moodInfo{Name: tag.String(), Genres: table[tag]})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"moods": out})
}

type parseRequest struct {
	Text         string `json:"text" validate:"required,max=1000"`
	Mood         string `json:"mood" validate:"omitempty,max=32"`
	MoodResponse string `json:"moodResponse" validate:"omitempty,oneof=match address"`
}

// Parse handles POST /api/parse.
func (h *Handlers) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	parsed, err := h.recommender.Parse(r.Context(), req.Text, req.Mood, mood.Response(req.MoodResponse))
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, parsed)
}

type recommendationsRequest struct {
	Text         string `json:"text" validate:"required,max=1000"`
	Mood         string `json:"mood" validate:"omitempty,max=32"`
	MoodResponse string `json:"moodResponse" validate:"omitempty,oneof=match address"`
	Limit        int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

// Recommendations handles POST /api/recommendations.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.recommender.GetRecommendations(r.Context(), recommend.Request{
		Text:         req.Text,
		Mood:         req.Mood,
		MoodResponse: mood.Response(req.MoodResponse),
		Limit:        req.Limit,
	})
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *Handlers) pipelineError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.Ctx(r.Context())
	switch {
	case errors.Is(err, query.ErrParse):
		log.Warn().Err(err).Msg("query could not be parsed")
		writeError(w, r, http.StatusUnprocessableEntity, codeParseError, "could not understand the request; try rephrasing")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Debug().Err(err).Msg("request cancelled")
		writeError(w, r, http.StatusServiceUnavailable, codeUnavailable, "request cancelled")
	default:
		log.Error().Err(err).Msg("recommendation pipeline failed")
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
