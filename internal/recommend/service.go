// Package recommend runs the parse, discover and rerank stages for one request.
package recommend

import (
	"context"
	"fmt"

	"github.com/justestif/go-moodflix/internal/logging"
	"github.com/justestif/go-moodflix/internal/metrics"
	"github.com/justestif/go-moodflix/internal/mood"
	"github.com/justestif/go-moodflix/internal/query"
	"github.com/justestif/go-moodflix/internal/rerank"
	"github.com/justestif/go-moodflix/internal/tmdb"
)

// DefaultPages is how many catalog pages discovery asks for.
const DefaultPages = 3

// QueryParser abstracts the structured-query parser for testing.
type QueryParser interface {
	Parse(ctx context.Context, text, moodLabel string, response mood.Response) (*query.ParsedQuery, error)
}

// Catalog abstracts catalog discovery for testing.
type Catalog interface {
	Discover(ctx context.Context, q *query.ParsedQuery, pages int) []tmdb.Movie
}

// Ranker abstracts the reranker for testing.
type Ranker interface {
	Rerank(candidates []tmdb.Movie, opts rerank.Options) []rerank.RankedMovie
}

// Request is one recommendation request.
type Request struct {
	Text         string
	Mood         string
	MoodResponse mood.Response
	Limit        int
}

// Result is the outcome of a recommendation request. When
// NeedsClarification is set, Results is empty and the catalog was not queried.
type Result struct {
	Results            []rerank.RankedMovie `json:"results"`
	Parsed             *query.ParsedQuery   `json:"parsed"`
	MoodResponse       mood.Response        `json:"moodResponse"`
	NeedsClarification bool                 `json:"needsClarification"`
}

// MovieIDs returns the ranked movie ids in order, the shape history stores.
func (r *Result) MovieIDs() []int {
	ids := make([]int, len(r.Results))
	for i, m := range r.Results {
		ids[i] = m.ID
	}
	return ids
}

// Service wires the three pipeline stages together.
type Service struct {
	parser  QueryParser
	catalog Catalog
	ranker  Ranker
	pages   int
}

// Option configures a Service.
type Option func(*Service)

// WithPages sets how many catalog pages discovery requests.
func WithPages(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pages = n
		}
	}
}

// NewService creates a recommendation service.
func NewService(parser QueryParser, catalog Catalog, ranker Ranker, opts ...Option) *Service {
	s := &Service{
		parser:  parser,
		catalog: catalog,
		ranker:  ranker,
		pages:   DefaultPages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse exposes the parsing stage on its own.
func (s *Service) Parse(ctx context.Context, text, moodLabel string, response mood.Response) (*query.ParsedQuery, error) {
	if response == "" {
		response = mood.Match
	}
	return s.parser.Parse(ctx, text, moodLabel, response)
}

// GetRecommendations parses the request, queries the catalog and reranks
// the candidates. The only error returned is a parse failure (query.ErrParse)
// or a cancelled context; catalog problems surface as an empty result list.
func (s *Service) GetRecommendations(ctx context.Context, req Request) (*Result, error) {
	log := logging.Ctx(ctx)

	response := req.MoodResponse
	if response == "" {
		response = mood.Match
	}

	parsed, err := s.parser.Parse(ctx, req.Text, req.Mood, response)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("parse_error").Inc()
		return nil, fmt.Errorf("parsing request: %w", err)
	}

	res := &Result{
		Results:      []rerank.RankedMovie{},
		Parsed:       parsed,
		MoodResponse: response,
	}
	if parsed.Ambiguous {
		metrics.RecommendationsTotal.WithLabelValues("ambiguous").Inc()
		res.NeedsClarification = true
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates := s.catalog.Discover(ctx, parsed, s.pages)

	tag, _ := mood.Effective(req.Mood, req.Text)
	res.Results = s.ranker.Rerank(candidates, rerank.Options{
		UserText:     req.Text,
		Parsed:       parsed,
		Mood:         tag,
		MoodResponse: response,
		Limit:        req.Limit,
	})

	outcome := "ok"
	if len(res.Results) == 0 {
		outcome = "empty"
	}
	metrics.RecommendationsTotal.WithLabelValues(outcome).Inc()
	metrics.RecommendationResults.Observe(float64(len(res.Results)))

	log.Info().
		Str("mood", tag.String()).
		Str("mood_response", string(response)).
		Int("candidates", len(candidates)).
		Int("results", len(res.Results)).
		Msg("recommendations served")
	return res, nil
}
