// Package rerank applies a second relevance pass over catalog candidates
// and deliberately varies the top of the list between identical requests.
package rerank

import (
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/justestif/go-moodflix/internal/keywords"
	"github.com/justestif/go-moodflix/internal/mood"
	"github.com/justestif/go-moodflix/internal/query"
	"github.com/justestif/go-moodflix/internal/random"
	"github.com/justestif/go-moodflix/internal/tmdb"
)

// DefaultMaxResults caps the ranked list when no smaller limit is requested.
const DefaultMaxResults = 20

// Score weights.
const (
	fullMatchBonus    = 3.0
	partialMatchBonus = 0.6
	popularityWeight  = 2.0
	ratingDivisor     = 5.0
	tempoBonus        = 0.8
	languageBonus     = 0.5
	eraBonus          = 0.7
	addressPenalty    = 0.25
	moodHintBonus     = 0.4
	jitter            = 0.001
	maxRotation       = 7
	partialPrefixLen  = 4
)

var (
	fastPattern = regexp.MustCompile(`\b(action|chase|explos\w*|fight\w*|race|racing|battle\w*|heist|escape|thrill\w*|adrenaline|war|mission|assassin\w*)\b`)
	slowPattern = regexp.MustCompile(`\b(drama|quiet|slow|contemplative|romance|family|life|love|memor\w*|grief|journey|reflect\w*|healing)\b`)
)

// RankedMovie is a candidate with its display score and absolute poster URL.
type RankedMovie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterURL        string  `json:"poster_url"`
	VoteAverage      float64 `json:"vote_average"`
	Popularity       float64 `json:"popularity"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
	Score            float64 `json:"score"`
}

// Options carries the request context used for scoring.
type Options struct {
	UserText     string
	Parsed       *query.ParsedQuery
	Mood         mood.Tag
	MoodResponse mood.Response
	// Limit truncates the output when positive and below the reranker cap.
	Limit int
}

// PosterResolver turns a catalog poster path into an absolute URL.
type PosterResolver interface {
	PosterURL(path string) string
}

// Reranker scores and orders candidates.
type Reranker struct {
	posters    PosterResolver
	rng        random.Source
	maxResults int
}

// Option configures a Reranker.
type Option func(*Reranker)

// WithRandom sets the random source for jitter and rotation.
func WithRandom(src random.Source) Option {
	return func(r *Reranker) {
		if src != nil {
			r.rng = src
		}
	}
}

// WithMaxResults sets the output cap.
func WithMaxResults(n int) Option {
	return func(r *Reranker) {
		if n > 0 {
			r.maxResults = n
		}
	}
}

// New creates a Reranker.
func New(posters PosterResolver, opts ...Option) *Reranker {
	r := &Reranker{
		posters:    posters,
		rng:        random.NewFromTime(),
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type scored struct {
	movie tmdb.Movie
	score float64
}

// Rerank dedupes candidates by id and title, scores them, sorts by
// jittered score and then rotates a random number (< 7) of leading items to
// the end before truncating.
func (r *Reranker) Rerank(candidates []tmdb.Movie, opts Options) []RankedMovie {
	movies := dedupe(candidates)
	if len(movies) == 0 {
		return []RankedMovie{}
	}

	kws := queryKeywords(opts)
	maxPop := 0.0
	for _, m := range movies {
		maxPop = math.Max(maxPop, m.Popularity)
	}

	list := make([]scored, len(movies))
	for i, m := range movies {
		s := score(m, kws, maxPop, opts)
		s += (r.rng.Float64()*2 - 1) * jitter
		list[i] = scored{movie: m, score: s}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	list = rotate(list, rotationOffset(r.rng, len(list)))

	n := r.maxResults
	if opts.Limit > 0 && opts.Limit < n {
		n = opts.Limit
	}
	n = min(n, len(list))

	out := make([]RankedMovie, n)
	for i := range n {
		out[i] = r.project(list[i])
	}
	return out
}

func (r *Reranker) project(s scored) RankedMovie {
	m := s.movie
	poster := m.PosterPath
	if r.posters != nil {
		poster = r.posters.PosterURL(m.PosterPath)
	}
	return RankedMovie{
		ID:               m.ID,
		Title:            m.Title,
		Overview:         m.Overview,
		ReleaseDate:      m.ReleaseDate,
		PosterURL:        poster,
		VoteAverage:      m.VoteAverage,
		Popularity:       m.Popularity,
		GenreIDs:         m.GenreIDs,
		OriginalLanguage: m.OriginalLanguage,
		Score:            math.Round(s.score*100) / 100,
	}
}

// score computes the unjittered relevance of one movie.
func score(m tmdb.Movie, kws []string, maxPop float64, opts Options) float64 {
	text := strings.ToLower(m.Title + " " + m.Overview)

	var s float64
	for _, kw := range kws {
		switch {
		case strings.Contains(text, kw):
			s += fullMatchBonus
		case len(kw) > partialPrefixLen && strings.Contains(text, kw[:partialPrefixLen]):
			s += partialMatchBonus
		}
	}

	// One bonus for the mood's own hint words, skipping those already scored.
	if opts.Mood != "" {
		for _, h := range mood.Resolve(opts.Mood).For(opts.MoodResponse).Keywords {
			if !slices.Contains(kws, h) && strings.Contains(text, h) {
				s += moodHintBonus
				break
			}
		}
	}

	if maxPop > 0 {
		s += m.Popularity / maxPop * popularityWeight
	}
	s += m.VoteAverage / ratingDivisor

	if q := opts.Parsed; q != nil {
		switch q.Tempo {
		case query.TempoFast:
			if fastPattern.MatchString(text) {
				s += tempoBonus
			}
		case query.TempoSlow:
			if slowPattern.MatchString(text) {
				s += tempoBonus
			}
		}
		if q.Language != "" && strings.EqualFold(q.Language, m.OriginalLanguage) {
			s += languageBonus
		}
		if q.Era.Contains(m.ReleaseYear()) {
			s += eraBonus
		}
	}

	if opts.MoodResponse == mood.Address {
		s -= addressPenalty
	}
	return s
}

// queryKeywords prefers parsed keywords and falls back to the raw text.
func queryKeywords(opts Options) []string {
	if opts.Parsed != nil && len(opts.Parsed.Keywords) > 0 {
		out := make([]string, len(opts.Parsed.Keywords))
		for i, k := range opts.Parsed.Keywords {
			out[i] = strings.ToLower(k)
		}
		return out
	}
	return keywords.ExtractFromText(opts.UserText, query.MaxKeywords)
}

// rotationOffset returns a random offset in [0, min(7, n)).
func rotationOffset(rng random.Source, n int) int {
	if n <= 1 {
		return 0
	}
	return rng.Intn(min(maxRotation, n))
}

// rotate moves the first offset items to the end.
func rotate(list []scored, offset int) []scored {
	if offset <= 0 || offset >= len(list) {
		return list
	}
	out := make([]scored, 0, len(list))
	out = append(out, list[offset:]...)
	return append(out, list[:offset]...)
}

// dedupe keeps the first movie for each id and each case-folded title.
func dedupe(movies []tmdb.Movie) []tmdb.Movie {
	ids := make(map[int]struct{}, len(movies))
	titles := make(map[string]struct{}, len(movies))
	out := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		title := strings.ToLower(strings.TrimSpace(m.Title))
		if _, dup := ids[m.ID]; dup {
			continue
		}
		if _, dup := titles[title]; dup && title != "" {
			continue
		}
		ids[m.ID] = struct{}{}
		if title != "" {
			titles[title] = struct{}{}
		}
		out = append(out, m)
	}
	return out
}
