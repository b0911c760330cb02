package query

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/justestif/go-moodflix/internal/keywords"
	"github.com/justestif/go-moodflix/internal/logging"
	"github.com/justestif/go-moodflix/internal/metrics"
	"github.com/justestif/go-moodflix/internal/mood"
	"github.com/justestif/go-moodflix/internal/random"
)

// DefaultSwapChance is the probability of one adjacent swap in the final
// keyword and genre lists.
const DefaultSwapChance = 0.5

// Parser builds ParsedQuery values from free text.
type Parser struct {
	gen        Generator
	rng        random.Source
	swapChance float64
}

// Option configures a Parser.
type Option func(*Parser)

// WithRandom sets the random source used for list shuffling.
func WithRandom(src random.Source) Option {
	return func(p *Parser) {
		if src != nil {
			p.rng = src
		}
	}
}

// WithSwapChance sets the adjacent-swap probability. Zero disables swaps.
func WithSwapChance(chance float64) Option {
	return func(p *Parser) {
		if chance >= 0 && chance <= 1 {
			p.swapChance = chance
		}
	}
}

// NewParser creates a parser backed by gen.
func NewParser(gen Generator, opts ...Option) *Parser {
	p := &Parser{
		gen:        gen,
		rng:        random.NewFromTime(),
		swapChance: DefaultSwapChance,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts text plus an optional mood label into a structured query.
// The returned MoodResponse is always the response passed in. The only
// error is a *ParseError, returned when the generator answered with text
// that cannot be recovered as JSON.
func (p *Parser) Parse(ctx context.Context, text, moodLabel string, response mood.Response) (*ParsedQuery, error) {
	log := logging.Ctx(ctx)

	obj, stage, err := p.generate(ctx, log, buildPrompt(text, moodLabel, response), response)
	if err != nil {
		metrics.ParseErrors.Inc()
		return nil, err
	}
	metrics.ParseStageTotal.WithLabelValues(string(stage)).Inc()

	raw := coerceFields(obj)
	q := &ParsedQuery{
		Tempo:        raw.tempo,
		RuntimeMin:   raw.runtimeMin,
		RuntimeMax:   raw.runtimeMax,
		Era:          raw.era,
		Language:     raw.language,
		Adult:        raw.adult,
		MoodResponse: response,
		Ambiguous:    raw.ambiguous,
	}
	if q.Ambiguous {
		return p.ambiguous(log, q, stage), nil
	}

	q.Genres = keywords.NormalizeGenres(raw.genres, MaxGenres)
	q.Keywords = keywords.NormalizeKeywords(raw.keywords, "", MaxKeywords)
	if len(q.Keywords) == 0 {
		q.Keywords = keywords.ExtractFromText(text, MaxKeywords)
	}

	effective, known := mood.Effective(moodLabel, text)

	if known {
		keep := mood.ExplicitKeep(text, effective)
		hintMode := response
		if keep {
			hintMode = mood.Match
		}
		hints := mood.Resolve(effective).For(hintMode)

		if !keep {
			q.Keywords = prependHints(q.Keywords, hints.Keywords)
		}
		if len(q.Genres) == 0 {
			q.Genres = keywords.NormalizeGenres(hints.Genres, MaxGenres)
		}
	}
	if len(q.Genres) == 0 {
		q.Genres = keywords.NormalizeGenres(keywords.InferGenres(q.Keywords), MaxGenres)
	}

	if known && response == mood.Address {
		q.Genres = dropGenre(q.Genres, effective.String())
	}

	if len(q.Genres) == 0 && len(q.Keywords) == 0 {
		q.Ambiguous = true
		return p.ambiguous(log, q, stage), nil
	}

	p.maybeSwap(q.Keywords)
	p.maybeSwap(q.Genres)

	log.Debug().
		Str("stage", string(stage)).
		Str("mood", effective.String()).
		Strs("genres", q.Genres).
		Strs("keywords", q.Keywords).
		Msg("structured query parsed")
	return q, nil
}

// generate runs the strict, loose and static stages in order.
func (p *Parser) generate(ctx context.Context, log *zerolog.Logger, prompt string, response mood.Response) (map[string]any, Stage, error) {
	out, err := p.gen.Generate(ctx, prompt, ParsedQuerySchema())
	if err == nil {
		obj, pass, derr := DecodeTolerant(out)
		if derr == nil {
			log.Debug().Str("stage", string(StageStrict)).Str("recovery", pass).Msg("generator stage succeeded")
			return obj, StageStrict, nil
		}
		err = derr
	}
	log.Warn().Err(err).Str("stage", string(StageStrict)).Msg("generator stage failed")

	out, err = p.gen.Generate(ctx, prompt, nil)
	if err != nil {
		log.Warn().Err(err).Str("stage", string(StageLoose)).Msg("generator stage failed, using static fallback")
		return map[string]any{"moodResponse": string(response), "ambiguous": false}, StageFallback, nil
	}

	obj, pass, err := DecodeTolerant(out)
	if err != nil {
		return nil, StageLoose, &ParseError{Stage: StageLoose, RawLen: len(out), Err: err}
	}
	log.Debug().Str("stage", string(StageLoose)).Str("recovery", pass).Msg("generator stage succeeded")
	return obj, StageLoose, nil
}

func (p *Parser) ambiguous(log *zerolog.Logger, q *ParsedQuery, stage Stage) *ParsedQuery {
	q.Genres = []string{}
	q.Keywords = []string{}
	metrics.ParseAmbiguous.Inc()
	log.Debug().Str("stage", string(stage)).Msg("structured query is ambiguous")
	return q
}

// maybeSwap swaps at most one random adjacent pair in place.
func (p *Parser) maybeSwap(list []string) {
	if len(list) < 2 || p.swapChance == 0 {
		return
	}
	if p.rng.Float64() >= p.swapChance {
		return
	}
	i := p.rng.Intn(len(list) - 1)
	list[i], list[i+1] = list[i+1], list[i]
}

// prependHints puts up to maxHintKeywords new hint words in front of kws,
// keeping the total within MaxKeywords.
func prependHints(kws, hints []string) []string {
	present := make(map[string]struct{}, len(kws))
	for _, k := range kws {
		present[k] = struct{}{}
	}

	out := make([]string, 0, MaxKeywords)
	for _, h := range hints {
		if len(out) >= maxHintKeywords {
			break
		}
		h = strings.ToLower(strings.TrimSpace(h))
		if _, dup := present[h]; dup || h == "" {
			continue
		}
		present[h] = struct{}{}
		out = append(out, h)
	}
	for _, k := range kws {
		if len(out) >= MaxKeywords {
			break
		}
		out = append(out, k)
	}
	return out
}

// dropGenre removes genres equal to name, ignoring case.
func dropGenre(genres []string, name string) []string {
	out := genres[:0]
	for _, g := range genres {
		if !strings.EqualFold(g, name) {
			out = append(out, g)
		}
	}
	return out
}
