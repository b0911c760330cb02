package tmdb

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-moodflix/internal/logging"
	"github.com/justestif/go-moodflix/internal/query"
)

// Discovery limits.
const (
	MaxPages         = 4
	MaxCatalogPages  = 500
	MaxCandidates    = 60
	maxSearchQueries = 2
	fetchConcurrency = 4

	nearTieEpsilon = 0.001
	nearTieSwap    = 0.15
	shortKeyword   = 3
)

// sortOrders are the orderings one of which is picked per discovery call.
var sortOrders = []string{
	"popularity.desc",
	"release_date.desc",
	"primary_release_date.desc",
	"vote_average.desc",
	"revenue.desc",
}

// Discover gathers up to MaxCandidates movies for q. Page 1 of a randomly
// sorted discovery listing is fetched first, then further random pages and
// keyword searches run concurrently. Failures never surface: a failed first
// page or a cancelled context yields an empty list, and failed secondary
// fetches are skipped.
func (c *Client) Discover(ctx context.Context, q *query.ParsedQuery, pages int) []Movie {
	log := logging.Ctx(ctx)
	pages = min(max(pages, 1), MaxPages)
	params := c.discoverParams(q)

	first, err := c.fetchPage(ctx, discoverPath, params, 1)
	if err != nil {
		log.Warn().Err(err).Msg("catalog discovery unavailable")
		return []Movie{}
	}

	total := min(max(first.TotalPages, 1), MaxCatalogPages)
	extra := c.pickPages(min(pages, total), total)[1:]

	var searches []string
	if q != nil {
		searches = q.Keywords[:min(len(q.Keywords), maxSearchQueries)]
	}

	// One slot per fetch so merge order does not depend on completion order.
	slots := make([][]Movie, 1+len(extra)+len(searches))
	slots[0] = first.Results

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, page := range extra {
		g.Go(func() error {
			resp, err := c.fetchPage(gctx, discoverPath, params, page)
			if err != nil {
				log.Debug().Err(err).Int("page", page).Msg("skipping discovery page")
				return nil
			}
			mu.Lock()
			slots[1+i] = resp.Results
			mu.Unlock()
			return nil
		})
	}
	for i, kw := range searches {
		g.Go(func() error {
			results, err := c.Search(gctx, kw, 1)
			if err != nil {
				log.Debug().Err(err).Str("keyword", kw).Msg("skipping keyword search")
				return nil
			}
			mu.Lock()
			slots[1+len(extra)+i] = results
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		log.Debug().Err(ctx.Err()).Msg("discovery abandoned")
		return []Movie{}
	}

	var kws []string
	if q != nil {
		kws = q.Keywords
	}
	return c.rank(dedupe(slots), kws)
}

// discoverParams translates a parsed query into /discover/movie filters.
func (c *Client) discoverParams(q *query.ParsedQuery) url.Values {
	sortBy := sortOrders[c.rng.Intn(len(sortOrders))]
	p := url.Values{
		"sort_by":       {sortBy},
		"include_adult": {"false"},
	}
	if sortBy == "vote_average.desc" {
		p.Set("vote_count.gte", "100")
	}
	if q == nil {
		return p
	}

	if ids := GenreIDs(q.Genres); len(ids) > 0 {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.Itoa(id)
		}
		p.Set("with_genres", strings.Join(parts, "|"))
	}
	if q.RuntimeMin > 0 {
		p.Set("with_runtime.gte", strconv.Itoa(q.RuntimeMin))
	}
	if q.RuntimeMax > 0 {
		p.Set("with_runtime.lte", strconv.Itoa(q.RuntimeMax))
	}
	if q.Era != nil {
		p.Set("primary_release_date.gte", fmt.Sprintf("%04d-01-01", q.Era.From))
		p.Set("primary_release_date.lte", fmt.Sprintf("%04d-12-31", q.Era.To))
	}
	if q.Language != "" {
		p.Set("with_original_language", q.Language)
	}
	if q.Adult {
		p.Set("include_adult", "true")
	}
	return p
}

// pickPages returns want distinct page numbers in [1,total], page 1 first.
func (c *Client) pickPages(want, total int) []int {
	pages := []int{1}
	if want <= 1 || total <= 1 {
		return pages
	}
	pool := make([]int, total-1)
	for i := range pool {
		pool[i] = i + 2
	}
	for i := 0; i < want-1 && i < len(pool); i++ {
		j := i + c.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		pages = append(pages, pool[i])
	}
	return pages
}

// dedupe flattens slots keeping the first occurrence of each id.
func dedupe(slots [][]Movie) []Movie {
	seen := make(map[int]struct{})
	var out []Movie
	for _, results := range slots {
		for _, m := range results {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

type scoredMovie struct {
	movie Movie
	score float64
}

// rank scores, orders and caps candidates.
func (c *Client) rank(movies []Movie, kws []string) []Movie {
	matchers := keywordMatchers(kws)
	scored := make([]scoredMovie, len(movies))
	for i, m := range movies {
		m.MatchedKeywords = matchKeywords(m.Overview, matchers)
		scored[i] = scoredMovie{movie: m, score: candidateScore(m)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	for i := 0; i+1 < len(scored); i++ {
		if math.Abs(scored[i].score-scored[i+1].score) < nearTieEpsilon && c.rng.Float64() < nearTieSwap {
			scored[i], scored[i+1] = scored[i+1], scored[i]
		}
	}

	n := min(len(scored), MaxCandidates)
	out := make([]Movie, n)
	for i := range n {
		out[i] = scored[i].movie
	}
	return out
}

// candidateScore is vote_average*10 + log1p(popularity)*2 + 4 per matched keyword.
func candidateScore(m Movie) float64 {
	return m.VoteAverage*10 + math.Log1p(math.Max(m.Popularity, 0))*2 + float64(len(m.MatchedKeywords))*4
}

type keywordMatcher struct {
	keyword string
	word    *regexp.Regexp // nil for short keywords, which match as substrings
}

func keywordMatchers(kws []string) []keywordMatcher {
	out := make([]keywordMatcher, 0, len(kws))
	for _, kw := range kws {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		m := keywordMatcher{keyword: kw}
		if len(kw) > shortKeyword {
			m.word = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
		out = append(out, m)
	}
	return out
}

func matchKeywords(overview string, matchers []keywordMatcher) []string {
	if overview == "" || len(matchers) == 0 {
		return nil
	}
	text := strings.ToLower(overview)
	var out []string
	for _, m := range matchers {
		if (m.word == nil && strings.Contains(text, m.keyword)) || (m.word != nil && m.word.MatchString(text)) {
			out = append(out, m.keyword)
		}
	}
	return out
}
