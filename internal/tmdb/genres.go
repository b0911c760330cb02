package tmdb

import (
	"strings"

	"github.com/justestif/go-moodflix/internal/keywords"
)

// genreIDs maps canonical genre names to TMDB movie genre identifiers.
var genreIDs = map[string]int{
	"Action":          28,
	"Adventure":       12,
	"Animation":       16,
	"Comedy":          35,
	"Crime":           80,
	"Documentary":     99,
	"Drama":           18,
	"Family":          10751,
	"Fantasy":         14,
	"History":         36,
	"Horror":          27,
	"Music":           10402,
	"Mystery":         9648,
	"Romance":         10749,
	"Science Fiction": 878,
	"TV Movie":        10770,
	"Thriller":        53,
	"War":             10752,
	"Western":         37,
}

// GenreID returns the TMDB id for a genre name. Lookup is exact first, then
// on the title-cased form.
func GenreID(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if id, ok := genreIDs[name]; ok {
		return id, true
	}
	id, ok := genreIDs[keywords.TitleCase(name)]
	return id, ok
}

// GenreIDs translates names to ids, silently dropping unknown or repeated names.
func GenreIDs(names []string) []int {
	out := make([]int, 0, len(names))
	seen := make(map[int]struct{}, len(names))
	for _, n := range names {
		id, ok := GenreID(n)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
