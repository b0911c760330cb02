package keywords

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical genre names as used by the movie catalog.
var canonicalGenres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime", "Documentary", "Drama", "Family",
	"Fantasy", "History", "Horror", "Music", "Mystery", "Romance", "Science Fiction", "TV Movie",
	"Thriller", "War", "Western",
}

var genreAliases = map[string]string{
	"sci-fi":          "Science Fiction",
	"scifi":           "Science Fiction",
	"sci fi":          "Science Fiction",
	"science-fiction": "Science Fiction",
	"sf":              "Science Fiction",
	"romcom":          "Romance",
	"rom-com":         "Romance",
	"romantic":        "Romance",
	"romantic comedy": "Romance",
	"animated":        "Animation",
	"anime":           "Animation",
	"cartoon":         "Animation",
	"doc":             "Documentary",
	"documentaries":   "Documentary",
	"musical":         "Music",
	"kids":            "Family",
	"children":        "Family",
	"suspense":        "Thriller",
	"thrillers":       "Thriller",
	"historical":      "History",
	"period":          "History",
	"scary":           "Horror",
	"funny":           "Comedy",
	"comedies":        "Comedy",
	"tv":              "TV Movie",
}

// TitleCase capitalizes each word of s, e.g. "science fiction" -> "Science Fiction".
// A Caser is stateful, so one is built per call.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s)))
}

// CanonicalGenre maps a genre name or alias to its canonical catalog spelling.
// Unknown names are returned title-cased so the caller may still try them.
func CanonicalGenre(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return ""
	}
	for _, g := range canonicalGenres {
		if strings.ToLower(g) == lower {
			return g
		}
	}
	if g, ok := genreAliases[lower]; ok {
		return g
	}
	return TitleCase(lower)
}

// NormalizeGenres canonicalizes and de-duplicates genre names, keeping at most limit.
func NormalizeGenres(raw []string, limit int) []string {
	out := make([]string, 0, max(limit, 0))
	seen := make(map[string]struct{})
	for _, name := range raw {
		if len(out) >= limit {
			break
		}
		g := CanonicalGenre(name)
		if g == "" {
			continue
		}
		key := strings.ToLower(g)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, g)
	}
	return out
}

// maxInferredGenres caps the genres InferGenres derives from keywords.
const maxInferredGenres = 3

// genreCue maps a keyword fragment to a genre.
type genreCue struct {
	fragment string
	genre    string
}

// genreCues is scanned in order; order decides which genres win the cap.
var genreCues = []genreCue{
	{"sci", "Science Fiction"},
	{"space", "Science Fiction"},
	{"alien", "Science Fiction"},
	{"robot", "Science Fiction"},
	{"futur", "Science Fiction"},
	{"heist", "Crime"},
	{"crime", "Crime"},
	{"mafia", "Crime"},
	{"gangster", "Crime"},
	{"detective", "Mystery"},
	{"mystery", "Mystery"},
	{"murder", "Mystery"},
	{"horror", "Horror"},
	{"haunt", "Horror"},
	{"ghost", "Horror"},
	{"zombie", "Horror"},
	{"terror", "Horror"},
	{"funny", "Comedy"},
	{"comedy", "Comedy"},
	{"laugh", "Comedy"},
	{"feelgood", "Comedy"},
	{"love", "Romance"},
	{"romance", "Romance"},
	{"romantic", "Romance"},
	{"wedding", "Romance"},
	{"action", "Action"},
	{"explos", "Action"},
	{"fight", "Action"},
	{"chase", "Action"},
	{"adventur", "Adventure"},
	{"quest", "Adventure"},
	{"journey", "Adventure"},
	{"treasure", "Adventure"},
	{"magic", "Fantasy"},
	{"dragon", "Fantasy"},
	{"fantasy", "Fantasy"},
	{"thrill", "Thriller"},
	{"suspense", "Thriller"},
	{"spy", "Thriller"},
	{"warfare", "War"},
	{"soldier", "War"},
	{"battle", "War"},
	{"western", "Western"},
	{"cowboy", "Western"},
	{"animat", "Animation"},
	{"cartoon", "Animation"},
	{"anime", "Animation"},
	{"family", "Family"},
	{"kids", "Family"},
	{"wholesome", "Family"},
	{"documentary", "Documentary"},
	{"histor", "History"},
	{"music", "Music"},
	{"drama", "Drama"},
	{"grief", "Drama"},
	{"tearjerker", "Drama"},
}

// InferGenres derives up to three genres from keywords by substring matching
// against a fixed lookup table. Result order follows the table.
func InferGenres(keywords []string) []string {
	out := make([]string, 0, maxInferredGenres)
	if len(keywords) == 0 {
		return out
	}
	seen := make(map[string]struct{})
	for _, cue := range genreCues {
		if len(out) >= maxInferredGenres {
			break
		}
		if _, dup := seen[cue.genre]; dup {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(strings.ToLower(kw), cue.fragment) {
				seen[cue.genre] = struct{}{}
				out = append(out, cue.genre)
				break
			}
		}
	}
	return out
}
