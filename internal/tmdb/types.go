package tmdb

import (
	"strconv"
)

// Movie is one discovery candidate as returned by the catalog.
type Movie struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	Overview         string   `json:"overview"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"vote_average"`
	ReleaseDate      string   `json:"release_date"`
	PosterPath       string   `json:"poster_path"`
	GenreIDs         []int    `json:"genre_ids"`
	OriginalLanguage string   `json:"original_language"`
	Adult            bool     `json:"adult"`
	MatchedKeywords  []string `json:"matched_keywords,omitempty"` // computed during discovery
}

// ReleaseYear returns the year of ReleaseDate, or 0 if unknown.
func (m Movie) ReleaseYear() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// pageResponse is the JSON shape shared by /discover/movie and /search/movie.
type pageResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}
