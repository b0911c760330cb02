// Package tmdb is a client for The Movie Database v3 API and implements
// the randomized multi-page discovery used to gather recommendation candidates.
package tmdb

import (
	"errors"
	"time"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	DefaultTimeout      = 8 * time.Second
)

// ErrMissingAPIKey is returned when neither an API key nor a read token is configured.
var ErrMissingAPIKey = errors.New("missing TMDB API key or read access token")

// Config holds TMDB API configuration.
type Config struct {
	// APIKey is sent as the api_key query parameter.
	APIKey string
	// ReadToken is a v4 read access token sent as a bearer token. Takes precedence over APIKey.
	ReadToken    string
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
}

// Validate returns ErrMissingAPIKey when no credential is set.
func (c Config) Validate() error {
	if c.APIKey == "" && c.ReadToken == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ImageBaseURL == "" {
		c.ImageBaseURL = DefaultImageBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
