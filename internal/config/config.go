// Package config loads service configuration from defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/justestif/go-moodflix/internal/cache"
	"github.com/justestif/go-moodflix/internal/gemini"
	"github.com/justestif/go-moodflix/internal/logging"
	"github.com/justestif/go-moodflix/internal/query"
	"github.com/justestif/go-moodflix/internal/recommend"
	"github.com/justestif/go-moodflix/internal/rerank"
	"github.com/justestif/go-moodflix/internal/tmdb"
)

var (
	// ErrMissingCatalogKey is returned when neither a TMDB API key nor a read token is set.
	ErrMissingCatalogKey = errors.New("missing TMDB_API_KEY or TMDB_READ_TOKEN")

	// ErrMissingGeneratorKey is returned when the Gemini API key is not set.
	ErrMissingGeneratorKey = errors.New("missing GEMINI_API_KEY")
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Gemini    GeminiConfig    `koanf:"gemini"`
	Recommend RecommendConfig `koanf:"recommend"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Auth      AuthConfig      `koanf:"auth"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// TMDBConfig holds catalog credentials.
type TMDBConfig struct {
	APIKey       string        `koanf:"api_key"`
	ReadToken    string        `koanf:"read_token"`
	BaseURL      string        `koanf:"base_url"`
	ImageBaseURL string        `koanf:"image_base_url"`
	Timeout      time.Duration `koanf:"timeout"`
}

// GeminiConfig holds generator credentials.
type GeminiConfig struct {
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	Timeout     time.Duration `koanf:"timeout"`
	Temperature float32       `koanf:"temperature"`
}

// RecommendConfig tunes the pipeline.
type RecommendConfig struct {
	Pages      int     `koanf:"pages"`
	MaxResults int     `koanf:"max_results"`
	SwapChance float64 `koanf:"swap_chance"`
	// Seed fixes the random source when non-zero.
	Seed int64 `koanf:"seed"`
}

// DatabaseConfig enables history and favorites when URL is set.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// RedisConfig enables the catalog response cache when Addr is set.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		TMDB: TMDBConfig{
			BaseURL:      tmdb.DefaultBaseURL,
			ImageBaseURL: tmdb.DefaultImageBaseURL,
			Timeout:      tmdb.DefaultTimeout,
		},
		Gemini: GeminiConfig{
			Model:       gemini.DefaultModel,
			Timeout:     gemini.DefaultTimeout,
			Temperature: 0.2,
		},
		Recommend: RecommendConfig{
			Pages:      recommend.DefaultPages,
			MaxResults: rerank.DefaultMaxResults,
			SwapChance: query.DefaultSwapChance,
		},
		Redis: RedisConfig{
			TTL: cache.DefaultTTL,
		},
	}
}

// Validate checks required credentials and value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.TMDB.APIKey == "" && c.TMDB.ReadToken == "" {
		errs = append(errs, ErrMissingCatalogKey)
	}
	if c.Gemini.APIKey == "" {
		errs = append(errs, ErrMissingGeneratorKey)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Recommend.Pages < 1 || c.Recommend.Pages > tmdb.MaxPages {
		errs = append(errs, fmt.Errorf("recommend pages %d must be between 1 and %d", c.Recommend.Pages, tmdb.MaxPages))
	}
	if c.Recommend.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("recommend max_results %d must be positive", c.Recommend.MaxResults))
	}
	if c.Recommend.SwapChance < 0 || c.Recommend.SwapChance > 1 {
		errs = append(errs, fmt.Errorf("recommend swap_chance %v must be within [0, 1]", c.Recommend.SwapChance))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging format %q must be json or console", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// LoggingSettings converts to the logging package's config.
func (c *Config) LoggingSettings() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Caller: c.Logging.Caller,
	}
}

// TMDBSettings converts to the catalog client's config.
func (c *Config) TMDBSettings() tmdb.Config {
	return tmdb.Config{
		APIKey:       c.TMDB.APIKey,
		ReadToken:    c.TMDB.ReadToken,
		BaseURL:      c.TMDB.BaseURL,
		ImageBaseURL: c.TMDB.ImageBaseURL,
		Timeout:      c.TMDB.Timeout,
	}
}

// GeminiSettings converts to the generator's config.
func (c *Config) GeminiSettings() gemini.Config {
	return gemini.Config{
		APIKey:      c.Gemini.APIKey,
		Model:       c.Gemini.Model,
		Timeout:     c.Gemini.Timeout,
		Temperature: c.Gemini.Temperature,
	}
}

// CacheSettings converts to the response cache's config.
func (c *Config) CacheSettings() cache.Config {
	return cache.Config{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TTL:      c.Redis.TTL,
		Prefix:   "moodflix:",
	}
}
