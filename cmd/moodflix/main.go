// Command moodflix serves mood-based movie recommendations over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/justestif/go-moodflix/internal/auth"
	"github.com/justestif/go-moodflix/internal/cache"
	"github.com/justestif/go-moodflix/internal/config"
	"github.com/justestif/go-moodflix/internal/db"
	"github.com/justestif/go-moodflix/internal/gemini"
	"github.com/justestif/go-moodflix/internal/logging"
	"github.com/justestif/go-moodflix/internal/query"
	"github.com/justestif/go-moodflix/internal/random"
	"github.com/justestif/go-moodflix/internal/recommend"
	"github.com/justestif/go-moodflix/internal/rerank"
	"github.com/justestif/go-moodflix/internal/tmdb"
	"github.com/justestif/go-moodflix/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LoggingSettings())

	ctx := context.Background()

	rng := random.NewFromTime()
	if cfg.Recommend.Seed != 0 {
		rng = random.New(cfg.Recommend.Seed)
	}

	generator, err := gemini.New(ctx, cfg.GeminiSettings())
	if err != nil {
		return fmt.Errorf("creating gemini client: %w", err)
	}
	defer generator.Close()

	var catalogOpts []tmdb.Option
	catalogOpts = append(catalogOpts, tmdb.WithRandom(rng))
	responseCache, err := cache.New(ctx, cfg.CacheSettings())
	switch {
	case errors.Is(err, cache.ErrDisabled):
		logging.Info().Msg("catalog response cache disabled")
	case err != nil:
		return fmt.Errorf("connecting to redis: %w", err)
	default:
		defer responseCache.Close()
		catalogOpts = append(catalogOpts, tmdb.WithCache(responseCache))
	}
	catalog := tmdb.NewClient(cfg.TMDBSettings(), catalogOpts...)

	service := recommend.NewService(
		query.NewParser(generator, query.WithRandom(rng), query.WithSwapChance(cfg.Recommend.SwapChance)),
		catalog,
		rerank.New(catalog, rerank.WithRandom(rng), rerank.WithMaxResults(cfg.Recommend.MaxResults)),
		recommend.WithPages(cfg.Recommend.Pages),
	)

	deps := web.Deps{Recommender: service}
	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

		verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, auth.WithIssuer(cfg.Auth.Issuer))
		if err != nil {
			return fmt.Errorf("history and favorites need JWT_SECRET: %w", err)
		}

		deps.Health = database
		deps.History = database.History()
		deps.Favorites = database.Favorites()
		deps.Verifier = verifier
	} else {
		logging.Info().Msg("no DATABASE_URL set, history and favorites disabled")
	}

	server := web.NewServer(web.ServerConfig{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	}, deps)

	return server.Run(ctx)
}
