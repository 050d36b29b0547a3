package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/cache"
	"github.com/anisjkb/deed/internal/config"
	"github.com/anisjkb/deed/internal/db"
	"github.com/anisjkb/deed/internal/lock"
	"github.com/anisjkb/deed/internal/obs"
	"github.com/anisjkb/deed/internal/projects"
	"github.com/anisjkb/deed/internal/seed"
)

func main() {
	file := flag.String("file", "fixtures/seed.yaml", "YAML fixture to load")
	reset := flag.Bool("reset", true, "clear banners, testimonials, associates and awards before loading")
	migrate := flag.Bool("migrate", true, "apply pending migrations first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := obs.NewLogger(envOrDefault("OBS_LOG_FORMAT", "auto"), envOrDefault("OBS_LOG_LEVEL", "info")).
		With().Str("component", "seed").Logger()

	fh, err := os.Open(*file)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *file).Msg("open fixture")
	}
	fixture, err := seed.Decode(fh)
	_ = fh.Close()
	if err != nil {
		logger.Fatal().Err(err).Str("file", *file).Msg("invalid fixture")
	}

	if *migrate {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, db.ConnectConfig{URL: cfg.DatabaseURL, ApplicationName: cfg.AppName + "-seed", Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	var client *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		client = redis.NewClient(opts)
		defer client.Close()
	}

	var counts seed.Counts
	run := func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			var applyErr error
			counts, applyErr = seed.Apply(ctx, db.New(tx), fixture, *reset)
			return applyErr
		})
	}
	if client != nil {
		// concurrent seed runs would interleave their resets
		err = lock.Locker{Client: client}.WithLock(ctx, "seed", 5*time.Minute, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
	if client != nil {
		invalidateProjects(ctx, cfg, pool, client, fixture, logger)
	}

	logger.Info().
		Int("designations", counts.Designations).
		Int("employees", counts.Employees).
		Int("projects", counts.Projects).
		Int("banners", counts.Banners).
		Int("testimonials", counts.Testimonials).
		Int("associates", counts.Associates).
		Int("awards", counts.Awards).
		Msg("seed complete")
}

// invalidateProjects drops cached project pages so the site shows the new content at once.
func invalidateProjects(ctx context.Context, cfg *config.Config, pool db.DBTX, client redis.Cmdable, f seed.Fixture, logger zerolog.Logger) {
	svc, err := projects.NewService(projects.ServiceConfig{
		Queries: db.New(pool),
		Cache:   cache.New(client, "projects", cfg.CacheTTL),
		Logger:  logger,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("build project service")
		return
	}
	slugs := make([]string, 0, len(f.Projects))
	for _, p := range f.Projects {
		slugs = append(slugs, p.Slug)
	}
	if err := svc.Invalidate(ctx, slugs...); err != nil {
		logger.Warn().Err(err).Msg("invalidate project cache")
	}
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
