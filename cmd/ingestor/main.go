package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"listing_finder/internal/adapters/feed"
	"listing_finder/internal/adapters/observability"
	redisad "listing_finder/internal/adapters/redis"
	"listing_finder/internal/app"
	"listing_finder/internal/domain"
	"listing_finder/internal/shared"
	mysqlrepo "listing_finder/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv).With().Str("run_id", uuid.NewString()).Logger()

	source := "seed"
	if cfg.FeedBase != "" {
		source = "feed"
	}
	log.Info().
		Str("source", source).
		Str("base", cfg.FeedBase).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	if cfg.MySQLDSN == "" {
		log.Fatal().Msg("MYSQL_DSN is required for ingestion")
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	// every job is one listing: a feed id, or a seed payload
	var jobs []func(context.Context) (int64, error)

	if source == "feed" {
		client, err := feed.New(cfg.FeedBase, cfg.FeedKey, cfg.FeedRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize feed client")
		}
		ing := app.NewIngestionService(client, repo, cache)
		ids, err := client.ListIDs(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("list feed ids failed")
		}
		for _, id := range ids {
			id := id
			jobs = append(jobs, func(ctx context.Context) (int64, error) { return id, ing.IngestListing(ctx, id) })
		}
	} else {
		ing := app.NewIngestionService(nil, repo, cache)
		payloads, err := shared.SeedPayloads()
		if err != nil {
			log.Fatal().Err(err).Msg("load seed failed")
		}
		for _, p := range payloads {
			p := p
			id, _ := p["id"].(float64)
			jobs = append(jobs, func(ctx context.Context) (int64, error) { return int64(id), ing.IngestPayload(ctx, p) })
		}
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, job := range jobs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(job func(context.Context) (int64, error)) {
			defer wg.Done()
			defer sem.Release(int64(1))

			id, err := job(ctx)
			observability.ObserveIngest(source, err)
			if err != nil {
				failed.Add(1)
				log.Warn().Int64("id", id).Err(err).Msg("ingest failed")
				return
			}
			log.Debug().Int64("id", id).Msg("ingest ok")
		}(job)
	}

	wg.Wait()
	log.Info().Int("total", len(jobs)).Int64("failed", failed.Load()).Msg("ingestion completed")
}
