package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "listing_finder/internal/adapters/http_server"
	"listing_finder/internal/adapters/observability"
	redisad "listing_finder/internal/adapters/redis"
	"listing_finder/internal/app"
	"listing_finder/internal/domain"
	"listing_finder/internal/shared"
	"listing_finder/internal/storage/memory"
	mysqlrepo "listing_finder/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	// cache (optional)
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, continuing without cache")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	// catalog
	var repo domain.ListingRepository
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	} else {
		mem := memory.New()
		if err := seedCatalog(ctx, app.NewIngestionService(nil, mem, cache)); err != nil {
			log.Fatal().Err(err).Msg("seed catalog failed")
		}
		repo = mem
	}

	q := app.NewQueryService(repo, cache, cfg.CacheTTL).WithSearchDelay(cfg.SearchDelay)

	// http
	srv := server.New(cfg.CORSOrigins)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, PriceMin: cfg.PriceMin, PriceMax: cfg.PriceMax})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// seedCatalog loads the embedded listings in file order, which is the
// "recommended" order served by the in-memory catalog.
func seedCatalog(ctx context.Context, ing *app.IngestionService) error {
	payloads, err := shared.SeedPayloads()
	if err != nil {
		return err
	}
	for _, p := range payloads {
		err := ing.IngestPayload(ctx, p)
		observability.ObserveIngest("seed", err)
		if err != nil {
			return err
		}
	}
	log.Info().Int("listings", len(payloads)).Msg("in-memory catalog seeded")
	return nil
}
