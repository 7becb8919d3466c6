package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/dl5214/reviews-management-system/internal/adapters/hostaway"
	server "github.com/dl5214/reviews-management-system/internal/adapters/http_server"
	"github.com/dl5214/reviews-management-system/internal/adapters/observability"
	redisad "github.com/dl5214/reviews-management-system/internal/adapters/redis"
	"github.com/dl5214/reviews-management-system/internal/app"
	"github.com/dl5214/reviews-management-system/internal/domain"
	"github.com/dl5214/reviews-management-system/internal/shared"
	memstore "github.com/dl5214/reviews-management-system/internal/storage/memory"
	mysqlstore "github.com/dl5214/reviews-management-system/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// moderation store: in-memory by default, MySQL when a DSN is set
	var store domain.ModerationStore = memstore.New()
	if cfg.ModerationDSN != "" {
		db, err := sql.Open("mysql", cfg.ModerationDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		ms := mysqlstore.New(db)
		if err := ms.Init(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("moderation table init failed")
		}
		store = ms
		log.Info().Msg("moderation store: mysql")
	} else {
		log.Info().Msg("moderation store: in-memory (volatile)")
	}

	// feed source: live client with embedded fallback, or embedded only
	var source domain.ReviewSource = hostaway.NewMockSource()
	if cfg.HostawayKey != "" {
		client, err := hostaway.New(cfg.HostawayBase, cfg.HostawayAccount, cfg.HostawayKey, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
		}
		source = hostaway.WithFallback(client, hostaway.NewMockSource())
	}

	// feed cache is optional; without Redis every read refetches
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	norm := app.NewNormalizer(app.ParseAveragePolicy(cfg.AveragePolicy))
	q := app.NewQueryService(source, store, cache, cfg.CacheTTL, norm)
	m := app.NewModerationService(store)

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:     q,
		M:     m,
		Store: store,
		Auth:  server.NewAuth(cfg.SessionSecret, cfg.DashboardUser, cfg.DashboardPass),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
