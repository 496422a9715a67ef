// Command server runs the meal plan HTTP API.
//
// Startup order: config → logging → tracing → database (migrate) → cache →
// catalog seed → search index → HTTP server. SIGINT/SIGTERM trigger a
// graceful shutdown bounded by SHUTDOWN_TIMEOUT.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-mealplan-backend/internal/auth"
	"github.com/tbourn/go-mealplan-backend/internal/cache"
	"github.com/tbourn/go-mealplan-backend/internal/config"
	httpapi "github.com/tbourn/go-mealplan-backend/internal/http"
	"github.com/tbourn/go-mealplan-backend/internal/observability"
	"github.com/tbourn/go-mealplan-backend/internal/repo"
	"github.com/tbourn/go-mealplan-backend/internal/search"
	"github.com/tbourn/go-mealplan-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// idempotencySweep is how often expired idempotency records are purged.
const idempotencySweep = 15 * time.Minute

func main() {
	cfg := config.MustLoad()
	sysutil.ConfigureLogger(sysutil.LogOptions{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: cfg.OTEL.ServiceName,
		Version: version,
	})
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DB.Path, repo.Options{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		BusyTimeout:  cfg.DB.BusyTimeout,
		SlowQuery:    cfg.DB.SlowQuery,
	})
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DB.Path).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	var store cache.Cache
	if cfg.Cache.RedisURL != "" {
		store, err = cache.NewRedisCache(cfg.Cache.RedisURL, "mealplan:")
		if err != nil {
			// Catalog reads fall back to the database.
			log.Warn().Err(err).Msg("redis unavailable, catalog cache disabled")
			store = nil
		} else {
			defer store.Close()
		}
	}

	svc := httpapi.NewServices(httpapi.Deps{
		DB:     db,
		Index:  search.NewLive(),
		Tokens: auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL),
		Cache:  store,
	}, cfg)

	if seed, err := svc.Catalog.SeedFile(ctx, cfg.CatalogSeedPath); err != nil {
		log.Fatal().Err(err).Str("path", cfg.CatalogSeedPath).Msg("catalog seed")
	} else if cfg.CatalogSeedPath != "" {
		log.Info().Int("items", len(seed.Items)).Int("videos", len(seed.Videos)).Msg("catalog seeded")
	}

	n, err := svc.Recipe.Reindex(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("build search index")
	}
	log.Info().Int("recipes", n).Msg("search index ready")

	go purgeIdempotency(ctx, svc)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, svc, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Server.Port),
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// purgeIdempotency deletes expired idempotency records until ctx is done.
func purgeIdempotency(ctx context.Context, svc *httpapi.Services) {
	t := time.NewTicker(idempotencySweep)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, svc.Recipe.DB, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("idempotency purge")
			}
		}
	}
}
