package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"qrkot/internal/http/handlers"
	httpapi "qrkot/internal/http/httpapi"
	"qrkot/internal/infra"
	"qrkot/internal/infra/geoip"
	"qrkot/internal/middleware"
	"qrkot/internal/service"
	"qrkot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := infra.SetupTracing(ctx, cfg, "qrkot-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	backend, err := storage.Open(ctx, cfg, logger, true)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	defer backend.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer geoip.Close(resolver)

	app := handlers.NewApp(service.New(backend.Store, logger), logger)
	app.AppTitle = cfg.AppTitle
	app.AppDescription = cfg.AppDescription

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		Tokens:          middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer).WithFirstSuperuser(cfg.FirstSuperuserID),
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   geoip.Lookup(resolver),
	})
	if cfg.FirstSuperuserID != "" {
		logger.Info().Str("user_id", cfg.FirstSuperuserID).Msg("first superuser configured")
	}

	logger.Info().Str("driver", backend.Driver).Msgf("API listening on :%s", cfg.Port)
	if err := infra.NewHTTPServer(cfg, router).Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
		return
	}
	logger.Info().Msg("server stopped")
}
