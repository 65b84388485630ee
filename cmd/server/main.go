// Command server runs the farm dashboard API.
//
// @title       Farm Dashboard API
// @version     1.0
// @description Farm dashboard backend reconciling current and legacy profiles, with lazy backfill of weather, soil and recommendations.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/farm-dashboard-backend/internal/config"
	httpapi "github.com/tbourn/farm-dashboard-backend/internal/http"
	"github.com/tbourn/farm-dashboard-backend/internal/nasa"
	"github.com/tbourn/farm-dashboard-backend/internal/observability"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
	"github.com/tbourn/farm-dashboard-backend/internal/scheduler"
	"github.com/tbourn/farm-dashboard-backend/internal/services"
	"github.com/tbourn/farm-dashboard-backend/internal/sysutil"
)

const shutdownGrace = 10 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	sysutil.ConfigureLogging(os.Stderr, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded")
	}
	version := sysutil.Version()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	db, err := repo.Open(cfg.Store, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open store")
	}
	if err := repo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate store")
	}

	client := nasa.NewClient(cfg.NASA, &http.Client{Timeout: cfg.NASA.Timeout})
	ingest := services.NewIngestionService(db, client, cfg.NASA.WindowDays, cfg.Ingest.RunTimeout)

	sched := scheduler.New(cfg.Ingest.Interval, ingest)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("start scheduler")
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, ingest, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("store", cfg.Store.Driver).
			Dur("ingest_interval", cfg.Ingest.Interval).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	sched.Stop()
	ingest.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
