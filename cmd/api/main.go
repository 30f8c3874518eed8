package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"snapstudy/internal/http/handlers"
	"snapstudy/internal/http/httpapi"
	"snapstudy/internal/infra"
	"snapstudy/internal/infra/geoip"
	"snapstudy/internal/jobs"
	"snapstudy/internal/notegpt"
	"snapstudy/internal/quota"
	"snapstudy/internal/requestlog"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Request log: durable when a database is configured, in-memory otherwise.
	var sink requestlog.Sink
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		pg, err := requestlog.NewPostgres(ctx, pool, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare request log store")
		}
		sink = pg
		logger.Info().Msg("request log: postgres")
	} else {
		sink = requestlog.NewMemory()
		logger.Info().Msg("request log: in-memory")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	if resolver != nil {
		defer resolver.Close()
	}

	backend := notegpt.NewClient(notegpt.Options{
		BaseURL: cfg.NoteGPTBaseURL,
		Logger:  &logger,
	})

	limiter := quota.NewLimiter(cfg.DailyLimit)
	orchestrator := jobs.New(jobs.Options{
		Backend:       backend,
		Quota:         limiter,
		Log:           sink,
		Logger:        logger,
		CountryLookup: resolver.LookupFunc(),
		BrandSuffix:   cfg.BrandSuffix,
		SettleDelay:   cfg.SettleDelay,
		PollInterval:  cfg.PollInterval,
		RenderBudget:  cfg.RenderBudget,
		MaxConcurrent: cfg.MaxConcurrentJobs,
		Retention:     cfg.JobRetention,
	})
	defer orchestrator.Close()

	app := &handlers.App{
		Logger:    logger,
		Jobs:      orchestrator,
		Quota:     limiter,
		Log:       sink,
		AdminPass: cfg.AdminPass,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		BurstLimit:     cfg.BurstLimit,
		BurstWindow:    time.Minute,
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
