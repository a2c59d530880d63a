package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gallerygate/api/internal/config"
	"gallerygate/api/internal/handlers"
	"gallerygate/api/internal/jobs"
	"gallerygate/api/internal/log"
	"gallerygate/api/internal/repository"
	"gallerygate/api/internal/server"
	"gallerygate/api/internal/service"
	"gallerygate/api/internal/storage"
	"gallerygate/api/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	authClient := supabase.NewAuthClient(cfg.Backend)
	restClient := supabase.NewRestClient(cfg.Backend)
	galleryRepo := repository.NewGalleryImageRepository(restClient)
	galleryService := service.NewGalleryService(galleryRepo, objectStore, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, authClient, galleryService)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	var scheduler *jobs.Scheduler
	if cfg.Sweep.Enabled {
		scheduler = jobs.NewScheduler(galleryRepo, objectStore, logger)
		if err := scheduler.Start(cfg.Sweep.Schedule); err != nil {
			logger.Error().Err(err).Msg("scheduler start failed")
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	logger.Info().Msg("server exited cleanly")
}
