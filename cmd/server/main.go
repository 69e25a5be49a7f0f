package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/cosmosquiz/internal/api"
	"github.com/vytor/cosmosquiz/internal/config"
	"github.com/vytor/cosmosquiz/internal/db"
	"github.com/vytor/cosmosquiz/internal/game"
	"github.com/vytor/cosmosquiz/internal/jobs"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/repository/sqlite"
	"github.com/vytor/cosmosquiz/internal/seed"
	"github.com/vytor/cosmosquiz/internal/services"
	"github.com/vytor/cosmosquiz/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("Cosmos Quiz Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("completion_worker_count=%d", cfg.CompletionWorkerCount)
	log.Debug("completion_queue_size=%d", cfg.CompletionQueueSize)
	log.Debug("rate_limit=%v rps, burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	log.Debug("session_idle_timeout=%v", cfg.SessionIdleTimeout)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	gw := sqlite.NewGateway(database.DB)

	ctx, cancel := context.WithCancel(context.Background())
	ctx = logger.NewContext(ctx, log)

	if cfg.SeedSamples {
		if _, err := seed.NewSeeder(gw.Quizzes, gw.Settings).SeedOnce(ctx); err != nil {
			log.Error("failed to seed sample quizzes: %v", err)
			os.Exit(1)
		}
	}

	completionPool := worker.NewPool(cfg.CompletionWorkerCount, cfg.CompletionQueueSize)

	quizService := services.NewQuizService(gw.Quizzes)
	progressService := services.NewProgressService(gw.Progress)
	queue := jobs.NewWorkerQueue(completionPool, progressService)
	playService := services.NewPlayService(quizService, gw.Attempts, queue, game.Options{
		MismatchDelay: cfg.MatchMismatchDelay,
	})

	srv := &api.Server{
		DB:          database.DB,
		Quizzes:     quizService,
		Favorites:   services.NewFavoriteService(gw.Favorites, gw.Quizzes),
		Progress:    progressService,
		Attempts:    services.NewAttemptService(gw.Attempts),
		Play:        playService,
		Limiter:     api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		CORSOrigins: cfg.CORSOrigins,
	}

	completionPool.Start(ctx)
	go evictIdle(ctx, playService, srv.Limiter, cfg.SessionIdleTimeout)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Flush what live sessions still hold before the workers go away.
	log.Debug("flushing live sessions")
	playService.EvictIdle(logger.NewContext(shutdownCtx, log), 0)

	log.Debug("stopping completion pool")
	completionPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("Cosmos Quiz Server Stopped")
	log.Info("===========================================")
}

// evictIdle drops idle play sessions and rate limiter buckets.
func evictIdle(ctx context.Context, play services.PlayService, limiter *api.RateLimiter, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			play.EvictIdle(ctx, maxIdle)
			if n := limiter.EvictIdle(maxIdle); n > 0 {
				logger.FromContext(ctx).Debug("evicted idle rate limiters: count=%d", n)
			}
		}
	}
}
