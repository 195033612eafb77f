package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/recallcards/internal/api"
	"github.com/vytor/recallcards/internal/clock"
	"github.com/vytor/recallcards/internal/config"
	"github.com/vytor/recallcards/internal/db"
	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/jobs"
	"github.com/vytor/recallcards/internal/logger"
	"github.com/vytor/recallcards/internal/repository/sqlite"
	"github.com/vytor/recallcards/internal/services"
	"github.com/vytor/recallcards/internal/store"
	"github.com/vytor/recallcards/internal/worker"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Default().Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("recallcards server starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("persist_queue_size=%d", cfg.PersistQueueSize)
	log.Debug("due_batch_limit=%d", cfg.DueBatchLimit)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	repo := sqlite.NewCardRepository(database.DB)

	// A single worker keeps card writes in the order they were made.
	persistPool := worker.NewPool(1, cfg.PersistQueueSize)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	persistPool.Start(ctx)

	clk := clock.System{}
	flashcardService := services.NewFlashcardService(
		store.NewSync(nil),
		flashcard.NewScheduler(clk),
		clk,
		repo,
		jobs.NewWorkerQueue(persistPool, repo),
		cfg.DueBatchLimit,
	)
	if err := flashcardService.Load(logger.NewContext(ctx, log)); err != nil {
		log.Error("failed to load cards: %v", err)
		persistPool.Stop()
		os.Exit(1)
	}

	srv := api.NewServer(flashcardService, database)
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case err := <-serverErr:
		log.Error("HTTP server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Queued writes must land before the database closes.
	log.Debug("flushing pending card writes (%d queued)", persistPool.QueueSize())
	cancel()
	persistPool.Stop()

	log.Info("recallcards server stopped")
}
