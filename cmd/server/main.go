package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Killo023/assignment-sub000/internal/config"
	"github.com/Killo023/assignment-sub000/internal/db"
	"github.com/Killo023/assignment-sub000/internal/extractor"
	"github.com/Killo023/assignment-sub000/internal/generator"
	"github.com/Killo023/assignment-sub000/internal/quota"
	"github.com/Killo023/assignment-sub000/internal/repository"
	"github.com/Killo023/assignment-sub000/internal/router"
	"github.com/Killo023/assignment-sub000/internal/services"
	"github.com/Killo023/assignment-sub000/internal/storage"
	"github.com/Killo023/assignment-sub000/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DatabaseFile)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.DatabaseFile); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Repositories
	subRepo := repository.NewSubmissions(database)
	accRepo := repository.NewAccounts(database)

	// Pipeline components
	ledger := quota.NewLedger(accRepo)
	pdfWorker := extractor.NewWorkerExtractor(cfg.PDFWorkerTimeout, logger, cfg.PDFWorkerCommand)
	ext := extractor.New(pdfWorker)
	gen := generator.NewOpenRouterGenerator(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, logger)

	store, err := storage.NewS3Storage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", "error", err)
	}

	subService := services.NewSubmissionService(subRepo, ledger, ext, gen, store, cfg.GenerationTimeout, logger)

	// Setup HTTP router
	handler := router.NewRouter(subService, cfg.MaxFileSize, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
