package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joshua-takyi/servicehub/internal/config"
	"github.com/joshua-takyi/servicehub/internal/connect"
	"github.com/joshua-takyi/servicehub/internal/container"
	"github.com/joshua-takyi/servicehub/internal/mailer"
	"github.com/joshua-takyi/servicehub/internal/models"
	"github.com/joshua-takyi/servicehub/internal/routes"
	"github.com/joshua-takyi/servicehub/internal/templates"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	logger.Info("Starting ServiceHub API server", "environment", cfg.Environment)

	tpl, err := templates.Load()
	if err != nil {
		logger.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	// Initialize database connections
	mongoClient, err := connect.MongoDBConnect(cfg)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully", "database", cfg.MongoDBDatabase)

	repo := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase)
	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	err = repo.EnsureUserIndexes(indexCtx)
	cancelIndexes()
	if err != nil {
		logger.Error("Failed to create user indexes", "error", err)
		os.Exit(1)
	}

	rdb, err := connect.RedisConnect(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	if rdb == nil {
		logger.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	uploader, err := connect.NewUploader(cfg)
	if err != nil {
		logger.Error("Failed to initialize uploads", "driver", cfg.UploadDriver, "error", err)
		os.Exit(1)
	}

	m, err := mailer.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize mailer", "driver", cfg.MailDriver, "error", err)
		os.Exit(1)
	}

	// Initialize dependency container
	appContainer := container.NewContainer(cfg, logger, repo, mongoClient, rdb, m, uploader, tpl)

	// Setup routes
	router := routes.SetupRoutes(appContainer)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.MailTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Close connections
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("Error closing Redis", "error", err)
		}
	}
	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
