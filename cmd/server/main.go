package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-persona-advisors/backend/internal/models"
	"ai-persona-advisors/backend/pkg/config"
	"ai-persona-advisors/backend/pkg/di"
	"ai-persona-advisors/backend/pkg/logger"
	"ai-persona-advisors/backend/pkg/router"
	"ai-persona-advisors/backend/shared/observability"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "version", os.Getenv("APP_VERSION"))

	// Observability: tracing plus the Prometheus /metrics endpoint.
	shutdownTracing := observability.SetupTracing("persona-advisors-backend")
	defer shutdownTracing()
	if cfg.Metrics.Enabled {
		observability.SetupPrometheusMetrics(cfg.Metrics.Addr)
	}

	// Initialize database
	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(
		&models.User{},
		&models.Persona{},
		&models.PersonaUpvote{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	// Indexes for the hot query paths
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_conversation_order ON messages(conversation_id, timestamp, seq)").Error; err != nil {
		log.LogError(err, "Failed to create message index", "index", "idx_messages_conversation_order")
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_personas_marketplace ON personas(is_public, upvotes DESC)").Error; err != nil {
		log.LogError(err, "Failed to create persona index", "index", "idx_personas_marketplace")
	}

	// Initialize dependency injection container
	container, err := di.New(db, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	// Initialize and setup router
	r := router.New(container)
	r.SetupRoutes()

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r.Engine,
	}

	// Start the server in a goroutine
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	if container.Redis != nil {
		container.Redis.Close()
	}

	log.Info("Server exited gracefully")
}
