package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"teamchat-service/internal/adapters/storage"
	"teamchat-service/internal/adapters/stream"
	"teamchat-service/internal/api/routes"
	"teamchat-service/internal/config"
	"teamchat-service/internal/database"
	"teamchat-service/internal/repositories/postgres"
	"teamchat-service/internal/services"
	"teamchat-service/internal/websocket"
)

func main() {
	// Optional in production; development reads .env.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting teamchat server")

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisService := services.NewRedisService(redisClient.GetClient())
	userRepo := postgres.NewUserRepository(db)
	channelRepo := postgres.NewChannelRepository(db)

	hubOpts := websocket.Options{
		QueueSize:     cfg.Fanout.SendQueueSize,
		PresenceGrace: cfg.Fanout.PresenceGrace,
		StatusStore:   redisService,
		StatusWriter:  userRepo,
	}
	var sink *stream.KafkaSink
	if len(cfg.Kafka.Brokers) > 0 {
		sink = stream.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer sink.Close()
		hubOpts.Sink = sink
	}
	hub := websocket.NewHub(channelRepo, hubOpts)

	attachments, err := storage.NewAttachmentStore(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
	)
	if err != nil {
		// Attachments degrade gracefully; the rest of the service runs.
		slog.Warn("Attachment storage unavailable", "error", err)
		attachments = nil
	}

	router := routes.NewRouter(
		hub,
		redisService,
		db,
		attachments,
		cfg.JWT.Secret,
		cfg.JWT.ExpirationTime,
	)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Close()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
