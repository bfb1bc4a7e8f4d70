package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/handlers"
	"productapi/internal/logger"
	"productapi/internal/metrics"
	"productapi/internal/server"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	if err := config.LoadEnvFile(".env"); err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	// --- Store ---
	ctx := context.Background()
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to open store")
	}

	// --- Product events (optional) ---
	var events services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQ.URL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			log.Error().Err(err).Msg("product events disabled")
		} else {
			events = mqClient
			log.Info().Str("queue", mqClient.Queue()).Msg("publishing product events")
		}
	}

	// --- Gateway, handlers, app ---
	productService := services.NewProductService(db.Products, events, log)
	productHandler := handlers.NewProductHandler(productService, log)
	healthHandler := handlers.NewHealthHandler(productService, cfg.Store)

	app := server.New(server.Options{
		Logger:           log,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:        os.Stdout,
		Metrics:          metrics.New(),
	}, productHandler, healthHandler)

	// --- Start HTTP Server ---
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("Server is running")
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := db.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error closing store")
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.Error().Err(err).Msg("error closing RabbitMQ client")
		}
	}
	log.Info().Msg("Server gracefully stopped")
}
