package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tailorcraft/payment-service/internal/config"
	"github.com/tailorcraft/payment-service/internal/infrastructure/database"
	"github.com/tailorcraft/payment-service/internal/infrastructure/gateway/paystack"
	httpServer "github.com/tailorcraft/payment-service/internal/infrastructure/http"
	"github.com/tailorcraft/payment-service/internal/notification"
	"github.com/tailorcraft/payment-service/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, logger); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, logger)

	// Payment gateway client
	gatewayClient := paystack.NewClient(cfg.Service.Paystack.SecretKey, cfg.Service.Paystack.Timeout.Std(), logger)

	// Notification broker; the nop notifier keeps the service usable
	// when no broker is configured.
	var notifier usecase.Notifier = usecase.NopNotifier{}
	var publisher *notification.Publisher
	if cfg.RabbitMQ.URL != "" {
		publisher = notification.NewPublisher(cfg.RabbitMQ, logger)
		defer publisher.Close()
		notifier = publisher
	}

	// Redis backs the API rate limiter; nil disables it.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpSrv := httpServer.NewServer(cfg, logger, repos, gatewayClient, notifier, redisClient)

	// Background sweep for payments stuck in PENDING/PROCESSING when
	// neither a webhook nor a client poll ever settled them.
	if cfg.Sweeper.Enabled {
		sweeper := usecase.NewSweeper(repos.Payment, httpSrv.Verification(), cfg.Sweeper, logger)
		go sweeper.Run(ctx)
	}

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	cancel()

	if err := httpSrv.Shutdown(context.Background()); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	logger.Info("Server shut down successfully")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}
