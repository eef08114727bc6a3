package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fathima-sithara/chatroom-service/internal/config"
	"github.com/fathima-sithara/chatroom-service/internal/database"
	"github.com/fathima-sithara/chatroom-service/internal/events"
	"github.com/fathima-sithara/chatroom-service/internal/handlers"
	"github.com/fathima-sithara/chatroom-service/internal/metrics"
	"github.com/fathima-sithara/chatroom-service/internal/middleware"
	"github.com/fathima-sithara/chatroom-service/internal/repository"
	"github.com/fathima-sithara/chatroom-service/internal/server"
	"github.com/fathima-sithara/chatroom-service/internal/service"
	"github.com/fathima-sithara/chatroom-service/internal/utils"
	"github.com/fathima-sithara/chatroom-service/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.App.Env, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting %s in %s environment on port %d", cfg.App.Name, cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(context.Background(), cfg.Mongo, cfg.App.Name, logger)
	if err != nil {
		sugar.Fatal(err)
	}

	participantRepo := repository.NewMongoParticipantRepo(db, cfg.Mongo.ParticipantsCollection)
	messageRepo := repository.NewMongoMessageRepo(db, cfg.Mongo.MessagesCollection)

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := participantRepo.EnsureIndexes(idxCtx); err != nil {
		idxCancel()
		sugar.Fatal(err)
	}
	idxCancel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	hub := ws.NewHub(cfg.WS.SendBuffer, m, logger)

	publishers := []events.Publisher{hub}
	if cfg.Kafka.Enabled {
		publishers = append(publishers, events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.MaxRetries, cfg.PublishTimeout, logger))
		logger.Info("kafka publisher enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
			zap.Duration("publish_timeout", cfg.PublishTimeout),
		)
	}
	publisher := events.NewFanout(publishers...)

	var rdb *redis.Client
	var limiter fiber.Handler
	if cfg.RateLimit.PerMinute > 0 {
		switch cfg.RateLimit.Backend {
		case "redis":
			rdb, err = database.ConnectRedis(ctx, cfg.Redis, logger)
			if err != nil {
				sugar.Fatal(err)
			}
			limiter = middleware.NewRedisRateLimiter(rdb, cfg.Redis.Prefix, cfg.RateLimit.PerMinute, time.Minute, logger).Handler()
		default:
			limiter = middleware.NewIPRateLimiter(ctx, cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, logger).Handler()
		}
	}

	validator := utils.NewValidator()
	participantSvc := service.NewParticipantService(participantRepo, messageRepo, publisher, validator, m, logger)
	messageSvc := service.NewMessageService(participantRepo, messageRepo, publisher, validator, m, logger)
	sweeper := service.NewSweeper(participantRepo, messageRepo, publisher, m, logger, service.SweeperConfig{
		Interval:       cfg.SweepInterval,
		Inactivity:     cfg.Inactivity,
		RemoveInactive: cfg.Presence.RemoveInactive,
	})
	go sweeper.Run(ctx)

	h := handlers.NewHandler(participantSvc, messageSvc, validator, logger)
	app := server.New(cfg, h, hub, m, limiter, logger)

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")
	cancel()

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	var result *multierror.Error
	if err := app.ShutdownWithContext(ctxShut); err != nil {
		result = multierror.Append(result, fmt.Errorf("fiber shutdown: %w", err))
	}
	if err := publisher.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("publisher close: %w", err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("redis close: %w", err))
		}
	}
	if err := mongoClient.Disconnect(ctxShut); err != nil {
		result = multierror.Append(result, fmt.Errorf("mongo disconnect: %w", err))
	}
	if err := result.ErrorOrNil(); err != nil {
		sugar.Errorf("Shutdown finished with errors: %v", err)
		return
	}
	sugar.Info("Graceful shutdown complete. Goodbye!")
}
