package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Abdulkaium05/echo-backend/internal/api"
	"github.com/Abdulkaium05/echo-backend/internal/config"
	"github.com/Abdulkaium05/echo-backend/internal/events"
	"github.com/Abdulkaium05/echo-backend/internal/hub"
	"github.com/Abdulkaium05/echo-backend/internal/logger"
	"github.com/Abdulkaium05/echo-backend/internal/presence"
	"github.com/Abdulkaium05/echo-backend/internal/service"
	mongostore "github.com/Abdulkaium05/echo-backend/internal/store/mongo"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv == "development")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	store, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		zl.Fatalw("mongo", "err", err)
	}
	defer store.Close(ctx)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPwd,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		zl.Fatalw("redis", "err", err)
	}
	defer rdb.Close()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, zl)
		defer kp.Close()
		publisher = kp
	}

	h := hub.New(zl)
	tracker := presence.NewTracker(presence.NewRedisStore(rdb, cfg.RedisPrefix))

	profiles := service.NewProfileService(store, h, publisher, zl)
	directory := service.NewDirectoryService(store, h, publisher, zl)
	messages := service.NewMessageService(store, h, publisher, zl)
	reactions := service.NewReactionService(store, h, publisher, zl)
	visibility := service.NewVisibilityService(store, h, zl)
	redemption := service.NewRedemptionService(store, profiles, h, publisher, zl)

	handlers := api.NewHandlers(profiles, directory, messages, reactions, visibility, redemption, tracker, zl)
	app := api.NewServer(handlers, api.NewTokenValidator(cfg.JWTSecret))

	go func() {
		zl.Infow("starting echo backend", "port", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			zl.Fatalw("server exited", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Infow("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		zl.Errorw("shutdown", "err", err)
	}
}
