package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"golang.org/x/crypto/bcrypt"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/events"
	"warbler/internal/logger"
	"warbler/internal/repositories"
	"warbler/internal/server"
	"warbler/internal/services"
	"warbler/internal/session"
	"warbler/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logrus.NewEntry(logger.Init(cfg.LogLevel))

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	uow := repositories.NewGORMUnitOfWork(db, log.WithField("component", "uow"))

	// --- Cache ---
	var userCache cache.Cache
	if cfg.RedisEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		userCache, err = cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.WithField("addr", cfg.RedisAddr).Info("Using Redis cache")
	} else {
		userCache = cache.NewLocal(time.Minute)
	}
	defer userCache.Close()

	// --- Event publishing ---
	var publisher events.Publisher = events.NewLogPublisher(log.WithField("component", "events"))
	broker := "disabled"
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log.WithField("component", "rabbitmq"))
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = events.NewBrokerPublisher(mqClient)
		broker = "connected"

		consumeEvents(mqClient, log.WithField("component", "consumer"))
	}

	// --- Services ---
	svc := server.Services{
		Auth:     services.NewAuthService(uow, publisher, bcrypt.DefaultCost, log),
		Users:    services.NewUserService(uow, userCache, cfg.CacheTTL, publisher, log),
		Social:   services.NewSocialService(uow, publisher, log),
		Messages: services.NewMessageService(uow, publisher, log),
		Likes:    services.NewLikeService(uow, publisher, log),
	}

	app := server.New(svc, server.Options{
		Sessions:  session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookie),
		Log:       log,
		AccessLog: true,
		Broker:    broker,
	})

	// --- Start HTTP Server ---
	log.Infof("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server gracefully stopped")
}

// consumeEvents logs every domain event coming back from the broker.
func consumeEvents(mqClient *rabbitmq.Client, log *logrus.Entry) {
	log.Info("Starting RabbitMQ consumer for domain events...")
	handler := func(msg amqp.Delivery) error {
		event, err := events.Decode(msg.Body)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"event_id":  event.ID,
			"type":      event.Type,
			"user_id":   event.UserID,
			"target_id": event.TargetID,
		}).Info("Received domain event")
		return nil
	}
	if err := mqClient.Consume(handler); err != nil {
		log.WithError(err).Error("Failed to start RabbitMQ consumer")
	}
}
