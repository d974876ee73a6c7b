package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hirfa/internal/notifications/consumer"
	"hirfa/internal/notifications/repository"
	"hirfa/internal/notifications/service"
	"hirfa/pkg/config"
	"hirfa/pkg/kafka"
	kafka_config "hirfa/pkg/kafka/config"
	kafkamiddleware "hirfa/pkg/kafka/middleware"
	"hirfa/pkg/realtime"
)

const (
	ServiceName   = "notifier"
	statsInterval = time.Minute
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	log := cfg.Log

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers, cfg.DomainEventsTopic)
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}

	publisher := realtime.NewRedisRelay(cfg.Client.Redis, cfg.RealtimeChannel, nil, log.Component("realtime"))
	emitter := service.NewEmitter(repository.NewMongoNotificationRepository(cfg), publisher, log.Component("notifications"))
	handler := consumer.NewEventHandler(emitter, log.Component("consumer"))

	c, err := kafka.NewConsumer(kafkaCfg, cfg.DomainEventsTopic, cfg.NotifierGroupID, handler.Handle, log.Component("kafka"))
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	metrics := kafkamiddleware.NewMetrics()
	c.Use(kafkamiddleware.LoggingConsumerMiddleware(log))
	c.Use(metrics.Consumer())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerErrors := make(chan error, 1)
	go func() {
		log.Info("Notifier consuming", "topic", cfg.DomainEventsTopic, "group_id", cfg.NotifierGroupID)
		consumerErrors <- c.Start(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case err := <-consumerErrors:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Consumer stopped", "error", err)
			}
			break loop
		case sig := <-shutdown:
			log.Info("Shutdown signal received", "signal", sig)
			break loop
		case <-ticker.C:
			log.Info("Consumer stats", "metrics", metrics.Snapshot(), "lag", c.Lag())
		}
	}

	cancel()
	if err := c.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	cfg.GracefulShutdown()
	log.Info("Notifier stopped")
}
