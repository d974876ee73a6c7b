package main

import (
	"context"

	adminhandler "hirfa/internal/admin/handler"
	adminservice "hirfa/internal/admin/service"
	authhandler "hirfa/internal/auth/handler"
	authrepository "hirfa/internal/auth/repository"
	authservice "hirfa/internal/auth/service"
	authvalidator "hirfa/internal/auth/validator"
	bookinghandler "hirfa/internal/bookings/handler"
	bookingrepository "hirfa/internal/bookings/repository"
	bookingservice "hirfa/internal/bookings/service"
	bookingvalidator "hirfa/internal/bookings/validator"
	craftsmanhandler "hirfa/internal/craftsmen/handler"
	craftsmanrepository "hirfa/internal/craftsmen/repository"
	craftsmanservice "hirfa/internal/craftsmen/service"
	craftsmanvalidator "hirfa/internal/craftsmen/validator"
	notificationhandler "hirfa/internal/notifications/handler"
	notificationrepository "hirfa/internal/notifications/repository"
	notificationservice "hirfa/internal/notifications/service"
	paymenthandler "hirfa/internal/payments/handler"
	paymentrepository "hirfa/internal/payments/repository"
	paymentservice "hirfa/internal/payments/service"
	reviewhandler "hirfa/internal/reviews/handler"
	reviewrepository "hirfa/internal/reviews/repository"
	reviewservice "hirfa/internal/reviews/service"
	"hirfa/pkg/app"
	"hirfa/pkg/config"
	"hirfa/pkg/contracts"
	"hirfa/pkg/kafka"
	kafka_config "hirfa/pkg/kafka/config"
	kafkamiddleware "hirfa/pkg/kafka/middleware"
	"hirfa/pkg/middleware"
	"hirfa/pkg/payment"
	"hirfa/pkg/realtime"
)

const (
	ServiceName = "marketplace"
	streamPath  = "/api/v1/notifications/ws"
	webhookPath = "/api/v1/payments/webhook"
)

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateSecrets(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.SetMongo()
	cfg.SetRedis()

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers, cfg.DomainEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	producer, err := kafka.NewProducer(kafkaCfg, cfg.DomainEventsTopic, ServiceName, cfg.Log.Component("kafka"))
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	metrics := kafkamiddleware.NewMetrics()
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(metrics.Producer())

	hub := realtime.NewHub(cfg.Log.Component("realtime"))
	relay := realtime.NewRedisRelay(cfg.Client.Redis, cfg.RealtimeChannel, hub, cfg.Log.Component("realtime"))

	cfg.Log.Info("Starting marketplace API")
	handlers := initHandlers(cfg, producer, hub, relay)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers, app.Options{
		HealthChecks: []contracts.HealthCheck{
			{Name: "mongo", Check: func(ctx context.Context) error { return cfg.Client.Mongo.Ping(ctx, nil) }},
			{Name: "redis", Check: func(ctx context.Context) error { return cfg.Client.Redis.Ping(ctx).Err() }},
		},
		StreamPaths:  []string{streamPath},
		WebhookPaths: []string{webhookPath},
	})
	serverApp.Background("realtime-relay", relay.Run)
	serverApp.OnShutdown(func() {
		hub.Close()
		cfg.Log.Info("Kafka producer stats", "metrics", metrics.Snapshot())
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
		cfg.GracefulShutdown()
	})
	serverApp.Run()
}

func initHandlers(cfg *config.Config, producer kafka.EventPublisher, hub *realtime.Hub, relay *realtime.RedisRelay) contracts.Handlers {
	tokens := authservice.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := middleware.NewAuthenticator(tokens)

	userRepo := authrepository.NewMongoUserRepository(cfg)
	craftsmanRepo := craftsmanrepository.NewMongoCraftsmanRepository(cfg)
	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	reviewRepo := reviewrepository.NewMongoReviewRepository(cfg)
	notificationRepo := notificationrepository.NewMongoNotificationRepository(cfg)
	paymentEventRepo := paymentrepository.NewMongoPaymentEventRepository(cfg)

	emitter := notificationservice.NewEmitter(notificationRepo, relay, cfg.Log.Component("notifications"))

	authService := authservice.NewAuthService(userRepo, craftsmanRepo, tokens, authvalidator.NewAuthValidator(), cfg)
	craftsmanService := craftsmanservice.NewCraftsmanService(craftsmanRepo, reviewRepo, craftsmanvalidator.NewCraftsmanValidator(), cfg)
	bookingService := bookingservice.NewBookingService(bookingRepo, craftsmanRepo, producer, bookingvalidator.NewBookingValidator(), cfg)
	provider := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	paymentService := paymentservice.NewPaymentService(bookingRepo, paymentEventRepo, craftsmanRepo, provider, emitter, producer, cfg)
	reviewService := reviewservice.NewReviewService(reviewRepo, bookingRepo, craftsmanRepo, producer, cfg)
	notificationService := notificationservice.NewNotificationService(notificationRepo, emitter, cfg)
	adminService := adminservice.NewAdminService(authService, craftsmanService, emitter, cfg)

	cfg.Log.Info("Marketplace services initialized", "database", cfg.MongoDatabaseName)

	return contracts.Handlers{
		authhandler.NewAuthHandler(authService, authenticator, cfg.Log),
		craftsmanhandler.NewCraftsmanHandler(craftsmanService, authenticator, cfg),
		bookinghandler.NewBookingHandler(bookingService, authenticator, cfg),
		paymenthandler.NewPaymentHandler(paymentService, authenticator, cfg),
		reviewhandler.NewReviewHandler(reviewService, authenticator, cfg),
		notificationhandler.NewNotificationHandler(notificationService, hub, authenticator, cfg),
		adminhandler.NewAdminHandler(adminService, authenticator, cfg),
	}
}
