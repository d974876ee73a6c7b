package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE"
	EnvMongoConnTimeout  = "MONGO_CONNECTION_TIMEOUT"

	EnvRedisAddr       = "REDIS_ADDR"
	EnvRedisPassword   = "REDIS_PASSWORD"
	EnvRedisDB         = "REDIS_DB"
	EnvRealtimeChannel = "REALTIME_CHANNEL"

	EnvKafkaBrokers        = "KAFKA_BROKERS"
	EnvDomainEventsTopic   = "KAFKA_TOPIC_DOMAIN_EVENTS"
	EnvNotifierGroupID     = "KAFKA_CONSUMER_GROUP"
	EnvJWTSecret           = "JWT_SECRET"
	EnvJWTTTL              = "JWT_TTL"
	EnvStripeSecretKey     = "STRIPE_SECRET_KEY"
	EnvStripeWebhookSecret = "STRIPE_WEBHOOK_SECRET"
	EnvPaymentCurrency     = "PAYMENT_CURRENCY"
	EnvInternalAPISecret   = "INTERNAL_API_SECRET"

	EnvPort         = "PORT"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvLogAddSource = "LOG_ADD_SOURCE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultPaginationLimit = "DEFAULT_PAGINATION_LIMIT"
	EnvMaxPaginationLimit     = "MAX_PAGINATION_LIMIT"
)
