package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hirfa"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBrokers       = "localhost:9092"
	DefaultDomainEventsTopic  = "hirfa.domain-events"
	DefaultNotifierGroupID    = "hirfa-notifier"
	DefaultRealtimeChannel    = "hirfa:notifications"
	DefaultPaymentCurrency    = "mad"
	DefaultJWTTTL             = 24 * time.Hour
	DefaultMinJWTSecretLength = 16

	DefaultPort = "8080"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit    = 12
	DefaultMaxPaginationLimit = 100
	DefaultNotificationsLimit = 50

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
