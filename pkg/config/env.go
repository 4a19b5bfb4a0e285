package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSlotStepMinutes = "SLOT_STEP_MINUTES"
	EnvSlotCacheSize   = "SLOT_CACHE_SIZE"
	EnvDefaultTimezone = "DEFAULT_TIMEZONE"

	EnvBookingLockBackend = "BOOKING_LOCK_BACKEND"
	EnvBookingLockTTL     = "BOOKING_LOCK_TTL"
	EnvBookingLockWait    = "BOOKING_LOCK_WAIT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvEventsBackend    = "EVENTS_BACKEND"
	EnvKafkaTopic       = "KAFKA_BOOKINGS_TOPIC"
	EnvKafkaDLQTopic    = "KAFKA_BOOKINGS_DLQ_TOPIC"
	EnvRabbitMQURL      = "RABBITMQ_URL"
	EnvRabbitMQExchange = "RABBITMQ_EXCHANGE"
)
