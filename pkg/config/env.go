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

	EnvSessionIdleTTL         = "SESSION_IDLE_TTL"
	EnvSessionJanitorInterval = "SESSION_JANITOR_INTERVAL"
	EnvBookingIntentThreshold = "BOOKING_INTENT_THRESHOLD"

	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvOpenAIModelChat = "OPENAI_MODEL_CHAT"
	EnvLLMTimeout      = "LLM_TIMEOUT"

	EnvKafkaEnabled           = "KAFKA_ENABLED"
	EnvKafkaAlertsTopic       = "KAFKA_ALERTS_TOPIC"
	EnvKafkaAppointmentsTopic = "KAFKA_APPOINTMENTS_TOPIC"
	EnvKafkaDLQTopic          = "KAFKA_DLQ_TOPIC"
	EnvKafkaConsumerGroup     = "KAFKA_CONSUMER_GROUP"
)
