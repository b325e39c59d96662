package config

import "time"

const (
	DefaultMongoURI          = ""
	DefaultMongoDatabaseName = "medcompanion"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSessionIdleTTL         = 1 * time.Hour
	DefaultSessionJanitorInterval = 5 * time.Minute
	DefaultBookingIntentThreshold = 0.5

	DefaultOpenAIModelChat = "gpt-4o-mini"
	DefaultLLMTimeout      = 10 * time.Second

	DefaultKafkaEnabled           = false
	DefaultKafkaAlertsTopic       = "medcompanion.alerts"
	DefaultKafkaAppointmentsTopic = "medcompanion.appointments"
	DefaultKafkaDLQTopic          = "medcompanion.dlq"
	DefaultKafkaConsumerGroup     = "medcompanion-alerts"
)
