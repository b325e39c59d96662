package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"medcompanion/pkg/client"
	"medcompanion/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SessionIdleTTL         time.Duration
	SessionJanitorInterval time.Duration
	BookingIntentThreshold float64

	OpenAIAPIKey    string
	OpenAIModelChat string
	LLMTimeout      time.Duration

	KafkaEnabled           bool
	KafkaAlertsTopic       string
	KafkaAppointmentsTopic string
	KafkaDLQTopic          string
	KafkaConsumerGroup     string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the environment, validates it and exits on invalid settings.
func Load(serviceName string) *Config {
	cfg := FromEnv()
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})
	cfg.Client = client.NewClient()

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv reads every setting without validating or creating a logger.
func FromEnv() *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  strings.ToLower(getEnvStr(EnvLogLevel, DefaultLogLevel)),
		LogFormat: strings.ToLower(getEnvStr(EnvLogFormat, DefaultLogFormat)),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		SessionIdleTTL:         getEnvDuration(EnvSessionIdleTTL, DefaultSessionIdleTTL),
		SessionJanitorInterval: getEnvDuration(EnvSessionJanitorInterval, DefaultSessionJanitorInterval),
		BookingIntentThreshold: getEnvFloat(EnvBookingIntentThreshold, DefaultBookingIntentThreshold),

		OpenAIAPIKey:    getEnvStr(EnvOpenAIAPIKey, ""),
		OpenAIModelChat: getEnvStr(EnvOpenAIModelChat, DefaultOpenAIModelChat),
		LLMTimeout:      getEnvDuration(EnvLLMTimeout, DefaultLLMTimeout),

		KafkaEnabled:           getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		KafkaAlertsTopic:       getEnvStr(EnvKafkaAlertsTopic, DefaultKafkaAlertsTopic),
		KafkaAppointmentsTopic: getEnvStr(EnvKafkaAppointmentsTopic, DefaultKafkaAppointmentsTopic),
		KafkaDLQTopic:          getEnvStr(EnvKafkaDLQTopic, DefaultKafkaDLQTopic),
		KafkaConsumerGroup:     getEnvStr(EnvKafkaConsumerGroup, DefaultKafkaConsumerGroup),
	}
}

// SetMongo connects when a Mongo URI is configured. Without one the service
// runs with persistence disabled.
func (cfg *Config) SetMongo() {
	if !cfg.PersistenceEnabled() {
		cfg.Log.Warn("MONGO_URI not set, appointment persistence disabled")
		return
	}
	if err := cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout); err != nil {
		cfg.Log.Fatal("MongoDB unavailable", "error", err, "uri", redactMongoURI(cfg.MongoURI))
	}
}

func (cfg *Config) PersistenceEnabled() bool {
	return cfg.MongoURI != ""
}

func (cfg *Config) LLMEnabled() bool {
	return cfg.OpenAIAPIKey != ""
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.LogLevel {
	case logger.DEBUG, logger.INFO, logger.WARN, logger.ERROR:
	default:
		errors = append(errors, fmt.Sprintf("LogLevel must be one of [debug, info, warn, error], got: %s", cfg.LogLevel))
	}
	if cfg.LogFormat != logger.JSON && cfg.LogFormat != logger.TEXT {
		errors = append(errors, fmt.Sprintf("LogFormat must be one of [json, text], got: %s", cfg.LogFormat))
	}

	if cfg.MongoURI != "" && !regexp.MustCompile(`^mongodb(\+srv)?://.+`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoURI != "" && cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty when MongoURI is set")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.SessionIdleTTL < 0 {
		errors = append(errors, fmt.Sprintf("SessionIdleTTL cannot be negative, got: %s", cfg.SessionIdleTTL))
	}
	if cfg.SessionJanitorInterval <= 0 {
		errors = append(errors, fmt.Sprintf("SessionJanitorInterval must be positive, got: %s", cfg.SessionJanitorInterval))
	}
	if cfg.BookingIntentThreshold < 0 || cfg.BookingIntentThreshold > 1 {
		errors = append(errors, fmt.Sprintf("BookingIntentThreshold must be between 0 and 1, got: %g", cfg.BookingIntentThreshold))
	}

	if cfg.LLMTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("LLMTimeout must be positive, got: %s", cfg.LLMTimeout))
	}
	if cfg.OpenAIAPIKey != "" && cfg.OpenAIModelChat == "" {
		errors = append(errors, "OpenAIModelChat cannot be empty when OpenAIAPIKey is set")
	}

	if cfg.KafkaEnabled {
		if cfg.KafkaAlertsTopic == "" {
			errors = append(errors, "KafkaAlertsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaAppointmentsTopic == "" {
			errors = append(errors, "KafkaAppointmentsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaConsumerGroup == "" {
			errors = append(errors, "KafkaConsumerGroup cannot be empty when Kafka is enabled")
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"persistence_enabled", cfg.PersistenceEnabled(),
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"session_idle_ttl", cfg.SessionIdleTTL,
		"session_janitor_interval", cfg.SessionJanitorInterval,
		"booking_intent_threshold", cfg.BookingIntentThreshold,
		"openai_key_set", cfg.OpenAIAPIKey != "",
		"openai_model_chat", cfg.OpenAIModelChat,
		"llm_timeout", cfg.LLMTimeout,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_alerts_topic", cfg.KafkaAlertsTopic,
		"kafka_appointments_topic", cfg.KafkaAppointmentsTopic,
		"kafka_dlq_topic", cfg.KafkaDLQTopic,
		"kafka_consumer_group", cfg.KafkaConsumerGroup,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
