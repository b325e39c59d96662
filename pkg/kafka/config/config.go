package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

var compressionCodecs = map[string]compress.Compression{
	"none":   0,
	"gzip":   compress.Gzip,
	"snappy": compress.Snappy,
	"lz4":    compress.Lz4,
	"zstd":   compress.Zstd,
}

var ackModes = map[int]kafka.RequiredAcks{
	-1: kafka.RequireAll,
	0:  kafka.RequireNone,
	1:  kafka.RequireOne,
}

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	RequireAcks  int    // -1 all replicas, 0 none, 1 leader
	Compression  string // none, gzip, snappy, lz4, zstd
}

// Codec returns the kafka-go codec for Compression. Unknown names fall back
// to snappy; Validate rejects them before a producer is built.
func (p ProducerConfig) Codec() compress.Compression {
	if c, ok := compressionCodecs[p.Compression]; ok {
		return c
	}
	return compress.Snappy
}

func (p ProducerConfig) Acks() kafka.RequiredAcks {
	if a, ok := ackModes[p.RequireAcks]; ok {
		return a
	}
	return kafka.RequireAll
}

type ConsumerConfig struct {
	StartOffset    int64 // -1 newest, -2 oldest
	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	CommitInterval time.Duration
	SessionTimeout time.Duration
	MaxRetries     int
}

// Config holds the broker connection settings shared by the companion
// service (producer side) and the alerts dispatcher (consumer side).
// Topic names live in pkg/config.
type Config struct {
	Brokers  []string
	ClientID string

	Producer ProducerConfig
	Consumer ConsumerConfig

	EnableMiddleware bool
}

// Load reads the Kafka settings from the environment and validates them.
func Load() (*Config, error) {
	cfg := &Config{
		Brokers:  splitBrokers(envStr(EnvKafkaBrokers, DefaultKafkaBrokers)),
		ClientID: envStr(EnvKafkaClientID, DefaultKafkaClientID),
		Producer: ProducerConfig{
			MaxAttempts:  envInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
			BatchTimeout: envDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
			RequireAcks:  envInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
			Compression:  strings.ToLower(envStr(EnvKafkaProducerCompression, DefaultProducerCompression)),
		},
		Consumer: ConsumerConfig{
			StartOffset:    int64(envInt(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)),
			MinBytes:       envInt(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
			MaxBytes:       envInt(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
			MaxWait:        envDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
			CommitInterval: envDuration(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval),
			SessionTimeout: envDuration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
			MaxRetries:     envInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
		},
		EnableMiddleware: envBool(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var problems []string

	if len(cfg.Brokers) == 0 {
		problems = append(problems, "At least one Kafka broker is required")
	}
	for i, broker := range cfg.Brokers {
		if broker == "" {
			problems = append(problems, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}
	if cfg.ClientID == "" {
		problems = append(problems, "ClientID cannot be empty")
	}

	if _, ok := compressionCodecs[cfg.Producer.Compression]; !ok {
		problems = append(problems, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.Producer.Compression))
	}
	if _, ok := ackModes[cfg.Producer.RequireAcks]; !ok {
		problems = append(problems, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.Producer.RequireAcks))
	}
	if cfg.Consumer.StartOffset != kafka.FirstOffset && cfg.Consumer.StartOffset != kafka.LastOffset {
		problems = append(problems, fmt.Sprintf("ConsumerStartOffset must be -1 (newest) or -2 (oldest), got: %d", cfg.Consumer.StartOffset))
	}
	if cfg.Consumer.MaxBytes < cfg.Consumer.MinBytes {
		problems = append(problems, fmt.Sprintf("ConsumerMaxBytes (%d) cannot be below ConsumerMinBytes (%d)", cfg.Consumer.MaxBytes, cfg.Consumer.MinBytes))
	}
	if cfg.Consumer.MaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got: %d", cfg.Consumer.MaxRetries))
	}

	for _, c := range []struct {
		name  string
		value int
	}{
		{"ProducerMaxAttempts", cfg.Producer.MaxAttempts},
		{"ConsumerMinBytes", cfg.Consumer.MinBytes},
		{"ConsumerMaxBytes", cfg.Consumer.MaxBytes},
	} {
		if c.value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %d", c.name, c.value))
		}
	}
	for _, c := range []struct {
		name  string
		value time.Duration
	}{
		{"ProducerBatchTimeout", cfg.Producer.BatchTimeout},
		{"ConsumerMaxWait", cfg.Consumer.MaxWait},
		{"ConsumerCommitInterval", cfg.Consumer.CommitInterval},
		{"ConsumerSessionTimeout", cfg.Consumer.SessionTimeout},
	} {
		if c.value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", c.name, c.value))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Kafka configuration validation failed:\n")
	for i, p := range problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	return fmt.Errorf("%s", b.String())
}

func (cfg *Config) LogConfiguration(logFunc func(msg string, keysAndValues ...any)) {
	if logFunc == nil {
		return
	}

	logFunc("Kafka configuration loaded",
		"brokers", cfg.Brokers,
		"client_id", cfg.ClientID,
		"producer_acks", cfg.Producer.RequireAcks,
		"producer_compression", cfg.Producer.Compression,
		"producer_max_attempts", cfg.Producer.MaxAttempts,
		"consumer_start_offset", cfg.Consumer.StartOffset,
		"consumer_max_retries", cfg.Consumer.MaxRetries,
		"enable_middleware", cfg.EnableMiddleware,
	)
}

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
