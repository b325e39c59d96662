package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"medcompanion/internal/alerts"
	"medcompanion/pkg/config"
	"medcompanion/pkg/kafka"
	kafka_config "medcompanion/pkg/kafka/config"
	kafkamw "medcompanion/pkg/kafka/middleware"
)

const ServiceName = "alerts"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	dispatcher := alerts.NewDispatcher(alerts.NewLogNotifier(cfg.Log), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaAlertsTopic,
		cfg.KafkaConsumerGroup,
		cfg.KafkaDLQTopic,
		dispatcher.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create alerts consumer", "error", err)
	}

	metrics := kafkamw.NewMetrics()
	consumer.Use(kafkamw.MetricsConsumerMiddleware(metrics))
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafkamw.LoggingConsumerMiddleware(cfg.Log))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting alerts dispatcher",
		"topic", cfg.KafkaAlertsTopic,
		"group", cfg.KafkaConsumerGroup,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Alerts consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close alerts consumer", "error", err)
	}
	cfg.Log.Info("Alerts dispatcher stopped",
		append(metrics.LogValues(), "notifications", len(dispatcher.Notifications()))...,
	)
}
