package main

import (
	"context"

	"medcompanion/internal/alerts"
	"medcompanion/internal/appointments/repository"
	"medcompanion/internal/appointments/service"
	"medcompanion/internal/appointments/session"
	"medcompanion/internal/assistant"
	"medcompanion/internal/chat/handler"
	"medcompanion/internal/chat/validator"
	"medcompanion/internal/router"
	"medcompanion/internal/triage/emergency"
	"medcompanion/internal/triage/intent"
	"medcompanion/internal/triage/sentiment"
	"medcompanion/pkg/app"
	"medcompanion/pkg/config"
	"medcompanion/pkg/kafka"
	kafka_config "medcompanion/pkg/kafka/config"
	kafkamw "medcompanion/pkg/kafka/middleware"
	"medcompanion/pkg/llm"
)

const ServiceName = "companion"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Med Companion service")

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown("mongo", func() error {
		cfg.GracefulShutdown()
		return nil
	})

	metrics := kafkamw.NewMetrics()
	publisher := initPublisher(cfg, metrics)
	serverApp.OnShutdown("publisher", func() error {
		cfg.Log.Info("Kafka traffic", metrics.LogValues()...)
		return publisher.Close()
	})

	registry := session.NewRegistry(cfg.SessionIdleTTL, cfg.Log, session.WithJanitorInterval(cfg.SessionJanitorInterval))
	serverApp.OnShutdown("sessions", func() error {
		registry.Stop()
		return nil
	})

	appointments := initAppointments(cfg)
	messageRouter := initRouter(cfg, registry, appointments, publisher)
	serverApp.OnShutdown("router", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return messageRouter.Drain(ctx)
	})

	var db handler.Pinger
	if cfg.Client.HasMongo() {
		db = cfg.Client.Mongo
	}

	serverApp.SetApp(
		handler.NewHealthHandler(db, registry, metrics, cfg.Log),
		handler.NewChatHandler(messageRouter, appointments, validator.NewRequestValidator(cfg.Log), cfg.Log),
	)
	serverApp.Run()
}

func initAppointments(cfg *config.Config) service.AppointmentService {
	if !cfg.Client.HasMongo() {
		return service.NewAppointmentService(nil, cfg.Log)
	}
	repo := repository.NewMongoAppointmentRepository(cfg)
	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName)
	return service.NewAppointmentService(repo, cfg.Log)
}

func initRouter(cfg *config.Config, registry *session.Registry, appointments service.AppointmentService, publisher alerts.Publisher) *router.Router {
	var classifier intent.Classifier = intent.NewKeywordClassifier(nil)
	var chatClient llm.Client
	if cfg.LLMEnabled() {
		chatClient = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModelChat, cfg.LLMTimeout)
		classifier = intent.NewLLMClassifier(chatClient, classifier, cfg.Log)
		cfg.Log.Info("LLM enabled", "model", cfg.OpenAIModelChat)
	} else {
		cfg.Log.Warn("OPENAI_API_KEY not set, using keyword intent and template replies")
	}

	return router.New(
		registry,
		emergency.NewDetector(),
		classifier,
		sentiment.NewAnalyzer(),
		assistant.NewResponder(chatClient, cfg.Log),
		cfg.Log,
		router.WithBookingThreshold(cfg.BookingIntentThreshold),
		router.WithAppointments(appointments),
		router.WithPublisher(publisher),
	)
}

func initPublisher(cfg *config.Config, metrics *kafkamw.Metrics) alerts.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, events are not published")
		return alerts.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	alertsProducer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaAlertsTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create alerts producer", "error", err)
	}
	appointmentsProducer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaAppointmentsTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create appointments producer", "error", err)
	}

	for _, p := range []*kafka.Producer{alertsProducer, appointmentsProducer} {
		p.Use(kafkamw.MetricsProducerMiddleware(metrics))
		if kafkaCfg.EnableMiddleware {
			p.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))
		}
	}

	return alerts.NewKafkaPublisher(alertsProducer, appointmentsProducer, ServiceName)
}
