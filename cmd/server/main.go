package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/symptom-assistant/internal/adapter/cache"
	"github.com/seu-repo/symptom-assistant/internal/adapter/classifier"
	"github.com/seu-repo/symptom-assistant/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/symptom-assistant/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/symptom-assistant/internal/adapter/queue"
	"github.com/seu-repo/symptom-assistant/internal/adapter/recorder"
	"github.com/seu-repo/symptom-assistant/internal/adapter/storage/postgres"
	"github.com/seu-repo/symptom-assistant/internal/adapter/vault"
	wsAdapter "github.com/seu-repo/symptom-assistant/internal/adapter/websocket"
	"github.com/seu-repo/symptom-assistant/internal/i18n"
	"github.com/seu-repo/symptom-assistant/internal/observability/logging"
	"github.com/seu-repo/symptom-assistant/internal/observability/telemetry"
	"github.com/seu-repo/symptom-assistant/internal/ports"
	"github.com/seu-repo/symptom-assistant/internal/service/dialogue"
	"github.com/seu-repo/symptom-assistant/internal/service/health"
	"github.com/seu-repo/symptom-assistant/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting symptom assistant",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Resolve secrets from Vault
	if cfg.Vault.Enabled {
		sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, logger)
		if err != nil {
			logger.Fatal("Failed to create Vault client", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = sm.Apply(ctx, cfg)
		cancel()
		if err != nil {
			logger.Fatal("Failed to read secrets from Vault", zap.Error(err))
		}
	}

	// 4. Initialize OpenTelemetry
	if cfg.OpenTelemetry.Enabled {
		tp, err := telemetry.InitTracer(cfg.OpenTelemetry.ServiceName, cfg.App.Version, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize Cache
	var classificationCache ports.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		classificationCache = redisCache
	} else {
		classificationCache = cache.NewLocalCache(time.Minute, 10000, logger)
	}
	defer classificationCache.Close()

	// 6. Initialize Classifier
	symptomClassifier, err := classifier.New(cfg.Classifier, classificationCache, logger)
	if err != nil {
		logger.Fatal("Failed to build classifier", zap.Error(err))
	}

	// 7. Initialize PostgreSQL
	var (
		db               *gorm.DB
		sqlDB            *sql.DB
		consultationRepo ports.ConsultationRepository
	)
	if cfg.Database.URL != "" {
		db, err = postgres.NewConnection(cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer postgres.Close(db)

		if cfg.Database.AutoMigrate {
			if err := postgres.RunMigrations(db); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		}

		sqlDB, err = db.DB()
		if err != nil {
			logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
		}
		consultationRepo = postgres.NewConsultationRepository(db, logger)
	}

	// 8. Initialize Message Queue
	var messageQueue queue.MessageQueue
	switch cfg.Recorder.Backend {
	case "nats":
		messageQueue, err = queue.NewNATSQueue(cfg.NATS, logger)
	case "rabbitmq":
		messageQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQ.URL, logger)
	}
	if err != nil {
		logger.Fatal("Failed to connect to message broker", zap.Error(err))
	}
	if messageQueue != nil {
		defer messageQueue.Close()
	}

	// 9. Initialize Consultation Recorder
	consultationRecorder := buildRecorder(cfg, consultationRepo, messageQueue, logger)

	// 10. Initialize Session Registry
	defaultLanguage, err := i18n.Parse(cfg.Session.DefaultLanguage)
	if err != nil {
		logger.Fatal("Invalid session.default_language", zap.Error(err))
	}
	registry := dialogue.NewRegistry(dialogue.RegistryConfig{
		Classifier:      symptomClassifier,
		Recorder:        consultationRecorder,
		DefaultLanguage: defaultLanguage,
		IdleTimeout:     cfg.Session.IdleTimeout,
		RecordTimeout:   cfg.Recorder.Timeout,
	}, logger)

	// 11. Initialize WebSocket Hub
	wsHub := wsAdapter.NewHub()
	go wsHub.Run()

	// 12. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}

	// Health Check Endpoints
	healthService := health.NewService(health.Config{
		Version:  cfg.App.Version,
		DB:       sqlDB,
		Cache:    classificationCache,
		Queue:    messageQueue,
		Sessions: registry.Len,
	}, logger)
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	// API v1 Routes
	v1 := app.Group("/api/v1", middleware.RateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow))
	handlers.NewSessionHandler(registry, cfg.HTTP.WaitTimeout, logger).Register(v1)
	handlers.NewLocaleHandler().Register(v1)
	handlers.NewConsultationHandler(consultationRepo, logger).Register(v1)

	// WebSocket routes
	wsAdapter.SetupRoutes(app, wsAdapter.NewSessionHandler(registry, wsHub, logger))

	// 13. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 14. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wsHub.Shutdown()
	registry.CloseAll()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// buildRecorder picks the consultation sink for recorder.backend. With a
// broker backend and a database, a worker drains the subject into Postgres.
func buildRecorder(cfg *config.Config, repo ports.ConsultationRepository, mq queue.MessageQueue, logger *zap.Logger) ports.ConsultationRecorder {
	switch cfg.Recorder.Backend {
	case "postgres":
		if repo == nil {
			logger.Fatal("postgres recorder needs database.url")
		}
		return recorder.NewRepositoryRecorder(repo, logger)
	case "nats", "rabbitmq":
		if repo != nil {
			worker := recorder.NewConsultationWorker(mq, repo, cfg.Recorder.Subject, logger)
			if err := worker.Start(); err != nil {
				logger.Fatal("Failed to start consultation worker", zap.Error(err))
			}
		}
		return recorder.NewQueueRecorder(mq, cfg.Recorder.Subject, logger)
	default:
		return recorder.NewLogRecorder(logger)
	}
}
