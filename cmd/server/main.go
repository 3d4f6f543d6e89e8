package main

import (
	"context"
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

	"github.com/seu-repo/multipay/internal/adapter/cache"
	gateways "github.com/seu-repo/multipay/internal/adapter/external/payment"
	"github.com/seu-repo/multipay/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/multipay/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/multipay/internal/adapter/queue"
	"github.com/seu-repo/multipay/internal/adapter/storage/postgres"
	"github.com/seu-repo/multipay/internal/adapter/vault"
	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/observability/telemetry"
	"github.com/seu-repo/multipay/internal/ports"
	"github.com/seu-repo/multipay/internal/service/health"
	"github.com/seu-repo/multipay/internal/service/payment"
	"github.com/seu-repo/multipay/pkg/config"
)

const (
	serviceName    = "multipay-gateway"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting Multipay Gateway",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Resolve Secrets (Vault overrides env/file config when enabled)
	if cfg.Vault.Enabled {
		resolveSecrets(cfg, logger)
	}

	// 5. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db, &domain.Payment{}, &domain.Refund{}); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 6. Initialize Cache (Redis with in-memory fallback)
	appCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to local cache", zap.Error(err))
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 7. Initialize Message Queue
	messageQueue := newMessageQueue(cfg, logger)
	if messageQueue != nil {
		defer messageQueue.Close()
	}

	// 8. Initialize Repositories
	paymentRepo := postgres.NewPaymentRepository(db, logger)

	// 9. Initialize Gateway Adapters
	registry := gateways.NewRegistry(cfg.Payment.DefaultGateway, logger)
	registry.Register(gateways.NewStripeGateway(cfg.Payment.Stripe.SecretKey, logger))
	registry.Register(gateways.NewRazorpayGateway(cfg.Payment.Razorpay.KeyID, cfg.Payment.Razorpay.KeySecret, logger))

	// 10. Initialize Services (Business Logic Layer)
	paymentService := payment.NewService(paymentRepo, registry, messageQueue, appCache, cfg.Payment.GatewayTimeout, logger)

	healthService := health.NewService(&health.Config{
		Version: serviceVersion,
		DB:      sqlDB,
		NatsURL: cfg.NATS.URL,
	}, logger)
	healthService.RegisterChecker("cache", func(ctx context.Context) health.CheckResult {
		start := time.Now()
		result := health.CheckResult{Name: "cache", Timestamp: time.Now()}
		if err := appCache.Ping(); err != nil {
			result.Status = health.StatusDegraded
			result.Message = err.Error()
		} else {
			result.Status = health.StatusHealthy
		}
		result.Duration = time.Since(start)
		return result
	})

	// 11. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	} else {
		app.Use(middleware.DefaultCORS())
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(logger))
	}

	// Health Check Endpoints
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	// API v1 Routes
	v1 := app.Group("/api/v1")

	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	v1.Post("/payments", paymentHandler.Initiate)
	v1.Get("/payments/:id/status", paymentHandler.GetStatus)
	v1.Post("/payments/:id/refund", paymentHandler.Refund)
	v1.Post("/webhooks/:gateway", paymentHandler.Webhook)

	// 12. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// newMessageQueue connects the broker selected by queue.driver. Returns nil
// when events are disabled or the broker is unreachable; the service runs
// without event publishing then.
func newMessageQueue(cfg *config.Config, logger *zap.Logger) ports.MessageQueue {
	switch cfg.Queue.Driver {
	case "nats":
		mq, err := queue.NewNATSQueue(cfg.NATS.URL, logger)
		if err != nil {
			logger.Warn("NATS unavailable, events disabled", zap.Error(err))
			return nil
		}
		return mq
	case "rabbitmq":
		mq, err := queue.NewRabbitMQQueue(cfg.Queue.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, events disabled", zap.Error(err))
			return nil
		}
		return mq
	default:
		logger.Info("No queue driver configured, events disabled")
		return nil
	}
}

// resolveSecrets pulls database and gateway credentials from Vault.
func resolveSecrets(cfg *config.Config, logger *zap.Logger) {
	sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
	if err != nil {
		logger.Warn("Vault unavailable, using static configuration", zap.Error(err))
		return
	}

	if connStr, err := sm.GetDatabaseCredentials(); err == nil && connStr != "" {
		cfg.Database.URL = connStr
	}
	if creds, err := sm.GetGatewayCredentials("stripe"); err == nil {
		if v := creds["secret_key"]; v != "" {
			cfg.Payment.Stripe.SecretKey = v
		}
	}
	if creds, err := sm.GetGatewayCredentials("razorpay"); err == nil {
		if v := creds["key_id"]; v != "" {
			cfg.Payment.Razorpay.KeyID = v
		}
		if v := creds["key_secret"]; v != "" {
			cfg.Payment.Razorpay.KeySecret = v
		}
	}
}
