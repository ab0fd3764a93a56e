// Package main is the entry point for the wallet ledger service.
// It loads configuration, wires dependencies, starts the HTTP server and
// the reconciliation sweeper, and shuts both down on SIGINT or SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Aaditya88888/netwin-user-sub001/internal/config"
	"github.com/Aaditya88888/netwin-user-sub001/internal/handlers"
	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-user-sub001/internal/middleware"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories/cache"
	"github.com/Aaditya88888/netwin-user-sub001/internal/routes"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/adminconfig"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/approval"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/currency"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/intake"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/notification"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/reconciliation"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/wallet"
	"github.com/Aaditya88888/netwin-user-sub001/internal/validation"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := repositories.InitDB(cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.WithError(err).Warn("failed to close database connection")
		}
	}()

	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cacheService := cache.NewCacheService(redisClient, cfg.ConfigCacheTTL)
	defer func() {
		if err := cacheService.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis connection")
		}
	}()
	if err := cacheService.HealthCheck(context.Background()); err != nil {
		log.WithError(err).Warn("redis unavailable at startup; config cache and balance push degraded")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewPrometheusCollector(reg)

	converter, err := currency.NewConverter(cfg.FXRates)
	if err != nil {
		log.WithError(err).Fatal("invalid FX_RATES")
	}

	ledgerRepo := repositories.NewLedgerRepository(db)
	configRepo := repositories.NewAdminWalletConfigRepository(db)

	notifier, closeNotifier := buildNotifier(cfg, log)
	defer closeNotifier()
	dispatcher := notification.NewDispatcher(notifier, 5*time.Second, log, m)

	walletService := wallet.NewService(ledgerRepo, converter, cache.NewBus(redisClient),
		wallet.WalletConfig{DefaultCurrency: models.NormalizeCurrency(cfg.DefaultCurrency)}, log, m)
	configService := adminconfig.NewService(configRepo, cacheService, log, m)
	intakeService := intake.NewService(ledgerRepo, walletService, configService, validation.NewValidate(), log, m)
	approvalService := approval.NewService(ledgerRepo, converter, walletService, dispatcher, log, m)
	sweeper := reconciliation.NewSweeper(ledgerRepo, cache.NewLocker(redisClient), reconciliation.Config{
		Interval:  cfg.Sweep.Interval,
		BatchSize: cfg.Sweep.BatchSize,
		LeaseTTL:  cfg.Sweep.LeaseTTL,
	}, log, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweeper.Run(ctx)
	go logPoolStats(ctx, db, log)

	app := fiber.New(fiber.Config{
		AppName:               "netwin-wallet",
		DisableStartupMessage: cfg.IsProduction(),
		ReadTimeout:           15 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		Output: log.Writer(),
	}))

	// Submissions are cheap to spam and each creates two rows.
	submitLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
	app.Use("/api/wallet/deposits", submitLimiter)
	app.Use("/api/wallet/withdrawals", submitLimiter)

	routes.SetupRoutes(app, routes.Handlers{
		Auth:     middleware.NewAuthMiddleware(cfg.JWTSecret, log),
		Wallet:   handlers.NewWalletHandler(walletService, converter, configService, log),
		Requests: handlers.NewRequestHandler(intakeService, log),
		Admin:    handlers.NewAdminHandler(approvalService, configService, sweeper, log),
		Checks: map[string]handlers.Check{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": cacheService.HealthCheck,
		},
		Gatherer: reg,
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("server shutdown")
		}
	}()

	log.WithField("port", cfg.Port).Info("wallet service listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("server stopped")
	}

	// Let in-flight notifications finish before the writer closes.
	dispatcher.Wait()
}

func buildNotifier(cfg *config.Config, log *logrus.Logger) (notification.Notifier, func()) {
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) == 0 {
		return notification.NewLogNotifier(log), func() {}
	}
	w := notification.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic, log)
	log.WithFields(logrus.Fields{
		"brokers": cfg.Kafka.Brokers,
		"topic":   cfg.Kafka.NotifyTopic,
	}).Info("publishing request outcomes to kafka")
	return notification.NewKafkaNotifier(w), func() {
		if err := w.Close(); err != nil {
			log.WithError(err).Warn("failed to close kafka writer")
		}
	}
}

func logPoolStats(ctx context.Context, db *gorm.DB, log *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := sqlDB.Stats()
			log.WithFields(logrus.Fields{
				"open":          stats.OpenConnections,
				"idle":          stats.Idle,
				"in_use":        stats.InUse,
				"wait_count":    stats.WaitCount,
				"wait_duration": stats.WaitDuration.String(),
			}).Debug("db pool stats")
		}
	}
}
