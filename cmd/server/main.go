package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"gorm.io/gorm"

	ledgerdomain "github.com/lienduong188/finance-tracker-sub000/internal/ledger/domain"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan"
	plandomain "github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/handler"
	"github.com/lienduong188/finance-tracker-sub000/internal/sweeper"
	"github.com/lienduong188/finance-tracker-sub000/kafka"
	"github.com/lienduong188/finance-tracker-sub000/pkg/auth"
	"github.com/lienduong188/finance-tracker-sub000/pkg/config"
	"github.com/lienduong188/finance-tracker-sub000/pkg/database"
	"github.com/lienduong188/finance-tracker-sub000/pkg/logger"
	"github.com/lienduong188/finance-tracker-sub000/pkg/tracing"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting plan service")

	auth.Init(cfg.JWTSecret)
	if !auth.Enabled() {
		logger.Logger.Warn().Msg("JWT secret not configured, API runs without authentication")
	}

	// Initialize tracer
	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&ledgerdomain.Account{},
		&ledgerdomain.Transaction{},
		&plandomain.PaymentPlan{},
		&plandomain.PlanPayment{},
		&plandomain.PlanTransactionLink{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Kafka publisher is optional
	var kafkaPublisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err = kafka.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to initialize Kafka publisher, events disabled")
			kafkaPublisher = nil
		} else {
			defer kafkaPublisher.Close()
		}
	}

	// Initialize handler with Wire DI
	planHandler, err := plan.InitializeHandler(db, kafkaPublisher)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	// Overdue sweep keeps the persisted payment statuses aligned with
	// the date-derived ones
	if cfg.Sweep.Enabled {
		sweepHandler, err := plan.InitializeSweepHandler(db)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize sweep handler")
		}

		var redisClient *redis.Client
		if cfg.Redis.Enabled {
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer redisClient.Close()
		}

		sw := sweeper.New(sweepHandler, kafkaPublisher, redisClient, cfg.Sweep.LockTTL)
		if err := sw.Start(cfg.Sweep.CronSpec); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start overdue sweeper")
		}
		defer sw.Stop()
	}

	srv := buildHTTPServer(planHandler, db, cfg.HTTPPort)

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func buildHTTPServer(planHandler *handler.PlanHandler, db *gorm.DB, port string) *http.Server {
	router := mux.NewRouter()

	handler.RegisterMiddlewares(router, handler.DefaultMiddlewareConfig())

	planHandler.RegisterRoutes(router)
	planHandler.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:    ":" + port,
		Handler: c.Handler(router),
	}
}
