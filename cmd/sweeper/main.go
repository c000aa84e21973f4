package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan"
	"github.com/lienduong188/finance-tracker-sub000/internal/sweeper"
	"github.com/lienduong188/finance-tracker-sub000/kafka"
	"github.com/lienduong188/finance-tracker-sub000/pkg/config"
	"github.com/lienduong188/finance-tracker-sub000/pkg/database"
	"github.com/lienduong188/finance-tracker-sub000/pkg/logger"
)

// One-shot overdue sweep, intended for external schedulers such as
// Kubernetes CronJobs. The server runs the same sweep in-process when
// SWEEP_ENABLED is set.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.ServiceName+"-sweeper", cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	sweepHandler, err := plan.InitializeSweepHandler(db)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize sweep handler")
	}

	var kafkaPublisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		if kafkaPublisher, err = kafka.NewPublisher(cfg.Kafka.Brokers); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to initialize Kafka publisher, events disabled")
			kafkaPublisher = nil
		} else {
			defer kafkaPublisher.Close()
		}
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sw := sweeper.New(sweepHandler, kafkaPublisher, redisClient, cfg.Sweep.LockTTL)
	marked, err := sw.RunOnce(ctx)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Overdue sweep failed")
	}

	logger.Logger.Info().
		Int64("marked_count", marked).
		Msg("Overdue sweep finished")
}
