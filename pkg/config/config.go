package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lienduong188/finance-tracker-sub000/pkg/database"
)

// KafkaConfig holds Kafka publisher configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

// RedisConfig holds Redis configuration for the sweep lease
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// SweepConfig holds the overdue sweep schedule
type SweepConfig struct {
	Enabled  bool
	CronSpec string
	LockTTL  time.Duration
}

// Config holds the full service configuration
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string
	JWTSecret   string

	Database database.Config
	Kafka    KafkaConfig
	Redis    RedisConfig
	Sweep    SweepConfig
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_NAME", "plan-service")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_PORT", "8084")
	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "plandb")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SWEEP_ENABLED", true)
	v.SetDefault("SWEEP_CRON", "@hourly")
	v.SetDefault("SWEEP_LOCK_TTL", "10m")

	lockTTL, err := time.ParseDuration(v.GetString("SWEEP_LOCK_TTL"))
	if err != nil {
		lockTTL = 10 * time.Minute
	}

	return &Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTPPort:    v.GetString("HTTP_PORT"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		Database: database.Config{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("KAFKA_ENABLED"),
			Brokers: strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Sweep: SweepConfig{
			Enabled:  v.GetBool("SWEEP_ENABLED"),
			CronSpec: v.GetString("SWEEP_CRON"),
			LockTTL:  lockTTL,
		},
	}, nil
}
