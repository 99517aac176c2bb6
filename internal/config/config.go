package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     string
	Timezone string

	DB    DBConfig
	Redis RedisConfig
	Kafka KafkaConfig
	Mongo MongoConfig

	JWTSecret     string
	DefaultLocale string

	// CheckInClearsLeave lets a check-in on a LEAVE day turn the day back into
	// a worked day.
	CheckInClearsLeave bool

	RateLimitRPS   float64
	RateLimitBurst int
	OutboxInterval time.Duration
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Broker     string
	LeaveGroup string
}

type MongoConfig struct {
	URI      string
	Database string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "3000"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "workforce"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		Kafka: KafkaConfig{
			Broker:     getEnv("KAFKA_BROKER", ""),
			LeaveGroup: getEnv("KAFKA_LEAVE_GROUP", "go-workforce-leave-backfill"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", ""),
			Database: getEnv("MONGODB_DATABASE", "workforce_audit"),
		},
		JWTSecret:          getEnv("JWT_SECRET", ""),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		CheckInClearsLeave: getBool("ATTENDANCE_CHECKIN_CLEARS_LEAVE", true),
		RateLimitRPS:       getFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 3),
		OutboxInterval:     getDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
	}
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
