package connection

import (
	"context"
	"fmt"
	"time"

	"go-workforce/internal/config"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const retryDelay = 5 * time.Second

func PostgresDSN(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
	)
}

func ConnectGORMWithRetry(cfg config.DBConfig, maxRetries int) (*gorm.DB, error) {
	log := zap.L().Named("connection.postgres")
	dsn := PostgresDSN(cfg)

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			lastErr = err
			log.Warn("gorm open failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			log.Warn("get sql.DB failed", zap.Int("attempt", i), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		if err := sqlDB.Ping(); err != nil {
			lastErr = err
			log.Warn("db ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)

		log.Info("connected to postgres", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
		return db, nil
	}

	return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, lastErr)
}

func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	log := zap.L().Named("connection.redis")
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			lastErr = err
			log.Warn("redis ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}
		log.Info("connected to redis", zap.String("addr", addr))
		return rdb, nil
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("redis connection failed after %d retries: %w", maxRetries, lastErr)
}

// ConnectKafkaWithRetry dials the broker until it answers and returns a writer
// that routes by message topic.
func ConnectKafkaWithRetry(broker string, maxRetries int) (*kafkago.Writer, error) {
	log := zap.L().Named("connection.kafka")

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		conn, err := kafkago.Dial("tcp", broker)
		if err != nil {
			lastErr = err
			log.Warn("kafka dial failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}
		_ = conn.Close()

		log.Info("connected to kafka", zap.String("broker", broker))
		return &kafkago.Writer{
			Addr:                   kafkago.TCP(broker),
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireAll,
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		}, nil
	}

	return nil, fmt.Errorf("kafka connection failed after %d retries: %w", maxRetries, lastErr)
}

func NewKafkaReader(broker, topic, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}

// ConnectMongo connects and pings the primary.
func ConnectMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	zap.L().Named("connection.mongo").Info("connected to mongodb")
	return client, nil
}
