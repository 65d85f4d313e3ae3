package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	LogLevel    string
	GRPCPort    string
	HTTPPort    string
	Postgres    PostgresConfig
	Kafka       KafkaConfig
	Aggregation AggregationConfig
	Watcher     WatcherConfig
}

type PostgresConfig struct {
	Host            string
	Port            string
	Database        string
	Username        string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string
}

type KafkaConfig struct {
	Brokers          []string
	Topic            string
	ConsumerGroup    string
	ProducerRetries  int
	ProducerTimeout  time.Duration
	RequiredAcks     int
	CompressionType  string
	MaxMessageBytes  int
	IdempotentWrites bool
	SessionTimeout   time.Duration
}

type AggregationConfig struct {
	TimeZone     string
	Interval     time.Duration
	LookbackDays int
	Workers      int
	Grace        time.Duration
}

type WatcherConfig struct {
	UserID           string
	GroupID          string
	EventServiceAddr string
	PollInterval     time.Duration
	TickTimeout      time.Duration
	ProbeCommand     string
	RefreshInterval  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		GRPCPort:    getEnv("EVENT_SERVICE_PORT", "50051"),
		HTTPPort:    getEnv("QUERY_SERVICE_PORT", "8080"),
	}

	cfg.Postgres = PostgresConfig{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            getEnv("POSTGRES_PORT", "5432"),
		Database:        getEnv("POSTGRES_DB", "weaklink"),
		Username:        getEnv("POSTGRES_USER", "admin"),
		Password:        getEnv("POSTGRES_PASSWORD", "password"),
		MaxOpenConns:    getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
	}

	brokers := getEnv("KAFKA_BROKERS", "localhost:9092")
	cfg.Kafka = KafkaConfig{
		Brokers:          strings.Split(brokers, ","),
		Topic:            getEnv("KAFKA_TOPIC_BREAKS", "group-breaks"),
		ConsumerGroup:    getEnv("KAFKA_CONSUMER_GROUP", "weaklink-notifier"),
		ProducerRetries:  getEnvAsInt("KAFKA_PRODUCER_RETRIES", 3),
		ProducerTimeout:  getEnvAsDuration("KAFKA_PRODUCER_TIMEOUT", 10*time.Second),
		RequiredAcks:     getEnvAsInt("KAFKA_REQUIRED_ACKS", -1), // -1 = all in-sync replicas
		CompressionType:  getEnv("KAFKA_COMPRESSION", "snappy"),
		IdempotentWrites: getEnvAsBool("KAFKA_IDEMPOTENT", true),
		MaxMessageBytes:  getEnvAsInt("KAFKA_MAX_MESSAGE_BYTES", 1000000),
		SessionTimeout:   getEnvAsDuration("KAFKA_SESSION_TIMEOUT", 10*time.Second),
	}

	cfg.Aggregation = AggregationConfig{
		TimeZone:     getEnv("AGGREGATION_TIMEZONE", "UTC"),
		Interval:     getEnvAsDuration("AGGREGATION_INTERVAL", 15*time.Minute),
		LookbackDays: getEnvAsInt("AGGREGATION_LOOKBACK_DAYS", 3),
		Workers:      getEnvAsInt("AGGREGATION_WORKERS", 4),
		Grace:        getEnvAsDuration("AGGREGATION_GRACE", 10*time.Minute),
	}

	cfg.Watcher = WatcherConfig{
		UserID:           getEnv("USER_ID", ""),
		GroupID:          getEnv("GROUP_ID", ""),
		EventServiceAddr: getEnv("EVENT_SERVICE_ADDR", "localhost:50051"),
		PollInterval:     getEnvAsDuration("POLL_INTERVAL", 5*time.Second),
		TickTimeout:      getEnvAsDuration("TICK_TIMEOUT", 4*time.Second),
		ProbeCommand:     getEnv("PROBE_COMMAND", ""),
		RefreshInterval:  getEnvAsDuration("WATCHLIST_REFRESH_INTERVAL", 5*time.Minute),
	}

	if _, err := time.LoadLocation(cfg.Aggregation.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid AGGREGATION_TIMEZONE %q: %w", cfg.Aggregation.TimeZone, err)
	}
	if cfg.Aggregation.LookbackDays < 1 {
		cfg.Aggregation.LookbackDays = 1
	}
	if cfg.Aggregation.Workers < 1 {
		cfg.Aggregation.Workers = 1
	}

	return cfg, nil
}

func (c *PostgresConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

// Location returns the group-policy time zone used to cut days.
func (c *AggregationConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
