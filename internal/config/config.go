// Package config reads service settings from the environment, after loading
// an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	Store    StoreConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
	Gateway  GatewayConfig
	Shutdown time.Duration
}

type StoreConfig struct {
	Driver string
	// URL and ServiceKey are passed to the store as-is; an empty value fails
	// on the first store call rather than at startup.
	URL            string
	ServiceKey     string
	Timeout        time.Duration
	PostgresURL    string
	PostgresSchema string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

type GatewayConfig struct {
	IntakeServiceURL string
}

// Load returns the configuration for a service listening on defaultPort
// unless PORT says otherwise. A missing .env file is not an error.
func Load(defaultPort string) (*Config, error) {
	_ = godotenv.Load()

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:     getEnv("PORT", defaultPort),
		LogLevel: level,
		Store: StoreConfig{
			Driver:         strings.ToLower(getEnv("STORE_DRIVER", DriverPostgREST)),
			URL:            os.Getenv("STORE_URL"),
			ServiceKey:     os.Getenv("STORE_SERVICE_KEY"),
			Timeout:        getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),
			PostgresURL:    os.Getenv("POSTGRES_URL"),
			PostgresSchema: getEnv("POSTGRES_SCHEMA", "intake"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "order.submitted"),
			GroupID: getEnv("KAFKA_GROUP_ID", "intake-audit"),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("TRACING_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		},
		Gateway: GatewayConfig{
			IntakeServiceURL: os.Getenv("INTAKE_SERVICE_URL"),
		},
		Shutdown: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks only what a service cannot start without.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Driver {
	case DriverPostgREST:
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for the %s store driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (must be %s or %s)", c.Store.Driver, DriverPostgREST, DriverPostgres)
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("5s") or whole seconds ("5").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, v := range parts {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
