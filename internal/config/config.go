package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const defaultAPIToken = "dev-token"

// Config holds application configuration
type Config struct {
	GRPCPort int
	HTTPPort int
	APIToken string

	LogLevel  string
	LogPretty bool

	DBEnabled bool
	DBConnStr string

	SessionIdleTimeout   time.Duration
	SessionSweepSchedule string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		GRPCPort:             getEnvAsInt("GRPC_PORT", 8080),
		HTTPPort:             getEnvAsInt("HTTP_PORT", 8081),
		APIToken:             getEnv("API_TOKEN", defaultAPIToken),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogPretty:            getEnvAsBool("LOG_PRETTY", false),
		DBEnabled:            getEnvAsBool("DB_ENABLED", false),
		DBConnStr:            dbConnectionString(),
		SessionIdleTimeout:   getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 1m"),
		CORSAllowedOrigins:   []string{getEnv("CORS_ALLOWED_ORIGIN", "*")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("GRPC_PORT must be between 1 and 65535, got %d", c.GRPCPort)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("GRPC_PORT and HTTP_PORT must differ, both are %d", c.GRPCPort)
	}
	if c.APIToken == "" {
		return fmt.Errorf("API_TOKEN is required")
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive, got %s", c.SessionIdleTimeout)
	}
	if _, err := cron.ParseStandard(c.SessionSweepSchedule); err != nil {
		return fmt.Errorf("invalid SESSION_SWEEP_SCHEDULE %q: %w", c.SessionSweepSchedule, err)
	}
	return nil
}

// dbConnectionString prefers DB_CONN_STR and otherwise builds one from individual vars (Docker friendly)
func dbConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "virtualcfo"),
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
