package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	Gateway   GatewayConfig
	Dunning   DunningConfig
	Email     EmailConfig
	Scheduler SchedulerConfig
}

// GatewayConfig selects the payment authorizer implementation.
type GatewayConfig struct {
	Mode     string // "mock" or "http"
	Endpoint string
	Timeout  time.Duration
}

// DunningConfig holds the failed-payment retry policy.
type DunningConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// EmailConfig configures the outbound notification transport.
type EmailConfig struct {
	Provider     string // "smtp" or "noop"
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// SchedulerConfig controls the background worker loop.
type SchedulerConfig struct {
	RunInterval time.Duration
	BatchSize   int
	JobTimeout  time.Duration
}

const (
	GatewayModeMock = "mock"
	GatewayModeHTTP = "http"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "recurrent"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "recurrent"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		Gateway: GatewayConfig{
			Mode:     normalizeGatewayMode(getenv("PAYMENT_GATEWAY_MODE", GatewayModeMock)),
			Endpoint: strings.TrimSpace(getenv("PAYMENT_GATEWAY_ENDPOINT", "")),
			Timeout:  getenvDuration("PAYMENT_GATEWAY_TIMEOUT", 10*time.Second),
		},
		Dunning: DunningConfig{
			MaxRetries: getenvInt("DUNNING_MAX_RETRIES", 1),
			RetryDelay: getenvDuration("DUNNING_RETRY_DELAY", 48*time.Hour),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getenv("EMAIL_PROVIDER", "noop")),
			SMTPHost:     getenv("SMTP_HOST", "localhost"),
			SMTPPort:     getenvInt("SMTP_PORT", 1025),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "billing@example.com"),
		},
		Scheduler: SchedulerConfig{
			RunInterval: getenvDuration("SCHEDULER_RUN_INTERVAL", time.Minute),
			BatchSize:   getenvInt("SCHEDULER_BATCH_SIZE", 50),
			JobTimeout:  getenvDuration("SCHEDULER_JOB_TIMEOUT", 30*time.Second),
		},
	}

	return cfg
}

func normalizeGatewayMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case GatewayModeHTTP:
		return GatewayModeHTTP
	default:
		return GatewayModeMock
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
