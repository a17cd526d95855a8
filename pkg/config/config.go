package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config represents the application configuration
type Config struct {
	ServiceName string
	Server      ServerConfig
	Backend     BackendConfig
	Display     DisplayConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Env             string
	EnableCORS      bool
	ShutdownTimeout time.Duration
}

// BackendConfig holds the sales API connection settings
type BackendConfig struct {
	BaseURL      string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	// JWTSigningKey enables a signed service token on outbound calls when set
	JWTSigningKey string
	JWTTTL        time.Duration
	MaxIdleConns  int
}

// DisplayConfig controls how sale dates are rendered
type DisplayConfig struct {
	DateLayout string
	Timezone   string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	Prefix string
}

// Load loads the application configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "sales-dashboard"),
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			EnableCORS:      getEnvAsBool("SERVER_ENABLE_CORS", true),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Backend: BackendConfig{
			BaseURL:       getEnv("BACKEND_BASE_URL", "http://localhost:3001/api"),
			Timeout:       getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
			ProbeTimeout:  getEnvAsDuration("BACKEND_PROBE_TIMEOUT", 3*time.Second),
			JWTSigningKey: getEnv("BACKEND_JWT_SIGNING_KEY", ""),
			JWTTTL:        getEnvAsDuration("BACKEND_JWT_TTL", 5*time.Minute),
			MaxIdleConns:  getEnvAsInt("BACKEND_MAX_IDLE_CONNS", 10),
		},
		Display: DisplayConfig{
			DateLayout: getEnv("DISPLAY_DATE_LAYOUT", "2/1/2006"),
			Timezone:   getEnv("DISPLAY_TIMEZONE", "UTC"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "sales_dashboard"),
		},
	}, nil
}

// Location resolves the display time zone, falling back to UTC
func (d DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LogFields returns the configuration as zap fields, without secrets
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("backend_base_url", c.Backend.BaseURL),
		zap.Duration("backend_timeout", c.Backend.Timeout),
		zap.Duration("backend_probe_timeout", c.Backend.ProbeTimeout),
		zap.Bool("backend_jwt_enabled", c.Backend.JWTSigningKey != ""),
		zap.String("display_timezone", c.Display.Timezone),
		zap.String("metrics_prefix", c.Metrics.Prefix),
	}
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
