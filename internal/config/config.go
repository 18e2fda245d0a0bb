package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Logger    LoggerConfig
	Security  SecurityConfig
	Dashboard DashboardConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DataConfig struct {
	// CSVFile is the primary source path; the loader falls back to the
	// basename in the working directory and the assets subdirectory.
	CSVFile string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// DashboardConfig holds the per-screen parameter defaults applied when the
// presentation layer sends nothing.
type DashboardConfig struct {
	TopN           int
	StockThreshold int
	Granularity    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            envString("SERVER_HOST", "localhost"),
			Port:            envInt("SERVER_PORT", 8086),
			ReadTimeout:     envDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    envDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     envDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: envDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Data: DataConfig{
			CSVFile: envString("CSV_FILE", "data.csv"),
		},
		Logger: LoggerConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: envBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    envInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  envInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  envStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8086"}),
			TrustedProxies:  envStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
		Dashboard: DashboardConfig{
			TopN:           envInt("DASHBOARD_TOP_N", 8),
			StockThreshold: envInt("DASHBOARD_STOCK_THRESHOLD", 10),
			Granularity:    envString("DASHBOARD_GRANULARITY", "month"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Data.CSVFile == "" {
		return fmt.Errorf("CSV file path cannot be empty")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q", c.Logger.Level)
	}
	if !slices.Contains([]string{"json", "text"}, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be json or text", c.Logger.Format)
	}
	if c.Security.RateLimitRPS <= 0 || c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit RPS and burst must be positive")
	}
	if c.Dashboard.TopN < 3 || c.Dashboard.TopN > 20 {
		return fmt.Errorf("dashboard top N must be between 3 and 20, got %d", c.Dashboard.TopN)
	}
	if c.Dashboard.StockThreshold < 0 {
		return fmt.Errorf("stock threshold must be >= 0, got %d", c.Dashboard.StockThreshold)
	}
	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func envStringSlice(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return fallback
}
