package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// BackendConfig holds stats backend connection configuration
type BackendConfig struct {
	URL     string
	Timeout time.Duration

	// Outbound requests per second; the limiter allows a burst of one
	RPS float64

	// Total attempts per request, including the first
	Retries int
}

// SeasonConfig bounds the selectable seasons
type SeasonConfig struct {
	First int
	Last  int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // console or json
}

// AssetConfig locates team logos and the optional team directory override
type AssetConfig struct {
	LogoDir   string
	TeamsFile string
}

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Seasons SeasonConfig
	Log     LogConfig
	Assets  AssetConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("DASHBOARD_ADDR", ":8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		},
		Backend: BackendConfig{
			URL:     strings.TrimRight(getEnv("LAXSTAT_API_URL", "http://127.0.0.1:8000"), "/"),
			Timeout: getEnvAsDuration("LAXSTAT_API_TIMEOUT", 15*time.Second),
			RPS:     getEnvAsFloat("LAXSTAT_API_RPS", 10),
			Retries: getEnvAsInt("LAXSTAT_API_RETRIES", 3),
		},
		Seasons: SeasonConfig{
			First: getEnvAsInt("FIRST_SEASON", 2018),
			Last:  getEnvAsInt("LAST_SEASON", 2024),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
		Assets: AssetConfig{
			LogoDir:   getEnv("LOGO_DIR", "./web/logos"),
			TeamsFile: getEnv("TEAMS_FILE", ""),
		},
	}
}

// Validate reports the first configuration value the dashboard cannot run with
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("LAXSTAT_API_URL must not be empty")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("LAXSTAT_API_TIMEOUT must be positive, got %s", c.Backend.Timeout)
	}
	if c.Backend.RPS <= 0 {
		return fmt.Errorf("LAXSTAT_API_RPS must be positive, got %g", c.Backend.RPS)
	}
	if c.Backend.Retries < 1 {
		return fmt.Errorf("LAXSTAT_API_RETRIES must be at least 1, got %d", c.Backend.Retries)
	}
	if c.Seasons.First > c.Seasons.Last {
		return fmt.Errorf("FIRST_SEASON %d is after LAST_SEASON %d", c.Seasons.First, c.Seasons.Last)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// splitList splits a comma-separated list, dropping empty entries
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
