// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	DBPath            string
	ContentURL        string // base URL of the content/profile service
	ContentFile       string // JSON dashboard document, used when ContentURL is empty
	ContentTimeout    time.Duration
	Addr              string
	Location          *time.Location
	RolloverInterval  time.Duration
	ReflectAfter      time.Duration
	GuardrailCooldown time.Duration
	TelemetryLog      string // "" disables, "-" is stderr, otherwise a file path
	LogJSON           bool
	DefaultStudent    string
}

// Load reads an optional .env file and then configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config_dotenv_unreadable", "error", err)
	}

	dbPath := getEnv("ORBIT_DB", "")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".orbit", "orbit.db")
	}

	loc := time.Local
	if tz := getEnv("ORBIT_TZ", ""); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: ORBIT_TZ: %w", err)
		}
		loc = l
	}

	cfg := &Config{
		DBPath:            dbPath,
		ContentURL:        strings.TrimRight(getEnv("ORBIT_CONTENT_URL", ""), "/"),
		ContentFile:       getEnv("ORBIT_CONTENT_FILE", ""),
		ContentTimeout:    getEnvDuration("ORBIT_CONTENT_TIMEOUT", 5*time.Second),
		Addr:              getEnv("ORBIT_ADDR", ":8088"),
		Location:          loc,
		RolloverInterval:  getEnvDuration("ORBIT_ROLLOVER_INTERVAL", 10*time.Minute),
		ReflectAfter:      getEnvDuration("ORBIT_REFLECTION_AFTER", 20*time.Minute),
		GuardrailCooldown: getEnvDuration("ORBIT_GUARDRAIL_COOLDOWN", 10*time.Minute),
		TelemetryLog:      getEnv("ORBIT_TELEMETRY_LOG", ""),
		LogJSON:           getEnvBool("ORBIT_LOG_JSON", false),
		DefaultStudent:    getEnv("ORBIT_STUDENT", "me"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("ORBIT_DB cannot be empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("ORBIT_ADDR cannot be empty")
	}
	if c.ContentTimeout <= 0 {
		return fmt.Errorf("ORBIT_CONTENT_TIMEOUT must be > 0")
	}
	if c.RolloverInterval <= 0 {
		return fmt.Errorf("ORBIT_ROLLOVER_INTERVAL must be > 0")
	}
	if c.ReflectAfter <= 0 {
		return fmt.Errorf("ORBIT_REFLECTION_AFTER must be > 0")
	}
	if c.GuardrailCooldown <= 0 {
		return fmt.Errorf("ORBIT_GUARDRAIL_COOLDOWN must be > 0")
	}
	if strings.TrimSpace(c.DefaultStudent) == "" {
		return fmt.Errorf("ORBIT_STUDENT cannot be empty")
	}
	return nil
}

// Now returns the current time in the configured location.
func (c *Config) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
