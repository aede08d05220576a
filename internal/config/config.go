package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrConfig = errors.New("invalid configuration")

type Config struct {
	DatabaseURL     string
	Addr            string
	CORSOrigin      string
	StaticDir       string
	LogLevel        string
	LogFile         string
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: .env: %v", ErrConfig, err)
	}

	timeout, err := getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", "sqlite:./forms.db"),
		Addr:            getEnv("ADDR", "0.0.0.0:3005"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "http://localhost:5173"),
		StaticDir:       getEnv("STATIC_DIR", "www"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: timeout,
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is empty", ErrConfig)
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("%w: ADDR is empty", ErrConfig)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrConfig, key, value)
	}
	return d, nil
}
