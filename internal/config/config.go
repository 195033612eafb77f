package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/recallcards/internal/logger"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	PersistQueueSize int
	DueBatchLimit    int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:recallcards.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		PersistQueueSize: envIntOr("PERSIST_QUEUE_SIZE", 256),
		DueBatchLimit:    envIntOr("DUE_BATCH_LIMIT", 50),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	} else {
		c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	}
	if c.PersistQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("PERSIST_QUEUE_SIZE must be positive, got %d", c.PersistQueueSize))
	}
	if c.DueBatchLimit <= 0 {
		errs = append(errs, fmt.Errorf("DUE_BATCH_LIMIT must be positive, got %d", c.DueBatchLimit))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
