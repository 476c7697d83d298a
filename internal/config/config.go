package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the process reads from its environment. A .env
// file in the working directory is loaded first when present.
type Config struct {
	Host string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// KafkaBrokers is empty when event publishing is disabled.
	KafkaBrokers []string

	// LockWait bounds how long an operation waits for an account lock.
	LockWait time.Duration
}

func Load() Config {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	cfg := Config{
		Host:       getenv("HOST", "0.0.0.0"),
		Port:       getenv("PORT", "8080"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenv("DB_NAME", "banking"),
		LockWait:   5 * time.Second,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if ms := os.Getenv("LOCK_WAIT_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			cfg.LockWait = time.Duration(v) * time.Millisecond
		}
	}

	return cfg
}

// DatabaseDSN renders the lib/pq connection string.
func (c Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func (c Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
