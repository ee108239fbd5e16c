package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds everything the process needs from the environment.
type Config struct {
	Addr          string
	DatabaseURL   string
	StartingCash  decimal.Decimal
	QuoteProvider string
	SessionTTL    time.Duration
}

// Load reads a .env file when present and then the process environment.
// DATABASE_URL is the only required variable.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	cfg := Config{
		Addr:          getenv("ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		QuoteProvider: getenv("QUOTE_PROVIDER", "yahoo"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing required environment variable DATABASE_URL")
	}

	cash, err := decimal.NewFromString(getenv("STARTING_CASH", "10000"))
	if err != nil || !cash.IsPositive() {
		return Config{}, fmt.Errorf("invalid STARTING_CASH %q", os.Getenv("STARTING_CASH"))
	}
	cfg.StartingCash = cash

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL %q", os.Getenv("SESSION_TTL"))
	}
	cfg.SessionTTL = ttl

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
