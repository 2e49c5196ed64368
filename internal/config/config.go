package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment.
type Config struct {
	DatabaseURL     string
	RedisAddr       string
	Port            string
	BaseURL         string
	BlobSigningKey  string
	BlobStoragePath string
	RateLimitRPS    float64
	RateLimitBurst  int
}

// Load reads .env when present and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       getenv("REDIS_ADDR", "127.0.0.1:6379"),
		Port:            getenv("PORT", "8080"),
		BaseURL:         os.Getenv("BASE_URL"),
		BlobSigningKey:  os.Getenv("BLOB_SIGNING_KEY"),
		BlobStoragePath: getenv("BLOB_STORAGE_PATH", "storage"),
	}

	var err error
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getenv("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.BlobSigningKey == "" {
		return nil, fmt.Errorf("BLOB_SIGNING_KEY is not set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
