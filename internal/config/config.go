package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port           int
	Environment    string
	LogLevel       string
	LogDir         string
	DBUser         string
	DBPassword     string
	DBHost         string
	DBPort         string
	DBName         string
	APIKey         string   // API key for authentication
	TrustedProxies []string // IPs whose X-Forwarded-For is believed

	// Economy tunables; the remote catalog snapshot may override these per
	// refresh, these are the local fallbacks.
	PriceMultiplier float64
	BaseClickValue  int64

	// TickInterval is the production tick period for live sessions.
	TickInterval time.Duration

	// CatalogPath is the local seed snapshot loaded before the first remote
	// refresh succeeds.
	CatalogPath string

	// CatalogSyncInterval is how often the sync worker re-reads the catalog
	// source.
	CatalogSyncInterval time.Duration

	// SignalPollInterval is how often subscribed signal loops drain the
	// durable inbound queue.
	SignalPollInterval time.Duration
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogDir:      getEnv("LOG_DIR", "logs"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "tapline"),
		APIKey:      getEnv("API_KEY", ""),
		CatalogPath: getEnv("CATALOG_PATH", "configs/catalog.json"),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	cfg.PriceMultiplier, err = strconv.ParseFloat(getEnv("PRICE_MULTIPLIER", "1.2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_MULTIPLIER value: %w", err)
	}

	cfg.BaseClickValue, err = strconv.ParseInt(getEnv("BASE_CLICK_VALUE", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BASE_CLICK_VALUE value: %w", err)
	}

	tickMs, err := strconv.Atoi(getEnv("TICK_INTERVAL_MS", "50"))
	if err != nil || tickMs <= 0 {
		return nil, fmt.Errorf("invalid TICK_INTERVAL_MS value: %v", err)
	}
	cfg.TickInterval = time.Duration(tickMs) * time.Millisecond

	syncSec, err := strconv.Atoi(getEnv("CATALOG_SYNC_INTERVAL_SEC", "300"))
	if err != nil || syncSec <= 0 {
		return nil, fmt.Errorf("invalid CATALOG_SYNC_INTERVAL_SEC value: %v", err)
	}
	cfg.CatalogSyncInterval = time.Duration(syncSec) * time.Second

	pollMs, err := strconv.Atoi(getEnv("SIGNAL_POLL_INTERVAL_MS", "2000"))
	if err != nil || pollMs <= 0 {
		return nil, fmt.Errorf("invalid SIGNAL_POLL_INTERVAL_MS value: %v", err)
	}
	cfg.SignalPollInterval = time.Duration(pollMs) * time.Millisecond

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		for _, p := range strings.Split(proxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, p)
			}
		}
	}

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
