package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Currency FeedConfig
	Crypto   FeedConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type FeedConfig struct {
	BaseURL          string
	Timeout          time.Duration
	CacheTTL         time.Duration
	PollInterval     time.Duration
	MinFetchInterval time.Duration
	PageSize         int
	AutoRefresh      bool
	SyntheticChange  bool
}

type StorageConfig struct {
	Backend       string
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BadgerPath    string
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(getEnvString("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Currency: FeedConfig{
			BaseURL:          getEnvString("CURRENCY_API_BASE_URL", "https://api.exchangerate-api.com"),
			Timeout:          getEnvDuration("CURRENCY_API_TIMEOUT", 10*time.Second),
			CacheTTL:         getEnvDuration("CURRENCY_CACHE_TTL", 24*time.Hour),
			PollInterval:     getEnvDuration("CURRENCY_POLL_INTERVAL", 1*time.Hour),
			MinFetchInterval: getEnvDuration("CURRENCY_MIN_FETCH_INTERVAL", 1*time.Second),
			AutoRefresh:      getEnvBool("CURRENCY_AUTO_REFRESH", true),
			SyntheticChange:  getEnvBool("CURRENCY_SYNTHETIC_CHANGE", false),
		},
		Crypto: FeedConfig{
			BaseURL:          getEnvString("CRYPTO_API_BASE_URL", "https://api.coingecko.com"),
			Timeout:          getEnvDuration("CRYPTO_API_TIMEOUT", 10*time.Second),
			CacheTTL:         getEnvDuration("CRYPTO_CACHE_TTL", 5*time.Minute),
			PollInterval:     getEnvDuration("CRYPTO_POLL_INTERVAL", 30*time.Second),
			MinFetchInterval: getEnvDuration("CRYPTO_MIN_FETCH_INTERVAL", 2*time.Second),
			PageSize:         getEnvInt("CRYPTO_PAGE_SIZE", 250),
			AutoRefresh:      getEnvBool("CRYPTO_AUTO_REFRESH", true),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnvString("STORAGE_BACKEND", "file")),
			Dir:           getEnvString("STORAGE_DIR", "./data"),
			RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnvString("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			BadgerPath:    getEnvString("BADGER_PATH", "./data/badger"),
		},
		Log: LogConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}

	for name, feed := range map[string]FeedConfig{"currency": c.Currency, "crypto": c.Crypto} {
		if feed.BaseURL == "" {
			errs = append(errs, fmt.Errorf("%s: base URL is required", name))
		}
		if feed.CacheTTL <= 0 || feed.PollInterval <= 0 || feed.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("%s: cache TTL, poll interval and timeout must be positive", name))
		}
		if feed.PollInterval >= feed.CacheTTL {
			errs = append(errs, fmt.Errorf("%s: poll interval %s must be shorter than cache TTL %s", name, feed.PollInterval, feed.CacheTTL))
		}
		if feed.MinFetchInterval < 0 {
			errs = append(errs, fmt.Errorf("%s: min fetch interval must not be negative", name))
		}
	}

	if c.Crypto.PageSize <= 0 || c.Crypto.PageSize > 250 {
		errs = append(errs, fmt.Errorf("crypto: page size must be within 1..250, got %d", c.Crypto.PageSize))
	}

	switch c.Storage.Backend {
	case "memory", "file", "redis", "badger", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend: %q", c.Storage.Backend))
	}

	return errors.Join(errs...)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %t\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid duration for %s, using default: %s\n", key, defaultValue)
		return defaultValue
	}

	return value
}
